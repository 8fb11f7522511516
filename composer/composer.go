package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samgozman/morning-thread/internal/utils"
	"github.com/samgozman/morning-thread/metrics"
	"github.com/samgozman/morning-thread/pkg/errlvl"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"golang.org/x/sync/errgroup"
)

// SourceFunc produces the body of a report section.
type SourceFunc func(ctx context.Context) (string, error)

// Section is a titled block of the report.
type Section struct {
	Name        string     // Name is used in logs and metrics
	Title       string     // Title is printed above the section body, without the trailing colon
	Placeholder string     // Placeholder replaces the body when Source fails
	Source      SourceFunc // Source is called once per Compose
}

// Composer builds the report text from its sections.
type Composer struct {
	sections []Section
	logger   *slog.Logger
}

func NewComposer(sections ...Section) *Composer {
	return &Composer{
		sections: sections,
		logger:   slog.Default(),
	}
}

// Sections returns the configured sections in report order.
func (c *Composer) Sections() []Section {
	return c.sections
}

// Compose fetches every section concurrently and joins them in declaration order.
// A failed section is replaced by its placeholder, so Compose always returns a full report.
func (c *Composer) Compose(ctx context.Context, greeting string) string {
	started := time.Now()
	defer func() {
		metrics.ReportBuildDuration.Observe(time.Since(started).Seconds())
	}()

	bodies := make([]string, len(c.sections))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range c.sections {
		i, s := i, s
		g.Go(func() error {
			bodies[i] = c.fetchSection(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	blocks := make([]string, 0, len(c.sections)+1)
	if greeting != "" {
		blocks = append(blocks, greeting)
	}
	for i, s := range c.sections {
		blocks = append(blocks, fmt.Sprintf("%s:\n%s", s.Title, bodies[i]))
	}

	return strings.Join(blocks, "\n\n")
}

// fetchSection calls the section source and handles its failure.
func (c *Composer) fetchSection(ctx context.Context, s Section) (body string) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := newError(errors.Join(errSectionPanic, fmt.Errorf("%v", r)), errlvl.FATAL, "Composer.fetchSection", s.Name)
			c.fail(ctx, s, err, started)
			body = s.Placeholder
		}
	}()

	if s.Source == nil {
		c.fail(ctx, s, newError(errSectionFailed, errlvl.ERROR, "Composer.fetchSection", s.Name), started)
		return s.Placeholder
	}

	body, err := s.Source(ctx)
	if err != nil {
		c.fail(ctx, s, newError(errors.Join(errSectionFailed, err), errlvl.Of(err), "Composer.fetchSection", s.Name), started)
		return s.Placeholder
	}

	metrics.ObserveSection(s.Name, metrics.StatusOK, started)
	return body
}

func (c *Composer) fail(ctx context.Context, s Section, err *Error, started time.Time) {
	metrics.ObserveSection(s.Name, fetch.Kind(err), started)

	if errlvl.Of(err) >= errlvl.ERROR {
		c.logger.Error("[Composer.Compose]", "section", s.Name, "error", err)
	} else {
		c.logger.Warn("[Composer.Compose]", "section", s.Name, "error", err)
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	utils.CaptureSentryException("composerSectionError", hub, err)
}
