package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/samgozman/morning-thread/internal/utils"
)

// SentryKit is a wrapper around sentry-go SDK that provides some convenience methods for logging and tracing
type SentryKit struct {
	log *slog.Logger
}

// InitSentry configures the global client. An empty dsn leaves Sentry disabled.
func InitSentry(dsn string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
}

// GetHub returns a sentry hub from the context, or a clone of the current one if it's not present
func (s *SentryKit) GetHub(ctx context.Context) *sentry.Hub {
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub().Clone()
}

// AddBreadcrumb adds a breadcrumb to the given hub with the given category and message
func (s *SentryKit) AddBreadcrumb(hub *sentry.Hub, c, m string) {
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: c,
		Message:  m,
		Level:    sentry.LevelInfo,
	}, nil)
}

// CaptureFatal logs the error, sends it to Sentry as fatal and waits for delivery
func (s *SentryKit) CaptureFatal(hub *sentry.Hub, category, m string, err error) {
	s.log.Error(m, "error", err)
	hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  m,
		Level:    sentry.LevelFatal,
	}, nil)
	utils.CaptureSentryException(category, hub, err)
	hub.Flush(2 * time.Second)
}
