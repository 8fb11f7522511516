package journalist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samgozman/morning-thread/pkg/errlvl"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"golang.org/x/sync/errgroup"
)

// Placeholder replaces the headlines section when no news could be fetched.
const Placeholder = "Ошибка при получении новостей."

// DefaultLimit is the number of headlines shown in the report.
const DefaultLimit = 5

// Journalist collects headlines from a set of providers.
type Journalist struct {
	Name      string
	providers []NewsProvider
	limit     int
	logger    *slog.Logger
}

func NewJournalist(name string, providers []NewsProvider) *Journalist {
	return &Journalist{
		Name:      name,
		providers: providers,
		limit:     DefaultLimit,
		logger:    slog.Default(),
	}
}

// Limit sets the maximum number of news returned by GetLatestNews.
func (j *Journalist) Limit(n int) *Journalist {
	j.limit = n
	return j
}

// GetLatestNews runs all providers concurrently and returns their news in provider order.
// Failing providers are reported in the returned error, news from the others are still returned.
func (j *Journalist) GetLatestNews(ctx context.Context) (NewsList, error) {
	results := make([]NewsList, len(j.providers))
	errs := make([]error, len(j.providers))

	var g errgroup.Group
	for i, p := range j.providers {
		i, p := i, p
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = newError(errlvl.ERROR, errPanicFetch, fmt.Errorf("%v", r)).WithProvider(p.GetName())
				}
			}()

			news, err := p.Fetch(ctx)
			if err != nil {
				errs[i] = newError(errlvl.Of(err), errFetchingNews, err).WithProvider(p.GetName())
				return nil
			}
			results[i] = news
			return nil
		})
	}
	_ = g.Wait()

	var news NewsList
	var failed []error
	for i := range j.providers {
		news = append(news, results[i]...)
		if errs[i] != nil {
			failed = append(failed, errs[i])
		}
	}

	if len(failed) > 0 {
		err := newError(errlvl.Of(errors.Join(failed...)), failed...)
		if len(news) == 0 {
			return nil, err
		}
		j.logger.Warn("[Journalist.GetLatestNews]", "journalist", j.Name, "error", err)
	}
	if len(news) == 0 {
		return nil, newError(errlvl.ERROR, fetch.SchemaError(j.Name, "channel.item"))
	}

	return news.Limit(j.limit), nil
}

// Headlines returns the latest news rendered as bulleted lines.
func (j *Journalist) Headlines(ctx context.Context) (string, error) {
	news, err := j.GetLatestNews(ctx)
	if err != nil {
		return "", fmt.Errorf("[Journalist.Headlines][GetLatestNews]: %w", err)
	}
	return news.Headlines(), nil
}
