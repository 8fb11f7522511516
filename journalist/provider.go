package journalist

import (
	"bytes"
	"context"

	"github.com/mmcdole/gofeed"
	"github.com/samgozman/morning-thread/scavenger/fetch"
)

// DefaultFeedURL is the Russian-language Google News top stories feed.
const DefaultFeedURL = "https://news.google.com/rss?hl=ru&gl=RU&ceid=RU:ru"

// NewsProvider is the interface for the data fetcher (via RSS, API, etc.)
type NewsProvider interface {
	Fetch(ctx context.Context) (NewsList, error)
	GetName() string
}

// RssProvider is the RSS provider implementation
type RssProvider struct {
	Name   string // Name is used for logging purposes
	URL    string
	client *fetch.Client
}

// NewRssProvider creates a new RssProvider instance
func NewRssProvider(name, url string, client *fetch.Client) *RssProvider {
	if url == "" {
		url = DefaultFeedURL
	}
	if client == nil {
		client = fetch.NewClient(fetch.DefaultTimeout)
	}
	return &RssProvider{
		Name:   name,
		URL:    url,
		client: client,
	}
}

// Fetch downloads the feed and returns its items in feed order.
func (r *RssProvider) Fetch(ctx context.Context) (NewsList, error) {
	body, err := r.client.Get(ctx, r.Name, r.URL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fetch.ParseError(r.Name, err)
	}

	news := make(NewsList, 0, len(feed.Items))
	for _, item := range feed.Items {
		news = append(news, NewNews(item.Title, item.Link, item.Published, r.Name))
	}

	return news, nil
}

func (r *RssProvider) GetName() string {
	return r.Name
}
