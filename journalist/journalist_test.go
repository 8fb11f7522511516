package journalist

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/samgozman/morning-thread/pkg/errlvl"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	name string
	news NewsList
	err  error
}

func (p *staticProvider) Fetch(context.Context) (NewsList, error) { return p.news, p.err }
func (p *staticProvider) GetName() string                          { return p.name }

type panicProvider struct{}

func (*panicProvider) Fetch(context.Context) (NewsList, error) { panic("boom") }
func (*panicProvider) GetName() string                          { return "panic" }

func TestJournalist_Headlines_SevenItemFeed(t *testing.T) {
	srv := feedServer(t, http.StatusOK, rssFeed("1", "2", "3", "4", "5", "6", "7"))
	j := NewJournalist("news", []NewsProvider{
		NewRssProvider("google:ru", srv.URL, fetch.NewClient(time.Second)),
	})

	got, err := j.Headlines(context.Background())
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "• 1\n• 2\n• 3\n• 4\n• 5", got)
}

func TestJournalist_GetLatestNews(t *testing.T) {
	upstreamErr := fetch.NetworkError("down", errors.New("connection refused"))

	tests := []struct {
		name      string
		providers []NewsProvider
		limit     int
		wantIDs   []string
		wantErr   bool
		wantLevel errlvl.Lvl
	}{
		{
			name: "provider order is kept",
			providers: []NewsProvider{
				&staticProvider{name: "a", news: NewsList{{ID: "a1", Title: "a1"}, {ID: "a2", Title: "a2"}}},
				&staticProvider{name: "b", news: NewsList{{ID: "b1", Title: "b1"}}},
			},
			limit:   5,
			wantIDs: []string{"a1", "a2", "b1"},
		},
		{
			name: "partial failure still returns news",
			providers: []NewsProvider{
				&staticProvider{name: "down", err: upstreamErr},
				&staticProvider{name: "b", news: NewsList{{ID: "b1", Title: "b1"}, {ID: "b2", Title: "b2"}}},
			},
			limit:   1,
			wantIDs: []string{"b1"},
		},
		{
			name: "all providers failed",
			providers: []NewsProvider{
				&staticProvider{name: "down", err: upstreamErr},
			},
			limit:     5,
			wantErr:   true,
			wantLevel: errlvl.WARN,
		},
		{
			name: "empty feed",
			providers: []NewsProvider{
				&staticProvider{name: "empty"},
			},
			limit:     5,
			wantErr:   true,
			wantLevel: errlvl.ERROR,
		},
		{
			name: "panicking provider",
			providers: []NewsProvider{
				&panicProvider{},
			},
			limit:     5,
			wantErr:   true,
			wantLevel: errlvl.ERROR,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := NewJournalist("test", tt.providers).Limit(tt.limit)
			got, err := j.GetLatestNews(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Journalist.GetLatestNews() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				assert.Equal(t, tt.wantLevel, errlvl.Of(err))
				return
			}
			ids := make([]string, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestJournalist_GetLatestNews_emptyFeedIsSchemaError(t *testing.T) {
	j := NewJournalist("google:ru", []NewsProvider{&staticProvider{name: "empty"}})
	_, err := j.GetLatestNews(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrSchema)
}
