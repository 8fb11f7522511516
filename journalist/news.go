package journalist

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/samber/lo"
)

type News struct {
	ID           string    // ID is the md5 hash of link + date
	Title        string    // Title is the cleaned headline
	Link         string    // Link is the link to the news
	Date         time.Time // Date is the publication date, zero if the feed has none
	ProviderName string    // ProviderName is the name of the provider that fetched the news
}

// NewNews creates a News item. The title is stripped of markup, an empty or unparsable date is kept as zero time.
func NewNews(title, link, date, provider string) *News {
	dateTime, err := parseDate(date)
	if err != nil {
		dateTime = time.Time{}
	}

	hash := md5.Sum([]byte(link + dateTime.String()))

	return &News{
		ID:           hex.EncodeToString(hash[:]),
		Title:        cleanTitle(title),
		Link:         link,
		Date:         dateTime,
		ProviderName: provider,
	}
}

type NewsList []*News

// Headlines renders one "• title" line per item, in list order.
func (n NewsList) Headlines() string {
	lines := lo.Map(n, func(news *News, _ int) string {
		return "• " + news.Title
	})
	return strings.Join(lines, "\n")
}

// Limit returns at most the first size items.
func (n NewsList) Limit(size int) NewsList {
	if size <= 0 || len(n) <= size {
		return n
	}
	return n[:size]
}
