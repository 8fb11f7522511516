package fxrates

import (
	"context"
	"fmt"
	"strings"

	"github.com/samgozman/morning-thread/scavenger/fetch"
)

const (
	// DefaultURL is the daily snapshot of the Central Bank of Russia rates.
	DefaultURL = "https://www.cbr-xml-daily.ru/daily_json.js"
	// Placeholder replaces the section when the rates can't be fetched.
	Placeholder = "Ошибка при получении курсов валют."

	sourceName = "cbr:daily"
)

// DefaultCurrencies are the currencies shown in the report, in display order.
var DefaultCurrencies = []string{"USD", "EUR", "CNY"}

// Rates maps a currency code to its rate in RUB.
type Rates map[string]float64

// Format renders the rates for the given codes, one "CODE: value RUB" line each.
func (r Rates) Format(codes []string) string {
	lines := make([]string, 0, len(codes))
	for _, code := range codes {
		lines = append(lines, fmt.Sprintf("%s: %.2f RUB", code, r[code]))
	}
	return strings.Join(lines, "\n")
}

// Fetcher gets the daily exchange rates snapshot.
type Fetcher struct {
	URL        string
	Currencies []string
	client     *fetch.Client
}

// NewFetcher creates a new Fetcher for DefaultCurrencies.
func NewFetcher(url string, client *fetch.Client) *Fetcher {
	if url == "" {
		url = DefaultURL
	}
	return &Fetcher{
		URL:        url,
		Currencies: DefaultCurrencies,
		client:     client,
	}
}

// Fetch downloads the snapshot and extracts the configured currencies.
// A currency missing from the snapshot is a schema error.
func (f *Fetcher) Fetch(ctx context.Context) (Rates, error) {
	var snapshot cbrSnapshot
	if err := f.client.GetJSON(ctx, sourceName, f.URL, &snapshot); err != nil {
		return nil, err
	}
	if snapshot.Valute == nil {
		return nil, fetch.SchemaError(sourceName, "Valute")
	}

	rates := make(Rates, len(f.Currencies))
	for _, code := range f.Currencies {
		v, ok := snapshot.Valute[code]
		if !ok {
			return nil, fetch.SchemaError(sourceName, "Valute."+code)
		}
		if v.Value == nil {
			return nil, fetch.SchemaError(sourceName, "Valute."+code+".Value")
		}
		rates[code] = *v.Value
	}

	return rates, nil
}

// Brief fetches the rates and renders them for the report.
func (f *Fetcher) Brief(ctx context.Context) (string, error) {
	rates, err := f.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return rates.Format(f.Currencies), nil
}

// cbrSnapshot is the subset of the daily_json.js document we need.
type cbrSnapshot struct {
	Date   string                 `json:"Date"`
	Valute map[string]cbrCurrency `json:"Valute"`
}

type cbrCurrency struct {
	CharCode string   `json:"CharCode"`
	Nominal  int      `json:"Nominal"`
	Name     string   `json:"Name"`
	Value    *float64 `json:"Value"`
}
