package scavenger

import (
	"github.com/samgozman/morning-thread/scavenger/crypto"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/samgozman/morning-thread/scavenger/fxrates"
	"github.com/samgozman/morning-thread/scavenger/weather"
)

// Scavenger is the struct that fetches market and weather data from defined sources.
// The Scavenger will hold all available sources and will fetch the data from them.
//
// It shouldn't be used as journalist.Journalist to get news. The main purpose of this struct is to
// fetch small structured snapshots (rates, prices, conditions) for the report.
type Scavenger struct {
	FxRates *fxrates.Fetcher
	Crypto  *crypto.Fetcher
	Weather *weather.Fetcher
}

// Sources holds upstream endpoints and credentials. Empty URLs fall back to the defaults of each fetcher.
type Sources struct {
	FxRatesURL      string
	CoinGeckoURL    string
	BinanceURL      string
	CryptoFallback  bool
	WeatherURL      string
	WeatherLocation string
	WeatherAPIKey   string
}

// NewScavenger creates all fetchers sharing the same HTTP client.
func NewScavenger(client *fetch.Client, src Sources) *Scavenger {
	c := crypto.NewFetcher(src.CoinGeckoURL, src.BinanceURL, client)
	if src.CryptoFallback {
		c = c.WithFallback()
	}

	return &Scavenger{
		FxRates: fxrates.NewFetcher(src.FxRatesURL, client),
		Crypto:  c,
		Weather: weather.NewFetcher(src.WeatherURL, src.WeatherLocation, src.WeatherAPIKey, client),
	}
}
