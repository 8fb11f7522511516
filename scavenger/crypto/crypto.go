package crypto

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/samgozman/morning-thread/utils"
)

const (
	// DefaultCoinGeckoURL is the simple price endpoint used for all assets at once.
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3/simple/price"
	// DefaultBinanceURL is the ticker endpoint used for assets CoinGecko didn't return.
	DefaultBinanceURL = "https://api.binance.com/api/v3/ticker/price"
	// Placeholder replaces the section when prices can't be fetched.
	Placeholder = "Ошибка при получении курсов криптовалют."
	// NotAvailable is printed instead of a price missing from the answer.
	NotAvailable = "N/A"

	coinGeckoSource = "coingecko:simple-price"
	binanceSource   = "binance:ticker"
)

// Asset describes a coin and its identifiers at each provider.
type Asset struct {
	Symbol      string // Symbol shown in the report (BTC)
	CoinGeckoID string // CoinGecko coin id (bitcoin)
	BinancePair string // Binance USDT pair used as a fallback (BTCUSDT), optional
}

// DefaultAssets are the coins shown in the report, in display order.
var DefaultAssets = []Asset{
	{Symbol: "BTC", CoinGeckoID: "bitcoin", BinancePair: "BTCUSDT"},
	{Symbol: "ETH", CoinGeckoID: "ethereum", BinancePair: "ETHUSDT"},
	{Symbol: "TON", CoinGeckoID: "the-open-network", BinancePair: "TONUSDT"},
}

// Quote is the USD price of a single asset.
type Quote struct {
	Symbol    string
	Price     float64
	Available bool // false if no provider returned a price
}

// Snapshot holds quotes in display order.
type Snapshot []Quote

// Format renders one "SYMBOL: $value" line per quote.
func (s Snapshot) Format() string {
	lines := lo.Map(s, func(q Quote, _ int) string {
		if !q.Available {
			return fmt.Sprintf("%s: $%s", q.Symbol, NotAvailable)
		}
		return fmt.Sprintf("%s: $%s", q.Symbol, utils.FormatNumber(q.Price))
	})
	return strings.Join(lines, "\n")
}

// Fetcher gets spot prices for a fixed set of assets with a single CoinGecko request.
type Fetcher struct {
	CoinGeckoURL string
	BinanceURL   string
	Assets       []Asset
	client       *fetch.Client
	fallback     bool
	logger       *slog.Logger
}

// NewFetcher creates a new Fetcher for DefaultAssets.
func NewFetcher(coinGeckoURL, binanceURL string, client *fetch.Client) *Fetcher {
	if coinGeckoURL == "" {
		coinGeckoURL = DefaultCoinGeckoURL
	}
	if binanceURL == "" {
		binanceURL = DefaultBinanceURL
	}
	return &Fetcher{
		CoinGeckoURL: coinGeckoURL,
		BinanceURL:   binanceURL,
		Assets:       DefaultAssets,
		client:       client,
		logger:       slog.Default(),
	}
}

// WithFallback enables Binance lookups for assets missing from the CoinGecko answer.
func (f *Fetcher) WithFallback() *Fetcher {
	f.fallback = true
	return f
}

// Fetch requests all asset prices at once. Assets absent from the answer are marked unavailable,
// unless the fallback is enabled and Binance knows their pair.
func (f *Fetcher) Fetch(ctx context.Context) (Snapshot, error) {
	ids := lo.Map(f.Assets, func(a Asset, _ int) string { return a.CoinGeckoID })
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	var prices map[string]map[string]*float64
	if err := f.client.GetJSON(ctx, coinGeckoSource, f.CoinGeckoURL+"?"+q.Encode(), &prices); err != nil {
		return nil, err
	}

	snapshot := make(Snapshot, len(f.Assets))
	for i, a := range f.Assets {
		snapshot[i] = Quote{Symbol: a.Symbol}
		if price := prices[a.CoinGeckoID]["usd"]; price != nil {
			snapshot[i].Price = *price
			snapshot[i].Available = true
			continue
		}

		if !f.fallback || a.BinancePair == "" {
			continue
		}
		price, err := f.fetchBinance(ctx, a.BinancePair)
		if err != nil {
			f.logger.Warn("[crypto.Fetch][fetchBinance]", "symbol", a.Symbol, "error", err)
			continue
		}
		snapshot[i].Price = price
		snapshot[i].Available = true
	}

	return snapshot, nil
}

// Brief fetches the quotes and renders them for the report.
func (f *Fetcher) Brief(ctx context.Context) (string, error) {
	snapshot, err := f.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return snapshot.Format(), nil
}

// fetchBinance gets the last price of a single pair.
func (f *Fetcher) fetchBinance(ctx context.Context, pair string) (float64, error) {
	var ticker binanceTicker
	if err := f.client.GetJSON(ctx, binanceSource, f.BinanceURL+"?symbol="+url.QueryEscape(pair), &ticker); err != nil {
		return 0, err
	}
	if ticker.Price == "" {
		return 0, fetch.SchemaError(binanceSource, "price")
	}
	price, err := utils.StrValueToFloat(ticker.Price)
	if err != nil {
		return 0, fetch.ParseError(binanceSource, err)
	}
	return price, nil
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}
