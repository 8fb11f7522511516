package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samgozman/morning-thread/journalist"
	"github.com/samgozman/morning-thread/scavenger/crypto"
	"github.com/samgozman/morning-thread/scavenger/fxrates"
	"github.com/samgozman/morning-thread/scavenger/weather"
	"github.com/spf13/viper"
)

const (
	BotModePolling = "polling"
	BotModeWebhook = "webhook"
)

// Env is a structure that holds all the environment variables that are used in the app.
type Env struct {
	TelegramBotToken string        `mapstructure:"TELEGRAM_BOT_TOKEN" validate:"required"`
	OwmAPIKey        string        `mapstructure:"OWM_API_KEY" validate:"required"`
	BotMode          string        `mapstructure:"BOT_MODE" validate:"oneof=polling webhook"`
	WebhookURL       string        `mapstructure:"WEBHOOK_URL" validate:"required_if=BotMode webhook,omitempty,url"`
	WebhookPath      string        `mapstructure:"WEBHOOK_PATH" validate:"startswith=/"`
	Port             int           `mapstructure:"PORT" validate:"min=1,max=65535"`
	Timezone         string        `mapstructure:"TIMEZONE" validate:"required"`
	BriefTime        string        `mapstructure:"BRIEF_TIME" validate:"required"`
	FetchTimeout     time.Duration `mapstructure:"FETCH_TIMEOUT" validate:"gt=0"`
	WeatherLocation  string        `mapstructure:"WEATHER_LOCATION" validate:"required"`
	NewsFeedURL      string        `mapstructure:"NEWS_FEED_URL" validate:"url"`
	FxRatesURL       string        `mapstructure:"FX_RATES_URL" validate:"url"`
	CoinGeckoURL     string        `mapstructure:"COINGECKO_URL" validate:"url"`
	BinanceURL       string        `mapstructure:"BINANCE_URL" validate:"url"`
	WeatherURL       string        `mapstructure:"WEATHER_URL" validate:"url"`
	CryptoFallback   bool          `mapstructure:"CRYPTO_FALLBACK"`
	DryRun           bool          `mapstructure:"DRY_RUN"`
	SentryDSN        string        `mapstructure:"SENTRY_DSN"`
	LogLevel         string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// envDefaults are applied when the variable is not set. Keys without a default must still be listed to be read from env.
var envDefaults = map[string]any{
	"TELEGRAM_BOT_TOKEN": "",
	"OWM_API_KEY":        "",
	"BOT_MODE":           BotModePolling,
	"WEBHOOK_URL":        "",
	"WEBHOOK_PATH":       "/telegram/webhook",
	"PORT":               8080,
	"TIMEZONE":           "Asia/Krasnoyarsk",
	"BRIEF_TIME":         "08:00",
	"FETCH_TIMEOUT":      "5s",
	"WEATHER_LOCATION":   weather.DefaultLocation,
	"NEWS_FEED_URL":      journalist.DefaultFeedURL,
	"FX_RATES_URL":       fxrates.DefaultURL,
	"COINGECKO_URL":      crypto.DefaultCoinGeckoURL,
	"BINANCE_URL":        crypto.DefaultBinanceURL,
	"WEATHER_URL":        weather.DefaultURL,
	"CRYPTO_FALLBACK":    true,
	"DRY_RUN":            false,
	"SENTRY_DSN":         "",
	"LOG_LEVEL":          "info",
}

// LoadEnv reads the environment (and the optional .env file at path) into Env and validates it.
func LoadEnv(path string) (*Env, error) {
	v := viper.New()
	for key, value := range envDefaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("[LoadEnv][viper.ReadInConfig]: %w", err)
		}
	}
	v.AutomaticEnv()

	env := &Env{}
	if err := v.Unmarshal(env); err != nil {
		return nil, fmt.Errorf("[LoadEnv][viper.Unmarshal]: %w", err)
	}

	if err := validator.New().Struct(env); err != nil {
		return nil, fmt.Errorf("[LoadEnv][validator.Struct]: %w", err)
	}

	return env, nil
}

// Config holds the environment and the non-env defaults of the app.
type Config struct {
	env             *Env   // Holds all the environment variables that are used in the app
	headlinesLimit  int    // Number of headlines shown in the report
	jobTimeout      time.Duration
	newsTitle       string // Section titles, in report order
	fxTitle         string
	cryptoTitle     string
	weatherTitle    string
	shutdownTimeout time.Duration
}

// NewConfig creates a new Config object with the given Env and default values from DefaultConfig.
func NewConfig(env *Env) *Config {
	c := DefaultConfig()
	c.env = env
	return c
}

// DefaultConfig creates a new Config object with default values.
func DefaultConfig() *Config {
	return &Config{
		env:             &Env{},
		headlinesLimit:  journalist.DefaultLimit,
		jobTimeout:      30 * time.Second,
		newsTitle:       "Главные новости",
		fxTitle:         "Курсы валют",
		cryptoTitle:     "Курсы криптовалют",
		weatherTitle:    "Погода в Красноярске",
		shutdownTimeout: 10 * time.Second,
	}
}
