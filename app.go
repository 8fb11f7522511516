package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samgozman/morning-thread/bot"
	"github.com/samgozman/morning-thread/composer"
	"github.com/samgozman/morning-thread/jobs"
	"github.com/samgozman/morning-thread/journalist"
	"github.com/samgozman/morning-thread/metrics"
	"github.com/samgozman/morning-thread/publisher"
	"github.com/samgozman/morning-thread/scavenger"
	"github.com/samgozman/morning-thread/scavenger/crypto"
	"github.com/samgozman/morning-thread/scavenger/fetch"
	"github.com/samgozman/morning-thread/scavenger/fxrates"
	"github.com/samgozman/morning-thread/scavenger/weather"
	"github.com/samgozman/morning-thread/scheduler"
	"github.com/samgozman/morning-thread/server"
)

// reportPublisher delivers a report to a chat. Implemented by publisher.TelegramPublisher.
type reportPublisher interface {
	Publish(ctx context.Context, chatID int64, text string) ([]int, error)
}

type App struct {
	cfg       *Config
	composer  *composer.Composer
	publisher *publisher.TelegramPublisher
	scheduler *scheduler.Scheduler
	job       *jobs.BriefJob
	logger    *slog.Logger
	sentry    *SentryKit
}

// NewApp wires the report sources and the job. The Telegram connection is made in start.
func NewApp(cfg *Config) *App {
	client := fetch.NewClient(cfg.env.FetchTimeout)

	news := journalist.NewJournalist("MorningNews", []journalist.NewsProvider{
		journalist.NewRssProvider("google-news:ru", cfg.env.NewsFeedURL, client),
	}).Limit(cfg.headlinesLimit)

	sc := scavenger.NewScavenger(client, scavenger.Sources{
		FxRatesURL:      cfg.env.FxRatesURL,
		CoinGeckoURL:    cfg.env.CoinGeckoURL,
		BinanceURL:      cfg.env.BinanceURL,
		CryptoFallback:  cfg.env.CryptoFallback,
		WeatherURL:      cfg.env.WeatherURL,
		WeatherLocation: cfg.env.WeatherLocation,
		WeatherAPIKey:   cfg.env.OwmAPIKey,
	})

	c := composer.NewComposer(
		composer.Section{Name: "news", Title: cfg.newsTitle, Placeholder: journalist.Placeholder, Source: news.Headlines},
		composer.Section{Name: "fx", Title: cfg.fxTitle, Placeholder: fxrates.Placeholder, Source: sc.FxRates.Brief},
		composer.Section{Name: "crypto", Title: cfg.cryptoTitle, Placeholder: crypto.Placeholder, Source: sc.Crypto.Brief},
		composer.Section{Name: "weather", Title: cfg.weatherTitle, Placeholder: weather.Placeholder, Source: sc.Weather.Brief},
	)

	logger := slog.Default()
	return &App{
		cfg:      cfg,
		composer: c,
		logger:   logger,
		sentry:   &SentryKit{log: logger},
	}
}

// start connects to Telegram, starts the timers and serves updates until ctx is done.
// newBriefJob builds the report job. Reports are delivered unless DRY_RUN is set.
func (a *App) newBriefJob(pub reportPublisher) *jobs.BriefJob {
	job := jobs.NewBriefJob(a.composer, pub).Timeout(a.cfg.jobTimeout)
	if !a.cfg.env.DryRun {
		job = job.Publish()
	}
	return job
}

func (a *App) start(ctx context.Context) error {
	hub := a.sentry.GetHub(ctx)

	pub, err := publisher.NewTelegramPublisher(a.cfg.env.TelegramBotToken)
	if err != nil {
		a.sentry.CaptureFatal(hub, "publisher", "Error connecting to the Telegram Bot API", err)
		return fmt.Errorf("[App.start][publisher.NewTelegramPublisher]: %w", err)
	}
	a.publisher = pub
	a.sentry.AddBreadcrumb(hub, "publisher", "Connected as @"+pub.BotAPI.Self.UserName)

	sch, err := scheduler.NewScheduler(a.cfg.env.Timezone, a.cfg.env.BriefTime)
	if err != nil {
		a.sentry.CaptureFatal(hub, "scheduler", "Error creating the daily scheduler", err)
		return fmt.Errorf("[App.start][scheduler.NewScheduler]: %w", err)
	}
	a.scheduler = sch

	a.job = a.newBriefJob(pub)

	dispatcher := bot.NewDispatcher(pub, sch, a.job)

	metrics.MustRegister(prometheus.DefaultRegisterer)
	srv := server.NewServer(prometheus.DefaultGatherer)

	if a.cfg.env.BotMode == BotModeWebhook {
		srv.Webhook(a.cfg.env.WebhookPath, dispatcher.WebhookHandler())
		if err := a.setWebhook(pub.BotAPI); err != nil {
			a.sentry.CaptureFatal(hub, "webhook", "Error registering the webhook", err)
			return fmt.Errorf("[App.start][setWebhook]: %w", err)
		}
	} else if _, err := pub.BotAPI.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		a.logger.Warn("[App.start] could not delete webhook before polling", "error", err)
	}

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start(fmt.Sprintf(":%d", a.cfg.env.Port))
	}()

	sch.Start()

	var wg sync.WaitGroup
	if a.cfg.env.BotMode == BotModePolling {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispatcher.Poll(ctx, pub.BotAPI)
		}()
	}

	a.logger.Info("Started morning-thread successfully",
		"mode", a.cfg.env.BotMode,
		"brief_time", a.cfg.env.BriefTime,
		"timezone", a.cfg.env.Timezone,
		"dry_run", a.cfg.env.DryRun,
	)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			runErr = fmt.Errorf("[App.start][server.Start]: %w", err)
		}
	}

	a.shutdown(srv, dispatcher, &wg)
	return runErr
}

// setWebhook registers WEBHOOK_URL with Telegram.
func (a *App) setWebhook(api *tgbotapi.BotAPI) error {
	url := strings.TrimRight(a.cfg.env.WebhookURL, "/")
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("[App.setWebhook][tgbotapi.NewWebhook]: %w", err)
	}

	return retry.Do(
		func() error {
			resp, err := api.Request(wh)
			if err != nil {
				return err
			}
			if !resp.Ok {
				return errors.New(resp.Description)
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warn("[App.setWebhook] retrying", "attempt", n+1, "error", err)
		}),
	)
}

// shutdown stops accepting updates and waits for timers and in-flight reports.
func (a *App) shutdown(srv *server.Server, dispatcher *bot.Dispatcher, polling *sync.WaitGroup) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("[App.shutdown][server.Shutdown]", "error", err)
	}
	polling.Wait()

	if err := a.scheduler.Stop(); err != nil {
		a.logger.Error("[App.shutdown][scheduler.Stop]", "error", err)
	}

	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("[App.shutdown] on-demand reports still running")
	}

	a.logger.Info("Stopped morning-thread")
}
