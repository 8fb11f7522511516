package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/getsentry/sentry-go"
)

func main() {
	env, err := LoadEnv(".env")
	if err != nil {
		slog.Error("[main][LoadEnv]", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(env.LogLevel),
	})))

	if err := InitSentry(env.SentryDSN); err != nil {
		slog.Error("[main][InitSentry]", "error", err)
		os.Exit(1)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApp(NewConfig(env))
	if err := app.start(ctx); err != nil {
		slog.Error("[main][App.start]", "error", err)
		sentry.Flush(2 * time.Second)
		os.Exit(1) //nolint:gocritic
	}
}

// parseLogLevel maps LOG_LEVEL to a slog level, info by default.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
