package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, env *Env)
	}{
		{
			name: "defaults",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123:abc",
				"OWM_API_KEY":        "owm",
			},
			check: func(t *testing.T, env *Env) {
				assert.Equal(t, "123:abc", env.TelegramBotToken)
				assert.Equal(t, BotModePolling, env.BotMode)
				assert.Equal(t, 8080, env.Port)
				assert.Equal(t, "Asia/Krasnoyarsk", env.Timezone)
				assert.Equal(t, "08:00", env.BriefTime)
				assert.Equal(t, 5*time.Second, env.FetchTimeout)
				assert.Equal(t, "Krasnoyarsk,RU", env.WeatherLocation)
				assert.True(t, env.CryptoFallback)
				assert.False(t, env.DryRun)
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123:abc",
				"OWM_API_KEY":        "owm",
				"BOT_MODE":           "webhook",
				"WEBHOOK_URL":        "https://bot.example.com/telegram/webhook",
				"FETCH_TIMEOUT":      "2s",
				"CRYPTO_FALLBACK":    "false",
				"DRY_RUN":            "true",
				"PORT":               "9090",
			},
			check: func(t *testing.T, env *Env) {
				assert.Equal(t, BotModeWebhook, env.BotMode)
				assert.Equal(t, 2*time.Second, env.FetchTimeout)
				assert.False(t, env.CryptoFallback)
				assert.True(t, env.DryRun)
				assert.Equal(t, 9090, env.Port)
			},
		},
		{
			name:    "missing bot token",
			env:     map[string]string{"OWM_API_KEY": "owm"},
			wantErr: true,
		},
		{
			name:    "missing weather key",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "123:abc"},
			wantErr: true,
		},
		{
			name: "webhook mode without url",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123:abc",
				"OWM_API_KEY":        "owm",
				"BOT_MODE":           "webhook",
			},
			wantErr: true,
		},
		{
			name: "unknown bot mode",
			env: map[string]string{
				"TELEGRAM_BOT_TOKEN": "123:abc",
				"OWM_API_KEY":        "owm",
				"BOT_MODE":           "carrier-pigeon",
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key := range envDefaults {
				t.Setenv(key, "")
				require.NoError(t, os.Unsetenv(key))
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			got, err := LoadEnv("")
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadEnv() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	for key := range envDefaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TELEGRAM_BOT_TOKEN=from-file\nOWM_API_KEY=owm\nBRIEF_TIME=07:30\n"), 0o600))

	got, err := LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", got.TelegramBotToken)
	assert.Equal(t, "07:30", got.BriefTime)

	// env wins over the file
	t.Setenv("BRIEF_TIME", "09:15")
	got, err = LoadEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "09:15", got.BriefTime)
}

func TestLoadEnv_MissingDotEnvFile(t *testing.T) {
	for key := range envDefaults {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("OWM_API_KEY", "owm")

	_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 5, c.headlinesLimit)
	assert.Equal(t, 30*time.Second, c.jobTimeout)
	assert.Equal(t, "Погода в Красноярске", c.weatherTitle)
}
