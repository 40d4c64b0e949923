package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		BotToken:            "token",
		BusinessTZ:          "Asia/Bangkok",
		UTCOffsetHours:      7,
		CronMode:            CronModeExternal,
		CronSecret:          "s3cret",
		DedupWindow:         5 * time.Minute,
		DispatchConcurrency: 1,
		RunMode:             RunModeWebhook,
		AppURL:              "https://bot.example.com/",
		WebhookPath:         "/webhook",
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown cron mode":       func(c *Config) { c.CronMode = "both" },
		"external without secret": func(c *Config) { c.CronSecret = "" },
		"webhook without app url": func(c *Config) { c.AppURL = "" },
		"unknown run mode":        func(c *Config) { c.RunMode = "lambda" },
		"bad timezone":            func(c *Config) { c.BusinessTZ = "Mars/Olympus" },
		"zero dedup window":       func(c *Config) { c.DedupWindow = 0 },
		"zero concurrency":        func(c *Config) { c.DispatchConcurrency = 0 },
		"relative webhook path":   func(c *Config) { c.WebhookPath = "webhook" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_InternalModeNeedsNoSecret(t *testing.T) {
	c := validConfig()
	c.CronMode = CronModeInternal
	c.CronSecret = ""
	c.RunMode = RunModePolling
	c.AppURL = ""
	assert.NoError(t, c.Validate())
}

func TestWebhookURL(t *testing.T) {
	assert.Equal(t, "https://bot.example.com/webhook", validConfig().WebhookURL())
}

func TestLoad_FromEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("BOT_TOKEN", "abc")
	t.Setenv("CRON_MODE", "internal")
	t.Setenv("RUN_MODE", "polling")
	t.Setenv("DEDUP_WINDOW", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.BotToken)
	assert.Equal(t, 2*time.Minute, cfg.DedupWindow)
	assert.Equal(t, "Asia/Bangkok", cfg.BusinessTZ)
	assert.Equal(t, 7, cfg.UTCOffsetHours)
}
