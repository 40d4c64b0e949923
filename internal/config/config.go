package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	CronModeExternal = "external"
	CronModeInternal = "internal"
	CronModeDisabled = "disabled"

	RunModeWebhook = "webhook"
	RunModePolling = "polling"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath   string `envconfig:"DB_PATH" default:"./data/reminder.db"`

	BroadcastChatID string `envconfig:"BROADCAST_CHAT_ID"` // group or channel, optional
	AdminChatID     string `envconfig:"ADMIN_CHAT_ID"`     // super admin, optional

	BusinessTZ     string `envconfig:"BUSINESS_TZ" default:"Asia/Bangkok"`
	UTCOffsetHours int    `envconfig:"UTC_OFFSET_HOURS" default:"7"`
	HolidaysFile   string `envconfig:"HOLIDAYS_FILE" default:"./holidays.json"`

	CronMode    string        `envconfig:"CRON_MODE" default:"external"` // external|internal|disabled
	CronSecret  string        `envconfig:"CRON_SECRET"`
	DedupWindow time.Duration `envconfig:"DEDUP_WINDOW" default:"5m"`

	DispatchConcurrency int `envconfig:"DISPATCH_CONCURRENCY" default:"1"`

	RunMode               string `envconfig:"RUN_MODE" default:"webhook"` // webhook|polling
	AppURL                string `envconfig:"APP_URL"`
	WebhookPath           string `envconfig:"WEBHOOK_PATH" default:"/webhook"`
	WebhookSecret         string `envconfig:"WEBHOOK_SECRET"`
	WebhookMaxConnections int    `envconfig:"WEBHOOK_MAX_CONNECTIONS" default:"40"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json|console
	HTTPAddr  string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads an optional .env file, then environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects combinations that cannot start.
func (c Config) Validate() error {
	switch c.CronMode {
	case CronModeExternal:
		if c.CronSecret == "" {
			return errors.New("CRON_SECRET is required when CRON_MODE=external")
		}
	case CronModeInternal, CronModeDisabled:
	default:
		return fmt.Errorf("invalid CRON_MODE %q: want external, internal or disabled", c.CronMode)
	}

	switch c.RunMode {
	case RunModeWebhook:
		if c.AppURL == "" {
			return errors.New("APP_URL is required when RUN_MODE=webhook")
		}
	case RunModePolling:
	default:
		return fmt.Errorf("invalid RUN_MODE %q: want webhook or polling", c.RunMode)
	}

	if _, err := time.LoadLocation(c.BusinessTZ); err != nil {
		return fmt.Errorf("invalid BUSINESS_TZ %q: %w", c.BusinessTZ, err)
	}
	if c.DedupWindow <= 0 {
		return errors.New("DEDUP_WINDOW must be positive")
	}
	if c.DispatchConcurrency < 1 {
		return errors.New("DISPATCH_CONCURRENCY must be at least 1")
	}
	if !strings.HasPrefix(c.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with '/': %q", c.WebhookPath)
	}
	return nil
}

// WebhookURL joins the public base URL with the webhook path.
func (c Config) WebhookURL() string {
	return strings.TrimRight(c.AppURL, "/") + c.WebhookPath
}
