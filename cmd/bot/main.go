package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/app"
	"github.com/Arnutt-N/time-reminder/internal/config"
	"github.com/Arnutt-N/time-reminder/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	log.Info("config loaded",
		zap.String("bot_token", logger.MaskSecret(cfg.BotToken)),
		zap.String("db_path", cfg.DBPath),
		zap.String("business_tz", cfg.BusinessTZ),
		zap.Int("utc_offset_hours", cfg.UTCOffsetHours),
		zap.String("cron_mode", cfg.CronMode),
		zap.Bool("cron_secret_set", cfg.CronSecret != ""),
		zap.String("run_mode", cfg.RunMode),
		logger.URL("webhook_url", cfg.WebhookURL()),
		zap.Bool("broadcast_set", cfg.BroadcastChatID != ""),
		zap.Bool("admin_set", cfg.AdminChatID != ""),
	)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("app init failed", zap.Error(err))
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatal("app run failed", zap.Error(err))
	}
}
