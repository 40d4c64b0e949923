package app

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Arnutt-N/time-reminder/internal/config"
	"github.com/Arnutt-N/time-reminder/internal/scheduler"
	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

func TestWarnOffsetDrift(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	bangkok, err := time.LoadLocation("Asia/Bangkok")
	require.NoError(t, err)
	now := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	assert.False(t, warnOffsetDrift(log, bangkok, 7, now))
	assert.Equal(t, 0, logs.Len())

	assert.True(t, warnOffsetDrift(log, bangkok, 8, now))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Asia/Bangkok", logs.All()[0].ContextMap()["zone"])
}

func TestWarnOffsetDrift_DST(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	winter := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	summer := time.Date(2025, time.July, 7, 0, 0, 0, 0, time.UTC)

	assert.False(t, warnOffsetDrift(zap.NewNop(), berlin, 1, winter))
	assert.True(t, warnOffsetDrift(zap.NewNop(), berlin, 1, summer))
}

func TestHTTPDeps_OneTriggerSource(t *testing.T) {
	a := &App{cfg: config.Config{WebhookPath: "/webhook", WebhookSecret: "s"}, log: zap.NewNop()}

	deps := a.httpDeps(scheduler.ModeInternal)
	assert.Nil(t, deps.Runner)
	assert.Nil(t, deps.Updates)

	a.runner = &scheduler.Runner{}
	deps = a.httpDeps(scheduler.ModeExternal)
	assert.NotNil(t, deps.Runner)

	a.hooks = webhook.NewManager(nil, zap.NewNop())
	deps = a.httpDeps(scheduler.ModeDisabled)
	assert.Nil(t, deps.Runner)
	assert.Equal(t, "/webhook", deps.WebhookPath)
	assert.Equal(t, "s", deps.Secret)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

// fakeBotAPI records every Bot API method called against it.
type fakeBotAPI struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if method == "getMe" {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Reminder","username":"ReminderBot"}}`))
		return
	}
	_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
}

func (f *fakeBotAPI) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestRun_PortTakenNeverTouchesProvider(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = taken.Close() })

	for _, mode := range []string{config.RunModeWebhook, config.RunModePolling} {
		t.Run(mode, func(t *testing.T) {
			bot, err := tgbotapi.NewBotAPIWithClient("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
			require.NoError(t, err)

			dir := t.TempDir()
			cfg := config.Config{
				BotToken:            "TOKEN",
				DBPath:              filepath.Join(dir, "reminder.db"),
				BusinessTZ:          "Asia/Bangkok",
				UTCOffsetHours:      7,
				HolidaysFile:        filepath.Join(dir, "missing.json"),
				CronMode:            config.CronModeExternal,
				CronSecret:          "cron-secret",
				DedupWindow:         5 * time.Minute,
				DispatchConcurrency: 1,
				RunMode:             mode,
				AppURL:              "https://bot.example.com",
				WebhookPath:         "/webhook",
				HTTPAddr:            taken.Addr().String(),
			}

			core, logs := observer.New(zap.ErrorLevel)
			a := newWithBot(cfg, zap.New(core), bot)

			err = a.Run(context.Background())
			require.Error(t, err)

			assert.False(t, a.gate.IsOpen())
			assert.Equal(t, PhaseStopped, a.Phase())
			assert.Equal(t, 1, logs.FilterMessage("http listen failed").Len())
			for _, m := range api.methods() {
				assert.Equal(t, "getMe", m, "provider called before the listener was bound")
			}
		})
	}
}
