package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/calendar"
	"github.com/Arnutt-N/time-reminder/internal/config"
	"github.com/Arnutt-N/time-reminder/internal/dispatch"
	"github.com/Arnutt-N/time-reminder/internal/domain"
	"github.com/Arnutt-N/time-reminder/internal/httpapi"
	"github.com/Arnutt-N/time-reminder/internal/logger"
	"github.com/Arnutt-N/time-reminder/internal/scheduler"
	"github.com/Arnutt-N/time-reminder/internal/store"
	"github.com/Arnutt-N/time-reminder/internal/telegram"
	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

const shutdownTimeout = 5 * time.Second

// Phase is the process lifecycle.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseStarting
	PhaseRunning
	PhaseStopping
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseStopped:
		return "stopped"
	}
	return "unknown"
}

type App struct {
	cfg    config.Config
	log    *zap.Logger
	bot    *tgbotapi.BotAPI
	client *telegram.Client

	mu    sync.Mutex
	phase Phase

	httpSrv *http.Server
	gate    *httpapi.Gate
	repo    store.Repo
	coord   *scheduler.Coordinator
	runner  *scheduler.Runner
	slots   *domain.SlotTable
	hooks   *webhook.Manager
	router  *telegram.Router
	loc     *time.Location
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	return newWithBot(cfg, log, bot), nil
}

func newWithBot(cfg config.Config, log *zap.Logger, bot *tgbotapi.BotAPI) *App {
	bot.Debug = false
	log.Info("authorized on telegram", zap.String("bot", bot.Self.UserName))

	return &App{
		cfg:    cfg,
		log:    log,
		bot:    bot,
		client: telegram.NewClient(bot, log),
		gate:   httpapi.NewGate(),
	}
}

func (a *App) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
	a.log.Info("lifecycle", zap.Stringer("phase", p))
}

// Phase returns the current lifecycle phase.
func (a *App) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// build wires every component. Only the store and the scheduler
// coordinator are fatal; a missing holiday file leaves the calendar
// without a fallback.
func (a *App) build(ctx context.Context) error {
	loc, err := domain.LoadTZ(a.cfg.BusinessTZ)
	if err != nil {
		return err
	}
	a.loc = loc

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath, loc)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	var fallback calendar.HolidayLookup
	if list, err := calendar.LoadFile(a.cfg.HolidaysFile, loc); err != nil {
		a.log.Warn("holiday file not loaded, running without fallback",
			zap.String("path", a.cfg.HolidaysFile), zap.Error(err))
	} else {
		fallback = list
		a.log.Info("holiday file loaded", zap.Int("count", list.Len()))
	}
	cal := calendar.New(repo, fallback, loc, a.log)

	slots, err := domain.NewSlotTable(a.cfg.UTCOffsetHours)
	if err != nil {
		return err
	}
	a.slots = slots
	warnOffsetDrift(a.log, loc, a.cfg.UTCOffsetHours, time.Now())

	mode, err := scheduler.ParseMode(a.cfg.CronMode)
	if err != nil {
		return err
	}
	a.coord = scheduler.NewCoordinator(mode, slots, a.cfg.CronSecret, a.cfg.DedupWindow, a.log)
	if err := a.coord.Initialize(); err != nil {
		return err
	}

	disp := dispatch.New(a.client, a.log, a.cfg.DispatchConcurrency)
	a.runner = scheduler.NewRunner(a.coord, cal, repo, disp, scheduler.RunnerConfig{
		BroadcastChatID: a.cfg.BroadcastChatID,
		SuperAdminID:    a.cfg.AdminChatID,
		Location:        loc,
	}, a.log)

	var hookCtl telegram.WebhookControl
	if a.cfg.RunMode == config.RunModeWebhook {
		a.hooks = webhook.NewManager(a.client, a.log)
		hookCtl = a.hooks
	}
	a.router = telegram.NewRouter(telegram.Deps{
		Repo:           repo,
		Messenger:      a.client,
		Calendar:       cal,
		Scheduler:      a.coord,
		Slots:          slots,
		Webhook:        hookCtl,
		SuperAdminID:   a.cfg.AdminChatID,
		HolidaysFile:   a.cfg.HolidaysFile,
		WebhookURL:     a.cfg.WebhookURL(),
		WebhookOptions: a.webhookOptions(),
	}, a.log)

	gin.SetMode(gin.ReleaseMode)
	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      httpapi.New(a.httpDeps(mode), a.log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return nil
}

func (a *App) webhookOptions() webhook.Options {
	return webhook.Options{
		SecretToken:    a.cfg.WebhookSecret,
		MaxConnections: a.cfg.WebhookMaxConnections,
	}
}

// httpDeps registers exactly one trigger source: the HTTP route exists
// only in external mode.
func (a *App) httpDeps(mode scheduler.Mode) httpapi.Deps {
	deps := httpapi.Deps{
		Coordinator: a.coord,
		Slots:       a.slots,
		Gate:        a.gate,
		Store:       a.repo,
		Location:    a.loc,
	}
	if mode == scheduler.ModeExternal {
		deps.Runner = a.runner
	}
	if a.hooks != nil {
		deps.Updates = a.router
		deps.WebhookPath = a.cfg.WebhookPath
		deps.Secret = a.cfg.WebhookSecret
		deps.Webhook = a.hooks
	}
	return deps
}

func (a *App) Run(ctx context.Context) error {
	a.setPhase(PhaseStarting)
	a.log.Info("starting time-reminder",
		zap.String("run_mode", a.cfg.RunMode),
		zap.String("cron_mode", a.cfg.CronMode),
		zap.String("http", a.cfg.HTTPAddr),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.build(ctx); err != nil {
		a.close()
		return err
	}

	// nothing below may touch the provider until the port is bound
	ln, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		a.log.Error("http listen failed", zap.String("addr", a.cfg.HTTPAddr), zap.Error(err))
		a.close()
		a.setPhase(PhaseStopped)
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}
	a.log.Info("http listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := a.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	var bg sync.WaitGroup
	if a.coord.Mode() == scheduler.ModeInternal {
		sched := scheduler.New(a.slots, a.runner, a.log)
		bg.Add(1)
		go func() {
			defer bg.Done()
			sched.Run(ctx)
		}()
	}

	var updCh tgbotapi.UpdatesChannel
	switch a.cfg.RunMode {
	case config.RunModeWebhook:
		a.gate.Open()
		res, err := a.hooks.Setup(ctx, a.cfg.WebhookURL(), a.webhookOptions())
		if err != nil {
			// the receiver stays up; /reset_webhook can retry
			a.log.Error("webhook setup failed", zap.String("state", string(res.State)), zap.Error(err))
		}
	case config.RunModePolling:
		if err := a.client.DeleteWebhook(ctx, false); err != nil {
			a.log.Warn("delete webhook before polling failed", zap.Error(err))
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 30
		updCh = a.bot.GetUpdatesChan(u)
		a.gate.Open()
	}

	a.setPhase(PhaseRunning)
	a.notifyStartup(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.setPhase(PhaseStopping)
			if updCh != nil {
				a.bot.StopReceivingUpdates()
			}

			shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()
			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			bg.Wait()
			a.close()
			a.setPhase(PhaseStopped)
			return nil

		case upd, ok := <-updCh:
			if !ok {
				updCh = nil
				continue
			}
			a.router.HandleUpdate(ctx, upd)
		}
	}
}

func (a *App) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("sqlite close failed", zap.Error(err))
		}
	}
}

// notifyStartup tells the super admin the bot is up. Failure is logged only.
func (a *App) notifyStartup(ctx context.Context) {
	if a.cfg.AdminChatID == "" {
		return
	}
	text := "🤖 Reminder bot started\n" +
		"Run mode: " + a.cfg.RunMode + "\n" +
		"Scheduler: " + a.cfg.CronMode + "\n" +
		"Business time: " + time.Now().In(a.loc).Format(time.DateTime)
	if a.hooks != nil {
		text += "\nWebhook: " + logger.MaskURL(a.cfg.WebhookURL()) + " (" + string(a.hooks.State()) + ")"
	}
	if err := a.client.SendMessage(ctx, a.cfg.AdminChatID, text); err != nil {
		a.log.Warn("startup notification failed", zap.Error(err))
	}
}

// warnOffsetDrift logs when the zone's current offset no longer matches
// the fixed slot offset, e.g. after a DST change.
func warnOffsetDrift(log *zap.Logger, loc *time.Location, offsetHours int, now time.Time) bool {
	_, secs := now.In(loc).Zone()
	if secs == offsetHours*3600 {
		return false
	}
	log.Warn("business timezone offset differs from UTC_OFFSET_HOURS, slots fire at the configured offset",
		zap.String("zone", loc.String()),
		zap.Int("zone_offset_seconds", secs),
		zap.Int("utc_offset_hours", offsetHours),
	)
	return true
}
