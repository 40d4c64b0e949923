package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/dispatch"
	"github.com/Arnutt-N/time-reminder/internal/domain"
)

//go:generate mockgen -source=runner.go -destination=../mocks/scheduler.go -package=mocks

// Calendar answers whether reminders should be skipped on a day.
type Calendar interface {
	IsNonBusinessDay(ctx context.Context, now time.Time) bool
}

// RecipientStore lists who should receive reminders.
type RecipientStore interface {
	ListSubscribers(ctx context.Context) ([]string, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
}

// Dispatcher delivers one message to a recipient list.
type Dispatcher interface {
	Dispatch(ctx context.Context, runID uuid.UUID, message string, recipients []string) dispatch.Report
}

// Outcome says what a fired slot ended up doing.
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeDuplicate      Outcome = "duplicate"
	OutcomeNonBusinessDay Outcome = "non_business_day"
)

// Result is the full record of one slot execution.
type Result struct {
	RunID      uuid.UUID
	Slot       domain.Slot
	Source     Source
	Outcome    Outcome
	Resolution domain.Resolution
	Report     dispatch.Report
}

// Runner executes a slot: dedup, calendar, recipients, dispatch.
type Runner struct {
	coord      *Coordinator
	calendar   Calendar
	store      RecipientStore
	dispatcher Dispatcher
	broadcast  string
	superAdmin string
	loc        *time.Location
	log        *zap.Logger
	now        func() time.Time
}

// RunnerConfig carries the static recipients and business timezone.
type RunnerConfig struct {
	BroadcastChatID string
	SuperAdminID    string
	Location        *time.Location
}

// NewRunner wires a Runner.
func NewRunner(coord *Coordinator, cal Calendar, store RecipientStore, d Dispatcher, cfg RunnerConfig, log *zap.Logger) *Runner {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		coord:      coord,
		calendar:   cal,
		store:      store,
		dispatcher: d,
		broadcast:  cfg.BroadcastChatID,
		superAdmin: cfg.SuperAdminID,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// Fire runs slot once. Only ErrNotReady is returned as an error; every
// other failure degrades inside the run and shows up in the Result.
func (r *Runner) Fire(ctx context.Context, slot domain.Slot, source Source) (Result, error) {
	res := Result{RunID: uuid.New(), Slot: slot, Source: source}
	log := r.log.With(
		zap.String("run_id", res.RunID.String()),
		zap.String("slot", slot.Key()),
		zap.String("source", string(source)),
	)

	if st := r.coord.State(); st != StateReady {
		log.Error("slot fired before scheduler ready", zap.Stringer("state", st))
		return res, ErrNotReady
	}
	if !r.coord.Begin(slot, source) {
		res.Outcome = OutcomeDuplicate
		return res, nil
	}

	now := r.now().In(r.loc)
	if r.calendar.IsNonBusinessDay(ctx, now) {
		log.Info("non-business day, reminder skipped", zap.String("date", domain.DateKey(now)))
		res.Outcome = OutcomeNonBusinessDay
		return res, nil
	}

	res.Resolution = r.resolve(ctx, log)
	if d := res.Resolution.Duplicates; res.Resolution.DuplicatesRemoved > 0 {
		log.Info("recipient duplicates removed",
			zap.Int("removed", res.Resolution.DuplicatesRemoved),
			zap.Strings("admin_in_subscribers", d.AdminInSubscribers),
			zap.Bool("broadcast_overlap", d.BroadcastOverlap),
		)
	}

	msg := domain.ReminderMessage(slot.Type, now)
	res.Report = r.dispatcher.Dispatch(ctx, res.RunID, msg, res.Resolution.IDs())
	res.Outcome = OutcomeSent

	log.Info("slot executed",
		zap.Int("recipients", len(res.Resolution.Recipients)),
		zap.Int("sent", len(res.Report.Sent)),
		zap.Int("failed", len(res.Report.Failed)),
	)
	return res, nil
}

// resolve collects recipients. Store failures drop that group and keep going.
func (r *Runner) resolve(ctx context.Context, log *zap.Logger) domain.Resolution {
	subscribers, err := r.store.ListSubscribers(ctx)
	if err != nil {
		log.Error("list subscribers failed, continuing without them", zap.Error(err))
		subscribers = nil
	}

	var admins []string
	if r.superAdmin != "" {
		admins = append(admins, r.superAdmin)
	}
	users, err := r.store.ListAdmins(ctx)
	if err != nil {
		log.Error("list admins failed, continuing with super admin only", zap.Error(err))
	}
	for _, u := range users {
		admins = append(admins, u.ChatID)
	}

	return domain.ResolveRecipients(subscribers, admins, r.broadcast)
}
