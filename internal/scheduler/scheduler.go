package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// SlotRunner executes one slot.
type SlotRunner interface {
	Fire(ctx context.Context, slot domain.Slot, source Source) (Result, error)
}

// Scheduler is the in-process trigger source: one timer loop per slot,
// each firing daily at the slot's derived UTC time.
type Scheduler struct {
	slots  []domain.Slot
	runner SlotRunner
	log    *zap.Logger
	now    func() time.Time

	wg sync.WaitGroup // in-flight callbacks
}

// New creates a Scheduler for every slot in the table.
func New(table *domain.SlotTable, runner SlotRunner, log *zap.Logger) *Scheduler {
	return &Scheduler{
		slots:  table.Slots(),
		runner: runner,
		log:    log,
		now:    time.Now,
	}
}

// Run starts the loops and blocks until ctx is canceled and in-flight
// callbacks have returned.
func (s *Scheduler) Run(ctx context.Context) {
	var loops sync.WaitGroup
	for _, slot := range s.slots {
		loops.Add(1)
		go func(slot domain.Slot) {
			defer loops.Done()
			s.loop(ctx, slot)
		}(slot)
		s.log.Info("slot scheduled",
			zap.String("slot", slot.Key()),
			zap.String("cron_utc", slot.Cron()),
		)
	}
	loops.Wait()
	s.wg.Wait()
	s.log.Info("scheduler stopping")
}

func (s *Scheduler) loop(ctx context.Context, slot domain.Slot) {
	for {
		now := s.now()
		next := domain.NextFire(now, slot)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.tick(ctx, slot)
			}()
		}
	}
}

// tick fires the slot without holding up the timer loop. A started
// dispatch is not cut short by shutdown; Run waits for it instead.
func (s *Scheduler) tick(ctx context.Context, slot domain.Slot) {
	res, err := s.runner.Fire(context.WithoutCancel(ctx), slot, SourceInternal)
	if err != nil {
		s.log.Error("scheduled slot failed", zap.String("slot", slot.Key()), zap.Error(err))
		return
	}
	s.log.Debug("scheduled slot done",
		zap.String("slot", slot.Key()),
		zap.String("outcome", string(res.Outcome)),
	)
}
