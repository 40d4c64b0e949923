package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=dispatcher.go -destination=../mocks/sender.go -package=mocks

// Sender is the outbound send primitive of the messaging transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

// Failure is one recipient that could not be reached.
type Failure struct {
	ID  string
	Err error
}

// Report is the outcome of one dispatch.
type Report struct {
	RunID  uuid.UUID
	Sent   []string
	Failed []Failure
}

// Total returns the number of recipients attempted.
func (r Report) Total() int { return len(r.Sent) + len(r.Failed) }

// FailedIDs returns identifiers of failed recipients in input order.
func (r Report) FailedIDs() []string {
	out := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		out = append(out, f.ID)
	}
	return out
}

// Dispatcher sends one message to many recipients. A failure for one
// recipient is logged and recorded and never stops the others. There are
// no retries; the next slot is the retry.
type Dispatcher struct {
	sender      Sender
	log         *zap.Logger
	concurrency int
}

// New creates a Dispatcher; concurrency below 1 means sequential.
func New(sender Sender, log *zap.Logger, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{sender: sender, log: log, concurrency: concurrency}
}

// Dispatch delivers message to every recipient. recipients is not modified.
func (d *Dispatcher) Dispatch(ctx context.Context, runID uuid.UUID, message string, recipients []string) Report {
	errs := make([]error, len(recipients))

	if d.concurrency == 1 || len(recipients) < 2 {
		for i, id := range recipients {
			errs[i] = d.send(ctx, runID, id, message)
		}
	} else {
		sem := make(chan struct{}, d.concurrency)
		var wg sync.WaitGroup
		for i, id := range recipients {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, id string) {
				defer wg.Done()
				defer func() { <-sem }()
				errs[i] = d.send(ctx, runID, id, message)
			}(i, id)
		}
		wg.Wait()
	}

	rep := Report{RunID: runID}
	for i, id := range recipients {
		if errs[i] != nil {
			rep.Failed = append(rep.Failed, Failure{ID: id, Err: errs[i]})
			continue
		}
		rep.Sent = append(rep.Sent, id)
	}

	d.log.Info("dispatch finished",
		zap.String("run_id", runID.String()),
		zap.Int("total", rep.Total()),
		zap.Int("sent", len(rep.Sent)),
		zap.Int("failed", len(rep.Failed)),
	)
	return rep
}

// send runs a single delivery. A panic in the transport is turned into a
// failure for this recipient only.
func (d *Dispatcher) send(ctx context.Context, runID uuid.UUID, id, message string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p}
		}
		if err != nil {
			d.log.Error("send failed",
				zap.String("run_id", runID.String()),
				zap.String("chat_id", id),
				zap.Error(err),
			)
		}
	}()
	return d.sender.SendMessage(ctx, id, message)
}
