package scheduler

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// Mode selects the single trigger source for the process lifetime.
type Mode string

const (
	ModeExternal Mode = "external"
	ModeInternal Mode = "internal"
	ModeDisabled Mode = "disabled"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeExternal, ModeInternal, ModeDisabled:
		return m, nil
	}
	return "", fmt.Errorf("invalid scheduler mode %q", s)
}

// State is the coordinator lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Source names what triggered a slot.
type Source string

const (
	SourceExternal Source = "external"
	SourceInternal Source = "internal"
)

// DefaultDedupWindow is how long an execution record suppresses repeats.
const DefaultDedupWindow = 5 * time.Minute

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNotReady          = errors.New("scheduler not ready")
	ErrInitializing      = errors.New("scheduler is initializing")
)

// Coordinator owns the trigger mode, the external credential check and
// the execution record used to suppress double firing of a slot.
type Coordinator struct {
	mode   Mode
	slots  *domain.SlotTable
	secret string
	window time.Duration
	log    *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	state      State
	initErr    error
	executions map[string]time.Time // slot key -> last execution

	ready     chan struct{}
	readyOnce sync.Once
}

// NewCoordinator creates a coordinator in the Uninitialized state.
func NewCoordinator(mode Mode, slots *domain.SlotTable, secret string, window time.Duration, log *zap.Logger) *Coordinator {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Coordinator{
		mode:       mode,
		slots:      slots,
		secret:     secret,
		window:     window,
		log:        log,
		now:        time.Now,
		executions: make(map[string]time.Time),
		ready:      make(chan struct{}),
	}
}

// Initialize checks the mode's prerequisites and the slot table.
// It is a no-op once Ready; a Failed coordinator may be initialized again.
func (c *Coordinator) Initialize() error {
	c.mu.Lock()
	switch c.state {
	case StateReady:
		c.mu.Unlock()
		return nil
	case StateInitializing:
		c.mu.Unlock()
		return ErrInitializing
	}
	c.state = StateInitializing
	c.mu.Unlock()

	err := c.validate()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.initErr = err
		c.log.Error("scheduler init failed", zap.String("mode", string(c.mode)), zap.Error(err))
		return err
	}
	c.state = StateReady
	c.initErr = nil
	c.readyOnce.Do(func() { close(c.ready) })
	c.log.Info("scheduler ready",
		zap.String("mode", string(c.mode)),
		zap.Duration("dedup_window", c.window),
	)
	return nil
}

func (c *Coordinator) validate() error {
	switch c.mode {
	case ModeExternal:
		if c.secret == "" {
			return errors.New("external mode requires a trigger secret")
		}
	case ModeInternal, ModeDisabled:
	default:
		return fmt.Errorf("invalid scheduler mode %q", c.mode)
	}
	if c.slots == nil {
		return errors.New("no slot table")
	}
	return c.slots.Check()
}

// Ready is closed once the coordinator reaches StateReady.
func (c *Coordinator) Ready() <-chan struct{} { return c.ready }

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Mode returns the configured trigger mode.
func (c *Coordinator) Mode() Mode { return c.mode }

// Slots returns the compiled slot table.
func (c *Coordinator) Slots() *domain.SlotTable { return c.slots }

// Authorize checks an Authorization header against the shared secret.
func (c *Coordinator) Authorize(header string) error {
	header = strings.TrimSpace(header)
	if header == "" || header == "Bearer" {
		return ErrMissingCredential
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ErrInvalidCredential
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingCredential
	}
	if c.secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(c.secret)) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// Begin records an execution of slot and reports whether it may proceed.
// A second call for the same slot within the dedup window returns false.
func (c *Coordinator) Begin(slot domain.Slot, source Source) bool {
	now := c.now()
	key := slot.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, at := range c.executions {
		if now.Sub(at) >= c.window {
			delete(c.executions, k)
		}
	}
	if last, ok := c.executions[key]; ok {
		c.log.Warn("duplicate slot execution skipped",
			zap.String("slot", key),
			zap.String("source", string(source)),
			zap.Duration("since_last", now.Sub(last)),
		)
		return false
	}
	c.executions[key] = now
	return true
}

// Status is a snapshot for health and admin reporting.
type Status struct {
	Mode             Mode                         `json:"mode"`
	State            string                       `json:"state"`
	Error            string                       `json:"error,omitempty"`
	DedupWindow      string                       `json:"dedup_window"`
	AllowedTimes     []string                     `json:"allowed_times"`
	TimesByType      map[domain.SlotType][]string `json:"times_by_type"`
	Crons            map[string]string            `json:"crons"`
	RecentExecutions map[string]time.Time         `json:"recent_executions"`
}

// Status returns the current coordinator snapshot.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		Mode:             c.mode,
		State:            c.state.String(),
		DedupWindow:      c.window.String(),
		RecentExecutions: make(map[string]time.Time, len(c.executions)),
	}
	if c.initErr != nil {
		st.Error = c.initErr.Error()
	}
	for k, v := range c.executions {
		st.RecentExecutions[k] = v
	}
	if c.slots != nil {
		st.AllowedTimes = c.slots.AllowedTimes()
		st.TimesByType = c.slots.TimesByType()
		st.Crons = make(map[string]string)
		for _, s := range c.slots.Slots() {
			st.Crons[s.Key()] = s.Cron()
		}
	}
	return st
}
