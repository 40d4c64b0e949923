package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/logger"
)

//go:generate mockgen -source=manager.go -destination=../mocks/webhook.go -package=mocks

// MaxURLLength is the longest webhook URL accepted.
const MaxURLLength = 512

// DefaultMaxConnections is used when Options leave it unset.
const DefaultMaxConnections = 40

// DefaultAllowedUpdates are the update kinds the bot consumes.
var DefaultAllowedUpdates = []string{"message", "callback_query", "chat_member", "my_chat_member"}

var (
	ErrEmptyURL    = errors.New("webhook url is empty")
	ErrInvalidURL  = errors.New("webhook url is invalid")
	ErrInsecureURL = errors.New("webhook url must use https")
	ErrURLTooLong  = errors.New("webhook url is too long")
	ErrBusy        = errors.New("webhook operation in progress")
)

// State is the webhook lifecycle state.
type State string

const (
	StateNotSet     State = "not_set"
	StatePending    State = "pending"
	StateConfigured State = "configured"
	StateMismatch   State = "mismatch"
	StateError      State = "error"
)

// Descriptor is the webhook target as requested from the provider.
type Descriptor struct {
	URL                string
	SecretToken        string
	AllowedUpdates     []string
	MaxConnections     int
	DropPendingUpdates bool
}

// Info is the provider's view of the current webhook.
type Info struct {
	URL                string
	PendingUpdateCount int
	MaxConnections     int
	AllowedUpdates     []string
	LastErrorDate      time.Time
	LastErrorMessage   string
}

// Provider is the messaging transport's webhook API.
type Provider interface {
	SetWebhook(ctx context.Context, d Descriptor) error
	DeleteWebhook(ctx context.Context, dropPending bool) error
	GetWebhookInfo(ctx context.Context) (Info, error)
}

// Options tune Setup; zero values take the defaults.
type Options struct {
	SecretToken    string
	AllowedUpdates []string
	MaxConnections int
	KeepPending    bool // replay queued updates instead of dropping them
}

// Result reports the outcome of Setup or Reset.
type Result struct {
	State     State
	MaskedURL string
	Info      *Info
}

// ValidateURL checks that raw is a well-formed https URL within MaxURLLength.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrEmptyURL
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("%w: %d > %d", ErrURLTooLong, len(raw), MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	if u.Scheme != "https" {
		return ErrInsecureURL
	}
	return nil
}

// Manager owns the inbound webhook configuration. The descriptor only
// changes through Setup, Delete and Reset.
type Manager struct {
	provider Provider
	log      *zap.Logger
	now      func() time.Time

	op sync.Mutex // serializes provider mutations

	mu        sync.RWMutex
	state     State
	desc      *Descriptor
	info      *Info
	lastCheck time.Time
	lastErr   error
}

// NewManager creates a Manager in StateNotSet.
func NewManager(p Provider, log *zap.Logger) *Manager {
	return &Manager{provider: p, log: log, now: time.Now, state: StateNotSet}
}

// Setup replaces any existing webhook with rawURL and verifies it.
func (m *Manager) Setup(ctx context.Context, rawURL string, opts Options) (Result, error) {
	if !m.op.TryLock() {
		return Result{State: m.State()}, ErrBusy
	}
	defer m.op.Unlock()
	return m.setup(ctx, rawURL, opts)
}

func (m *Manager) setup(ctx context.Context, rawURL string, opts Options) (Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	masked := logger.MaskURL(rawURL)
	m.setState(StatePending, nil)

	if err := ValidateURL(rawURL); err != nil {
		return m.fail(masked, "validate", err)
	}

	d := Descriptor{
		URL:                rawURL,
		SecretToken:        opts.SecretToken,
		AllowedUpdates:     opts.AllowedUpdates,
		MaxConnections:     opts.MaxConnections,
		DropPendingUpdates: !opts.KeepPending,
	}
	if len(d.AllowedUpdates) == 0 {
		d.AllowedUpdates = DefaultAllowedUpdates
	}
	if d.MaxConnections <= 0 {
		d.MaxConnections = DefaultMaxConnections
	}

	if err := m.provider.DeleteWebhook(ctx, d.DropPendingUpdates); err != nil {
		return m.fail(masked, "delete existing", err)
	}
	if err := m.provider.SetWebhook(ctx, d); err != nil {
		return m.fail(masked, "set", err)
	}
	info, err := m.provider.GetWebhookInfo(ctx)
	if err != nil {
		return m.fail(masked, "verify", err)
	}

	m.mu.Lock()
	m.desc = &d
	m.info = &info
	m.lastCheck = m.now()
	if info.URL == d.URL {
		m.state = StateConfigured
		m.lastErr = nil
	} else {
		m.state = StateMismatch
		m.lastErr = fmt.Errorf("provider reports %s", logger.MaskURL(info.URL))
	}
	state := m.state
	m.mu.Unlock()

	if state == StateMismatch {
		m.log.Error("webhook url mismatch after setup",
			zap.String("requested", masked),
			logger.URL("reported", info.URL),
		)
	} else {
		m.log.Info("webhook configured",
			zap.String("url", masked),
			zap.Strings("allowed_updates", d.AllowedUpdates),
			zap.Int("max_connections", d.MaxConnections),
			zap.Bool("drop_pending", d.DropPendingUpdates),
			zap.Bool("secret", d.SecretToken != ""),
		)
	}
	return Result{State: state, MaskedURL: masked, Info: &info}, nil
}

func (m *Manager) fail(masked, step string, err error) (Result, error) {
	err = fmt.Errorf("webhook %s: %w", step, err)
	m.setState(StateError, err)
	m.log.Error("webhook setup failed", zap.String("url", masked), zap.Error(err))
	return Result{State: StateError, MaskedURL: masked}, err
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
	m.lastErr = err
}

// Delete removes the webhook at the provider.
func (m *Manager) Delete(ctx context.Context, dropPending bool) error {
	if !m.op.TryLock() {
		return ErrBusy
	}
	defer m.op.Unlock()
	return m.delete(ctx, dropPending)
}

func (m *Manager) delete(ctx context.Context, dropPending bool) error {
	if err := m.provider.DeleteWebhook(ctx, dropPending); err != nil {
		err = fmt.Errorf("webhook delete: %w", err)
		m.setState(StateError, err)
		m.log.Error("webhook delete failed", zap.Error(err))
		return err
	}
	m.mu.Lock()
	m.state = StateNotSet
	m.desc = nil
	m.lastErr = nil
	m.mu.Unlock()
	m.log.Info("webhook deleted", zap.Bool("drop_pending", dropPending))
	return nil
}

// Reset deletes the current webhook and sets up rawURL.
func (m *Manager) Reset(ctx context.Context, rawURL string, opts Options) (Result, error) {
	if !m.op.TryLock() {
		return Result{State: m.State()}, ErrBusy
	}
	defer m.op.Unlock()
	if err := m.delete(ctx, !opts.KeepPending); err != nil {
		return Result{State: StateError, MaskedURL: logger.MaskURL(rawURL)}, err
	}
	return m.setup(ctx, rawURL, opts)
}

// CheckStatus refreshes the cached provider info. The lifecycle state is
// left untouched.
func (m *Manager) CheckStatus(ctx context.Context) (Info, error) {
	info, err := m.provider.GetWebhookInfo(ctx)
	if err != nil {
		m.log.Warn("webhook status check failed", zap.Error(err))
		return Info{}, fmt.Errorf("webhook info: %w", err)
	}
	m.mu.Lock()
	m.info = &info
	m.lastCheck = m.now()
	m.mu.Unlock()
	return info, nil
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Status is a masked snapshot safe to log or return over HTTP.
type Status struct {
	State              State     `json:"state"`
	URL                string    `json:"url,omitempty"`
	ReportedURL        string    `json:"reported_url,omitempty"`
	HasSecret          bool      `json:"has_secret"`
	AllowedUpdates     []string  `json:"allowed_updates,omitempty"`
	MaxConnections     int       `json:"max_connections,omitempty"`
	PendingUpdateCount int       `json:"pending_update_count"`
	LastErrorMessage   string    `json:"last_error_message,omitempty"`
	LastCheck          time.Time `json:"last_check,omitempty"`
	Error              string    `json:"error,omitempty"`
}

// Status returns the current snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{State: m.state, LastCheck: m.lastCheck}
	if m.desc != nil {
		st.URL = logger.MaskURL(m.desc.URL)
		st.HasSecret = m.desc.SecretToken != ""
		st.AllowedUpdates = m.desc.AllowedUpdates
		st.MaxConnections = m.desc.MaxConnections
	}
	if m.info != nil {
		st.ReportedURL = logger.MaskURL(m.info.URL)
		st.PendingUpdateCount = m.info.PendingUpdateCount
		st.LastErrorMessage = m.info.LastErrorMessage
	}
	if m.lastErr != nil {
		st.Error = m.lastErr.Error()
	}
	return st
}

// Report refreshes provider info and renders a human-readable summary.
func (m *Manager) Report(ctx context.Context) string {
	_, checkErr := m.CheckStatus(ctx)
	st := m.Status()

	var b strings.Builder
	fmt.Fprintf(&b, "Webhook state: %s\n", st.State)
	if st.URL != "" {
		fmt.Fprintf(&b, "Configured URL: %s\n", st.URL)
	}
	if st.ReportedURL != "" {
		fmt.Fprintf(&b, "Provider URL: %s\n", st.ReportedURL)
	}
	fmt.Fprintf(&b, "Secret token: %t\n", st.HasSecret)
	fmt.Fprintf(&b, "Pending updates: %d\n", st.PendingUpdateCount)
	if st.LastErrorMessage != "" {
		fmt.Fprintf(&b, "Last provider error: %s\n", st.LastErrorMessage)
	}
	if !st.LastCheck.IsZero() {
		fmt.Fprintf(&b, "Last check: %s\n", st.LastCheck.UTC().Format(time.RFC3339))
	}
	if checkErr != nil {
		fmt.Fprintf(&b, "Status check failed: %v\n", checkErr)
	}
	if st.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", st.Error)
	}
	return b.String()
}
