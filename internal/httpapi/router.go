package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// TriggerPath is the external trigger endpoint.
const TriggerPath = "/api/cron"

// Deps wires the HTTP surface. Runner is set only in external trigger
// mode; Updates and WebhookPath only in webhook run mode.
type Deps struct {
	Coordinator Authorizer
	Slots       *domain.SlotTable
	Runner      SlotRunner
	Updates     UpdateHandler
	Gate        *Gate
	WebhookPath string
	Secret      string
	Store       Pinger
	Webhook     WebhookInspector
	Location    *time.Location
}

// NewHandler builds the handler set from deps.
func NewHandler(deps Deps, v *validator.Validate, log *zap.Logger) *Handler {
	gate := deps.Gate
	if gate == nil {
		gate = NewGate()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		coord:     deps.Coordinator,
		slots:     deps.Slots,
		runner:    deps.Runner,
		updates:   deps.Updates,
		gate:      gate,
		secret:    deps.Secret,
		db:        deps.Store,
		hook:      deps.Webhook,
		loc:       loc,
		validator: v,
		log:       log,
		started:   time.Now(),
		now:       time.Now,
	}
}

// New builds the gin engine.
func New(deps Deps, log *zap.Logger) *gin.Engine {
	h := NewHandler(deps, validator.New(), log)

	aliases := map[string]string{}
	if deps.WebhookPath != "" {
		aliases[deps.WebhookPath] = "webhook"
	}

	e := gin.New()
	e.Use(recovery(log))
	e.Use(requestLogger(log, aliases))

	e.GET("/ping", h.Ping)
	e.GET("/healthz", h.Health)
	e.GET("/webhook-info", h.WebhookInfo)

	if deps.Runner != nil {
		e.POST(TriggerPath, h.Trigger)
	}
	if deps.Updates != nil && deps.WebhookPath != "" {
		e.POST(deps.WebhookPath, h.Webhook)
	}
	return e
}
