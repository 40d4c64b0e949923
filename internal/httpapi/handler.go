package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/domain"
	"github.com/Arnutt-N/time-reminder/internal/scheduler"
	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

// SecretHeader carries the webhook secret token on provider requests.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Authorizer checks trigger credentials.
type Authorizer interface {
	Authorize(header string) error
	Status() scheduler.Status
}

// SlotRunner executes one slot.
type SlotRunner interface {
	Fire(ctx context.Context, slot domain.Slot, source scheduler.Source) (scheduler.Result, error)
}

// UpdateHandler consumes provider updates.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

// Pinger checks the store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebhookInspector exposes the webhook manager's state.
type WebhookInspector interface {
	CheckStatus(ctx context.Context) (webhook.Info, error)
	Status() webhook.Status
}

// Handler serves the HTTP surface.
type Handler struct {
	coord     Authorizer
	slots     *domain.SlotTable
	runner    SlotRunner
	updates   UpdateHandler
	gate      *Gate
	secret    string
	db        Pinger
	hook      WebhookInspector
	loc       *time.Location
	validator *validator.Validate
	log       *zap.Logger
	started   time.Time
	now       func() time.Time
}

// Trigger handles POST /api/cron. Authorization is checked before the body
// is read.
func (h *Handler) Trigger(c *gin.Context) {
	if err := h.coord.Authorize(c.GetHeader("Authorization")); err != nil {
		h.log.Warn("trigger rejected", zap.Error(err), zap.String("client_ip", c.ClientIP()))
		if errors.Is(err, scheduler.ErrMissingCredential) {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		fail(c, http.StatusForbidden, "forbidden")
		return
	}

	var req TriggerRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode trigger body", zap.Error(err))
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.log.Warn("failed to validate trigger body", zap.Error(err))
		fail(c, http.StatusBadRequest, "missing or invalid fields: type, time")
		return
	}
	slot, err := h.slots.Lookup(req.Type, req.Time)
	if err != nil {
		h.log.Warn("trigger for unknown slot", zap.String("type", req.Type), zap.String("time", req.Time), zap.Error(err))
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	h.log.Info("external trigger received", zap.String("slot", slot.Key()))
	// the run survives a client disconnect once accepted
	res, err := h.runner.Fire(context.WithoutCancel(c.Request.Context()), slot, scheduler.SourceExternal)
	if err != nil {
		h.log.Error("external trigger failed", zap.String("slot", slot.Key()), zap.Error(err))
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, TriggerResponse{
		Status:     string(res.Outcome),
		Type:       string(slot.Type),
		Time:       slot.Clock(),
		RunID:      res.RunID.String(),
		Recipients: len(res.Resolution.Recipients),
		Sent:       len(res.Report.Sent),
		Failed:     res.Report.FailedIDs(),
		ExecutedAt: h.now().UTC(),
	})
}

// Webhook handles provider updates. Once the secret matches, the reply is
// always 200 so the provider never redelivers an accepted update.
func (h *Handler) Webhook(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.log.Warn("webhook secret mismatch", zap.Bool("header_present", got != ""), zap.String("client_ip", c.ClientIP()))
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
	}
	if !h.gate.IsOpen() {
		h.log.Warn("update received before ready, asking provider to retry")
		fail(c, http.StatusServiceUnavailable, "not ready")
		return
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(c.Request.Body).Decode(&upd); err != nil {
		h.log.Warn("failed to decode update", zap.Error(err))
		c.Status(http.StatusOK)
		return
	}
	h.log.Debug("update received", zap.Int("update_id", upd.UpdateID))
	h.updates.HandleUpdate(context.WithoutCancel(c.Request.Context()), upd)
	c.Status(http.StatusOK)
}

func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Health reports store, scheduler and webhook state. It answers 503 until
// the store is reachable and the scheduler is ready.
func (h *Handler) Health(c *gin.Context) {
	now := h.now()
	resp := HealthResponse{
		Status: "ok",
		Uptime: now.Sub(h.started).Truncate(time.Second).String(),
		Checks: map[string]string{},
		ServerTime: map[string]string{
			"utc":      now.UTC().Format(time.RFC3339),
			"business": now.In(h.loc).Format(time.RFC3339),
		},
	}

	resp.Checks["database"] = "connected"
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.log.Warn("health: store ping failed", zap.Error(err))
		resp.Checks["database"] = "failed"
		resp.Status = "degraded"
	}

	st := h.coord.Status()
	resp.Checks["scheduler"] = string(st.Mode) + "/" + st.State
	if st.State != scheduler.StateReady.String() {
		resp.Status = "degraded"
	}

	resp.Checks["webhook"] = "unused"
	if h.hook != nil {
		resp.Checks["webhook"] = string(h.hook.Status().State)
	}
	resp.Checks["receiver"] = "waiting"
	if h.gate.IsOpen() {
		resp.Checks["receiver"] = "open"
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// WebhookInfo refreshes and returns the masked webhook status.
func (h *Handler) WebhookInfo(c *gin.Context) {
	if h.hook == nil {
		fail(c, http.StatusNotFound, "webhook is not used in polling mode")
		return
	}
	if _, err := h.hook.CheckStatus(c.Request.Context()); err != nil {
		h.log.Warn("webhook info check failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, h.hook.Status())
		return
	}
	c.JSON(http.StatusOK, h.hook.Status())
}
