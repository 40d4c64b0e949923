package httpapi

import "time"

// TriggerRequest is the body of POST /api/cron.
type TriggerRequest struct {
	Type string `json:"type" validate:"required,oneof=morning afternoon evening"`
	Time string `json:"time" validate:"required,len=5"`
}

// TriggerResponse reports one accepted trigger.
type TriggerResponse struct {
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Time       string    `json:"time"`
	RunID      string    `json:"run_id"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     []string  `json:"failed,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	Checks     map[string]string `json:"checks"`
	ServerTime map[string]string `json:"server_time"`
}
