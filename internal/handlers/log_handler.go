// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"
	"strings"
)

// FrontendLogPayload defines the structure for logs coming from the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`   // e.g., "info", "error", "warn"
	Message string `json:"message"` // The main log message
	Context any    `json:"context,omitempty"`
}

type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent handles incoming log requests from the frontend.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	kv := []interface{}{"source", "client", "context", payload.Context}
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error(payload.Message, kv...)
	case "warn", "warning":
		h.logger.Warn(payload.Message, kv...)
	case "debug":
		h.logger.Debug(payload.Message, kv...)
	default:
		h.logger.Info(payload.Message, kv...)
	}

	w.WriteHeader(http.StatusNoContent)
}
