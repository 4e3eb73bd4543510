// File: internal/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/chat"
	"github.com/iyunix/go-counselor/internal/services/session"
)

// Logger defines the logging interface used by handlers
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type ChatHandler struct {
	Store        *session.Store
	Orchestrator *chat.Orchestrator
	logger       Logger
}

func NewChatHandler(store *session.Store, orchestrator *chat.Orchestrator, logger Logger) *ChatHandler {
	return &ChatHandler{
		Store:        store,
		Orchestrator: orchestrator,
		logger:       logger,
	}
}

// GetState returns the current user, their sessions and the active conversation.
func (h *ChatHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// SwitchUser handles POST /api/user {"user": "Fernanda"}.
func (h *ChatHandler) SwitchUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User string `json:"user"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := domain.ParseUserProfile(req.User)
	if err != nil {
		writeError(w, "Unknown user", http.StatusBadRequest)
		return
	}
	if err := h.Store.SwitchUser(user); err != nil {
		writeError(w, "Could not switch user", http.StatusInternalServerError)
		return
	}
	h.writeState(w, http.StatusOK)
}

// CreateSession opens a new session for the current user.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := h.Store.Snapshot().CurrentUser
	if _, err := h.Store.CreateSession(user); err != nil {
		h.logger.Error("create session failed", "user", user, "error", err)
		writeError(w, "Could not create session", http.StatusInternalServerError)
		return
	}
	h.writeState(w, http.StatusCreated)
}

// SelectSession selects one of the current user's sessions. Unknown ids are ignored.
func (h *ChatHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.Store.SelectSession(h.Store.Snapshot().CurrentUser, id)
	h.writeState(w, http.StatusOK)
}

// DeleteSession removes a session of the current user.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.Store.DeleteSession(h.Store.Snapshot().CurrentUser, id)
	h.writeState(w, http.StatusOK)
}

// SendMessage runs one conversation turn and returns the resulting state.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Orchestrator.Submit(r.Context(), req.Text); err != nil {
		status, message := submitErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("submit failed", "error", err)
		}
		writeError(w, message, status)
		return
	}
	h.writeState(w, http.StatusOK)
}

func submitErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, "Message is empty"
	case errors.Is(err, chat.ErrNoSessionSelected):
		return http.StatusConflict, "No session selected"
	case errors.Is(err, chat.ErrRequestInFlight):
		return http.StatusConflict, "A reply is already being generated"
	default:
		return http.StatusInternalServerError, "Could not send message"
	}
}

func (h *ChatHandler) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, buildView(h.Store.Snapshot(), h.Orchestrator))
}

// maxBodyBytes bounds request bodies: a 2000-character message in UTF-8 plus
// JSON or form encoding overhead.
const maxBodyBytes = 16 << 10

// decodeJSON reads a size-limited JSON body into v. On failure it writes the
// error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	writeError(w, "Invalid request body", http.StatusBadRequest)
	return false
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}
