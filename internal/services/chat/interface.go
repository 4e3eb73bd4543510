// File: internal/services/chat/interface.go
package chat

import (
	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/session"
)

// SessionStore is the part of the session store the orchestrator drives.
type SessionStore interface {
	Snapshot() session.State
	AppendMessage(user domain.UserProfile, sessionID string, msg domain.Message) error
}

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
