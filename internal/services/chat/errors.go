// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage      = errors.New("message text is empty")
	ErrNoSessionSelected = errors.New("no session selected")
	ErrRequestInFlight   = errors.New("a reply is already being generated")
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeStore      ErrorType = "STORE"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	SessionID string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg, Cause: cause}
}

func NewStoreError(operation, sessionID string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStore, Operation: operation, Message: "session store rejected the update", SessionID: sessionID, Cause: cause}
}
