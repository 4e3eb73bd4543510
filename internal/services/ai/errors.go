// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeTimeout    ErrorType = "TIMEOUT"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// IsConfigError reports whether err means the counselor cannot be reached
// at all because it is not configured.
func IsConfigError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr) && aiErr.Type == ErrTypeConfig
}

// classify wraps a go-openai error with the matching ErrorType.
func classify(operation, model string, err error) *AIError {
	e := &AIError{Type: ErrTypeProvider, Operation: operation, Model: model, Message: "request failed", Cause: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Type, e.Message = ErrTypeTimeout, "request timed out"
	case errors.As(err, &apiErr):
		e.Code = apiErr.HTTPStatusCode
		e.Message = apiErr.Message
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			e.Type = ErrTypeRateLimit
		}
	case errors.As(err, &reqErr):
		e.Code = reqErr.HTTPStatusCode
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			e.Type = ErrTypeRateLimit
		}
	case errors.As(err, &netErr):
		e.Type, e.Message = ErrTypeNetwork, "network error"
	}
	return e
}
