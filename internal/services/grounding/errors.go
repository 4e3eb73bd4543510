// File: internal/services/grounding/errors.go
package grounding

import "fmt"

// GroundingError is returned by retrievers and drivers.
type GroundingError struct {
	Type      string
	Operation string
	Message   string
	Err       error
}

func (e *GroundingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grounding %s error in %s: %s: %v", e.Type, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("grounding %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *GroundingError) Unwrap() error {
	return e.Err
}

func NewConfigError(message string) *GroundingError {
	return &GroundingError{Type: "config", Operation: "config", Message: message}
}

func NewConnectionError(operation, message string, err error) *GroundingError {
	return &GroundingError{Type: "connection", Operation: operation, Message: message, Err: err}
}

func NewQueryError(operation, message string, err error) *GroundingError {
	return &GroundingError{Type: "query", Operation: operation, Message: message, Err: err}
}
