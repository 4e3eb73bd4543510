// File: internal/services/session/events.go
package session

import "github.com/iyunix/go-counselor/internal/domain"

// Event is a state transition request handled by Reduce.
type Event interface {
	event()
}

// SwitchUser changes the current profile and reconciles the selection.
type SwitchUser struct {
	User domain.UserProfile
}

// CreateSession opens a session for User. ID is chosen by the caller so the
// created session can be found in the resulting state.
type CreateSession struct {
	User domain.UserProfile
	ID   string
}

type SelectSession struct {
	User      domain.UserProfile
	SessionID string
}

type DeleteSession struct {
	User      domain.UserProfile
	SessionID string
}

type AppendMessage struct {
	User      domain.UserProfile
	SessionID string
	Message   domain.Message
}

// Hydrate replaces every profile's sessions with stored data.
type Hydrate struct {
	Sessions domain.SessionMap
}

func (SwitchUser) event()    {}
func (CreateSession) event() {}
func (SelectSession) event() {}
func (DeleteSession) event() {}
func (AppendMessage) event() {}
func (Hydrate) event()       {}
