// File: internal/services/session/state.go
package session

import "github.com/iyunix/go-counselor/internal/domain"

// State is the whole application state seen by every surface. Values
// returned from the Store are deep copies.
type State struct {
	CurrentUser      domain.UserProfile
	CurrentSessionID string
	Sessions         domain.SessionMap

	// Revision increases whenever Sessions changes. Selection-only changes
	// leave it alone, so persistence can skip them.
	Revision uint64
}

// NewState returns the initial state: default profile, nothing selected.
func NewState() State {
	return State{
		CurrentUser: domain.DefaultProfile,
		Sessions:    domain.NewSessionMap(),
	}
}

func (s State) Clone() State {
	s.Sessions = s.Sessions.Clone()
	return s
}

// ActiveSession returns the selected session of the current user.
func (s State) ActiveSession() (domain.ChatSession, bool) {
	if s.CurrentSessionID == "" {
		return domain.ChatSession{}, false
	}
	return s.Session(s.CurrentUser, s.CurrentSessionID)
}

// Session looks a session up by owner and id.
func (s State) Session(user domain.UserProfile, id string) (domain.ChatSession, bool) {
	if i := s.indexOf(user, id); i >= 0 {
		return s.Sessions[user][i], true
	}
	return domain.ChatSession{}, false
}

func (s State) indexOf(user domain.UserProfile, id string) int {
	for i, sess := range s.Sessions[user] {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

// HasValidSelection reports whether the selection points into the current
// user's list.
func (s State) HasValidSelection() bool {
	return s.CurrentSessionID != "" && s.indexOf(s.CurrentUser, s.CurrentSessionID) >= 0
}
