// File: internal/services/session/reducer.go
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iyunix/go-counselor/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownEvent    = errors.New("unknown session event")
)

// Env supplies the impure inputs of Reduce.
type Env struct {
	Now         func() time.Time
	NewID       func() string
	MaxSessions int
}

// DefaultEnv uses the wall clock, UUIDv7 ids and the per-user session cap.
func DefaultEnv() Env {
	return Env{Now: time.Now, NewID: NewID, MaxSessions: domain.MaxSessionsPerUser}
}

func (e Env) limit() int {
	if e.MaxSessions <= 0 {
		return domain.MaxSessionsPerUser
	}
	return e.MaxSessions
}

// NewID returns a time-ordered unique id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Reduce applies ev to state and returns the next state. The input is never
// modified. On error the returned state equals the input.
func Reduce(state State, ev Event, env Env) (State, error) {
	next := state.Clone()

	switch e := ev.(type) {
	case SwitchUser:
		if !e.User.Valid() {
			return state, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, e.User)
		}
		next.CurrentUser = e.User

	case CreateSession:
		if !e.User.Valid() {
			return state, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, e.User)
		}
		id := e.ID
		if id == "" {
			id = env.NewID()
		}
		next.create(e.User, id, env)

	case SelectSession:
		if e.User == next.CurrentUser && next.indexOf(e.User, e.SessionID) >= 0 {
			next.CurrentSessionID = e.SessionID
		}
		return next, nil

	case DeleteSession:
		i := next.indexOf(e.User, e.SessionID)
		if i < 0 {
			return next, nil
		}
		list := next.Sessions[e.User]
		next.Sessions[e.User] = append(list[:i:i], list[i+1:]...)
		next.Revision++
		if e.User == next.CurrentUser && e.SessionID == next.CurrentSessionID {
			next.CurrentSessionID = ""
		}

	case AppendMessage:
		i := next.indexOf(e.User, e.SessionID)
		if i < 0 {
			return state, fmt.Errorf("%w: %s/%s", ErrSessionNotFound, e.User, e.SessionID)
		}
		sess := &next.Sessions[e.User][i]
		sess.Messages = append(sess.Messages, e.Message)
		if len(sess.Messages) == 2 {
			sess.Title = domain.TruncateTitle(e.Message.Text, domain.TitleMaxLen)
		}
		sess.LastModified = env.Now().UnixMilli()
		domain.SortSessions(next.Sessions[e.User])
		next.Revision++
		return next, nil

	case Hydrate:
		loaded := domain.NewSessionMap()
		for user, list := range e.Sessions.Clone() {
			if !user.Valid() {
				continue
			}
			kept, _ := domain.CapSessions(list, env.limit())
			loaded[user] = kept
		}
		next.Sessions = loaded

	default:
		return state, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}

	next.reconcile(env)
	return next, nil
}

// create inserts a fresh session for user at the front of its list and
// enforces the cap. The session is selected when user is current. It is
// stamped after the newest existing session so the cap never evicts it,
// even when stored sessions carry timestamps ahead of the clock.
func (s *State) create(user domain.UserProfile, id string, env Env) {
	sess := domain.NewChatSession(id, user, env.Now())
	for _, existing := range s.Sessions[user] {
		if existing.LastModified >= sess.LastModified {
			sess.LastModified = existing.LastModified + 1
		}
	}
	list := append([]domain.ChatSession{sess}, s.Sessions[user]...)
	kept, _ := domain.CapSessions(list, env.limit())
	s.Sessions[user] = kept
	s.Revision++
	if user == s.CurrentUser {
		s.CurrentSessionID = id
	}
}

// reconcile restores a valid selection: keep it, else pick the most recent
// session, else create one.
func (s *State) reconcile(env Env) {
	if s.HasValidSelection() {
		return
	}
	if list := s.Sessions[s.CurrentUser]; len(list) > 0 {
		s.CurrentSessionID = list[0].ID
		return
	}
	s.create(s.CurrentUser, env.NewID(), env)
}
