// File: internal/services/session/store.go
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Logger defines the logging interface used by the store
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Persister writes the full session map.
type Persister interface {
	Save(ctx context.Context, sessions domain.SessionMap) error
}

const defaultSaveTimeout = 5 * time.Second

// Store owns the authoritative State. Every mutation goes through Reduce
// and replaces the state as a whole.
type Store struct {
	mu        sync.Mutex
	state     State
	env       Env
	observers []func(State)

	// saveMu keeps writes in state order without holding mu during I/O.
	saveMu      sync.Mutex
	persister   Persister
	saveTimeout time.Duration

	logger Logger
}

type Option func(*Store)

func WithEnv(env Env) Option {
	return func(s *Store) {
		if env.Now != nil {
			s.env.Now = env.Now
		}
		if env.NewID != nil {
			s.env.NewID = env.NewID
		}
		if env.MaxSessions > 0 {
			s.env.MaxSessions = env.MaxSessions
		}
	}
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// NewStore creates an empty store. A nil persister disables saving.
func NewStore(persister Persister, logger Logger, opts ...Option) *Store {
	s := &Store{
		state:       NewState(),
		env:         DefaultEnv(),
		persister:   persister,
		saveTimeout: defaultSaveTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive every new state after it is applied.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Dispatch applies ev. The state is saved when its sessions changed.
func (s *Store) Dispatch(ev Event) (State, error) {
	s.mu.Lock()
	prev := s.state
	next, err := Reduce(prev, ev, s.env)
	if err != nil {
		s.mu.Unlock()
		return prev.Clone(), err
	}
	s.state = next
	observers := slices.Clone(s.observers)

	changed := next.Revision != prev.Revision
	if changed {
		s.saveMu.Lock()
	}
	s.mu.Unlock()

	if changed {
		s.save(next)
		s.saveMu.Unlock()
	}
	for _, fn := range observers {
		fn(next.Clone())
	}
	return next.Clone(), nil
}

func (s *Store) save(st State) {
	if s.persister == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.persister.Save(ctx, st.Sessions); err != nil {
		s.logger.Error("failed to persist sessions", "revision", st.Revision, "error", err)
		return
	}
	s.logger.Debug("sessions persisted", "revision", st.Revision)
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ActiveSession returns the current user's selected session.
func (s *Store) ActiveSession() (domain.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.state.ActiveSession()
	if !ok {
		return domain.ChatSession{}, false
	}
	return sess.Clone(), true
}

// Sessions returns user's sessions, most recent first.
func (s *Store) Sessions(user domain.UserProfile) []domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.state.Sessions[user]
	out := make([]domain.ChatSession, len(list))
	for i, sess := range list {
		out[i] = sess.Clone()
	}
	return out
}

// Hydrate installs stored sessions and reconciles the selection.
func (s *Store) Hydrate(sessions domain.SessionMap) State {
	st, _ := s.Dispatch(Hydrate{Sessions: sessions})
	return st
}

// SwitchUser makes user current and reconciles the selection.
func (s *Store) SwitchUser(user domain.UserProfile) error {
	_, err := s.Dispatch(SwitchUser{User: user})
	if err == nil {
		s.logger.Info("switched user", "user", user)
	}
	return err
}

// CreateSession opens and returns a new session for user.
func (s *Store) CreateSession(user domain.UserProfile) (domain.ChatSession, error) {
	id := s.env.NewID()
	st, err := s.Dispatch(CreateSession{User: user, ID: id})
	if err != nil {
		return domain.ChatSession{}, err
	}
	sess, ok := st.Session(user, id)
	if !ok {
		return domain.ChatSession{}, fmt.Errorf("%w: created session %s was not retained", ErrSessionNotFound, id)
	}
	s.logger.Info("session created", "user", user, "session_id", id, "sessions", len(st.Sessions[user]))
	return sess, nil
}

// SelectSession selects sessionID when it belongs to the current user.
func (s *Store) SelectSession(user domain.UserProfile, sessionID string) {
	_, _ = s.Dispatch(SelectSession{User: user, SessionID: sessionID})
}

// DeleteSession removes a session; deleting the selected one reconciles.
func (s *Store) DeleteSession(user domain.UserProfile, sessionID string) {
	st, _ := s.Dispatch(DeleteSession{User: user, SessionID: sessionID})
	s.logger.Info("session deleted", "user", user, "session_id", sessionID, "selected", st.CurrentSessionID)
}

// AppendMessage adds msg to the given session.
func (s *Store) AppendMessage(user domain.UserProfile, sessionID string, msg domain.Message) error {
	_, err := s.Dispatch(AppendMessage{User: user, SessionID: sessionID, Message: msg})
	return err
}
