// File: internal/services/chat/orchestrator.go
package chat

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/ai"
	"github.com/iyunix/go-counselor/internal/services/session"
)

// Target is the session a submission belongs to, captured at submit time.
type Target struct {
	User      domain.UserProfile
	SessionID string
}

// Orchestrator runs one conversation turn at a time: it appends the user
// message, asks the counselor and appends the reply or a visible error.
type Orchestrator struct {
	config    *Config
	store     SessionStore
	counselor ai.Counselor
	now       func() time.Time
	newID     func() string
	inFlight  atomic.Bool
	logger    Logger
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

func NewOrchestrator(config *Config, store SessionStore, counselor ai.Counselor, logger Logger, opts ...Option) (*Orchestrator, error) {
	if err := config.Validate(); err != nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "config", Message: err.Error()}
	}
	o := &Orchestrator{
		config:    config,
		store:     store,
		counselor: counselor,
		now:       time.Now,
		newID:     session.NewID,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Loading reports whether a reply is being generated.
func (o *Orchestrator) Loading() bool {
	return o.inFlight.Load()
}

// Submit sends text to the selected session and blocks until the reply (or
// its error message) has been applied. Counselor failures are not returned:
// they become chat messages. The call outlives cancellation of ctx so that
// a started turn always completes.
func (o *Orchestrator) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	st := o.store.Snapshot()
	sess, ok := st.ActiveSession()
	if !ok {
		return ErrNoSessionSelected
	}

	if !o.inFlight.CompareAndSwap(false, true) {
		return ErrRequestInFlight
	}
	defer o.inFlight.Store(false)

	target := Target{User: st.CurrentUser, SessionID: sess.ID}
	history := RecentHistory(sess.Messages, o.config.HistoryWindow)

	userMsg := domain.NewUserMessage(o.newID(), text, o.now())
	if err := o.store.AppendMessage(target.User, target.SessionID, userMsg); err != nil {
		return NewStoreError("append_user_message", target.SessionID, err)
	}

	o.logger.Info("submitting message",
		"user", target.User,
		"session_id", target.SessionID,
		"history", len(history),
		"text_length", len(text))

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.ReplyTimeout)
	start := time.Now()
	reply, err := o.counselor.Reply(callCtx, ai.Request{History: history, Text: text, User: target.User})
	cancel()

	var msg domain.Message
	if err != nil {
		msg = o.failureMessage(target, err)
	} else {
		replyText := reply.Text
		if strings.TrimSpace(replyText) == "" {
			replyText = EmptyReplyText
		}
		msg = domain.NewModelMessage(o.newID(), replyText, reply.Sources, o.now())
		o.logger.Info("reply received",
			"user", target.User,
			"session_id", target.SessionID,
			"sources", len(msg.Sources),
			"duration_ms", time.Since(start).Milliseconds())
	}

	o.deliver(target, msg)
	return nil
}

func (o *Orchestrator) failureMessage(target Target, err error) domain.Message {
	text := ApologyText
	if ai.IsConfigError(err) {
		text = MissingKeyText
	}
	o.logger.Error("counselor reply failed",
		"user", target.User,
		"session_id", target.SessionID,
		"config_error", ai.IsConfigError(err),
		"error", err)
	return domain.NewErrorMessage(o.newID(), text, o.now())
}

// deliver appends msg to its target. A target deleted mid-flight drops msg.
func (o *Orchestrator) deliver(target Target, msg domain.Message) {
	err := o.store.AppendMessage(target.User, target.SessionID, msg)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrSessionNotFound):
		o.logger.Warn("discarding reply for a session that no longer exists",
			"user", target.User,
			"session_id", target.SessionID,
			"message_id", msg.ID)
	default:
		o.logger.Error("failed to append reply", "session_id", target.SessionID, "error", err)
	}
}

// ShowSuggestions reports whether the suggested questions should be offered
// for sess.
func (o *Orchestrator) ShowSuggestions(sess domain.ChatSession) bool {
	return len(sess.Messages) < o.config.SuggestionThreshold && !o.Loading()
}

func (o *Orchestrator) Suggestions() []string {
	return SuggestedQuestions()
}
