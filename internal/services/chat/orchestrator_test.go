package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/ai"
	"github.com/iyunix/go-counselor/internal/services/session"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type fakeCounselor struct {
	mu       sync.Mutex
	reply    *ai.Reply
	err      error
	requests []ai.Request

	started chan struct{}
	release chan struct{}
}

func (f *fakeCounselor) Reply(ctx context.Context, req ai.Request) (*ai.Reply, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	return f.reply, f.err
}

func (f *fakeCounselor) lastRequest() ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore() *session.Store {
	n := 0
	var mu sync.Mutex
	env := session.Env{NewID: func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("s-%d", n)
	}}
	store := session.NewStore(nil, nopLogger{}, session.WithEnv(env))
	store.Hydrate(domain.NewSessionMap())
	return store
}

func newTestOrchestrator(t *testing.T, store *session.Store, counselor ai.Counselor) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(DefaultConfig(), store, counselor, nopLogger{})
	require.NoError(t, err)
	return o
}

func TestSubmitFirstMessageRoundTrip(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{reply: &ai.Reply{
		Text: "Olá! Como posso ajudar?",
		Sources: []domain.Source{
			{Title: "A", URI: "kb://a"},
			{Title: "A again", URI: "kb://a"},
			{Title: "B", URI: "kb://b"},
		},
	}}
	o := newTestOrchestrator(t, store, counselor)

	require.NoError(t, o.Submit(context.Background(), "Hello"))

	sess, ok := store.ActiveSession()
	require.True(t, ok)
	require.Len(t, sess.Messages, 3)
	assert.Equal(t, "Hello", sess.Title)

	assert.Equal(t, domain.RoleUser, sess.Messages[1].Role)
	assert.Equal(t, "Hello", sess.Messages[1].Text)

	reply := sess.Messages[2]
	assert.Equal(t, domain.RoleModel, reply.Role)
	assert.False(t, reply.IsError)
	assert.Equal(t, []domain.Source{{Title: "A", URI: "kb://a"}, {Title: "B", URI: "kb://b"}}, reply.Sources)
	assert.False(t, o.Loading())

	req := counselor.lastRequest()
	assert.Equal(t, "Hello", req.Text)
	assert.Equal(t, domain.ProfileMarcelo, req.User)
	require.Len(t, req.History, 1)
	assert.True(t, req.History[0].IsWelcome())
}

func TestSubmitTransientFailure(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{err: &ai.AIError{Type: ai.ErrTypeNetwork, Operation: "completion", Message: "network error"}}
	o := newTestOrchestrator(t, store, counselor)

	require.NoError(t, o.Submit(context.Background(), "Oi"))

	sess, _ := store.ActiveSession()
	require.Len(t, sess.Messages, 3)
	last := sess.Messages[2]
	assert.Equal(t, domain.RoleModel, last.Role)
	assert.Equal(t, ApologyText, last.Text)
	assert.True(t, last.IsError)
	assert.Empty(t, last.Sources)
	assert.False(t, o.Loading())
}

func TestSubmitConfigFailure(t *testing.T) {
	store := newTestStore()
	o := newTestOrchestrator(t, store, &fakeCounselor{err: ai.NewConfigError("API key is not configured")})

	require.NoError(t, o.Submit(context.Background(), "Oi"))

	sess, _ := store.ActiveSession()
	assert.Equal(t, MissingKeyText, sess.Messages[2].Text)
	assert.True(t, sess.Messages[2].IsError)
}

func TestSubmitEmptyReplyText(t *testing.T) {
	store := newTestStore()
	o := newTestOrchestrator(t, store, &fakeCounselor{reply: &ai.Reply{Text: "  "}})

	require.NoError(t, o.Submit(context.Background(), "Oi"))

	sess, _ := store.ActiveSession()
	assert.Equal(t, EmptyReplyText, sess.Messages[2].Text)
	assert.False(t, sess.Messages[2].IsError)
}

func TestSubmitRejections(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{reply: &ai.Reply{Text: "ok"}}
	o := newTestOrchestrator(t, store, counselor)

	assert.ErrorIs(t, o.Submit(context.Background(), ""), ErrEmptyMessage)
	assert.ErrorIs(t, o.Submit(context.Background(), " \n\t "), ErrEmptyMessage)

	sess, _ := store.ActiveSession()
	assert.Len(t, sess.Messages, 1)

	empty := session.NewStore(nil, nopLogger{})
	o = newTestOrchestrator(t, empty, counselor)
	assert.ErrorIs(t, o.Submit(context.Background(), "Oi"), ErrNoSessionSelected)
}

func TestSubmitHistoryWindow(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{reply: &ai.Reply{Text: "ok"}}
	o := newTestOrchestrator(t, store, counselor)

	for i := 0; i < 7; i++ {
		require.NoError(t, o.Submit(context.Background(), fmt.Sprintf("pergunta %d", i)))
	}
	sess, _ := store.ActiveSession()
	require.Len(t, sess.Messages, 15)

	require.NoError(t, o.Submit(context.Background(), "última"))

	req := counselor.lastRequest()
	require.Len(t, req.History, 10)
	assert.Equal(t, sess.Messages[5:], req.History)
	assert.Equal(t, "última", req.Text)
	for _, m := range req.History {
		assert.NotEqual(t, "última", m.Text)
	}
}

func TestSubmitInFlightAndDeletedTarget(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{
		reply:   &ai.Reply{Text: "tarde demais"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(t, store, counselor)
	target, _ := store.ActiveSession()

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background(), "Oi") }()

	select {
	case <-counselor.started:
	case <-time.After(2 * time.Second):
		t.Fatal("counselor was not called")
	}

	assert.True(t, o.Loading())
	assert.False(t, o.ShowSuggestions(target))
	assert.ErrorIs(t, o.Submit(context.Background(), "de novo"), ErrRequestInFlight)

	store.DeleteSession(domain.ProfileMarcelo, target.ID)
	close(counselor.release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not finish")
	}

	assert.False(t, o.Loading())
	st := store.Snapshot()
	_, found := st.Session(domain.ProfileMarcelo, target.ID)
	assert.False(t, found)
	for _, u := range domain.AllProfiles() {
		for _, s := range st.Sessions[u] {
			for _, m := range s.Messages {
				assert.NotEqual(t, "tarde demais", m.Text)
			}
		}
	}
}

func TestSubmitReplyFollowsCapturedTarget(t *testing.T) {
	store := newTestStore()
	counselor := &fakeCounselor{
		reply:   &ai.Reply{Text: "resposta"},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := newTestOrchestrator(t, store, counselor)
	target, _ := store.ActiveSession()

	done := make(chan error, 1)
	go func() { done <- o.Submit(context.Background(), "Oi") }()
	<-counselor.started

	require.NoError(t, store.SwitchUser(domain.ProfileFernanda))
	close(counselor.release)
	require.NoError(t, <-done)

	st := store.Snapshot()
	assert.Equal(t, domain.ProfileFernanda, st.CurrentUser)
	sess, found := st.Session(domain.ProfileMarcelo, target.ID)
	require.True(t, found)
	require.Len(t, sess.Messages, 3)
	assert.Equal(t, "resposta", sess.Messages[2].Text)

	fernanda, _ := st.ActiveSession()
	assert.Len(t, fernanda.Messages, 1)
}

func TestSubmitSurvivesCanceledContext(t *testing.T) {
	store := newTestStore()
	o := newTestOrchestrator(t, store, ctxCounselor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, o.Submit(ctx, "Oi"))

	sess, _ := store.ActiveSession()
	assert.Equal(t, "contexto vivo", sess.Messages[2].Text)
}

type ctxCounselor struct{}

func (ctxCounselor) Reply(ctx context.Context, _ ai.Request) (*ai.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ai.Reply{Text: "contexto vivo"}, nil
}

func TestShowSuggestions(t *testing.T) {
	store := newTestStore()
	o := newTestOrchestrator(t, store, &fakeCounselor{reply: &ai.Reply{Text: "ok"}})

	sess, _ := store.ActiveSession()
	assert.True(t, o.ShowSuggestions(sess))
	assert.Len(t, o.Suggestions(), 4)

	require.NoError(t, o.Submit(context.Background(), "Oi"))
	sess, _ = store.ActiveSession()
	assert.True(t, o.ShowSuggestions(sess), "3 messages")

	require.NoError(t, o.Submit(context.Background(), "Oi de novo"))
	sess, _ = store.ActiveSession()
	assert.False(t, o.ShowSuggestions(sess))
}

func TestRecentHistory(t *testing.T) {
	msgs := make([]domain.Message, 12)
	for i := range msgs {
		msgs[i] = domain.NewUserMessage(fmt.Sprint(i), "x", time.Time{})
	}

	assert.Len(t, RecentHistory(msgs, 10), 10)
	assert.Equal(t, "2", RecentHistory(msgs, 10)[0].ID)
	assert.Len(t, RecentHistory(msgs[:3], 10), 3)
	assert.Nil(t, RecentHistory(msgs, 0))

	got := RecentHistory(msgs, 2)
	got[0].Text = "changed"
	assert.Equal(t, "x", msgs[10].Text)
}

func TestNewOrchestratorValidatesConfig(t *testing.T) {
	_, err := NewOrchestrator(&Config{}, newTestStore(), &fakeCounselor{}, nopLogger{})
	var chatErr *ChatError
	require.ErrorAs(t, err, &chatErr)
	assert.Equal(t, ErrTypeConfig, chatErr.Type)
}
