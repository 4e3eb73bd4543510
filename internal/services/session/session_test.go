package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-counselor/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// testEnv ticks one second per call and numbers ids sequentially.
func testEnv() Env {
	var mu sync.Mutex
	clock := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	n := 0
	return Env{
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		},
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("id-%02d", n)
		},
		MaxSessions: domain.MaxSessionsPerUser,
	}
}

type recordingPersister struct {
	mu    sync.Mutex
	saves []domain.SessionMap
}

func (p *recordingPersister) Save(_ context.Context, m domain.SessionMap) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, m.Clone())
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func (p *recordingPersister) last() domain.SessionMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves[len(p.saves)-1]
}

func newTestStore() (*Store, *recordingPersister) {
	p := &recordingPersister{}
	return NewStore(p, nopLogger{}, WithEnv(testEnv())), p
}

func TestHydrateEmptyCreatesWelcomeSession(t *testing.T) {
	store, p := newTestStore()

	st := store.Hydrate(domain.NewSessionMap())

	list := st.Sessions[domain.ProfileMarcelo]
	require.Len(t, list, 1)
	assert.Equal(t, list[0].ID, st.CurrentSessionID)
	require.Len(t, list[0].Messages, 1)

	welcome := list[0].Messages[0]
	assert.True(t, welcome.IsWelcome())
	assert.Equal(t, domain.RoleModel, welcome.Role)
	assert.Contains(t, welcome.Text, "Marcelo")
	assert.Empty(t, st.Sessions[domain.ProfileFernanda])
	assert.Equal(t, 1, p.count())
}

func TestHydrateKeepsMostRecentSelected(t *testing.T) {
	env := testEnv()
	m := domain.NewSessionMap()
	older := domain.NewChatSession("old", domain.ProfileMarcelo, env.Now())
	newer := domain.NewChatSession("new", domain.ProfileMarcelo, env.Now())
	m[domain.ProfileMarcelo] = []domain.ChatSession{older, newer}

	store, p := newTestStore()
	st := store.Hydrate(m)

	assert.Equal(t, "new", st.CurrentSessionID)
	assert.Equal(t, "new", st.Sessions[domain.ProfileMarcelo][0].ID)
	assert.Zero(t, p.count(), "nothing changed, nothing to save")
}

func TestCreateSessionCapEvictsOldest(t *testing.T) {
	store, _ := newTestStore()
	store.Hydrate(domain.NewSessionMap())

	var created []string
	for i := 0; i < 8; i++ {
		sess, err := store.CreateSession(domain.ProfileMarcelo)
		require.NoError(t, err)
		created = append(created, sess.ID)

		st := store.Snapshot()
		list := st.Sessions[domain.ProfileMarcelo]
		assert.LessOrEqual(t, len(list), domain.MaxSessionsPerUser)
		assert.Equal(t, sess.ID, st.CurrentSessionID)
		assert.Equal(t, sess.ID, list[0].ID)
	}

	list := store.Sessions(domain.ProfileMarcelo)
	require.Len(t, list, domain.MaxSessionsPerUser)
	for i, sess := range list {
		assert.Equal(t, created[len(created)-1-i], sess.ID)
	}
}

func TestSixthSessionEvictsSmallestLastModified(t *testing.T) {
	env := testEnv()
	state := NewState()
	for i := 0; i < 5; i++ {
		var err error
		state, err = Reduce(state, CreateSession{User: domain.ProfileFernanda}, env)
		require.NoError(t, err)
	}

	// touch the oldest so another one becomes the eviction candidate
	oldest := state.Sessions[domain.ProfileFernanda][4].ID
	victim := state.Sessions[domain.ProfileFernanda][3].ID
	state, err := Reduce(state, AppendMessage{
		User:      domain.ProfileFernanda,
		SessionID: oldest,
		Message:   domain.NewUserMessage("m1", "Oi", env.Now()),
	}, env)
	require.NoError(t, err)

	state, err = Reduce(state, CreateSession{User: domain.ProfileFernanda}, env)
	require.NoError(t, err)

	list := state.Sessions[domain.ProfileFernanda]
	require.Len(t, list, 5)
	_, found := state.Session(domain.ProfileFernanda, victim)
	assert.False(t, found)
	_, found = state.Session(domain.ProfileFernanda, oldest)
	assert.True(t, found)
}

func TestCreateSessionForOtherUserDoesNotSelect(t *testing.T) {
	store, _ := newTestStore()
	st := store.Hydrate(domain.NewSessionMap())
	selected := st.CurrentSessionID

	sess, err := store.CreateSession(domain.ProfileFernanda)
	require.NoError(t, err)

	st = store.Snapshot()
	assert.Equal(t, selected, st.CurrentSessionID)
	assert.Equal(t, sess.ID, st.Sessions[domain.ProfileFernanda][0].ID)
}

func TestSelectSession(t *testing.T) {
	store, p := newTestStore()
	store.Hydrate(domain.NewSessionMap())
	first, _ := store.ActiveSession()
	second, err := store.CreateSession(domain.ProfileMarcelo)
	require.NoError(t, err)
	saves := p.count()

	store.SelectSession(domain.ProfileMarcelo, first.ID)
	active, ok := store.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, first.ID, active.ID)

	store.SelectSession(domain.ProfileMarcelo, "missing")
	active, _ = store.ActiveSession()
	assert.Equal(t, first.ID, active.ID)

	store.SelectSession(domain.ProfileFernanda, second.ID)
	active, _ = store.ActiveSession()
	assert.Equal(t, first.ID, active.ID)

	assert.Equal(t, saves, p.count(), "selection is not persisted")
}

func TestDeleteSelectedSessionReconciles(t *testing.T) {
	store, _ := newTestStore()
	store.Hydrate(domain.NewSessionMap())
	a, _ := store.ActiveSession()
	b, err := store.CreateSession(domain.ProfileMarcelo)
	require.NoError(t, err)

	store.DeleteSession(domain.ProfileMarcelo, b.ID)
	active, ok := store.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	store.DeleteSession(domain.ProfileMarcelo, a.ID)
	active, ok = store.ActiveSession()
	require.True(t, ok)
	assert.NotEqual(t, a.ID, active.ID)
	assert.Len(t, store.Sessions(domain.ProfileMarcelo), 1)
	assert.True(t, active.Messages[0].IsWelcome())
}

func TestDeleteUnknownSessionIsNoop(t *testing.T) {
	store, p := newTestStore()
	before := store.Hydrate(domain.NewSessionMap())
	saves := p.count()

	store.DeleteSession(domain.ProfileMarcelo, "nope")

	assert.Equal(t, before, store.Snapshot())
	assert.Equal(t, saves, p.count())
}

func TestAppendMessageRewritesTitleOnce(t *testing.T) {
	env := testEnv()
	state, err := Reduce(NewState(), Hydrate{}, env)
	require.NoError(t, err)
	id := state.CurrentSessionID
	user := state.CurrentUser

	sess, _ := state.Session(user, id)
	placeholder := sess.Title
	assert.Contains(t, placeholder, "Conversa de ")

	long := "Como posso perdoar meu cônjuge depois de tanto tempo?"
	state, err = Reduce(state, AppendMessage{User: user, SessionID: id, Message: domain.NewUserMessage("u1", long, env.Now())}, env)
	require.NoError(t, err)
	sess, _ = state.Session(user, id)
	assert.Equal(t, domain.TruncateTitle(long, domain.TitleMaxLen), sess.Title)
	assert.Equal(t, "Como posso perdoar meu cônjuge...", sess.Title)

	titled := sess.Title
	for i := 0; i < 4; i++ {
		state, err = Reduce(state, AppendMessage{User: user, SessionID: id, Message: domain.NewUserMessage(fmt.Sprintf("u%d", i+2), "outro assunto", env.Now())}, env)
		require.NoError(t, err)
		sess, _ = state.Session(user, id)
		assert.Equal(t, titled, sess.Title)
	}
	assert.Len(t, sess.Messages, 6)
}

func TestAppendMessageResortsAndTouches(t *testing.T) {
	store, p := newTestStore()
	store.Hydrate(domain.NewSessionMap())
	first, _ := store.ActiveSession()
	_, err := store.CreateSession(domain.ProfileMarcelo)
	require.NoError(t, err)

	err = store.AppendMessage(domain.ProfileMarcelo, first.ID, domain.NewUserMessage("u1", "Oi", time.Now()))
	require.NoError(t, err)

	list := store.Sessions(domain.ProfileMarcelo)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Greater(t, list[0].LastModified, first.LastModified)

	saved := p.last()
	assert.Len(t, saved[domain.ProfileMarcelo][0].Messages, 2)
}

func TestAppendMessageUnknownSession(t *testing.T) {
	store, _ := newTestStore()
	store.Hydrate(domain.NewSessionMap())

	err := store.AppendMessage(domain.ProfileMarcelo, "gone", domain.NewUserMessage("u1", "Oi", time.Now()))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSwitchUser(t *testing.T) {
	store, _ := newTestStore()
	store.Hydrate(domain.NewSessionMap())
	marcelo, _ := store.ActiveSession()

	require.NoError(t, store.SwitchUser(domain.ProfileFernanda))
	st := store.Snapshot()
	assert.Equal(t, domain.ProfileFernanda, st.CurrentUser)
	require.Len(t, st.Sessions[domain.ProfileFernanda], 1)
	assert.Equal(t, st.Sessions[domain.ProfileFernanda][0].ID, st.CurrentSessionID)
	assert.Contains(t, st.Sessions[domain.ProfileFernanda][0].Messages[0].Text, "Fernanda")

	require.NoError(t, store.SwitchUser(domain.ProfileMarcelo))
	active, _ := store.ActiveSession()
	assert.Equal(t, marcelo.ID, active.ID)

	assert.ErrorIs(t, store.SwitchUser("Joao"), domain.ErrUnknownProfile)
}

func TestSelectionRecoveryRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	users := domain.AllProfiles()

	for run := 0; run < 50; run++ {
		env := testEnv()
		state, err := Reduce(NewState(), Hydrate{}, env)
		require.NoError(t, err)

		for step := 0; step < 40; step++ {
			user := users[rng.Intn(len(users))]
			var ev Event
			switch rng.Intn(4) {
			case 0:
				ev = SwitchUser{User: user}
			case 1:
				ev = CreateSession{User: user}
			case 2:
				list := state.Sessions[user]
				id := "missing"
				if len(list) > 0 {
					id = list[rng.Intn(len(list))].ID
				}
				ev = DeleteSession{User: user, SessionID: id}
			case 3:
				if sess, ok := state.ActiveSession(); ok {
					ev = SelectSession{User: state.CurrentUser, SessionID: sess.ID}
				} else {
					ev = SwitchUser{User: user}
				}
			}

			state, err = Reduce(state, ev, env)
			require.NoError(t, err)

			require.NotEmpty(t, state.Sessions[state.CurrentUser], "run %d step %d", run, step)
			require.True(t, state.HasValidSelection(), "run %d step %d: %T", run, step, ev)
			for _, u := range users {
				require.LessOrEqual(t, len(state.Sessions[u]), domain.MaxSessionsPerUser)
			}
		}
	}
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	env := testEnv()
	state, err := Reduce(NewState(), Hydrate{}, env)
	require.NoError(t, err)
	before := state.Clone()

	_, err = Reduce(state, AppendMessage{
		User:      state.CurrentUser,
		SessionID: state.CurrentSessionID,
		Message:   domain.NewUserMessage("u1", "Oi", env.Now()),
	}, env)
	require.NoError(t, err)

	assert.Equal(t, before, state)
}

func TestSubscribeReceivesStates(t *testing.T) {
	store, _ := newTestStore()
	var got []State
	store.Subscribe(func(st State) { got = append(got, st) })

	store.Hydrate(domain.NewSessionMap())
	_, err := store.CreateSession(domain.ProfileMarcelo)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Len(t, got[1].Sessions[domain.ProfileMarcelo], 2)
}

func TestCreateSessionSurvivesSessionsAheadOfClock(t *testing.T) {
	env := testEnv()
	future := env.Now().Add(time.Hour)
	m := domain.NewSessionMap()
	for i := 0; i < domain.MaxSessionsPerUser; i++ {
		m[domain.ProfileMarcelo] = append(m[domain.ProfileMarcelo],
			domain.NewChatSession(fmt.Sprintf("old-%d", i), domain.ProfileMarcelo, future.Add(time.Duration(i)*time.Minute)))
	}

	store, _ := newTestStore()
	store.Hydrate(m)

	sess, err := store.CreateSession(domain.ProfileMarcelo)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	st := store.Snapshot()
	list := st.Sessions[domain.ProfileMarcelo]
	require.Len(t, list, domain.MaxSessionsPerUser)
	assert.Equal(t, sess.ID, st.CurrentSessionID)
	assert.Equal(t, sess.ID, list[0].ID)
	assert.Greater(t, list[0].LastModified, list[1].LastModified)
	_, found := st.Session(domain.ProfileMarcelo, "old-0")
	assert.False(t, found, "the oldest stored session is the one evicted")
}

func TestObserversAddedDuringDispatchDoNotRace(t *testing.T) {
	store, _ := newTestStore()
	var mu sync.Mutex
	calls := 0
	store.Subscribe(func(State) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.CreateSession(domain.ProfileMarcelo)
		}()
		go func() {
			defer wg.Done()
			store.Subscribe(func(State) {})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, calls)
}
