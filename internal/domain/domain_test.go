package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"short text kept", "Hello", 30, "Hello"},
		{"exact length kept", strings.Repeat("a", 30), 30, strings.Repeat("a", 30)},
		{"long text cut", "Como podemos organizar nossas finanças à luz da Bíblia?", 30, "Como podemos organizar nossas ..."},
		{"multibyte runes", "ãããããã", 3, "ããã..."},
		{"surrounding whitespace", "   oi  ", 30, "oi"},
		{"empty text", "", 30, ""},
		{"zero budget", "Hello", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateTitle(tt.text, tt.maxLen))
		})
	}
}

func TestDedupSources(t *testing.T) {
	in := []Source{
		{Title: "Efésios 5", URI: "https://a"},
		{Title: "Provérbios 31", URI: "https://b"},
		{Title: "Efésios 5 (dup)", URI: "https://a"},
		{Title: "no uri"},
		{Title: "Malaquias 2", URI: "https://c"},
		{Title: "B again", URI: "https://b"},
	}

	got := DedupSources(in)

	require.Len(t, got, 3)
	assert.Equal(t, []Source{
		{Title: "Efésios 5", URI: "https://a"},
		{Title: "Provérbios 31", URI: "https://b"},
		{Title: "Malaquias 2", URI: "https://c"},
	}, got)
	assert.Nil(t, DedupSources(nil))
	assert.Nil(t, DedupSources([]Source{{Title: "x"}}))
}

func TestProfiles(t *testing.T) {
	assert.Equal(t, ProfileFernanda, ProfileMarcelo.Partner())
	assert.Equal(t, ProfileMarcelo, ProfileFernanda.Partner())
	assert.False(t, UserProfile("Joao").Valid())

	p, err := ParseUserProfile(" fernanda ")
	require.NoError(t, err)
	assert.Equal(t, ProfileFernanda, p)

	_, err = ParseUserProfile("joao")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestNewChatSession(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)

	s := NewChatSession("s1", ProfileFernanda, now)

	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "Conversa de 02/01 15:04", s.Title)
	assert.Equal(t, now.UnixMilli(), s.LastModified)
	require.Len(t, s.Messages, 1)
	welcome := s.Messages[0]
	assert.True(t, welcome.IsWelcome())
	assert.Contains(t, welcome.Text, "Fernanda")
	assert.Contains(t, welcome.Text, "o Marcelo")
}

func TestCapSessions(t *testing.T) {
	var list []ChatSession
	for i := 1; i <= 7; i++ {
		list = append(list, ChatSession{ID: string(rune('a' + i - 1)), LastModified: int64(i)})
	}

	kept, evicted := CapSessions(list, MaxSessionsPerUser)

	require.Len(t, kept, 5)
	assert.Equal(t, "g", kept[0].ID)
	assert.Equal(t, "c", kept[4].ID)
	require.Len(t, evicted, 2)
	assert.Equal(t, "b", evicted[0].ID)
	assert.Equal(t, "a", evicted[1].ID)
}

func TestSessionMapCloneIsDeep(t *testing.T) {
	m := NewSessionMap()
	m[ProfileMarcelo] = []ChatSession{{
		ID:       "s1",
		Messages: []Message{{ID: "m1", Sources: []Source{{Title: "t", URI: "u"}}}},
	}}

	c := m.Clone()
	c[ProfileMarcelo][0].Messages[0].Sources[0].Title = "changed"
	c[ProfileMarcelo][0].Messages = append(c[ProfileMarcelo][0].Messages, Message{ID: "m2"})

	assert.Equal(t, "t", m[ProfileMarcelo][0].Messages[0].Sources[0].Title)
	assert.Len(t, m[ProfileMarcelo][0].Messages, 1)
	assert.NotNil(t, c[ProfileFernanda])
}
