// File: internal/domain/session.go
package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxSessionsPerUser bounds every profile's history.
	MaxSessionsPerUser = 5
	// TitleMaxLen is the rune budget for a title derived from the first user message.
	TitleMaxLen = 30

	titleEllipsis = "..."
)

// ChatSession represents a single conversation thread owned by one profile.
type ChatSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     []Message `json:"messages"`
	LastModified int64     `json:"lastModified"` // epoch millis
}

// NewChatSession opens a session with the welcome message for user.
func NewChatSession(id string, user UserProfile, now time.Time) ChatSession {
	return ChatSession{
		ID:           id,
		Title:        DefaultTitle(now),
		Messages:     []Message{NewWelcomeMessage(user, now)},
		LastModified: now.UnixMilli(),
	}
}

// DefaultTitle is the placeholder shown until the first user message arrives.
func DefaultTitle(now time.Time) string {
	return "Conversa de " + now.Format("02/01 15:04")
}

// LastModifiedTime converts LastModified back to a time value.
func (s ChatSession) LastModifiedTime() time.Time {
	return time.UnixMilli(s.LastModified)
}

// Clone returns a deep copy so that callers never share message slices.
func (s ChatSession) Clone() ChatSession {
	msgs := make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		msgs[i] = m.clone()
	}
	s.Messages = msgs
	return s
}

// TruncateTitle trims text and cuts it to maxLen runes, appending an
// ellipsis when something was removed.
func TruncateTitle(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	var b strings.Builder
	count := 0
	for _, r := range text {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String() + titleEllipsis
}

// SortSessions orders sessions by LastModified, most recent first. Ties keep
// their relative order.
func SortSessions(sessions []ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastModified > sessions[j].LastModified
	})
}

// CapSessions sorts sessions and keeps at most limit of them, returning the
// retained list and the evicted tail.
func CapSessions(sessions []ChatSession, limit int) (kept, evicted []ChatSession) {
	SortSessions(sessions)
	if limit < 0 || len(sessions) <= limit {
		return sessions, nil
	}
	return sessions[:limit], sessions[limit:]
}

// SessionMap is the whole persisted state: every profile's session list.
type SessionMap map[UserProfile][]ChatSession

// NewSessionMap returns a map with an empty list for each profile.
func NewSessionMap() SessionMap {
	m := make(SessionMap, 2)
	for _, p := range AllProfiles() {
		m[p] = []ChatSession{}
	}
	return m
}

// Clone deep-copies the map and every session in it.
func (m SessionMap) Clone() SessionMap {
	out := NewSessionMap()
	for user, sessions := range m {
		list := make([]ChatSession, len(sessions))
		for i, s := range sessions {
			list[i] = s.Clone()
		}
		out[user] = list
	}
	return out
}
