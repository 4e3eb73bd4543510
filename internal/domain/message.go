// File: internal/domain/message.go
package domain

import (
	"fmt"
	"time"
)

// Role is the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// WelcomeMessageID is reserved for the synthetic greeting that opens every session.
const WelcomeMessageID = "welcome"

// Source is a grounding citation attached to a model reply.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Message represents a single message within a chat session.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"isError,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
}

func NewUserMessage(id, text string, now time.Time) Message {
	return Message{ID: id, Role: RoleUser, Text: text, Timestamp: now}
}

// NewModelMessage builds a reply; sources are deduplicated by URI.
func NewModelMessage(id, text string, sources []Source, now time.Time) Message {
	return Message{ID: id, Role: RoleModel, Text: text, Timestamp: now, Sources: DedupSources(sources)}
}

// NewErrorMessage builds the user-visible model entry for a failed turn.
func NewErrorMessage(id, text string, now time.Time) Message {
	return Message{ID: id, Role: RoleModel, Text: text, Timestamp: now, IsError: true}
}

// NewWelcomeMessage greets user by name and mentions the partner.
func NewWelcomeMessage(user UserProfile, now time.Time) Message {
	text := fmt.Sprintf(
		"Olá, **%s**. Sou o Conselheiro da Família e posso pesquisar na Bíblia e na apostila para te ajudar. \n\n"+
			"Sei que você e %s estão buscando reconstruir o casamento. O que está pesando no seu coração hoje?",
		user, user.Partner().withArticle(),
	)
	return Message{ID: WelcomeMessageID, Role: RoleModel, Text: text, Timestamp: now}
}

// IsWelcome reports whether m is the reserved session greeting.
func (m Message) IsWelcome() bool {
	return m.ID == WelcomeMessageID && m.Role == RoleModel
}

// DedupSources keeps the first occurrence of every URI, preserving order.
// Entries without a URI are dropped.
func DedupSources(sources []Source) []Source {
	if len(sources) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(sources))
	unique := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.URI == "" || seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		unique = append(unique, s)
	}
	if len(unique) == 0 {
		return nil
	}
	return unique
}

func (m Message) clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Source(nil), m.Sources...)
	}
	return m
}
