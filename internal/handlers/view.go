// File: internal/handlers/view.go
package handlers

import (
	"html/template"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/render"
	"github.com/iyunix/go-counselor/internal/services/chat"
	"github.com/iyunix/go-counselor/internal/services/session"
)

// ChatView is what both the page and the JSON API show.
type ChatView struct {
	CurrentUser      domain.UserProfile   `json:"currentUser"`
	Profiles         []domain.UserProfile `json:"profiles"`
	CurrentSessionID string               `json:"currentSessionId"`
	Sessions         []SessionSummary     `json:"sessions"`
	Messages         []MessageView        `json:"messages"`
	Loading          bool                 `json:"loading"`
	Suggestions      []string             `json:"suggestions,omitempty"`
	Placeholder      string               `json:"placeholder"`
}

type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Messages     int       `json:"messages"`
	LastModified time.Time `json:"lastModified"`
	Selected     bool      `json:"selected"`
}

type MessageView struct {
	ID        string          `json:"id"`
	Role      domain.Role     `json:"role"`
	Text      string          `json:"text"`
	HTML      template.HTML   `json:"html,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Clock     string          `json:"clock"`
	IsError   bool            `json:"isError,omitempty"`
	Sources   []domain.Source `json:"sources,omitempty"`
}

// IsUser is used by the page template.
func (m MessageView) IsUser() bool {
	return m.Role == domain.RoleUser
}

func buildView(st session.State, orchestrator *chat.Orchestrator) ChatView {
	view := ChatView{
		CurrentUser:      st.CurrentUser,
		Profiles:         domain.AllProfiles(),
		CurrentSessionID: st.CurrentSessionID,
		Sessions:         []SessionSummary{},
		Messages:         []MessageView{},
		Loading:          orchestrator.Loading(),
		Placeholder:      "Pergunte algo como " + st.CurrentUser.SpouseNoun() + "...",
	}

	for _, s := range st.Sessions[st.CurrentUser] {
		view.Sessions = append(view.Sessions, SessionSummary{
			ID:           s.ID,
			Title:        s.Title,
			Messages:     len(s.Messages),
			LastModified: s.LastModifiedTime(),
			Selected:     s.ID == st.CurrentSessionID,
		})
	}

	active, ok := st.ActiveSession()
	if !ok {
		return view
	}
	for _, m := range active.Messages {
		mv := MessageView{
			ID:        m.ID,
			Role:      m.Role,
			Text:      m.Text,
			Timestamp: m.Timestamp,
			Clock:     render.Clock(m.Timestamp),
			IsError:   m.IsError,
			Sources:   m.Sources,
		}
		if m.Role == domain.RoleModel {
			mv.HTML = render.MarkdownOrEscaped(m.Text)
		}
		view.Messages = append(view.Messages, mv)
	}
	if orchestrator.ShowSuggestions(active) {
		view.Suggestions = orchestrator.Suggestions()
	}
	return view
}
