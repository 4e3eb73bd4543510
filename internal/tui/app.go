package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/render"
	"github.com/iyunix/go-counselor/internal/services/chat"
	"github.com/iyunix/go-counselor/internal/services/session"
)

const sidebarWidth = 34

// stateChangedMsg tells the model the store applied a new state.
type stateChangedMsg struct{}

// replyDoneMsg carries the outcome of one Submit.
type replyDoneMsg struct{ err error }

type Model struct {
	store        *session.Store
	orchestrator *chat.Orchestrator
	changes      chan struct{}

	state   session.State
	input   textinput.Model
	spinner spinner.Model
	status  string
	width   int
	height  int

	// thinking is set while the spinner tick loop is running
	thinking bool
}

// NewModel subscribes to store so replies finishing in the background are redrawn.
func NewModel(store *session.Store, orchestrator *chat.Orchestrator) Model {
	changes := make(chan struct{}, 1)
	store.Subscribe(func(session.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	ti := textinput.New()
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := Model{
		store:        store,
		orchestrator: orchestrator,
		changes:      changes,
		state:        store.Snapshot(),
		input:        ti,
		spinner:      sp,
		width:        120,
		height:       30,
	}
	m.input.Placeholder = m.placeholder()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return replyDoneMsg{err: m.orchestrator.Submit(context.Background(), text)}
	}
}

func (m *Model) refresh() {
	m.state = m.store.Snapshot()
	m.input.Placeholder = m.placeholder()
}

func (m Model) placeholder() string {
	return "Pergunte algo como " + m.state.CurrentUser.SpouseNoun() + "..."
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-sidebarWidth-6)
		return m, nil

	case stateChangedMsg:
		m.refresh()
		// the user message lands after the in-flight flag is set
		if m.orchestrator.Loading() && !m.thinking {
			m.thinking = true
			return m, tea.Batch(m.waitForChange(), m.spinner.Tick)
		}
		return m, m.waitForChange()

	case replyDoneMsg:
		m.refresh()
		m.thinking = false
		m.status = statusFor(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.orchestrator.Loading() {
			m.thinking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		if err := m.store.SwitchUser(m.state.CurrentUser.Partner()); err != nil {
			m.status = err.Error()
		}
		m.refresh()
		return m, nil

	case "ctrl+n":
		if _, err := m.store.CreateSession(m.state.CurrentUser); err != nil {
			m.status = err.Error()
		}
		m.refresh()
		return m, nil

	case "ctrl+d":
		m.store.DeleteSession(m.state.CurrentUser, m.state.CurrentSessionID)
		m.refresh()
		return m, nil

	case "up", "down":
		m.moveSelection(msg.String() == "up")
		m.refresh()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		if m.orchestrator.Loading() {
			m.status = "Aguarde a resposta anterior."
			return m, nil
		}
		m.input.Reset()
		return m, m.submitCmd(text)

	case "1", "2", "3", "4":
		if q, ok := m.suggestion(msg.String()); ok && m.input.Value() == "" {
			m.input.SetValue(q)
			m.input.CursorEnd()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) moveSelection(up bool) {
	sessions := m.state.Sessions[m.state.CurrentUser]
	if len(sessions) == 0 {
		return
	}
	idx := 0
	for i, s := range sessions {
		if s.ID == m.state.CurrentSessionID {
			idx = i
		}
	}
	if up && idx > 0 {
		idx--
	} else if !up && idx < len(sessions)-1 {
		idx++
	}
	m.store.SelectSession(m.state.CurrentUser, sessions[idx].ID)
}

// suggestion returns the numbered suggested question while suggestions are shown.
func (m Model) suggestion(key string) (string, bool) {
	active, ok := m.state.ActiveSession()
	if !ok || !m.orchestrator.ShowSuggestions(active) {
		return "", false
	}
	n := int(key[0] - '1')
	suggestions := m.orchestrator.Suggestions()
	if n < 0 || n >= len(suggestions) {
		return "", false
	}
	return suggestions[n], true
}

func statusFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, chat.ErrEmptyMessage):
		return "Escreva uma mensagem antes de enviar."
	case errors.Is(err, chat.ErrRequestInFlight):
		return "Aguarde a resposta anterior."
	case errors.Is(err, chat.ErrNoSessionSelected):
		return "Nenhuma conversa selecionada."
	default:
		return "Não foi possível enviar a mensagem."
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Conselheiro da Família"))
	for _, p := range domain.AllProfiles() {
		if p == m.state.CurrentUser {
			b.WriteString(activeUserTabStyle.Render(string(p)))
		} else {
			b.WriteString(userTabStyle.Render(string(p)))
		}
	}
	b.WriteString("\n")

	paneHeight := max(3, m.height-4)
	sidebar := sidebarStyle.Height(paneHeight).Width(sidebarWidth).Render(m.renderSessions())
	conversation := m.renderConversation(paneHeight, max(20, m.width-sidebarWidth-3))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", conversation))
	b.WriteString("\n")

	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render("  " + m.status))
	} else {
		b.WriteString(helpStyle.Render("  Enter: enviar  Tab: trocar usuário  Ctrl+N: nova  ↑/↓: conversas  Ctrl+D: apagar  Ctrl+C: sair"))
	}
	return b.String()
}

func (m Model) renderSessions() string {
	var rows []string
	for _, s := range m.state.Sessions[m.state.CurrentUser] {
		title := pad(s.Title, sidebarWidth-2)
		if s.ID == m.state.CurrentSessionID {
			rows = append(rows, selectedStyle.Render(title))
		} else {
			rows = append(rows, normalStyle.Render(title))
		}
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderConversation(height, width int) string {
	active, ok := m.state.ActiveSession()
	if !ok {
		return dimStyle.Render("Nenhuma conversa selecionada.")
	}

	body := lipgloss.NewStyle().Width(width)
	var lines []string
	for _, msg := range active.Messages {
		role := modelRoleStyle.Render(" Conselheiro ")
		if msg.Role == domain.RoleUser {
			role = userRoleStyle.Render(" " + string(m.state.CurrentUser) + " ")
		}
		lines = append(lines, role+" "+dimStyle.Render(render.Clock(msg.Timestamp)))

		text := body.Render(msg.Text)
		if msg.IsError {
			text = errorStyle.Render(text)
		}
		lines = append(lines, strings.Split(text, "\n")...)
		for _, src := range msg.Sources {
			lines = append(lines, sourceStyle.Render("  ↳ "+src.Title+" ("+src.URI+")"))
		}
		lines = append(lines, "")
	}

	if m.orchestrator.Loading() {
		lines = append(lines, m.spinner.View()+dimStyle.Render(" Pensando..."))
	} else if m.orchestrator.ShowSuggestions(active) {
		for i, q := range m.orchestrator.Suggestions() {
			lines = append(lines, suggestionStyle.Render(fmt.Sprintf("  %d. %s", i+1, q)))
		}
	}

	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width-2]) + ".."
	}
	return s + strings.Repeat(" ", width-len(runes))
}
