// ABOUTME: Terminal chat client for the CRM demo using bubbletea
// ABOUTME: The assistant drives a live board panel next to the conversation
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/models"
	"github.com/harperreed/salesflow/session"
)

const (
	welcome     = "Hi! I'm your SalesFlow guide. Ask me to add a contact, create a deal or walk you through the pipeline."
	boardWidth  = 54
	chromeLines = 6
)

type chatMessage struct {
	role    string
	content string
}

type (
	eventMsg    agent.Event
	closedMsg   struct{}
	turnDoneMsg struct{ err error }
)

// Model is the bubbletea model for the chat client.
type Model struct {
	ctx     context.Context
	session *session.CRMSession
	events  <-chan agent.Event
	cancel  func()

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	history []chatMessage
	state   models.CRMState
	tab     string
	detail  *models.Contact
	loading bool
	err     error

	width  int
	height int
}

// NewModel subscribes to the session's events. Close releases the
// subscription.
func NewModel(ctx context.Context, s *session.CRMSession) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask the assistant... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "│ "
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	events, cancel := s.Events().Subscribe()
	state := s.Snapshot()

	m := Model{
		ctx:       ctx,
		session:   s,
		events:    events,
		cancel:    cancel,
		textinput: ti,
		viewport:  viewport.New(60, 20),
		spinner:   sp,
		renderer:  newRenderer(60),
		history:   []chatMessage{{role: models.RoleAssistant, content: welcome}},
		state:     state,
		tab:       state.CurrentTab,
		width:     120,
		height:    32,
	}
	m.viewport.SetContent(m.renderHistory())
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func waitForEvent(events <-chan agent.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(e)
	}
}

// Close unsubscribes from the session.
func (m Model) Close() { m.cancel() }

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.detail != nil && msg.Type == tea.KeyEsc {
				m.detail = nil
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyTab:
			m.tab = nextTab(m.tab)
			return m, nil
		case tea.KeyCtrlR:
			if !m.loading {
				m.session.Reset(nil)
			}
			return m, nil
		case tea.KeyEnter:
			if !m.loading {
				return m.submit()
			}
			return m, nil
		}
		if !m.loading {
			var cmd tea.Cmd
			m.textinput, cmd = m.textinput.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chatWidth := m.chatWidth()
		m.viewport.Width = chatWidth
		m.viewport.Height = max(msg.Height-chromeLines, 5)
		m.textinput.Width = chatWidth - 4
		m.renderer = newRenderer(chatWidth - 4)
		m.viewport.SetContent(m.renderHistory())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(agent.Event(msg))
		return m, waitForEvent(m.events)

	case closedMsg:
		return m, tea.Quit

	case turnDoneMsg:
		m.loading = false
		m.err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.textinput.Value())
	if text == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.loading = true
	m.err = nil

	s, ctx := m.session, m.ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := s.Submit(ctx, text, nil)
		return turnDoneMsg{err: err}
	})
}

// apply folds one session event into the view.
func (m *Model) apply(e agent.Event) {
	switch e.Type {
	case agent.EventMessage:
		if p, ok := e.Payload.(agent.MessagePayload); ok {
			m.history = append(m.history, chatMessage{role: p.Role, content: p.Text})
			m.viewport.SetContent(m.renderHistory())
			m.viewport.GotoBottom()
		}
	case agent.EventThinking:
		m.loading = e.Target == "start"
	case agent.EventSwitchTab:
		m.tab = e.Target
	case agent.EventShowContact:
		if c, ok := e.Payload.(models.Contact); ok {
			m.detail = &c
		}
	}
	// Render, highlight and clear events all change the board.
	m.state = m.session.Snapshot()
}

func (m Model) chatWidth() int {
	return max(m.width-boardWidth-4, 30)
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("SALESFLOW CRM"))
	s.WriteString("\n")

	chat := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.renderStatus(),
		m.textinput.View(),
	)
	board := m.renderBoard()
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		chatPaneStyle.Width(m.chatWidth()).Render(chat),
		boardPaneStyle.Width(boardWidth).Render(board),
	))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("Enter: send • Tab: switch board tab • Ctrl+R: reset demo • Esc: close detail / quit"))
	return s.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Thinking..."
	case m.err != nil:
		return errorStyle.Render("Error: " + m.err.Error())
	}
	return ""
}

func (m Model) renderHistory() string {
	var s strings.Builder
	for _, msg := range m.history {
		if msg.role == models.RoleUser {
			s.WriteString(userStyle.Render("You: " + msg.content))
			s.WriteString("\n\n")
			continue
		}
		text := agent.PlainText(msg.content)
		if m.renderer != nil {
			if out, err := m.renderer.Render(text); err == nil {
				text = strings.TrimSpace(out)
			}
		}
		s.WriteString(assistantStyle.Render("Assistant:"))
		s.WriteString("\n")
		s.WriteString(text)
		s.WriteString("\n\n")
	}
	return s.String()
}

func nextTab(tab string) string {
	for i, t := range models.Tabs {
		if t == tab {
			return models.Tabs[(i+1)%len(models.Tabs)]
		}
	}
	return models.TabDashboard
}

// Run starts the full-screen client and blocks until it exits.
func Run(ctx context.Context, s *session.CRMSession) error {
	m := NewModel(ctx, s)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
