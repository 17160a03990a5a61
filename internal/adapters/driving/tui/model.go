// Package tui implements the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
	"github.com/custodia-labs/notebook-cli/internal/core/ports/driving"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	modelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	citationStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// streamUpdateMsg carries the cumulative text of the in-flight reply.
type streamUpdateMsg struct {
	message domain.ChatMessage
}

// streamDoneMsg ends a turn, successfully or not.
type streamDoneMsg struct {
	message *domain.ChatMessage
	err     error
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	notebook driving.NotebookService
	ctx      context.Context

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	messages  []domain.ChatMessage
	streaming bool
	events    chan tea.Msg
	status    string
	ready     bool
}

// New creates the chat model. The transcript is loaded from the notebook
// so a reopened session picks up where it left off.
func New(ctx context.Context, notebook driving.NotebookService) (Model, error) {
	history, err := notebook.Messages(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("loading transcript: %w", err)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your sources"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		notebook: notebook,
		ctx:      ctx,
		viewport: viewport.New(0, 0),
		input:    ti,
		spinner:  sp,
		messages: history,
		status:   "Enter to send, Esc to stop generating, Ctrl-C to quit.",
	}, nil
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window, and stream events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 + ch // header, spacer, input frame, status
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		m.input.Width = max(20, msg.Width-8)
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.notebook.StopGenerating()
			return m, tea.Quit

		case tea.KeyEsc:
			if m.streaming {
				m.notebook.StopGenerating()
				m.status = "Stopping..."
			}
			return m, nil

		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.streaming {
				return m, nil
			}
			return m.startTurn(text)
		}

	case streamUpdateMsg:
		m.setLastMessage(msg.message)
		m.refreshTranscript()
		return m, m.waitEvent()

	case streamDoneMsg:
		m.streaming = false
		m.events = nil
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
		} else {
			m.status = "Enter to send, Esc to stop generating, Ctrl-C to quit."
		}
		if msg.message != nil {
			m.setLastMessage(*msg.message)
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Notebook")
	chat := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := statusStyle.Render(m.status)
	if m.streaming {
		status = m.spinner.View() + " " + status
	}

	return header + "\n" + chat + "\n" + input + "\n" + status
}

// startTurn appends the user message locally and launches the streaming
// turn in its own goroutine. Stream progress arrives as messages through
// the events channel, keeping all state changes on the Elm loop.
func (m Model) startTurn(text string) (Model, tea.Cmd) {
	m.input.Reset()
	m.streaming = true
	m.status = "Thinking..."

	m.messages = append(m.messages,
		domain.ChatMessage{Role: domain.RoleUser, Text: text},
		domain.ChatMessage{Role: domain.RoleModel, Streaming: true},
	)
	m.refreshTranscript()

	events := make(chan tea.Msg, 32)
	m.events = events

	notebook, ctx := m.notebook, m.ctx
	go func() {
		reply, err := notebook.SendMessage(ctx, text, func(partial domain.ChatMessage) {
			events <- streamUpdateMsg{message: partial}
		})
		events <- streamDoneMsg{message: reply, err: err}
	}()

	return m, tea.Batch(m.waitEvent(), m.spinner.Tick)
}

// waitEvent delivers the next stream event to Update.
func (m Model) waitEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg { return <-events }
}

// setLastMessage replaces the trailing in-flight message.
func (m *Model) setLastMessage(msg domain.ChatMessage) {
	if len(m.messages) == 0 {
		return
	}
	m.messages[len(m.messages)-1] = msg
}

// refreshTranscript re-renders the conversation into the viewport and
// keeps it scrolled to the newest message.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	if len(m.messages) == 0 {
		return "No messages yet. Ask something about your sources."
	}

	wrap := lipgloss.NewStyle().Width(max(20, m.viewport.Width-2))

	var b strings.Builder
	for i := range m.messages {
		msg := &m.messages[i]

		switch msg.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You"))
		case domain.RoleModel:
			b.WriteString(modelStyle.Render("Notebook"))
		}
		b.WriteString("\n")

		text := msg.Text
		if text == "" && msg.Streaming {
			text = "..."
		}
		b.WriteString(wrap.Render(text))
		b.WriteString("\n")

		if len(msg.CitedSources) > 0 {
			var cites []string
			for j := range msg.CitedSources {
				cites = append(cites, fmt.Sprintf("[%d] %s", j+1, msg.CitedSources[j].Name))
			}
			b.WriteString(citationStyle.Render(strings.Join(cites, "  ")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
