package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/martinemde/tinker/agentloop"
)

const drainInterval = 100 * time.Millisecond

type (
	tickMsg     time.Time
	turnDoneMsg struct{ err error }
)

// Model is the bubbletea model for the chat surface.
type Model struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	styles    Styles

	session *agentloop.Session
	bridge  *Bridge

	transcript []string
	isLoading  bool
	ready      bool
	width      int
	height     int
}

// NewModel creates the chat model over a session. The caller is expected to
// have started the bridge pump on the session's event channel.
func NewModel(session *agentloop.Session, bridge *Bridge) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Ask the agent... (Enter to send, Ctrl+C to exit)"
	ti.Focus()
	ti.Prompt = "> "
	ti.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)

	m := Model{
		textinput: ti,
		viewport:  vp,
		spinner:   sp,
		styles:    styles,
		session:   session,
		bridge:    bridge,
	}
	m.transcript = append(m.transcript,
		m.styles.System.Render(fmt.Sprintf("Working directory: %s", session.Workspace().Root())),
		m.styles.System.Render("Type a message to start."),
	)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(drainInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.isLoading {
				return m.handleSubmit()
			}
			return m, nil
		}
		if !m.isLoading {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width-2, msg.Height-headerHeight-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 2
			m.viewport.Height = msg.Height - headerHeight - inputHeight
		}
		m.textinput.Width = msg.Width - 4
		m.refreshViewport()

	case tickMsg:
		m.drainBridge()
		return m, tick()

	case turnDoneMsg:
		m.isLoading = false
		m.drainBridge()
		m.textinput.Focus()
		return m, textinput.Blink

	case spinner.TickMsg:
		if m.isLoading {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// handleSubmit sends the typed input through the session on its own
// goroutine so the render loop keeps ticking.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if input == "" {
		return m, nil
	}
	m.textinput.Reset()
	m.isLoading = true

	m.transcript = append(m.transcript,
		m.styles.You.Render(Prefix(RoleYou)+input))
	m.refreshViewport()

	session := m.session
	submit := func() tea.Msg {
		return turnDoneMsg{err: session.Submit(context.Background(), input)}
	}
	return m, tea.Batch(submit, m.spinner.Tick)
}

// drainBridge moves buffered lines into the transcript.
func (m *Model) drainBridge() {
	lines := m.bridge.Drain()
	if len(lines) == 0 {
		return
	}
	for _, line := range lines {
		tag := line.Role
		if line.Style != "" {
			tag = line.Style
		}
		style := m.styles.ForRole(tag)
		m.transcript = append(m.transcript, style.Render(Prefix(line.Role)+line.Content))
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("tinker"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.isLoading {
		b.WriteString(m.spinner.View())
		b.WriteString(m.styles.InputHint.Render(" thinking..."))
	} else {
		b.WriteString(m.textinput.View())
	}
	return b.String()
}

// Run wires a bridge to the session's events and blocks in the bubbletea
// program until the user exits.
func Run(session *agentloop.Session) error {
	bridge := NewBridge()
	go bridge.Pump(session.Events())

	program := tea.NewProgram(NewModel(session, bridge), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
