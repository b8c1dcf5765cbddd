package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mireiacs/traduco/pkg/session"
)

// Messages exchanged between the bridge, run command, and the model.

type programReadyMsg struct {
	program *tea.Program
}

type sessionEventMsg struct {
	event session.Event
}

type runDoneMsg struct {
	err error
}

// appModel is the top-level bubbletea model: one session, its file queue,
// and the progress of the current run. All session state shown in View is a
// snapshot refreshed on every session event; the model never mutates
// session internals directly.
type appModel struct {
	ctx    context.Context
	sess   *session.Session
	events *session.EventBus

	spin  spinner.Model
	prog  progress.Model
	width int

	cursor        int
	state         session.State
	lastEngineErr string
	startedAt     time.Time
	elapsed       time.Duration

	adding    bool
	pathInput textinput.Model

	stopBridge context.CancelFunc
	quitting   bool
}

func newAppModel(ctx context.Context, sess *session.Session, events *session.EventBus) appModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	pr := progress.New(progress.WithDefaultGradient())

	in := textinput.New()
	in.Placeholder = "path/to/document.pdf"
	in.Prompt = "Add file: "
	in.CharLimit = 512

	return appModel{
		ctx:       ctx,
		sess:      sess,
		events:    events,
		spin:      sp,
		prog:      pr,
		pathInput: in,
		state:     sess.State(),
	}
}

func (m appModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case programReadyMsg:
		m.stopBridge = startBridge(m.ctx, msg.program, m.events)
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		if m.adding {
			return m.handleAddKey(msg)
		}
		return m.handleKey(msg)

	case sessionEventMsg:
		return m.handleSessionEvent(msg.event)

	case runDoneMsg:
		m.state = m.sess.State()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	if m.adding {
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m appModel) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width

	w := msg.Width - 12
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	m.prog.Width = w

	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.sess.Cancel()
		if m.stopBridge != nil {
			m.stopBridge()
		}
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.state.Files)-1 {
			m.cursor++
		}

	case "a":
		if m.state.Running {
			break
		}
		m.adding = true
		m.pathInput.SetValue("")
		return m, m.pathInput.Focus()

	case "d", "backspace":
		if m.state.Running || m.cursor >= len(m.state.Files) {
			break
		}
		m.sess.RemoveFile(m.state.Files[m.cursor].Name)
		m.state = m.sess.State()
		if m.cursor >= len(m.state.Files) && m.cursor > 0 {
			m.cursor--
		}

	case "s", "enter":
		if m.state.Running {
			break
		}
		sess, ctx := m.sess, m.ctx
		return m, func() tea.Msg {
			return runDoneMsg{err: sess.Run(ctx)}
		}

	case "c", "esc":
		m.sess.Cancel()
	}

	return m, nil
}

func (m appModel) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.adding = false
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		addLocalFile(m.sess, path)
		m.state = m.sess.State()
		return m, nil

	case "esc", "ctrl+c":
		m.adding = false
		m.pathInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m appModel) handleSessionEvent(ev session.Event) (tea.Model, tea.Cmd) {
	m.state = m.sess.State()

	switch ev.Kind {
	case session.EventRunStart:
		m.lastEngineErr = ""
		m.startedAt = ev.Timestamp
	case session.EventEngineError:
		if msg, ok := ev.Data.(string); ok {
			m.lastEngineErr = msg
		}
	case session.EventRunEnd:
		if !m.startedAt.IsZero() {
			m.elapsed = ev.Timestamp.Sub(m.startedAt)
		}
	}

	return m, nil
}

func (m appModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Traduco"))
	sb.WriteString(dimStyle.Render("  PDF translation"))
	sb.WriteString("\n\n")

	sb.WriteString(m.viewQueue())
	if m.adding {
		sb.WriteString(m.pathInput.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewStatus())

	if len(m.state.Results) > 0 {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("Results:"))
		sb.WriteString("\n")
		for _, a := range m.state.Results {
			sb.WriteString(resultStyle.Render(fmt.Sprintf("%s  %s", a.Name, dimStyle.Render(a.Path))))
			sb.WriteString("\n")
		}
	}

	if m.lastEngineErr != "" {
		sb.WriteString("\n")
		sb.WriteString(errorBlockStyle.Render(truncate(m.lastEngineErr, m.contentWidth())))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	help := "s start · c cancel · a add file · d remove file · ↑/↓ select · q quit"
	if m.adding {
		help = "enter add · esc cancel"
	}
	sb.WriteString(helpStyle.Render(help))
	sb.WriteString("\n")

	return sb.String()
}

func (m appModel) viewQueue() string {
	var sb strings.Builder

	sb.WriteString(dimStyle.Render(fmt.Sprintf("Queue (%d):", len(m.state.Files))))
	sb.WriteString("\n")

	if len(m.state.Files) == 0 {
		sb.WriteString(fileStyle.Render(dimStyle.Render("no files queued — press a to add one")))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, f := range m.state.Files {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▸ ")
		}
		sb.WriteString(cursor)
		sb.WriteString(fileStyle.Render(truncate(f.Name, m.contentWidth())))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m appModel) viewStatus() string {
	st := m.state

	switch {
	case st.Running:
		line := fmt.Sprintf("%s %s %s", m.spin.View(), m.prog.ViewAs(st.Progress/100), fmtPercent(st.Progress))
		if st.Stage != "" {
			line += "  " + stageStyle.Render(truncate(st.Stage, 40))
		}
		return line + "\n"

	case st.Status == session.StatusCompleted:
		return fileDoneStyle.Render(fmt.Sprintf("Completed in %s", fmtDuration(m.elapsed))) + "\n"

	case st.Status == session.StatusCancelled:
		return stageStyle.Render("Cancelled") + "\n"

	case st.Status == session.StatusFailed:
		msg := "Failed"
		if st.Err != nil {
			msg = truncate(st.Err.Error(), m.contentWidth())
		}
		return errorBlockStyle.Render(msg) + "\n"

	case st.Err != nil:
		// Idle after a validation failure.
		return errorBlockStyle.Render(truncate(st.Err.Error(), m.contentWidth())) + "\n"
	}

	return dimStyle.Render("Idle — press s to start") + "\n"
}

func (m appModel) contentWidth() int {
	if m.width <= 4 {
		return 76
	}
	return m.width - 4
}
