package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

type timerModel struct {
	machine  *pomodoro.Machine
	recorder *pomodoro.Recorder
	store    *store.Store
	width    int
	height   int

	state    pomodoro.State
	settings pomodoro.Settings
	elapsed  int
	task     string
}

func newTimerModel(m *pomodoro.Machine, r *pomodoro.Recorder, s *store.Store) timerModel {
	t := timerModel{machine: m, recorder: r, store: s}
	t.sync()
	return t
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// sync copies the machine state into the view.
func (t *timerModel) sync() {
	t.state = t.machine.Snapshot()
	t.settings = t.machine.Settings()
	t.elapsed = t.machine.Elapsed()
	t.task = ""
	if t.state.TaskID != "" {
		if task, ok := t.store.Task(t.state.TaskID); ok {
			t.task = task.Title
		}
	}
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg, sessionEndedMsg:
		t.sync()
		return t, nil

	case tea.KeyMsg:
		var status string
		switch {
		case key.Matches(msg, keys.Start):
			if !t.state.Running {
				t.machine.Start("")
				status = t.state.SessionType.String() + " started"
			}
		case key.Matches(msg, keys.Pause):
			if t.state.Running {
				t.machine.Pause()
				status = "Paused"
			} else {
				t.machine.Start("")
				status = "Resumed"
			}
		case key.Matches(msg, keys.Stop):
			t.recorder.Stop()
			status = "Timer stopped"
		case key.Matches(msg, keys.Skip):
			t.machine.SkipSession()
		case key.Matches(msg, keys.Reset):
			t.machine.Reset()
			status = "Timer reset"
		default:
			return t, nil
		}
		t.sync()
		if status == "" {
			return t, nil
		}
		return t, func() tea.Msg { return statusMsg{text: status} }
	}
	return t, nil
}

func (t timerModel) view() string {
	w := t.width - 4

	var clock, label string
	c := formatClock(t.state.TimeLeft)
	switch {
	case t.state.Running && t.state.SessionType == pomodoro.Work:
		clock = accentStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(c)
		label = accentStyle.Bold(true).Render(strings.ToUpper(t.state.SessionType.String()))
	case t.state.Running:
		clock = successStyle.Bold(true).Width(w - 6).Align(lipgloss.Center).Render(c)
		label = successStyle.Bold(true).Render(strings.ToUpper(t.state.SessionType.String()))
	case t.elapsed == 0:
		clock = timerStyle.Width(w - 6).Render(c)
		label = mutedStyle.Render(strings.ToUpper(t.state.SessionType.String()) + "  ready")
	default:
		clock = timerPausedStyle.Width(w - 6).Render(c)
		label = warningStyle.Render(strings.ToUpper(t.state.SessionType.String()) + "  paused")
	}

	task := mutedStyle.Render("No task selected. Press s on a task to focus on it.")
	if t.task != "" {
		task = "Focusing on " + highlightStyle.Render(t.task)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Pomodoro"),
		"",
		clock,
		label,
		"",
		t.renderProgress(),
		mutedStyle.Render(fmt.Sprintf("Session %d  ·  %d completed  ·  %s in", t.state.CurrentSession, t.state.TotalSessions, formatSeconds(int64(t.elapsed)))),
		"",
		task,
	)

	controls := mutedStyle.Render("s: start  space: pause/resume  x: stop  >: skip  R: reset")
	if !t.state.Running {
		controls = mutedStyle.Render("s: start  >: skip  R: reset")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

// renderProgress shows where the current session sits in the cycle
// leading to a long break.
func (t timerModel) renderProgress() string {
	n := t.settings.SessionsUntilLongBreak
	if n <= 0 {
		return ""
	}
	pos := (t.state.CurrentSession - 1) % n
	done := pos
	if t.state.SessionType != pomodoro.Work {
		done = pos + 1
	}

	var parts []string
	for i := range n {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == pos && t.state.SessionType == pomodoro.Work:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ")
}

// indicator is the short timer summary shown in the footer.
func (t timerModel) indicator() string {
	if !t.state.Running {
		return ""
	}
	return timerRunningStyle.Render(fmt.Sprintf("● %s %s", t.state.SessionType.String(), formatClock(t.state.TimeLeft)))
}
