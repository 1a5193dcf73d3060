package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/remote"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewTimer
	viewDashboard
	viewSettings
	viewAccount
)

var viewNames = []string{"Tasks", "Timer", "Dashboard", "Settings", "Account"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// syncDoneMsg reports a finished pull started from the UI.
type syncDoneMsg struct {
	trigger string
	err     error
}

type loginDoneMsg struct {
	token string
	user  remote.User
	err   error
}

type taskCompletedMsg struct {
	title string
}

type sessionEndedMsg pomodoro.Event

// Notifier forwards store and timer signals into the program. It is safe
// to call from any goroutine; signals are dropped when nobody is reading.
type Notifier struct {
	ch chan tea.Msg
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan tea.Msg, 16)}
}

func (n *Notifier) TaskCompleted(t store.Task) {
	n.send(taskCompletedMsg{title: t.Title})
}

func (n *Notifier) SessionEnded(ev pomodoro.Event) {
	n.send(sessionEndedMsg(ev))
}

func (n *Notifier) send(msg tea.Msg) {
	select {
	case n.ch <- msg:
	default:
	}
}

func (n *Notifier) listen() tea.Cmd {
	return func() tea.Msg { return <-n.ch }
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

// formatClock renders a countdown as mm:ss.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(m float64) string {
	if m >= 60 {
		return fmt.Sprintf("%.1fh", m/60)
	}
	return fmt.Sprintf("%.0fm", m)
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}
