// Package pomodoro implements the work/break countdown cycle.
package pomodoro

import (
	"sync"
)

type SessionType string

const (
	Work       SessionType = "work"
	ShortBreak SessionType = "shortBreak"
	LongBreak  SessionType = "longBreak"
)

func (t SessionType) String() string {
	switch t {
	case ShortBreak:
		return "Short break"
	case LongBreak:
		return "Long break"
	default:
		return "Work"
	}
}

// State is a point-in-time copy of the machine. TimeLeft is in seconds.
type State struct {
	SessionType    SessionType
	TimeLeft       int
	CurrentSession int
	TotalSessions  int
	Running        bool
	TaskID         string
}

// Event is published once per session transition.
type Event struct {
	Ended          SessionType
	Next           SessionType
	CurrentSession int
	TaskID         string
	// Elapsed is how many seconds of the ended session were counted down.
	Elapsed int
}

type Machine struct {
	mu       sync.Mutex
	settings Settings
	state    State
	// countdown the current session started from
	length int

	subs   map[int]func(Event)
	nextID int
}

// New returns a machine in its initial state. Invalid settings are
// replaced by the defaults.
func New(s Settings) *Machine {
	if s.Validate() != nil {
		s = DefaultSettings()
	}
	m := &Machine{settings: s, subs: make(map[int]func(Event))}
	m.resetLocked()
	return m
}

func (m *Machine) resetLocked() {
	m.state = State{
		SessionType:    Work,
		TimeLeft:       m.settings.Seconds(Work),
		CurrentSession: 1,
	}
	m.length = m.state.TimeLeft
}

// Subscribe registers fn for completion events and returns a function that
// removes it. fn runs on the goroutine that caused the transition.
func (m *Machine) Subscribe(fn func(Event)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Elapsed returns the seconds counted down in the current session.
func (m *Machine) Elapsed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return max(m.length-m.state.TimeLeft, 0)
}

func (m *Machine) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Start runs the countdown. An empty taskID keeps the current task.
func (m *Machine) Start(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Running = true
	if taskID != "" {
		m.state.TaskID = taskID
	}
}

func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Running = false
}

// Stop halts, drops the task and rewinds the current session to its full
// length. Session type and counters stay as they are.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// StopWork stops the machine and returns the task and seconds counted by
// a work session that was still running, read under the same lock.
func (m *Machine) StopWork() (taskID string, elapsed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Running && m.state.SessionType == Work {
		taskID, elapsed = m.state.TaskID, max(m.length-m.state.TimeLeft, 0)
	}
	m.stopLocked()
	return taskID, elapsed
}

func (m *Machine) stopLocked() {
	m.state.Running = false
	m.state.TaskID = ""
	m.state.TimeLeft = m.settings.Seconds(m.state.SessionType)
	m.length = m.state.TimeLeft
}

func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

// Tick counts down one second while running. Reaching zero completes the
// session; Tick reports whether that happened.
func (m *Machine) Tick() bool {
	m.mu.Lock()
	if !m.state.Running || m.state.TimeLeft <= 0 {
		m.mu.Unlock()
		return false
	}
	if m.state.TimeLeft-1 > 0 {
		m.state.TimeLeft--
		m.mu.Unlock()
		return false
	}
	m.state.TimeLeft = 0
	ev, subs := m.completeLocked()
	m.mu.Unlock()

	publish(subs, ev)
	return true
}

// CompleteSession ends the current session and moves to the next one. The
// machine always halts at the boundary.
func (m *Machine) CompleteSession() {
	m.mu.Lock()
	ev, subs := m.completeLocked()
	m.mu.Unlock()

	publish(subs, ev)
}

// SkipSession ends the current session early.
func (m *Machine) SkipSession() {
	m.CompleteSession()
}

func (m *Machine) completeLocked() (Event, []func(Event)) {
	st := &m.state
	ev := Event{
		Ended:   st.SessionType,
		TaskID:  st.TaskID,
		Elapsed: max(m.length-st.TimeLeft, 0),
	}

	if st.SessionType == Work {
		if st.CurrentSession%m.settings.SessionsUntilLongBreak == 0 {
			st.SessionType = LongBreak
		} else {
			st.SessionType = ShortBreak
		}
	} else {
		st.SessionType = Work
		st.CurrentSession++
	}
	st.TimeLeft = m.settings.Seconds(st.SessionType)
	st.Running = false
	st.TotalSessions++
	m.length = st.TimeLeft

	ev.Next = st.SessionType
	ev.CurrentSession = st.CurrentSession

	subs := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	return ev, subs
}

func publish(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}

// UpdateSettings merges p into the current settings. A running countdown
// keeps its remaining time; new durations apply from the next session.
func (m *Machine) UpdateSettings(p SettingsPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := p.merge(m.settings)
	if err := next.Validate(); err != nil {
		return err
	}
	m.settings = next
	return nil
}
