package pomodoro

import (
	"io"
	"log/slog"
	"time"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

// SessionAdder is where finished work time is recorded.
type SessionAdder interface {
	AddTimeSession(ts store.TimeSession) store.TimeSession
}

// Recorder turns finished work sessions that have a task into time
// sessions.
type Recorder struct {
	machine *Machine
	sink    SessionAdder
	logger  *slog.Logger
	now     func() time.Time
	cancel  func()
}

func NewRecorder(m *Machine, sink SessionAdder, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Recorder{machine: m, sink: sink, logger: logger, now: time.Now}
	r.cancel = m.Subscribe(r.onEvent)
	return r
}

// Close stops listening for events.
func (r *Recorder) Close() {
	r.cancel()
}

func (r *Recorder) onEvent(ev Event) {
	if ev.Ended != Work {
		return
	}
	r.record(ev.TaskID, ev.Elapsed)
}

// Stop records the part of a running work session counted so far, then
// stops the machine.
func (r *Recorder) Stop() {
	r.record(r.machine.StopWork())
}

func (r *Recorder) record(taskID string, elapsed int) {
	if taskID == "" || elapsed <= 0 {
		return
	}
	end := r.now()
	ts := r.sink.AddTimeSession(store.TimeSession{
		TaskID:    taskID,
		StartTime: end.Add(-time.Duration(elapsed) * time.Second),
		EndTime:   &end,
		Duration:  int64(elapsed),
		Type:      store.SessionWork,
	})
	r.logger.Info("work session recorded", "task", taskID, "seconds", elapsed, "id", ts.ID)
}
