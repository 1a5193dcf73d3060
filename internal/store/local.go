package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StateKey is the namespace the local state is persisted under.
const StateKey = "beam-storage"

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyName       = errors.New("name is required")
	ErrInvalidPriority = errors.New("priority must be low, medium, or high")
)

// Persister is the durable key/value backing the store reads at startup and
// writes after every mutation.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
}

var defaultCategories = []Category{
	{ID: "1", Name: "Work", Color: "#3B82F6", Icon: "briefcase"},
	{ID: "2", Name: "Personal", Color: "#10B981", Icon: "user"},
	{ID: "3", Name: "Learning", Color: "#F59E0B", Icon: "book-open"},
	{ID: "4", Name: "Health", Color: "#EF4444", Icon: "heart"},
}

// Store is the single in-memory owner of tasks, categories and time
// sessions. Mutations apply locally first and are then mirrored to the
// attached Pusher in the background; a failed push never rolls back the
// local change.
type Store struct {
	mu         sync.RWMutex
	tasks      []Task
	categories []Category
	sessions   []TimeSession

	persist Persister
	remote  Pusher
	// push subtask mutations too; off keeps subtasks local-only
	syncSubtasks bool

	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	ctx      context.Context

	inflight sync.WaitGroup
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDs(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithContext sets the base context background pushes run under.
func WithContext(ctx context.Context) Option {
	return func(s *Store) { s.ctx = ctx }
}

// New builds a store and loads any state previously saved in p. With no
// saved state the default categories are seeded.
func New(p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persist: p,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   uuid.NewString,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := p.Load(StateKey)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if data == nil {
		s.categories = append([]Category(nil), defaultCategories...)
		return s, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	s.tasks = snap.Tasks
	s.categories = snap.Categories
	s.sessions = snap.TimeSessions
	return s, nil
}

// AttachRemote connects the store to a remote mirror. A nil pusher detaches.
func (s *Store) AttachRemote(p Pusher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remote = p
}

func (s *Store) SyncSubtasks(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncSubtasks = on
}

// Wait blocks until every background push started so far has finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// save writes the full state. Callers hold s.mu.
func (s *Store) save() {
	data, err := json.Marshal(s.snapshotLocked())
	if err != nil {
		s.logger.Error("encode state", "error", err)
		return
	}
	if err := s.persist.Save(StateKey, data); err != nil {
		s.logger.Error("persist state", "error", err)
	}
}

// dispatch mirrors m in the background. The local change is already
// committed; the result is only logged.
func (s *Store) dispatch(m Mutation) {
	s.mu.RLock()
	p := s.remote
	subtasks := s.syncSubtasks
	s.mu.RUnlock()

	if p == nil {
		return
	}
	switch m.Kind {
	case SubtaskCreated, SubtaskUpdated, SubtaskDeleted:
		if !subtasks {
			return
		}
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		res := p.Push(s.ctx, m)
		switch {
		case res.Err != nil:
			s.logger.Warn("sync push failed", "op", m.Kind.String(), "id", m.ID, "error", res.Err)
		case res.Skipped:
			s.logger.Debug("sync push skipped", "op", m.Kind.String(), "id", m.ID)
		default:
			s.logger.Debug("sync push done", "op", m.Kind.String(), "id", m.ID, "refreshed", res.Refreshed)
		}
	}()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Tasks:        make([]Task, len(s.tasks)),
		Categories:   append([]Category(nil), s.categories...),
		TimeSessions: make([]TimeSession, len(s.sessions)),
	}
	for i, t := range s.tasks {
		snap.Tasks[i] = t.clone()
	}
	for i, ts := range s.sessions {
		snap.TimeSessions[i] = ts.clone()
	}
	return snap
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Replace swaps all three collections for snap wholesale. Tasks whose
// Subtasks is nil keep the subtasks held locally for the same id.
func (s *Store) Replace(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	local := make(map[string][]Subtask, len(s.tasks))
	for _, t := range s.tasks {
		local[t.ID] = t.Subtasks
	}

	tasks := make([]Task, len(snap.Tasks))
	for i, t := range snap.Tasks {
		t = t.clone()
		if t.Subtasks == nil {
			t.Subtasks = append([]Subtask{}, local[t.ID]...)
		}
		tasks[i] = t
	}
	sessions := make([]TimeSession, len(snap.TimeSessions))
	for i, ts := range snap.TimeSessions {
		sessions[i] = ts.clone()
	}

	s.tasks = tasks
	s.categories = append([]Category{}, snap.Categories...)
	s.sessions = sessions
	s.save()
}
