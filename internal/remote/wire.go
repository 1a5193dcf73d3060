package remote

import (
	"strings"
	"time"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

// Records as the remote CRUD API returns them. Pointer fields are nullable
// columns.

type TaskRecord struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description"`
	Status        string          `json:"status"`
	Priority      string          `json:"priority"`
	CategoryID    *string         `json:"category_id"`
	DueDate       *string         `json:"due_date"`
	CreatedAt     *string         `json:"created_at"`
	UpdatedAt     *string         `json:"updated_at"`
	EstimatedTime *int            `json:"estimated_time"`
	ActualTime    *int            `json:"actual_time"`
	Subtasks      []SubtaskRecord `json:"subtasks,omitempty"`
}

type SubtaskRecord struct {
	ID        string  `json:"id"`
	TaskID    string  `json:"task_id,omitempty"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	CreatedAt *string `json:"created_at,omitempty"`
}

type CategoryRecord struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

type TimeSessionRecord struct {
	ID        string  `json:"id"`
	TaskID    *string `json:"task_id"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Duration  *int64  `json:"duration"`
	Type      string  `json:"type"`
}

const (
	statusCompleted = "completed"
	statusPending   = "pending"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timeOr parses s, falling back to def when s is missing or unreadable.
func timeOr(s *string, def time.Time) time.Time {
	if s == nil || *s == "" {
		return def
	}
	if t, ok := parseTime(*s); ok {
		return t
	}
	return def
}

func optionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, ok := parseTime(*s)
	if !ok {
		return nil
	}
	return &t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func statusOf(completed bool) string {
	if completed {
		return statusCompleted
	}
	return statusPending
}

// Task maps the record onto the local task shape. Missing timestamps take
// now; a nil Subtasks result means the record carried no subtask list.
func (r TaskRecord) Task(now time.Time) store.Task {
	priority := store.Priority(strings.ToLower(r.Priority))
	if !priority.Valid() {
		priority = store.PriorityMedium
	}
	t := store.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   deref(r.Description),
		Completed:     strings.EqualFold(r.Status, statusCompleted),
		Priority:      priority,
		Category:      deref(r.CategoryID),
		DueDate:       optionalTime(r.DueDate),
		CreatedAt:     timeOr(r.CreatedAt, now),
		UpdatedAt:     timeOr(r.UpdatedAt, now),
		EstimatedTime: deref(r.EstimatedTime),
		ActualTime:    deref(r.ActualTime),
	}
	if r.Subtasks != nil {
		t.Subtasks = make([]store.Subtask, len(r.Subtasks))
		for i, st := range r.Subtasks {
			t.Subtasks[i] = store.Subtask{
				ID:        st.ID,
				Title:     st.Title,
				Completed: st.Completed,
				CreatedAt: timeOr(st.CreatedAt, now),
			}
		}
	}
	return t
}

func (r CategoryRecord) Category() store.Category {
	c := store.Category{ID: r.ID, Name: r.Name, Color: deref(r.Color), Icon: deref(r.Icon)}
	if c.Color == "" {
		c.Color = "#3B82F6"
	}
	if c.Icon == "" {
		c.Icon = "folder"
	}
	return c
}

// TimeSession maps the record. The type is always reported as work: the
// remote schema has no reliable break marker.
func (r TimeSessionRecord) TimeSession(now time.Time) store.TimeSession {
	ts := store.TimeSession{
		ID:        r.ID,
		TaskID:    deref(r.TaskID),
		StartTime: timeOr(&r.StartTime, now),
		EndTime:   optionalTime(r.EndTime),
		Duration:  deref(r.Duration),
		Type:      store.SessionWork,
	}
	ts.Duration = store.SessionDuration(ts)
	return ts
}

// Outbound payloads.

type taskPayload struct {
	ID            string  `json:"id,omitempty"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	Status        *string `json:"status,omitempty"`
	Priority      *string `json:"priority,omitempty"`
	CategoryID    *string `json:"category_id,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	EstimatedTime *int    `json:"estimated_time,omitempty"`
	ActualTime    *int    `json:"actual_time,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

func newTaskPayload(t store.Task) taskPayload {
	p := taskPayload{
		Title:         ptr(t.Title),
		Description:   nonEmpty(t.Description),
		Status:        ptr(statusOf(t.Completed)),
		Priority:      ptr(string(t.Priority)),
		CategoryID:    nonEmpty(t.Category),
		EstimatedTime: nonZero(t.EstimatedTime),
		ActualTime:    nonZero(t.ActualTime),
	}
	if t.DueDate != nil {
		p.DueDate = ptr(formatTime(*t.DueDate))
	}
	return p
}

// patchPayload carries only the fields set in patch, renamed for the wire.
func patchPayload(id string, patch store.TaskPatch) taskPayload {
	p := taskPayload{
		ID:            id,
		Title:         patch.Title,
		Description:   patch.Description,
		CategoryID:    patch.Category,
		EstimatedTime: patch.EstimatedTime,
		ActualTime:    patch.ActualTime,
	}
	if patch.Completed != nil {
		p.Status = ptr(statusOf(*patch.Completed))
	}
	if patch.Priority != nil {
		p.Priority = ptr(string(*patch.Priority))
	}
	if patch.DueDate != nil {
		p.DueDate = ptr(formatTime(*patch.DueDate))
	}
	return p
}

type categoryPayload struct {
	ID    string  `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

type sessionPayload struct {
	TaskID    *string `json:"task_id,omitempty"`
	StartTime string  `json:"start_time"`
	EndTime   *string `json:"end_time,omitempty"`
	Duration  int64   `json:"duration"`
	Type      string  `json:"type"`
}

func newSessionPayload(ts store.TimeSession) sessionPayload {
	p := sessionPayload{
		TaskID:    nonEmpty(ts.TaskID),
		StartTime: formatTime(ts.StartTime),
		Duration:  ts.Duration,
		Type:      string(ts.Type),
	}
	if ts.EndTime != nil {
		p.EndTime = ptr(formatTime(*ts.EndTime))
	}
	return p
}

type subtaskPayload struct {
	ID        string `json:"id,omitempty"`
	TaskID    string `json:"task_id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type idPayload struct {
	ID string `json:"id"`
}
