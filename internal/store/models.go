package store

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Completed     bool       `json:"completed"`
	Priority      Priority   `json:"priority"`
	Category      string     `json:"category"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	EstimatedTime int        `json:"estimatedTime,omitempty"` // minutes, 0 = unset
	ActualTime    int        `json:"actualTime,omitempty"`    // minutes, 0 = unset
	Subtasks      []Subtask  `json:"subtasks"`
}

func (t Task) clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.Subtasks != nil {
		t.Subtasks = append(make([]Subtask, 0, len(t.Subtasks)), t.Subtasks...)
	}
	return t
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type SessionType string

const (
	SessionWork  SessionType = "work"
	SessionBreak SessionType = "break"
)

type TimeSession struct {
	ID        string      `json:"id"`
	TaskID    string      `json:"taskId,omitempty"`
	StartTime time.Time   `json:"startTime"`
	EndTime   *time.Time  `json:"endTime,omitempty"`
	Duration  int64       `json:"duration"` // seconds
	Type      SessionType `json:"type"`
}

func (s TimeSession) clone() TimeSession {
	if s.EndTime != nil {
		e := *s.EndTime
		s.EndTime = &e
	}
	return s
}

// NewTask carries the caller-supplied fields of a task; identity and
// timestamps are assigned by the store.
type NewTask struct {
	Title         string
	Description   string
	Completed     bool
	Priority      Priority
	Category      string
	DueDate       *time.Time
	EstimatedTime int
	ActualTime    int
}

// TaskPatch lists the fields to change; nil fields are left alone.
type TaskPatch struct {
	Title         *string
	Description   *string
	Completed     *bool
	Priority      *Priority
	Category      *string
	DueDate       *time.Time
	EstimatedTime *int
	ActualTime    *int
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p == TaskPatch{}
}

func (p TaskPatch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.ActualTime != nil {
		t.ActualTime = *p.ActualTime
	}
}

type CategoryPatch struct {
	Name  *string
	Color *string
	Icon  *string
}

func (p CategoryPatch) apply(c *Category) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
}

// Snapshot is the full persisted state of the store.
type Snapshot struct {
	Tasks        []Task        `json:"tasks"`
	Categories   []Category    `json:"categories"`
	TimeSessions []TimeSession `json:"timeSessions"`
}

type DashboardStats struct {
	TotalTasks          int
	CompletedTasks      int
	TotalTimeSpent      float64 // minutes
	CompletionRate      float64 // percent
	TodayTasks          int
	TodayCompletedTasks int
}

// DayTotal is the tracked time that started on a given local day.
type DayTotal struct {
	Day     time.Time
	Minutes float64
}
