package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

type stateExport struct {
	ExportedAt   string           `json:"exported_at"`
	TotalTracked string           `json:"total_tracked"`
	Tasks        []jsonTask       `json:"tasks"`
	Categories   []store.Category `json:"categories"`
	Sessions     []jsonSession    `json:"time_sessions"`
}

type jsonTask struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Completed         bool   `json:"completed"`
	Priority          string `json:"priority"`
	Category          string `json:"category,omitempty"`
	DueDate           string `json:"due_date,omitempty"`
	CreatedAt         string `json:"created_at"`
	Subtasks          int    `json:"subtasks"`
	SubtasksCompleted int    `json:"subtasks_completed"`
	TrackedSec        int64  `json:"tracked_seconds"`
	Tracked           string `json:"tracked"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Task        string `json:"task"`
	TaskID      string `json:"task_id,omitempty"`
	Type        string `json:"type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

// StateJSON writes tasks, categories and sessions as one indented document.
// Category ids are resolved to names and tracked time is totalled per task.
func StateJSON(snap store.Snapshot, path string) error {
	categories := make(map[string]string, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = c.Name
	}
	titles := taskTitles(snap.Tasks)

	tracked := make(map[string]int64)
	var total int64
	export := stateExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Categories: snap.Categories,
	}
	for _, s := range snap.TimeSessions {
		tracked[s.TaskID] += s.Duration
		total += s.Duration

		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Task:        taskLabel(titles, s.TaskID),
			TaskID:      s.TaskID,
			Type:        string(s.Type),
			StartTime:   s.StartTime.Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: s.Duration,
			Duration:    formatDuration(s.Duration),
		})
	}
	export.TotalTracked = formatDuration(total)

	for _, t := range snap.Tasks {
		jt := jsonTask{
			ID:         t.ID,
			Title:      t.Title,
			Completed:  t.Completed,
			Priority:   string(t.Priority),
			Category:   categories[t.Category],
			CreatedAt:  t.CreatedAt.Local().Format(time.RFC3339),
			Subtasks:   len(t.Subtasks),
			TrackedSec: tracked[t.ID],
			Tracked:    formatDuration(tracked[t.ID]),
		}
		if t.DueDate != nil {
			jt.DueDate = t.DueDate.Local().Format("2006-01-02")
		}
		for _, st := range t.Subtasks {
			if st.Completed {
				jt.SubtasksCompleted++
			}
		}
		export.Tasks = append(export.Tasks, jt)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
