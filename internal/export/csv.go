// Package export writes tracked time and the full local state to files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

func taskTitles(tasks []store.Task) map[string]string {
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}
	return titles
}

func taskLabel(titles map[string]string, id string) string {
	if id == "" {
		return "No task"
	}
	if title, ok := titles[id]; ok {
		return title
	}
	return "Unknown"
}

// SessionsCSV writes one row per time session.
func SessionsCSV(sessions []store.TimeSession, tasks []store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Task", "Type", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	titles := taskTitles(tasks)
	for _, s := range sessions {
		endStr := ""
		if s.EndTime != nil {
			endStr = s.EndTime.Local().Format(time.RFC3339)
		}
		row := []string{
			s.ID,
			taskLabel(titles, s.TaskID),
			string(s.Type),
			s.StartTime.Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", s.Duration),
			formatDuration(s.Duration),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
