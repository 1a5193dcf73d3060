package store

import "time"

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DashboardStats summarises the current collections. "Today" starts at
// local midnight.
func (s *Store) DashboardStats() DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := midnight(s.now())
	var st DashboardStats
	st.TotalTasks = len(s.tasks)
	for _, t := range s.tasks {
		if t.Completed {
			st.CompletedTasks++
		}
		if !t.CreatedAt.Before(today) {
			st.TodayTasks++
			if t.Completed {
				st.TodayCompletedTasks++
			}
		}
	}
	for _, ts := range s.sessions {
		st.TotalTimeSpent += float64(ts.Duration) / 60
	}
	if st.TotalTasks > 0 {
		st.CompletionRate = float64(st.CompletedTasks) / float64(st.TotalTasks) * 100
	}
	return st
}

// TodayTasks returns tasks created today or due from today onwards.
func (s *Store) TodayTasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	today := midnight(s.now())
	var out []Task
	for _, t := range s.tasks {
		created := !t.CreatedAt.Before(today)
		due := t.DueDate != nil && !t.DueDate.Before(today)
		if created || due {
			out = append(out, t.clone())
		}
	}
	return out
}

// MinutesByDay totals session time per local day for the last n days,
// oldest first.
func (s *Store) MinutesByDay(n int) []DayTotal {
	if n <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	first := midnight(now).AddDate(0, 0, -(n - 1))
	out := make([]DayTotal, n)
	for i := range out {
		out[i].Day = first.AddDate(0, 0, i)
	}
	for _, ts := range s.sessions {
		start := ts.StartTime.In(now.Location())
		if start.Before(first) {
			continue
		}
		day := midnight(start)
		for i := range out {
			if out[i].Day.Equal(day) {
				out[i].Minutes += float64(ts.Duration) / 60
				break
			}
		}
	}
	return out
}
