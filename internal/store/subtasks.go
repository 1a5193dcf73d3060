package store

import "strings"

func indexOfSubtask(t *Task, id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddSubtask appends a subtask to the task. It reports false when the task
// does not exist or the title is blank.
func (s *Store) AddSubtask(taskID, title string) (Subtask, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Subtask{}, false
	}

	s.mu.Lock()
	i := s.indexOfTask(taskID)
	if i < 0 {
		s.mu.Unlock()
		return Subtask{}, false
	}
	now := s.now()
	st := Subtask{ID: s.newID(), Title: title, CreatedAt: now}
	s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, st)
	s.tasks[i].UpdatedAt = now
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: SubtaskCreated, ID: st.ID, TaskID: taskID, Subtask: st})
	return st, true
}

func (s *Store) ToggleSubtask(taskID, subtaskID string) {
	s.editSubtask(taskID, subtaskID, func(st *Subtask) { st.Completed = !st.Completed })
}

func (s *Store) UpdateSubtask(taskID, subtaskID, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	s.editSubtask(taskID, subtaskID, func(st *Subtask) { st.Title = title })
}

func (s *Store) editSubtask(taskID, subtaskID string, edit func(*Subtask)) {
	s.mu.Lock()
	i := s.indexOfTask(taskID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	j := indexOfSubtask(&s.tasks[i], subtaskID)
	if j < 0 {
		s.mu.Unlock()
		return
	}
	edit(&s.tasks[i].Subtasks[j])
	s.tasks[i].UpdatedAt = s.now()
	st := s.tasks[i].Subtasks[j]
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: SubtaskUpdated, ID: subtaskID, TaskID: taskID, Subtask: st})
}

func (s *Store) DeleteSubtask(taskID, subtaskID string) {
	s.mu.Lock()
	i := s.indexOfTask(taskID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	t := &s.tasks[i]
	j := indexOfSubtask(t, subtaskID)
	if j < 0 {
		s.mu.Unlock()
		return
	}
	t.Subtasks = append(t.Subtasks[:j], t.Subtasks[j+1:]...)
	t.UpdatedAt = s.now()
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: SubtaskDeleted, ID: subtaskID, TaskID: taskID})
}
