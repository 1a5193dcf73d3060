package store

import "strings"

func (s *Store) indexOfTask(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTask appends a new task and mirrors it remotely.
func (s *Store) AddTask(in NewTask) (Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}

	now := s.now()
	t := Task{
		ID:            s.newID(),
		Title:         title,
		Description:   in.Description,
		Completed:     in.Completed,
		Priority:      in.Priority,
		Category:      in.Category,
		CreatedAt:     now,
		UpdatedAt:     now,
		EstimatedTime: positive(in.EstimatedTime),
		ActualTime:    positive(in.ActualTime),
		Subtasks:      []Subtask{},
	}
	if in.DueDate != nil {
		d := *in.DueDate
		t.DueDate = &d
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.save()
	s.mu.Unlock()

	s.logger.Info("task added", "id", t.ID, "title", t.Title)
	s.dispatch(Mutation{Kind: TaskCreated, ID: t.ID, Task: t.clone()})
	return t.clone(), nil
}

// UpdateTask merges patch into the task. Unknown ids are ignored.
func (s *Store) UpdateTask(id string, patch TaskPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return ErrEmptyTitle
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return ErrInvalidPriority
	}

	s.mu.Lock()
	i := s.indexOfTask(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	patch.apply(&s.tasks[i])
	s.tasks[i].UpdatedAt = s.now()
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: TaskUpdated, ID: id, Patch: patch})
	return nil
}

// DeleteTask removes the task immediately. Owned subtasks go with it; the
// remote side cascades its time sessions.
func (s *Store) DeleteTask(id string) {
	s.mu.Lock()
	i := s.indexOfTask(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: TaskDeleted, ID: id})
}

// ToggleTask flips Completed. The notifier hears about a pending→completed
// transition before the push is sent.
func (s *Store) ToggleTask(id string) {
	s.mu.Lock()
	i := s.indexOfTask(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	s.tasks[i].UpdatedAt = s.now()
	t := s.tasks[i].clone()
	s.save()
	s.mu.Unlock()

	if t.Completed && s.notifier != nil {
		s.notifier.TaskCompleted(t)
	}
	completed := t.Completed
	s.dispatch(Mutation{Kind: TaskUpdated, ID: id, Patch: TaskPatch{Completed: &completed}})
}

func (s *Store) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfTask(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].clone(), true
}

func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.clone()
	}
	return out
}

func (s *Store) TasksByCategory(categoryID string) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if t.Category == categoryID {
			out = append(out, t.clone())
		}
	}
	return out
}

func positive(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
