package store

import "strings"

func (s *Store) indexOfCategory(id string) int {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) AddCategory(name, color, icon string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, ErrEmptyName
	}
	if color == "" {
		color = "#3B82F6"
	}
	if icon == "" {
		icon = "folder"
	}
	c := Category{ID: s.newID(), Name: name, Color: color, Icon: icon}

	s.mu.Lock()
	s.categories = append(s.categories, c)
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: CategoryCreated, ID: c.ID, Category: c})
	return c, nil
}

func (s *Store) UpdateCategory(id string, patch CategoryPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	i := s.indexOfCategory(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	patch.apply(&s.categories[i])
	c := s.categories[i]
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: CategoryUpdated, ID: id, Category: c, CategoryPatch: patch})
	return nil
}

// DeleteCategory removes the category without checking for referencing
// tasks; those keep the now dangling id.
func (s *Store) DeleteCategory(id string) {
	s.mu.Lock()
	i := s.indexOfCategory(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	s.save()
	s.mu.Unlock()

	s.dispatch(Mutation{Kind: CategoryDeleted, ID: id})
}

func (s *Store) Category(id string) (Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOfCategory(id)
	if i < 0 {
		return Category{}, false
	}
	return s.categories[i], true
}

func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category(nil), s.categories...)
}
