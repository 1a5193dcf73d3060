package store

// AddTimeSession records a session. A zero duration with an end time is
// derived as EndTime - StartTime; an empty type means work.
func (s *Store) AddTimeSession(in TimeSession) TimeSession {
	ts := in.clone()
	ts.ID = s.newID()
	if ts.Type == "" {
		ts.Type = SessionWork
	}
	ts.Duration = sessionDuration(ts)

	s.mu.Lock()
	s.sessions = append(s.sessions, ts)
	s.save()
	s.mu.Unlock()

	s.logger.Info("time session added", "id", ts.ID, "task", ts.TaskID, "duration", ts.Duration)
	s.dispatch(Mutation{Kind: SessionCreated, ID: ts.ID, Session: ts.clone()})
	return ts.clone()
}

func (s *Store) TimeSessions() []TimeSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TimeSession, len(s.sessions))
	for i, ts := range s.sessions {
		out[i] = ts.clone()
	}
	return out
}

func sessionDuration(ts TimeSession) int64 {
	if ts.Duration == 0 && ts.EndTime != nil {
		ts.Duration = int64(ts.EndTime.Sub(ts.StartTime).Seconds())
	}
	if ts.Duration < 0 {
		return 0
	}
	return ts.Duration
}

// SessionDuration applies the store's duration rule to a session that did
// not come through AddTimeSession.
func SessionDuration(ts TimeSession) int64 {
	return sessionDuration(ts)
}
