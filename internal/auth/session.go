// Package auth holds the signed-in user's bearer token.
package auth

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Lillogorillo/Beam-App/internal/remote"
)

// Key is the kv entry the session is persisted under.
const Key = "beam-auth"

type KV interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Delete(key string) error
}

type persisted struct {
	Token string      `json:"token"`
	User  remote.User `json:"user"`
}

// Session is safe for concurrent use. It satisfies cloudsync.TokenSource.
type Session struct {
	mu    sync.RWMutex
	token string
	user  remote.User
	kv    KV
}

// Restore loads a session saved by an earlier run. An absent entry yields
// a signed-out session.
func Restore(kv KV) (*Session, error) {
	s := &Session{kv: kv}
	data, err := kv.Load(Key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if data == nil {
		return s, nil
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.token, s.user = p.Token, p.User
	return s, nil
}

func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Session) User() (remote.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

func (s *Session) SignIn(token string, user remote.User) error {
	data, err := json.Marshal(persisted{Token: token, User: user})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Save(Key, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.token, s.user = token, user
	return nil
}

// SignOut forgets the credential. In-memory state is cleared even when the
// stored copy cannot be removed.
func (s *Session) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", remote.User{}
	if err := s.kv.Delete(Key); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
