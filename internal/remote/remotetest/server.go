// Package remotetest serves an in-memory imitation of the Beam CRUD API
// for tests.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Request is one call the server received.
type Request struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

type resource struct {
	path    string
	listKey string
}

var resources = []resource{
	{path: "/tasks/tasks", listKey: "tasks"},
	{path: "/categories/categories", listKey: "categories"},
	{path: "/time-sessions/time-sessions", listKey: "timeSessions"},
	{path: "/subtasks/subtasks", listKey: "subtasks"},
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	token    string
	records  map[string][]map[string]any // keyed by list key
	requests []Request
	failures map[string]int

	// BeforeList, when set, runs at the start of every list request.
	BeforeList func(path string)
	// Now stamps created_at/updated_at on writes.
	Now func() time.Time
}

// New starts a server that accepts only the given bearer token.
func New(token string) *Server {
	s := &Server{
		token:    token,
		records:  make(map[string][]map[string]any),
		failures: make(map[string]int),
		Now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/auth/login", s.login)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		for _, res := range resources {
			res := res
			r.Get(res.path, s.list(res))
			r.Post(res.path, s.create(res))
			r.Put(res.path, s.update(res))
			r.Delete(res.path, s.remove(res))
		}
	})

	s.Server = httptest.NewServer(r)
	return s
}

// Seed adds a raw record to the list served under listKey ("tasks",
// "categories", "timeSessions", "subtasks").
func (s *Server) Seed(listKey string, rec map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[listKey] = append(s.records[listKey], rec)
}

func (s *Server) Records(listKey string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.records[listKey]...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Fail makes every later request to method+path answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, method+" "+path)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil && r.ContentLength != 0 {
			json.NewDecoder(r.Body).Decode(&body)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		status, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]string{"error": "injected failure"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withBody(r.Context(), body)))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	if body["password"] != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": map[string]any{"access_token": s.token},
		"user": map[string]any{
			"id":            "user-1",
			"email":         body["email"],
			"user_metadata": map[string]any{"name": "Test User"},
		},
	})
}

func (s *Server) list(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.BeforeList != nil {
			s.BeforeList(res.path)
		}
		s.mu.Lock()
		out := append([]map[string]any{}, s.records[res.listKey]...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{res.listKey: out})
	}
}

func (s *Server) create(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		if body == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing body"})
			return
		}
		rec := make(map[string]any, len(body)+3)
		for k, v := range body {
			rec[k] = v
		}
		now := s.Now().UTC().Format(time.RFC3339Nano)
		rec["id"] = uuid.NewString()
		rec["created_at"] = now
		rec["updated_at"] = now

		s.mu.Lock()
		s.records[res.listKey] = append(s.records[res.listKey], rec)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{singular(res.listKey): rec})
	}
}

func (s *Server) update(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		id, _ := body["id"].(string)

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rec := range s.records[res.listKey] {
			if rec["id"] == id {
				for k, v := range body {
					rec[k] = v
				}
				rec["updated_at"] = s.Now().UTC().Format(time.RFC3339Nano)
				writeJSON(w, http.StatusOK, map[string]any{singular(res.listKey): rec})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("%s not found", id)})
	}
}

func (s *Server) remove(res resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := bodyFrom(r.Context())
		id, _ := body["id"].(string)

		s.mu.Lock()
		defer s.mu.Unlock()
		recs := s.records[res.listKey]
		for i, rec := range recs {
			if rec["id"] == id {
				s.records[res.listKey] = append(recs[:i], recs[i+1:]...)
				if res.listKey == "tasks" {
					s.cascadeLocked(id)
				}
				writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("%s not found", id)})
	}
}

// cascadeLocked drops sessions and subtasks owned by a deleted task.
func (s *Server) cascadeLocked(taskID string) {
	for _, key := range []string{"timeSessions", "subtasks"} {
		kept := s.records[key][:0]
		for _, rec := range s.records[key] {
			if rec["task_id"] != taskID {
				kept = append(kept, rec)
			}
		}
		s.records[key] = kept
	}
}

func singular(listKey string) string {
	return strings.TrimSuffix(listKey, "s")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
