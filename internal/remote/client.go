// Package remote talks to the Beam CRUD API: tasks, categories,
// time-sessions and subtasks over JSON with bearer authentication.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

const (
	tasksPath        = "tasks/tasks"
	categoriesPath   = "categories/categories"
	timeSessionsPath = "time-sessions/time-sessions"
	subtasksPath     = "subtasks/subtasks"
	loginPath        = "auth/login"
)

var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAnonKey sets the bearer sent on calls made before sign-in.
func WithAnonKey(key string) Option {
	return func(c *Client) { c.anonKey = key }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token == "" {
		token = c.anonKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s: %w", method, path, &StatusError{StatusCode: resp.StatusCode, Message: apiErr.Error})
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Tasks

func (c *Client) ListTasks(ctx context.Context, token string) ([]store.Task, error) {
	var out struct {
		Tasks []TaskRecord `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, tasksPath, token, nil, &out); err != nil {
		return nil, err
	}
	now := c.now()
	tasks := make([]store.Task, len(out.Tasks))
	for i, r := range out.Tasks {
		tasks[i] = r.Task(now)
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, t store.Task) error {
	return c.do(ctx, http.MethodPost, tasksPath, token, newTaskPayload(t), nil)
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, patch store.TaskPatch) error {
	return c.do(ctx, http.MethodPut, tasksPath, token, patchPayload(id, patch), nil)
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, tasksPath, token, idPayload{ID: id}, nil)
}

// Categories

func (c *Client) ListCategories(ctx context.Context, token string) ([]store.Category, error) {
	var out struct {
		Categories []CategoryRecord `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, categoriesPath, token, nil, &out); err != nil {
		return nil, err
	}
	cats := make([]store.Category, len(out.Categories))
	for i, r := range out.Categories {
		cats[i] = r.Category()
	}
	return cats, nil
}

func (c *Client) CreateCategory(ctx context.Context, token string, cat store.Category) error {
	return c.do(ctx, http.MethodPost, categoriesPath, token, categoryPayload{
		Name:  ptr(cat.Name),
		Color: nonEmpty(cat.Color),
		Icon:  nonEmpty(cat.Icon),
	}, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, token, id string, patch store.CategoryPatch) error {
	return c.do(ctx, http.MethodPut, categoriesPath, token, categoryPayload{
		ID:    id,
		Name:  patch.Name,
		Color: patch.Color,
		Icon:  patch.Icon,
	}, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, categoriesPath, token, idPayload{ID: id}, nil)
}

// Time sessions

func (c *Client) ListTimeSessions(ctx context.Context, token string) ([]store.TimeSession, error) {
	var out struct {
		TimeSessions []TimeSessionRecord `json:"timeSessions"`
	}
	if err := c.do(ctx, http.MethodGet, timeSessionsPath, token, nil, &out); err != nil {
		return nil, err
	}
	now := c.now()
	sessions := make([]store.TimeSession, len(out.TimeSessions))
	for i, r := range out.TimeSessions {
		sessions[i] = r.TimeSession(now)
	}
	return sessions, nil
}

func (c *Client) CreateTimeSession(ctx context.Context, token string, ts store.TimeSession) error {
	return c.do(ctx, http.MethodPost, timeSessionsPath, token, newSessionPayload(ts), nil)
}

// Subtasks

func (c *Client) CreateSubtask(ctx context.Context, token, taskID string, st store.Subtask) error {
	return c.do(ctx, http.MethodPost, subtasksPath, token, subtaskPayload{
		TaskID:    taskID,
		Title:     st.Title,
		Completed: st.Completed,
	}, nil)
}

func (c *Client) UpdateSubtask(ctx context.Context, token, taskID string, st store.Subtask) error {
	return c.do(ctx, http.MethodPut, subtasksPath, token, subtaskPayload{
		ID:        st.ID,
		TaskID:    taskID,
		Title:     st.Title,
		Completed: st.Completed,
	}, nil)
}

func (c *Client) DeleteSubtask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, subtasksPath, token, idPayload{ID: id}, nil)
}

// Auth

type User struct {
	ID    string
	Email string
	Name  string
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, User, error) {
	var out struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
		User *struct {
			ID           string `json:"id"`
			Email        string `json:"email"`
			UserMetadata struct {
				Name string `json:"name"`
			} `json:"user_metadata"`
		} `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, loginPath, "", body, &out); err != nil {
		return "", User{}, err
	}
	if out.Session.AccessToken == "" {
		return "", User{}, errors.New("login: no access token in response")
	}
	var u User
	if out.User != nil {
		u = User{ID: out.User.ID, Email: out.User.Email, Name: out.User.UserMetadata.Name}
	}
	return out.Session.AccessToken, u, nil
}
