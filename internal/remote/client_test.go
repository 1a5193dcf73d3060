package remote

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lillogorillo/Beam-App/internal/remote/remotetest"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

const token = "tok-123"

func newTestClient(t *testing.T) (*Client, *remotetest.Server) {
	t.Helper()
	srv := remotetest.New(token)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithClock(func() time.Time { return now })), srv
}

func TestListTasksSendsBearer(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Seed("tasks", map[string]any{"id": "t1", "title": "A", "status": "completed"})

	tasks, err := c.ListTasks(context.Background(), token)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer "+token, reqs[0].Auth)
	assert.Equal(t, "/tasks/tasks", reqs[0].Path)
}

func TestUnauthorized(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.ListCategories(context.Background(), "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "invalid token", se.Message)
}

func TestServerErrorIsStatusError(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Fail(http.MethodGet, "/time-sessions/time-sessions", http.StatusInternalServerError)

	_, err := c.ListTimeSessions(context.Background(), token)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.False(t, errors.Is(err, ErrUnauthorized))
}

func TestTaskCRUDRoundTrip(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateTask(ctx, token, store.Task{Title: "Remote", Priority: store.PriorityHigh, Category: "c1"}))
	recs := srv.Records("tasks")
	require.Len(t, recs, 1)
	assert.Equal(t, "c1", recs[0]["category_id"])
	assert.Equal(t, "pending", recs[0]["status"])
	id := recs[0]["id"].(string)

	done := true
	require.NoError(t, c.UpdateTask(ctx, token, id, store.TaskPatch{Completed: &done}))
	tasks, err := c.ListTasks(ctx, token)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.Equal(t, "Remote", tasks[0].Title)

	require.NoError(t, c.DeleteTask(ctx, token, id))
	assert.Empty(t, srv.Records("tasks"))

	err = c.DeleteTask(ctx, token, id)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestCategoryAndSessionWrites(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateCategory(ctx, token, store.Category{Name: "Gym", Color: "#111", Icon: "heart"}))
	id := srv.Records("categories")[0]["id"].(string)
	name := "Fitness"
	require.NoError(t, c.UpdateCategory(ctx, token, id, store.CategoryPatch{Name: &name}))
	cats, err := c.ListCategories(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Fitness", cats[0].Name)
	assert.Equal(t, "#111", cats[0].Color)
	require.NoError(t, c.DeleteCategory(ctx, token, id))

	require.NoError(t, c.CreateTimeSession(ctx, token, store.TimeSession{TaskID: "t1", StartTime: now, Duration: 90, Type: store.SessionWork}))
	sessions, err := c.ListTimeSessions(ctx, token)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(90), sessions[0].Duration)
	assert.Equal(t, "t1", sessions[0].TaskID)
}

func TestSubtaskWrites(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateSubtask(ctx, token, "t1", store.Subtask{Title: "step"}))
	rec := srv.Records("subtasks")[0]
	assert.Equal(t, "t1", rec["task_id"])
	id := rec["id"].(string)

	require.NoError(t, c.UpdateSubtask(ctx, token, "t1", store.Subtask{ID: id, Title: "step", Completed: true}))
	assert.Equal(t, true, srv.Records("subtasks")[0]["completed"])
	require.NoError(t, c.DeleteSubtask(ctx, token, id))
	assert.Empty(t, srv.Records("subtasks"))
}

func TestLogin(t *testing.T) {
	c, srv := newTestClient(t)
	tok, user, err := c.Login(context.Background(), "me@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, token, tok)
	assert.Equal(t, "me@example.com", user.Email)
	assert.Equal(t, "Test User", user.Name)
	assert.Empty(t, srv.Requests()[0].Auth, "no anon key configured")

	_, _, err = c.Login(context.Background(), "me@example.com", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAnonKeyOnLogin(t *testing.T) {
	srv := remotetest.New(token)
	defer srv.Close()
	c := New(srv.URL+"/", WithAnonKey("anon"))

	_, _, err := c.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Bearer anon", srv.Requests()[0].Auth)
}
