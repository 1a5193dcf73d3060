package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lillogorillo/Beam-App/internal/store"
)

var now = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func TestTaskRecordTranslation(t *testing.T) {
	raw := `{
		"id": "t1",
		"title": "Ship it",
		"description": null,
		"status": "completed",
		"priority": "high",
		"category_id": "c9",
		"due_date": "2026-05-03T00:00:00+00:00",
		"created_at": "2026-04-30T08:00:00.123456+00:00",
		"updated_at": null,
		"estimated_time": 45
	}`
	var rec TaskRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	task := rec.Task(now)
	assert.Equal(t, "t1", task.ID)
	assert.True(t, task.Completed)
	assert.Equal(t, store.PriorityHigh, task.Priority)
	assert.Equal(t, "c9", task.Category)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2026, task.CreatedAt.Year())
	assert.True(t, task.UpdatedAt.Equal(now), "missing updated_at defaults to now")
	assert.Equal(t, 45, task.EstimatedTime)
	assert.Nil(t, task.Subtasks, "no subtask list on the wire")
}

func TestTaskRecordDefaults(t *testing.T) {
	tests := []struct {
		name      string
		rec       TaskRecord
		completed bool
		priority  store.Priority
		category  string
	}{
		{"pending status", TaskRecord{Status: "pending"}, false, store.PriorityMedium, ""},
		{"uppercase completed", TaskRecord{Status: "COMPLETED", Priority: "LOW"}, true, store.PriorityLow, ""},
		{"in progress is not completed", TaskRecord{Status: "in_progress"}, false, store.PriorityMedium, ""},
		{"unknown priority", TaskRecord{Priority: "urgent", CategoryID: ptr("c1")}, false, store.PriorityMedium, "c1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.rec.Task(now)
			assert.Equal(t, tt.completed, task.Completed)
			assert.Equal(t, tt.priority, task.Priority)
			assert.Equal(t, tt.category, task.Category)
			assert.True(t, task.CreatedAt.Equal(now))
		})
	}
}

func TestTaskRecordSubtasks(t *testing.T) {
	rec := TaskRecord{ID: "t1", Subtasks: []SubtaskRecord{{ID: "s1", Title: "step", Completed: true}}}
	task := rec.Task(now)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, "step", task.Subtasks[0].Title)
	assert.True(t, task.Subtasks[0].Completed)
	assert.True(t, task.Subtasks[0].CreatedAt.Equal(now))
}

func TestTimeSessionRecordTranslation(t *testing.T) {
	end := "2026-05-01T09:25:00Z"
	rec := TimeSessionRecord{
		ID:        "s1",
		TaskID:    ptr("t1"),
		StartTime: "2026-05-01T09:00:00Z",
		EndTime:   &end,
		Type:      "break",
	}
	ts := rec.TimeSession(now)
	assert.Equal(t, store.SessionWork, ts.Type, "type is normalised to work")
	assert.Equal(t, int64(1500), ts.Duration, "duration derived from end-start")
	assert.Equal(t, "t1", ts.TaskID)

	explicit := int64(60)
	rec.Duration = &explicit
	assert.Equal(t, int64(60), rec.TimeSession(now).Duration)

	open := TimeSessionRecord{ID: "s2", StartTime: ""}
	ts = open.TimeSession(now)
	assert.Nil(t, ts.EndTime)
	assert.True(t, ts.StartTime.Equal(now))
	assert.Zero(t, ts.Duration)
}

func TestCategoryRecordDefaults(t *testing.T) {
	c := CategoryRecord{ID: "c1", Name: "Home"}.Category()
	assert.Equal(t, "#3B82F6", c.Color)
	assert.Equal(t, "folder", c.Icon)

	c = CategoryRecord{ID: "c2", Name: "Gym", Color: ptr("#000"), Icon: ptr("heart")}.Category()
	assert.Equal(t, "#000", c.Color)
	assert.Equal(t, "heart", c.Icon)
}

func TestPatchPayloadOnlyChangedFields(t *testing.T) {
	done := true
	cat := "c2"
	data, err := json.Marshal(patchPayload("t1", store.TaskPatch{Completed: &done, Category: &cat}))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{"id": "t1", "status": "completed", "category_id": "c2"}, got)

	pending := false
	data, _ = json.Marshal(patchPayload("t1", store.TaskPatch{Completed: &pending}))
	assert.JSONEq(t, `{"id":"t1","status":"pending"}`, string(data))
}

func TestNewTaskPayload(t *testing.T) {
	due := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(newTaskPayload(store.Task{
		ID:       "local-id",
		Title:    "Read",
		Priority: store.PriorityLow,
		DueDate:  &due,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "Read",
		"status": "pending",
		"priority": "low",
		"due_date": "2026-05-02T12:00:00Z"
	}`, string(data))
}

func TestNewSessionPayload(t *testing.T) {
	end := now.Add(time.Minute)
	data, err := json.Marshal(newSessionPayload(store.TimeSession{
		TaskID: "t1", StartTime: now, EndTime: &end, Duration: 60, Type: store.SessionWork,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"task_id": "t1",
		"start_time": "2026-05-01T09:30:00Z",
		"end_time": "2026-05-01T09:31:00Z",
		"duration": 60,
		"type": "work"
	}`, string(data))
}

func TestParseTimeLayouts(t *testing.T) {
	for _, s := range []string{
		"2026-05-01T09:30:00Z",
		"2026-05-01T09:30:00.5+02:00",
		"2026-05-01T09:30:00",
		"2026-05-01 09:30:00+00:00",
		"2026-05-01",
	} {
		_, ok := parseTime(s)
		assert.True(t, ok, s)
	}
	_, ok := parseTime("yesterday")
	assert.False(t, ok)
	assert.True(t, timeOr(ptr("garbage"), now).Equal(now))
}
