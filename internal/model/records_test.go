package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoRecordWireFormat(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 15, 123_456_789, time.UTC)
	todo := NewTodoItem("t1", "Write report", "p1", TodoOptions{Priority: PriorityHigh}, created)

	raw, err := json.Marshal(todo.ToRecord())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "2024-03-01T09:30:15.123Z", got["createdAt"])
	assert.Nil(t, got["dueDate"])
	assert.Equal(t, float64(3), got["priority"])
	assert.Equal(t, "p1", got["projectId"])
	assert.Equal(t, []any{}, got["checklist"])
	assert.Contains(t, got, "isComplete")
}

func TestTodoRecordRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	created := time.Date(2024, 3, 1, 9, 30, 15, 123_000_000, loc)
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, loc)
	todo := NewTodoItem("t1", "Write report", "p1", TodoOptions{
		Description: "quarterly",
		Notes:       "ask finance",
		DueDate:     &due,
		Priority:    PriorityLow,
	}, created)
	todo.AddChecklistItem("draft")
	todo.ToggleComplete()

	back, err := TodoFromRecord(todo.ToRecord())
	require.NoError(t, err)

	assert.True(t, todo.CreatedAt.Equal(back.CreatedAt))
	require.NotNil(t, back.DueDate)
	assert.True(t, due.Equal(*back.DueDate))
	assert.Equal(t, todo.Checklist, back.Checklist)
	assert.Equal(t, todo.Priority, back.Priority)
	assert.Equal(t, todo.Notes, back.Notes)
	assert.True(t, back.IsComplete)
}

func TestTodoFromRecordPriorityFallback(t *testing.T) {
	rec := TodoRecord{ID: "t1", Priority: 0, CreatedAt: "2024-03-01T09:30:15Z"}
	todo, err := TodoFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, todo.Priority)
	assert.NotNil(t, todo.Checklist)
}

func TestFromRecordRejectsBadTimestamp(t *testing.T) {
	_, err := TodoFromRecord(TodoRecord{ID: "t1", CreatedAt: "yesterday"})
	require.Error(t, err)

	bad := "soon"
	_, err = TodoFromRecord(TodoRecord{ID: "t1", CreatedAt: "2024-03-01T09:30:15Z", DueDate: &bad})
	require.Error(t, err)

	_, err = ProjectFromRecord(ProjectRecord{ID: "p1", CreatedAt: ""})
	require.Error(t, err)
}

func TestProjectRecordRoundTrip(t *testing.T) {
	p := NewProject("p1", "Work", ProjectOptions{Color: "#3b82f6"}, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), nil)
	p.AddTodo("a")
	p.Archive()

	rec := p.ToRecord()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","name":"Work","todoIds":["a"],"createdAt":"2024-01-02T03:04:05.000Z","isArchived":true,"color":"#3b82f6"}`, string(raw))

	back, err := ProjectFromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, p.TodoIDs, back.TodoIDs)
	assert.True(t, p.CreatedAt.Equal(back.CreatedAt))
	assert.True(t, back.IsArchived)
}
