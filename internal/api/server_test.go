package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/store"
	"github.com/nhle/todomaster/tests/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

func newTestServer(t *testing.T) (*Server, *store.Storage) {
	t.Helper()
	storage := testutil.NewTestStorage(t)
	opts := []state.Option{testutil.FixedClock(testNow)}
	srv := New(Options{
		State:        state.New(opts...),
		Storage:      storage,
		StateOptions: opts,
	})
	return srv, storage
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createProject(t *testing.T, srv *Server, name string) projectResponse {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/projects", `{"name":"`+name+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[projectResponse](t, rec)
}

func createTodo(t *testing.T, srv *Server, body string) model.TodoRecord {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/todos", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.TodoRecord](t, rec)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestProjectLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createProject(t, srv, "Work")
	assert.Equal(t, "Work", p.Name)
	assert.NotEmpty(t, p.Color)
	assert.Equal(t, []string{}, p.TodoIDs)

	rec := do(t, srv, http.MethodPatch, "/api/projects/"+p.ID, `{"name":"Office"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Office", decode[projectResponse](t, rec).Name)

	rec = do(t, srv, http.MethodPost, "/api/projects/"+p.ID+"/archive", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[projectResponse](t, rec).IsArchived)

	rec = do(t, srv, http.MethodGet, "/api/projects?archived=false", "")
	assert.Empty(t, decode[[]projectResponse](t, rec))

	rec = do(t, srv, http.MethodPost, "/api/projects/"+p.ID+"/unarchive", "")
	assert.False(t, decode[projectResponse](t, rec).IsArchived)

	rec = do(t, srv, http.MethodDelete, "/api/projects/"+p.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/projects/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTodoValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createProject(t, srv, "Work")

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing title", `{"projectId":"` + p.ID + `"}`, http.StatusBadRequest},
		{"blank title", `{"title":"  ","projectId":"` + p.ID + `"}`, http.StatusBadRequest},
		{"bad priority", `{"title":"x","projectId":"` + p.ID + `","priority":"urgent"}`, http.StatusBadRequest},
		{"bad date", `{"title":"x","projectId":"` + p.ID + `","dueDate":"tomorrow"}`, http.StatusBadRequest},
		{"no project selected", `{"title":"x"}`, http.StatusBadRequest},
		{"unknown project", `{"title":"x","projectId":"nope"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/todos", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
	assert.Equal(t, 0, srv.st.Len())
}

func TestTodoLifecycle(t *testing.T) {
	srv, storage := newTestServer(t)
	work := createProject(t, srv, "Work")
	home := createProject(t, srv, "Home")

	todo := createTodo(t, srv, `{"title":"Write report","projectId":"`+work.ID+`","priority":"high","dueDate":"2026-03-10"}`)
	assert.Equal(t, int(model.PriorityHigh), todo.Priority)
	require.NotNil(t, todo.DueDate)

	rec := do(t, srv, http.MethodPatch, "/api/todos/"+todo.ID, `{"title":"Write final report","dueDate":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.TodoRecord](t, rec)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, int(model.PriorityHigh), updated.Priority)

	rec = do(t, srv, http.MethodPost, "/api/todos/"+todo.ID+"/toggle", "")
	assert.True(t, decode[model.TodoRecord](t, rec).IsComplete)

	rec = do(t, srv, http.MethodPost, "/api/todos/"+todo.ID+"/move", `{"projectId":"`+home.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, home.ID, decode[model.TodoRecord](t, rec).ProjectID)

	rec = do(t, srv, http.MethodPost, "/api/todos/"+todo.ID+"/checklist", `{"text":"outline"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[model.ChecklistItem](t, rec)
	assert.Equal(t, "outline", item.Text)

	rec = do(t, srv, http.MethodPost, "/api/todos/"+todo.ID+"/checklist/"+item.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.TodoRecord](t, rec).Checklist[0].IsChecked)

	rec = do(t, srv, http.MethodDelete, "/api/todos/"+todo.ID+"/checklist/"+item.ID, "")
	assert.Empty(t, decode[model.TodoRecord](t, rec).Checklist)

	rec = do(t, srv, http.MethodDelete, "/api/todos/"+todo.ID+"/checklist/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/todos/"+todo.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Without an autosaver every mutation is written before the response.
	loaded, err := storage.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 0, loaded.Len())
	assert.Len(t, loaded.Projects(), 2)
}

func TestListTodosFilterAndSort(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createProject(t, srv, "Work")

	createTodo(t, srv, `{"title":"later","projectId":"`+p.ID+`","dueDate":"2026-03-20"}`)
	createTodo(t, srv, `{"title":"undated","projectId":"`+p.ID+`"}`)
	createTodo(t, srv, `{"title":"today","projectId":"`+p.ID+`","dueDate":"2026-03-10","priority":"low"}`)

	rec := do(t, srv, http.MethodGet, "/api/todos?sort=date", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var titles []string
	for _, td := range decode[[]model.TodoRecord](t, rec) {
		titles = append(titles, td.Title)
	}
	assert.Equal(t, []string{"today", "later", "undated"}, titles)

	rec = do(t, srv, http.MethodGet, "/api/todos?project="+p.ID+"&filter=today", "")
	today := decode[[]model.TodoRecord](t, rec)
	require.Len(t, today, 1)
	assert.Equal(t, "today", today[0].Title)

	rec = do(t, srv, http.MethodGet, "/api/todos?filter=someday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/todos?project=missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/counts", "")
	counts := decode[countsResponse](t, rec)
	assert.Equal(t, 1, counts.Today)
	assert.Equal(t, 3, counts.Uncompleted)
}

func TestSelection(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createProject(t, srv, "Work")

	rec := do(t, srv, http.MethodPut, "/api/selection", `{"projectId":"`+p.ID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// A selected project is the default target for new todos.
	todo := createTodo(t, srv, `{"title":"x"}`)
	assert.Equal(t, p.ID, todo.ProjectID)

	rec = do(t, srv, http.MethodGet, "/api/todos?project=current", "")
	assert.Len(t, decode[[]model.TodoRecord](t, rec), 1)

	rec = do(t, srv, http.MethodPut, "/api/selection", `{"projectId":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/selection", `{"projectId":""}`)
	assert.Equal(t, "", decode[selectionBody](t, rec).ProjectID)
}

func TestExportImport(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createProject(t, srv, "Work")
	createTodo(t, srv, `{"title":"x","projectId":"`+p.ID+`"}`)

	rec := do(t, srv, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	exported := rec.Body.String()
	assert.Contains(t, exported, `"allTodos"`)

	other, _ := newTestServer(t)
	rec = do(t, other, http.MethodPost, "/api/import", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, other.st.Len())

	rec = do(t, other, http.MethodPost, "/api/import", `{"projects":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, other.st.Len())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInsufficientStorage,
		statusFor(&store.StorageError{Kind: store.KindQuotaExceeded, Op: "save"}))
	assert.Equal(t, http.StatusInternalServerError,
		statusFor(&store.StorageError{Kind: store.KindWrite, Op: "save"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidPriority))
}
