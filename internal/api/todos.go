package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// parseDue accepts a calendar date (local midnight) or a full timestamp.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := model.ParseDate(s, time.Local); err == nil {
		return t, nil
	}
	t, err := model.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, badRequest("invalid dueDate " + s + ": want YYYY-MM-DD or an RFC 3339 timestamp")
	}
	return t, nil
}

func (s *Server) listTodos(c *gin.Context) {
	f, err := state.ParseFilter(c.Query("filter"))
	if err != nil {
		s.fail(c, badRequest(err.Error()))
		return
	}
	key, err := state.ParseSortKey(c.Query("sort"))
	if err != nil {
		s.fail(c, badRequest(err.Error()))
		return
	}
	projectID := c.Query("project")
	if projectID == "current" {
		projectID = s.st.CurrentProjectID()
	}
	if projectID != "" {
		if _, ok := s.st.Project(projectID); !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "project not found: " + projectID})
			return
		}
	}

	todos := s.st.FilteredTodos(projectID, f, key)
	out := make([]model.TodoRecord, len(todos))
	for i, t := range todos {
		out[i] = t.ToRecord()
	}
	c.JSON(http.StatusOK, out)
}

type createTodoBody struct {
	Title       string `json:"title" binding:"required"`
	ProjectID   string `json:"projectId"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// createTodo adds a todo. projectId defaults to the selected project.
func (s *Server) createTodo(c *gin.Context) {
	var body createTodoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		s.fail(c, badRequest("title must not be blank"))
		return
	}

	opts := model.TodoOptions{Description: body.Description, Notes: body.Notes}
	if body.Priority != "" {
		p, err := model.ParsePriority(body.Priority)
		if err != nil {
			s.fail(c, err)
			return
		}
		opts.Priority = p
	}
	if body.DueDate != "" {
		due, err := parseDue(body.DueDate)
		if err != nil {
			s.fail(c, err)
			return
		}
		opts.DueDate = &due
	}

	projectID := body.ProjectID
	if projectID == "" {
		projectID = s.st.CurrentProjectID()
	}
	if projectID == "" {
		s.fail(c, badRequest("projectId is required when no project is selected"))
		return
	}

	todo, err := s.st.CreateTodo(title, projectID, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo.ToRecord())
}

func (s *Server) getTodo(c *gin.Context) {
	todo, ok := s.st.Todo(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "todo not found: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, todo.ToRecord())
}

type updateTodoBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
	Priority    *string `json:"priority"`
	IsComplete  *bool   `json:"isComplete"`
	// DueDate is raw so an explicit null (clear) differs from absent (keep).
	DueDate json.RawMessage `json:"dueDate"`
}

// patch converts the body into a TodoPatch.
func (b updateTodoBody) patch() (model.TodoPatch, error) {
	p := model.TodoPatch{
		Title:       b.Title,
		Description: b.Description,
		Notes:       b.Notes,
		IsComplete:  b.IsComplete,
	}
	if b.Title != nil && strings.TrimSpace(*b.Title) == "" {
		return p, badRequest("title must not be blank")
	}
	if b.Priority != nil {
		pr, err := model.ParsePriority(*b.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if len(b.DueDate) > 0 {
		p.SetDueDate = true
		if !bytes.Equal(bytes.TrimSpace(b.DueDate), []byte("null")) {
			var raw string
			if err := json.Unmarshal(b.DueDate, &raw); err != nil {
				return p, badRequest("dueDate must be a string or null")
			}
			due, err := parseDue(raw)
			if err != nil {
				return p, err
			}
			p.DueDate = &due
		}
	}
	return p, nil
}

func (s *Server) updateTodo(c *gin.Context) {
	var body updateTodoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	patch, err := body.patch()
	if err != nil {
		s.fail(c, err)
		return
	}
	s.mutateTodo(c, func(id string) error {
		return s.st.UpdateTodo(id, patch)
	})
}

func (s *Server) toggleTodo(c *gin.Context) {
	s.mutateTodo(c, s.st.ToggleTodoComplete)
}

func (s *Server) moveTodo(c *gin.Context) {
	var body struct {
		ProjectID string `json:"projectId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	s.mutateTodo(c, func(id string) error {
		return s.st.MoveTodoToProject(id, body.ProjectID)
	})
}

func (s *Server) deleteTodo(c *gin.Context) {
	if err := s.st.DeleteTodo(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) addChecklistItem(c *gin.Context) {
	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	item, err := s.st.AddChecklistItem(c.Param("id"), strings.TrimSpace(body.Text))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) toggleChecklistItem(c *gin.Context) {
	itemID := c.Param("itemId")
	s.mutateTodo(c, func(id string) error {
		return s.st.ToggleChecklistItem(id, itemID)
	})
}

func (s *Server) removeChecklistItem(c *gin.Context) {
	itemID := c.Param("itemId")
	s.mutateTodo(c, func(id string) error {
		return s.st.RemoveChecklistItem(id, itemID)
	})
}

// mutateTodo applies fn to the todo in the path and returns it.
func (s *Server) mutateTodo(c *gin.Context, fn func(id string) error) {
	id := c.Param("id")
	if err := fn(id); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	todo, _ := s.st.Todo(id)
	c.JSON(http.StatusOK, todo.ToRecord())
}

type countsResponse struct {
	Today       int `json:"today"`
	Week        int `json:"week"`
	Overdue     int `json:"overdue"`
	Uncompleted int `json:"uncompleted"`
}

// counts reports the global date counters and the open todos of ?project
// (all projects when absent).
func (s *Server) counts(c *gin.Context) {
	c.JSON(http.StatusOK, countsResponse{
		Today:       s.st.TodayCount(),
		Week:        s.st.WeekCount(),
		Overdue:     s.st.OverdueCount(),
		Uncompleted: s.st.UncompletedCount(c.Query("project")),
	})
}
