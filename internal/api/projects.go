package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todomaster/internal/model"
)

type projectResponse struct {
	model.ProjectRecord
	Uncompleted int `json:"uncompleted"`
}

func (s *Server) projectJSON(p *model.Project) projectResponse {
	return projectResponse{ProjectRecord: p.ToRecord(), Uncompleted: s.st.UncompletedCount(p.ID)}
}

// listProjects returns every project. ?archived=false hides archived ones.
func (s *Server) listProjects(c *gin.Context) {
	projects := s.st.Projects()
	if c.Query("archived") == "false" {
		projects = s.st.ActiveProjects()
	}
	out := make([]projectResponse, len(projects))
	for i, p := range projects {
		out[i] = s.projectJSON(p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c *gin.Context) {
	var body struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		s.fail(c, badRequest("name must not be blank"))
		return
	}
	p := s.st.CreateProject(name, model.ProjectOptions{Color: body.Color})
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.projectJSON(p))
}

func (s *Server) getProject(c *gin.Context) {
	p, ok := s.st.Project(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "project not found: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, s.projectJSON(p))
}

func (s *Server) renameProject(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		s.fail(c, badRequest("name must not be blank"))
		return
	}
	s.mutateProject(c, func(id string) error {
		return s.st.RenameProject(id, name)
	})
}

func (s *Server) archiveProject(c *gin.Context) {
	s.mutateProject(c, s.st.ArchiveProject)
}

func (s *Server) unarchiveProject(c *gin.Context) {
	s.mutateProject(c, s.st.UnarchiveProject)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.st.DeleteProject(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// mutateProject applies fn to the project in the path and returns it.
func (s *Server) mutateProject(c *gin.Context, fn func(id string) error) {
	id := c.Param("id")
	if err := fn(id); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	p, _ := s.st.Project(id)
	c.JSON(http.StatusOK, s.projectJSON(p))
}

type selectionBody struct {
	ProjectID string `json:"projectId"`
}

func (s *Server) getSelection(c *gin.Context) {
	c.JSON(http.StatusOK, selectionBody{ProjectID: s.st.CurrentProjectID()})
}

// setSelection selects a project. An empty projectId selects all projects.
func (s *Server) setSelection(c *gin.Context) {
	var body selectionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.fail(c, badRequest("invalid request: "+err.Error()))
		return
	}
	if err := s.st.SetCurrentProject(body.ProjectID); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.persist(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, selectionBody{ProjectID: s.st.CurrentProjectID()})
}
