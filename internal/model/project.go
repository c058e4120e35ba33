package model

import (
	"math/rand/v2"
	"slices"
	"time"
)

// ProjectColors is the fixed palette new projects draw their color from.
var ProjectColors = []string{
	"#3b82f6", // blue
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#f97316", // orange
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#f59e0b", // amber
	"#ef4444", // red
}

// RandomProjectColor picks a palette entry uniformly at random.
func RandomProjectColor() string {
	return ProjectColors[rand.IntN(len(ProjectColors))]
}

// ProjectOptions carries the optional fields accepted when creating a project.
type ProjectOptions struct {
	Color string
}

// Project is a named, ordered collection of todo references.
type Project struct {
	ID         string
	Name       string
	TodoIDs    []string
	CreatedAt  time.Time
	IsArchived bool
	Color      string
}

// NewProject builds an empty, active project. An empty color is filled by pick.
func NewProject(id, name string, opts ProjectOptions, now time.Time, pick func() string) *Project {
	color := opts.Color
	if color == "" {
		if pick == nil {
			pick = RandomProjectColor
		}
		color = pick()
	}
	return &Project{
		ID:        id,
		Name:      name,
		TodoIDs:   []string{},
		CreatedAt: now,
		Color:     color,
	}
}

// AddTodo appends id unless it is already present.
func (p *Project) AddTodo(id string) {
	if p.HasTodo(id) {
		return
	}
	p.TodoIDs = append(p.TodoIDs, id)
}

// RemoveTodo drops every occurrence of id, keeping the order of the rest.
func (p *Project) RemoveTodo(id string) {
	p.TodoIDs = slices.DeleteFunc(p.TodoIDs, func(v string) bool { return v == id })
}

// HasTodo reports whether id is referenced by the project.
func (p *Project) HasTodo(id string) bool {
	return slices.Contains(p.TodoIDs, id)
}

// TodoCount returns the number of referenced todos.
func (p *Project) TodoCount() int {
	return len(p.TodoIDs)
}

// UpdateName replaces the name.
func (p *Project) UpdateName(name string) {
	p.Name = name
}

// Archive hides the project from active views. Its todos are untouched.
func (p *Project) Archive() {
	p.IsArchived = true
}

// Unarchive restores the project to active views.
func (p *Project) Unarchive() {
	p.IsArchived = false
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	c.TodoIDs = append([]string{}, p.TodoIDs...)
	return &c
}
