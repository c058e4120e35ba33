package cli

import (
	"fmt"
	"strings"

	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
)

// resolveTodo finds a todo by full id or unique id prefix.
func resolveTodo(st *state.AppState, ref string) (*model.TodoItem, error) {
	ref = strings.TrimSpace(ref)
	if t, ok := st.Todo(ref); ok {
		return t, nil
	}
	var found *model.TodoItem
	for _, t := range st.Todos() {
		if ref == "" || !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("todo id prefix %q is ambiguous", ref)
		}
		found = t
	}
	if found == nil {
		return nil, &state.NotFoundError{Kind: state.KindTodo, ID: ref}
	}
	return found, nil
}

// resolveProject finds a project by full id, unique id prefix or
// case-insensitive name.
func resolveProject(st *state.AppState, ref string) (*model.Project, error) {
	ref = strings.TrimSpace(ref)
	if p, ok := st.Project(ref); ok {
		return p, nil
	}
	var byName, byPrefix []*model.Project
	for _, p := range st.Projects() {
		if strings.EqualFold(p.Name, ref) {
			byName = append(byName, p)
		}
		if ref != "" && strings.HasPrefix(p.ID, ref) {
			byPrefix = append(byPrefix, p)
		}
	}
	switch {
	case len(byName) == 1:
		return byName[0], nil
	case len(byName) > 1:
		return nil, fmt.Errorf("project name %q is ambiguous, use its id", ref)
	case len(byPrefix) == 1:
		return byPrefix[0], nil
	case len(byPrefix) > 1:
		return nil, fmt.Errorf("project id prefix %q is ambiguous", ref)
	}
	return nil, &state.NotFoundError{Kind: state.KindProject, ID: ref}
}

// resolveChecklistItem finds an entry of td's checklist by id or prefix.
func resolveChecklistItem(td *model.TodoItem, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var found string
	for _, item := range td.Checklist {
		if item.ID == ref {
			return item.ID, nil
		}
		if ref == "" || !strings.HasPrefix(item.ID, ref) {
			continue
		}
		if found != "" {
			return "", fmt.Errorf("checklist item prefix %q is ambiguous", ref)
		}
		found = item.ID
	}
	if found == "" {
		return "", &state.NotFoundError{Kind: state.KindChecklistItem, ID: ref}
	}
	return found, nil
}
