package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nhle/todomaster/internal/keys"
	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	appsync "github.com/nhle/todomaster/internal/sync"
	"github.com/nhle/todomaster/internal/theme"
	"github.com/nhle/todomaster/internal/ui"
	"github.com/nhle/todomaster/internal/ui/command"
	configview "github.com/nhle/todomaster/internal/ui/config"
	"github.com/nhle/todomaster/internal/ui/detail"
	helpview "github.com/nhle/todomaster/internal/ui/help"
	"github.com/nhle/todomaster/internal/ui/projectmgr"
	"github.com/nhle/todomaster/internal/ui/tasklist"
	"github.com/nhle/todomaster/internal/ui/todoform"
)

// flushTimeout bounds the final save on quit.
const flushTimeout = 5 * time.Second

// flushedMsg is sent once the exit flush has finished.
type flushedMsg struct{ err error }

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTodoForm
	ViewProjectList
	ViewSettings
)

// Options wires the root model to its collaborators. Saver may be nil, in
// which case nothing is persisted.
type Options struct {
	State      *state.AppState
	Saver      *appsync.Saver
	Config     *model.AppConfig
	ConfigPath string
	Logger     *log.Logger
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the application state. Views read the state and report intents as
// messages; Update applies them, which in turn schedules an autosave.
type Model struct {
	currentView  ViewState
	previousView ViewState
	formReturn   ViewState
	layout       ui.Layout
	st           *state.AppState
	saver        *appsync.Saver
	detach       func()
	cfg          *model.AppConfig
	logger       *log.Logger
	keys         *keys.KeyMap
	taskList     tasklist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	todoFormView todoform.Model
	projectView  projectmgr.Model
	configView   configview.Model
	ready        bool
	quitting     bool
	saveErr      string
	flash        string
}

// New creates a new root application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	st := opts.State
	if st == nil {
		st = state.New()
	}
	theme.Apply(cfg.Display.Theme)

	filter, err := state.ParseFilter(cfg.Display.DefaultFilter)
	if err != nil {
		filter = state.FilterAll
	}
	sortKey, err := state.ParseSortKey(cfg.Display.DefaultSort)
	if err != nil {
		sortKey = state.SortDate
	}

	k := keys.DefaultKeyMap()
	m := Model{
		currentView:  ViewList,
		st:           st,
		saver:        opts.Saver,
		cfg:          cfg,
		logger:       logger,
		keys:         k,
		taskList:     tasklist.New(st, k, filter, sortKey, 80, 24),
		detail:       detail.New(st, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		todoFormView: todoform.New(80, 24),
		projectView:  projectmgr.New(st, k, 80, 24),
		configView:   configview.New(opts.ConfigPath, cfg, 80, 24),
	}
	if m.saver != nil {
		m.detach = m.saver.Attach(st)
	}
	m.commandView.SetProjectNames(m.projectNames())
	return m
}

// Init starts listening for autosave results.
func (m Model) Init() tea.Cmd {
	if m.saver == nil {
		return nil
	}
	return m.saver.WaitForResult()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.todoFormView.SetSize(contentWidth, contentHeight)
		m.projectView.SetSize(contentWidth, contentHeight)
		m.configView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SaveResultMsg:
		if msg.Err != nil {
			m.saveErr = "save failed: " + msg.Err.Error()
		} else {
			m.saveErr = ""
		}
		if m.quitting {
			return m, nil
		}
		return m, m.saver.WaitForResult()

	case flushedMsg:
		if msg.err != nil {
			m.logger.Error("final save failed", "err", msg.err)
		}
		return m, tea.Quit

	case tasklist.SelectedTodoMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.Open(msg.TodoID)
		return m, nil

	case tasklist.NewTodoMsg:
		return m.startCreate()

	case tasklist.EditTodoMsg:
		return m.startEdit(msg.TodoID)

	case detail.EditMsg:
		return m.startEdit(msg.TodoID)

	case tasklist.MoveTodoMsg:
		return m.startMove(msg.TodoID)

	case tasklist.ToggleTodoMsg:
		m.apply(m.st.ToggleTodoComplete(msg.TodoID))
		return m, nil

	case tasklist.DeleteTodoMsg:
		m.apply(m.st.DeleteTodo(msg.TodoID))
		return m, nil

	case todoform.TodoSubmittedMsg:
		m.currentView = m.formReturn
		m.submitTodo(msg)
		return m, nil

	case todoform.TodoMoveMsg:
		m.currentView = m.formReturn
		m.apply(m.st.MoveTodoToProject(msg.TodoID, msg.ProjectID))
		return m, nil

	case todoform.TodoFormCancelMsg:
		m.currentView = m.formReturn
		return m, nil

	case detail.ChecklistMsg:
		m.applyChecklist(msg)
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		m.refresh()
		return m, nil

	case projectmgr.ProjectListCloseMsg:
		m.currentView = ViewList
		m.refresh()
		return m, nil

	case projectmgr.ProjectChangedMsg:
		m.refresh()
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewList
		return m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case configview.ConfigDoneMsg:
		m.currentView = ViewList
		return m, nil

	case configview.ConfigSavedMsg:
		m.currentView = ViewList
		if msg.Err != nil {
			m.flash = "settings not saved: " + msg.Err.Error()
			return m, nil
		}
		m.applyConfig(msg.Config)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if m.currentView == ViewHelp &&
			(key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back)) {
			m.currentView = m.previousView
			return m, nil
		}

		// Global keys only apply on the list, where no text input has focus.
		if m.currentView == ViewList && !m.taskList.Confirming() {
			m.flash = ""
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m.quit()

			case key.Matches(msg, m.keys.Help):
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil

			case key.Matches(msg, m.keys.Command):
				m.previousView = m.currentView
				m.currentView = ViewCommand
				return m, m.commandView.Focus()

			case key.Matches(msg, m.keys.Settings):
				return m.openSettings()

			case key.Matches(msg, m.keys.Projects):
				return m.openProjects()

			case key.Matches(msg, m.keys.PrevProject):
				m.cycleProject(-1)
				return m, nil

			case key.Matches(msg, m.keys.NextProject):
				m.cycleProject(1)
				return m, nil

			case key.Matches(msg, m.keys.AllProjects):
				m.apply(m.st.SetCurrentProject(""))
				return m, nil
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTodoForm:
		m.todoFormView, cmd = m.todoFormView.Update(msg)
	case ViewProjectList:
		m.projectView, cmd = m.projectView.Update(msg)
	case ViewSettings:
		m.configView, cmd = m.configView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(m.headerTitle(), m.counters())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.errorText())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTodoForm:
		return m.todoFormView.View()
	case ViewProjectList:
		return m.projectView.View()
	case ViewSettings:
		return m.configView.View()
	default:
		return ""
	}
}

func (m Model) headerTitle() string {
	if p, ok := m.st.CurrentProject(); ok {
		return "todomaster · " + p.Name
	}
	return "todomaster · All projects"
}

// counters summarizes the open todos across every project.
func (m Model) counters() string {
	return fmt.Sprintf("today %d · week %d · overdue %d",
		m.st.TodayCount(), m.st.WeekCount(), m.st.OverdueCount())
}

// errorText returns what the status bar should show in the error style.
// A failed save outranks a failed action.
func (m Model) errorText() string {
	if m.saveErr != "" {
		return m.saveErr
	}
	return m.flash
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "a add step | x toggle | d remove | e edit | esc back"
	case ViewTodoForm, ViewSettings:
		return "enter submit | esc cancel"
	case ViewProjectList:
		return "enter select | n new | e rename | a archive | d delete | esc back"
	default:
		return "q quit | ? help | n new | x done | f filter | tab sort | [ ] project | p projects | : command"
	}
}

// quit detaches the autosaver and writes the last snapshot before exiting.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	m.quitting = true
	if m.detach != nil {
		m.detach()
	}
	if m.saver == nil {
		return m, tea.Quit
	}
	m.saver.Stop()
	saver := m.saver
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		return flushedMsg{err: saver.Flush(ctx)}
	}
}
