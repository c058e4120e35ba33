package config

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/credential"
	"github.com/nhle/todomaster/internal/model"
	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// ConfigDoneMsg signals the settings view should close without saving.
type ConfigDoneMsg struct{}

// ConfigSavedMsg reports the outcome of writing the settings file. Config is
// the new configuration when Err is nil.
type ConfigSavedMsg struct {
	Config *model.AppConfig
	Err    error
}

// formBindings holds form values on the heap so huh's pointers survive
// Bubble Tea model copies.
type formBindings struct {
	theme         string
	defaultFilter state.Filter
	defaultSort   state.SortKey
	backend       string
	redisURL      string
	redisPassword string
	logLevel      string
}

// Model is the settings view. It edits a copy of the configuration and
// writes it to path on submit.
type Model struct {
	form          *huh.Form
	fb            *formBindings
	path          string
	cfg           model.AppConfig
	width, height int
}

// New creates a new settings view model.
func New(path string, cfg *model.AppConfig, width, height int) Model {
	m := Model{
		fb:     &formBindings{},
		path:   path,
		width:  width,
		height: height,
	}
	if cfg != nil {
		m.cfg = *cfg
	} else {
		m.cfg = *model.DefaultAppConfig()
	}
	return m
}

// Init builds the form from the current configuration.
func (m *Model) Init() tea.Cmd {
	*m.fb = formBindings{
		theme:         m.cfg.Display.Theme,
		defaultFilter: state.Filter(m.cfg.Display.DefaultFilter),
		defaultSort:   state.SortKey(m.cfg.Display.DefaultSort),
		backend:       m.cfg.Storage.Backend,
		redisURL:      m.cfg.Storage.RedisURL,
		logLevel:      m.cfg.Log.Level,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.save()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return ConfigDoneMsg{} }
	}
	return m, cmd
}

func (m Model) buildForm() *huh.Form {
	filterOpts := make([]huh.Option[state.Filter], 0, len(state.Filters))
	for _, f := range state.Filters {
		filterOpts = append(filterOpts, huh.NewOption(string(f), f))
	}
	sortOpts := make([]huh.Option[state.SortKey], 0, len(state.SortKeys))
	for _, k := range state.SortKeys {
		sortOpts = append(sortOpts, huh.NewOption(string(k), k))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions("default", "mono")...).
				Value(&m.fb.theme),
			huh.NewSelect[state.Filter]().
				Title("Default filter").
				Options(filterOpts...).
				Value(&m.fb.defaultFilter),
			huh.NewSelect[state.SortKey]().
				Title("Default sort").
				Options(sortOpts...).
				Value(&m.fb.defaultSort),
		).Title("Display"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Backend").
				Description("Takes effect on next start.").
				Options(huh.NewOptions(model.BackendSQLite, model.BackendRedis, model.BackendMemory)...).
				Value(&m.fb.backend),
			huh.NewInput().
				Title("Redis URL").
				Placeholder("redis://localhost:6379/0").
				Value(&m.fb.redisURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Redis password").
				Description("Stored in the system keyring. Leave blank to keep.").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.redisPassword),
		).Title("Storage"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&m.fb.logLevel),
		).Title("Logging"),
	).WithWidth(m.formWidth())
}

func (m Model) save() tea.Cmd {
	cfg := m.cfg
	fb := *m.fb
	path := m.path
	return func() tea.Msg {
		cfg.Display.Theme = fb.theme
		cfg.Display.DefaultFilter = string(fb.defaultFilter)
		cfg.Display.DefaultSort = string(fb.defaultSort)
		cfg.Storage.Backend = fb.backend
		cfg.Storage.RedisURL = strings.TrimSpace(fb.redisURL)
		cfg.Log.Level = fb.logLevel

		if err := cfg.Validate(); err != nil {
			return ConfigSavedMsg{Err: err}
		}
		if fb.redisPassword != "" {
			if err := credential.Set(credential.RedisPasswordKey, fb.redisPassword); err != nil {
				return ConfigSavedMsg{Err: fmt.Errorf("storing redis password: %w", err)}
			}
		}
		if err := model.SaveConfig(path, &cfg); err != nil {
			return ConfigSavedMsg{Err: err}
		}
		return ConfigSavedMsg{Config: &cfg}
	}
}

// SetConfig replaces the configuration the next Init starts from.
func (m *Model) SetConfig(cfg *model.AppConfig) {
	if cfg != nil {
		m.cfg = *cfg
	}
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	content := titleStyle.Render("Settings") + "\n" +
		theme.HelpStyle.Render(m.path) + "\n\n" +
		m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return fmt.Errorf("URL must use redis:// or rediss://")
	}
	return nil
}
