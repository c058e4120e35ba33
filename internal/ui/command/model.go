package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/state"
	"github.com/nhle/todomaster/internal/theme"
)

// CommandMsg is emitted when the user executes a command. Name is the
// first word, lowercased; Args is the rest of the line.
type CommandMsg struct {
	Name string
	Args string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Names lists the commands the palette completes.
var Names = []string{
	"new", "projects", "all", "project", "filter", "sort",
	"settings", "help", "quit",
}

// Parse splits a command line into a CommandMsg.
func Parse(line string) (CommandMsg, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return CommandMsg{}, false
	}
	name, args, _ := strings.Cut(line, " ")
	return CommandMsg{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}, true
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.Width = width - 6

	m := Model{
		input:  ti,
		width:  width,
		height: height,
	}
	m.SetProjectNames(nil)
	return m
}

// SetProjectNames refreshes completion so "project <name>" completes.
func (m *Model) SetProjectNames(names []string) {
	suggestions := append([]string{}, Names...)
	for _, f := range state.Filters {
		suggestions = append(suggestions, "filter "+string(f))
	}
	for _, k := range state.SortKeys {
		suggestions = append(suggestions, "sort "+string(k))
	}
	for _, n := range names {
		suggestions = append(suggestions, "project "+n)
	}
	m.input.SetSuggestions(suggestions)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd, ok := Parse(m.input.Value())
			m.input.Reset()
			if ok {
				return m, func() tea.Msg { return cmd }
			}
			return m, nil
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()
	hint := theme.HelpStyle.Render("tab completes · " + strings.Join(Names, " · "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", hint)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
