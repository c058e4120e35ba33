// Package ui holds the frame shared by every view: a one-line header, the
// content area and a one-line status bar.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todomaster/internal/theme"
)

// Layout tracks the terminal size and the rows taken by the frame.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout for a terminal of the given size.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth is the width handed to views.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight is the height left between header and status bar. It never
// goes below one row.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 1)
}

// RenderHeader puts the title on the left and the counters on the right.
func (l Layout) RenderHeader(title, counters string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.CounterStyle.Render(counters)
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		// Narrow terminals drop the counters before the title.
		return l.fill(theme.HeaderStyle, left)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, pad(theme.HeaderStyle, gap), right)
}

// RenderStatusBar shows key hints, or errMsg in the error style when set.
func (l Layout) RenderStatusBar(hints, errMsg string) string {
	if errMsg != "" {
		return l.fill(theme.ErrorStatusStyle, theme.ErrorStatusStyle.Render(errMsg))
	}
	return l.fill(theme.StatusBarStyle, theme.StatusBarStyle.Render(hints))
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill extends a rendered bar to the full width in style's background.
func (l Layout) fill(style lipgloss.Style, rendered string) string {
	gap := l.Width - lipgloss.Width(rendered)
	if gap <= 0 {
		return rendered
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, pad(style, gap))
}

func pad(style lipgloss.Style, width int) string {
	return lipgloss.NewStyle().Width(width).Background(style.GetBackground()).Render("")
}
