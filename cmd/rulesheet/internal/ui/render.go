package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	primaryColor = lipgloss.Color("#3b82f6")
	mutedColor   = lipgloss.Color("#94a3b8")
	accentColor  = lipgloss.Color("#f59e0b")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(accentColor).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Background(primaryColor)
	return s
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	dir := "LTR"
	if m.showRTL {
		dir = "RTL"
	}
	total := len(m.ltr)
	if m.showRTL {
		total = len(m.rtl)
	}
	title := titleStyle.Render("rulesheet inspect")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, title, " ", badgeStyle.Render(dir)))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}

	b.WriteString(boxStyle.Render(m.table.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("%d of %d rules", len(m.Visible()), total)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help()))
	return b.String()
}

func help() string {
	keys := DefaultKeyMap
	parts := []string{"↑/↓ move"}
	for _, k := range []struct{ key, desc string }{
		{keys.Toggle.Help().Key, keys.Toggle.Help().Desc},
		{keys.Filter.Help().Key, keys.Filter.Help().Desc},
		{keys.Back.Help().Key, keys.Back.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	} {
		parts = append(parts, k.key+" "+k.desc)
	}
	return strings.Join(parts, " • ")
}
