// Package ui is the terminal browser for inserted rules
package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Row is one inserted rule
type Row struct {
	Sheet string
	Index int
	Slot  string
	Class string
	CSS   string
}

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Toggle key.Binding
	Filter key.Binding
	Back   key.Binding
	Apply  key.Binding
	Quit   key.Binding
}

var DefaultKeyMap = KeyMap{
	Toggle: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "ltr/rtl"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Model is the inspect TUI state
type Model struct {
	ltr, rtl  []Row
	showRTL   bool
	filtering bool
	filter    textinput.Model
	table     table.Model
	width     int
	height    int
}

// NewModel creates a model over the LTR and RTL insertions of the same
// definitions
func NewModel(ltr, rtl []Row) Model {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "class, slot, sheet or css"

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	t.SetStyles(tableStyles())

	m := Model{ltr: ltr, rtl: rtl, filter: filter, table: t}
	m.refresh()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, DefaultKeyMap.Toggle):
			m.showRTL = !m.showRTL
			m.refresh()
			return m, nil
		case key.Matches(msg, DefaultKeyMap.Filter):
			m.filtering = true
			cmd := m.filter.Focus()
			return m, cmd
		case key.Matches(msg, DefaultKeyMap.Back):
			m.filter.SetValue("")
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Apply):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Back):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refresh()
	return m, cmd
}

// Visible returns the rows currently shown
func (m Model) Visible() []Row {
	src := m.ltr
	if m.showRTL {
		src = m.rtl
	}

	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if q == "" {
		return src
	}

	var out []Row
	for _, r := range src {
		hay := strings.ToLower(r.Sheet + " " + r.Slot + " " + r.Class + " " + r.CSS)
		if strings.Contains(hay, q) {
			out = append(out, r)
		}
	}
	return out
}

// RTL reports whether the RTL insertions are shown
func (m Model) RTL() bool {
	return m.showRTL
}

func (m *Model) refresh() {
	rows := m.Visible()
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{r.Sheet, strconv.Itoa(r.Index), r.Slot, r.Class, r.CSS})
	}
	m.table.SetRows(out)
	m.table.GotoTop()
}

func columns(width int) []table.Column {
	fixed := 12 + 6 + 16 + 12
	css := max(width-fixed-10, 20)
	return []table.Column{
		{Title: "Sheet", Width: 12},
		{Title: "#", Width: 6},
		{Title: "Slot", Width: 16},
		{Title: "Class", Width: 12},
		{Title: "Rule", Width: css},
	}
}

// Run starts the TUI and blocks until the user quits
func Run(ltr, rtl []Row) error {
	_, err := tea.NewProgram(NewModel(ltr, rtl), tea.WithAltScreen()).Run()
	return err
}
