package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = time.Second

// Column defines a single column in the watch table.
type Column struct {
	Header string
	Width  int
}

// Row holds the field values for a single table row. The field aligned with
// a STATUS column is rendered through StatusStyle.
type Row struct {
	Fields []string
}

// refreshMsg carries the result of one poll of the workspace.
type refreshMsg struct {
	rows []Row
	err  error
}

// WatchModel is a bubbletea model that re-polls a row source on a fixed
// interval and renders the result as a table. It quits on q or ctrl+c.
type WatchModel struct {
	title     string
	columns   []Column
	refresh   func() ([]Row, error)
	rows      []Row
	statusCol int
	lastPoll  time.Time
	err       error
}

// NewWatchModel creates a watch model polling refresh for its rows.
func NewWatchModel(title string, columns []Column, refresh func() ([]Row, error)) WatchModel {
	statusCol := -1
	for i, c := range columns {
		if strings.EqualFold(c.Header, "STATUS") {
			statusCol = i
			break
		}
	}
	return WatchModel{
		title:     title,
		columns:   columns,
		refresh:   refresh,
		statusCol: statusCol,
	}
}

// Err returns the error that stopped the watch, if any.
func (m WatchModel) Err() error { return m.err }

func (m WatchModel) poll() tea.Msg {
	rows, err := m.refresh()
	return refreshMsg{rows: rows, err: err}
}

func scheduleRefresh(m WatchModel) tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return m.poll()
	})
}

// Init satisfies the tea.Model interface.
func (m WatchModel) Init() tea.Cmd {
	return m.poll
}

// Update satisfies the tea.Model interface.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.rows = msg.rows
		m.lastPoll = time.Now()
		return m, scheduleRefresh(m)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m WatchModel) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", m.title)

	var header strings.Builder
	for _, c := range m.columns {
		fmt.Fprintf(&header, "%-*s  ", c.Width, c.Header)
	}
	b.WriteString(HeaderStyle.Render(strings.TrimRight(header.String(), " ")))
	b.WriteString("\n")

	for _, row := range m.rows {
		for i, c := range m.columns {
			field := ""
			if i < len(row.Fields) {
				field = row.Fields[i]
			}
			cell := fmt.Sprintf("%-*s", c.Width, field)
			if i == m.statusCol {
				cell = StatusStyle(field).Render(cell)
			}
			b.WriteString(cell)
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}

	if !m.lastPoll.IsZero() {
		fmt.Fprintf(&b, "\nupdated %s  (q to quit)\n", m.lastPoll.Format("15:04:05"))
	}
	return b.String()
}

// Watch runs the model until the user quits or a refresh fails.
func Watch(model WatchModel) error {
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(WatchModel); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
