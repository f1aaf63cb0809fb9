package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/stats"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
)

// TodayAction is one toggle recorded in the today TUI. The caller applies
// actions against the ledger after the program quits.
type TodayAction struct {
	TaskID string
	Title  string
}

// TodayModel is an interactive checklist of the day's board. Toggles are
// collected in Actions rather than written directly, so the model stays
// free of storage concerns.
type TodayModel struct {
	day      cal.Day
	rows     []todayRow
	cursor   int
	filter   string
	filtered []int // indexes into rows
	mode     todayMode

	// terminal dimensions
	width  int
	height int

	// pending toggles to apply after quitting, in press order
	Actions []TodayAction

	quitting bool
}

type todayRow struct {
	task   task.Task
	streak int
	done   bool
}

type todayMode int

const (
	todayModeNormal todayMode = iota
	todayModeFilter
)

// NewTodayModel creates a TodayModel from a day's board.
func NewTodayModel(board []stats.BoardItem, day cal.Day) *TodayModel {
	m := &TodayModel{
		day:    day,
		width:  80,
		height: 24,
	}
	for _, it := range board {
		m.rows = append(m.rows, todayRow{
			task:   it.Task,
			streak: it.Summary.Streak,
			done:   it.Summary.DoneToday,
		})
	}
	m.applyFilter()
	return m
}

// RunToday launches the interactive today checklist. Returns the recorded
// toggles for the caller to apply.
func RunToday(board []stats.BoardItem, day cal.Day) ([]TodayAction, error) {
	m := NewTodayModel(board, day)
	prog := tea.NewProgram(m, tea.WithAltScreen())
	result, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("today tui: %w", err)
	}
	final := result.(*TodayModel)
	return final.Actions, nil
}

func (m *TodayModel) Init() tea.Cmd {
	return nil
}

func (m *TodayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == todayModeFilter {
			return m.handleFilterKey(msg)
		}
		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m *TodayModel) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}

	case "g":
		m.cursor = 0

	case "G":
		if len(m.filtered) > 0 {
			m.cursor = len(m.filtered) - 1
		}

	case "x", " ", "enter":
		if len(m.filtered) > 0 {
			row := &m.rows[m.filtered[m.cursor]]
			// Flip locally for immediate feedback; the ledger flip happens
			// when the caller applies Actions.
			row.done = !row.done
			m.Actions = append(m.Actions, TodayAction{TaskID: row.task.ID, Title: row.task.Title})
		}

	case "/":
		m.mode = todayModeFilter
		m.filter = ""
		m.applyFilter()
		m.cursor = 0
	}

	return m, nil
}

func (m *TodayModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = todayModeNormal
		m.filter = ""
		m.applyFilter()
		m.cursor = 0

	case "enter":
		m.mode = todayModeNormal

	case "backspace":
		if len(m.filter) > 0 {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
			m.applyFilter()
			m.cursor = 0
		}

	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
			m.cursor = 0
		}
	}
	return m, nil
}

func (m *TodayModel) applyFilter() {
	m.filtered = nil
	for i, row := range m.rows {
		if m.filter == "" {
			m.filtered = append(m.filtered, i)
			continue
		}
		if ok, _ := FuzzyMatch(m.filter, row.task.Title); ok {
			m.filtered = append(m.filtered, i)
		}
	}
}

func (m *TodayModel) View() string {
	var b strings.Builder

	// Header
	header := ui.Title.Render("  "+ui.IconRitual+"Today") +
		ui.Muted.Render("  "+m.day.Time(time.Local).Format("Mon, Jan 2"))
	if m.filter != "" {
		header += ui.Muted.Render(fmt.Sprintf("  filter: %q", m.filter))
	}
	b.WriteString(header + "\n\n")

	// Checklist
	visHeight := m.height - 8 // reserve space for header, input, status bar
	if visHeight < 3 {
		visHeight = 3
	}
	offset := 0
	if m.cursor >= visHeight {
		offset = m.cursor - visHeight + 1
	}

	if len(m.filtered) == 0 {
		if m.filter != "" {
			b.WriteString("  " + ui.Muted.Render("No matches. Press esc to clear filter.") + "\n")
		} else {
			b.WriteString("  " + ui.Muted.Render("Nothing due today. Press q to close.") + "\n")
		}
	} else {
		end := offset + visHeight
		if end > len(m.filtered) {
			end = len(m.filtered)
		}
		for i := offset; i < end; i++ {
			b.WriteString(m.renderRow(m.rows[m.filtered[i]], i == m.cursor) + "\n")
		}
	}

	b.WriteString("\n")

	// Input area (filter mode)
	if m.mode == todayModeFilter {
		prompt := lipgloss.NewStyle().Foreground(ui.Saffron).Bold(true).Render("/")
		b.WriteString("  " + prompt + " " + m.filter + blinkCursor() + "\n")
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n")

	// Status bar
	done := 0
	for _, row := range m.rows {
		if row.done {
			done++
		}
	}
	countStr := ui.Muted.Render(fmt.Sprintf("  %d/%d shown · %d done · %d to go",
		len(m.filtered), len(m.rows), done, len(m.rows)-done))
	b.WriteString(countStr + "\n")

	// Help line
	var help string
	if m.mode == todayModeFilter {
		help = ui.Muted.Render("  esc clear · enter confirm")
	} else {
		help = ui.Muted.Render("  j/k move · x toggle · / filter · q quit")
	}
	b.WriteString(help + "\n")

	return b.String()
}

func (m *TodayModel) renderRow(row todayRow, selected bool) string {
	pointer := "  "
	titleStyle := lipgloss.NewStyle()

	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		titleStyle = lipgloss.NewStyle().Foreground(ui.Saffron).Bold(true)
	}

	marker := " "
	if row.done {
		marker = ui.Success.Render("✓")
	}

	title := row.task.Title
	if row.done {
		title = ui.Muted.Render(title)
	} else {
		title = titleStyle.Render(title)
	}

	line := fmt.Sprintf("  %s %s %s", pointer, marker, title)

	if row.task.Category != "" {
		line += ui.Muted.Render(" [" + row.task.Category + "]")
	}

	// Streak badge. An unfinished streak is the one at stake today.
	if row.streak > 0 {
		badge := fmt.Sprintf(" %s%d", ui.IconFire, row.streak)
		if row.done {
			line += ui.Muted.Render(badge)
		} else {
			line += ui.Warning.Render(badge)
		}
	}

	return line
}
