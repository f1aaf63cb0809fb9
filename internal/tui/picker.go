package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/ritual-sh/ritual/internal/ui"
)

// Item is one pickable row in a Picker.
type Item interface {
	// FilterValue returns the text fuzzy matching runs against.
	FilterValue() string
	// Title returns the main display text.
	Title() string
	// Description returns optional secondary text, shown dimmed.
	Description() string
}

// PickerOption configures a Picker.
type PickerOption func(*Picker)

// WithTitle sets the heading displayed above the list.
func WithTitle(title string) PickerOption {
	return func(p *Picker) { p.title = title }
}

// WithPrompt sets the search prompt character(s).
func WithPrompt(prompt string) PickerOption {
	return func(p *Picker) { p.prompt = prompt }
}

// WithHeight sets the maximum visible rows (0 = fit the terminal).
func WithHeight(h int) PickerOption {
	return func(p *Picker) { p.height = h }
}

// Picker is a reusable fuzzy-search list selector built on Bubbletea.
// Pick() covers the common case; create a Picker to drive it manually.
type Picker struct {
	title  string
	prompt string
	height int

	items    []Item
	filtered []match
	query    string
	cursor   int
	offset   int // viewport scroll offset
	chosen   Item
	canceled bool

	termWidth  int
	termHeight int
}

type match struct {
	item  Item
	score int
}

// NewPicker creates a Picker with the given items and options.
func NewPicker(items []Item, opts ...PickerOption) *Picker {
	p := &Picker{
		prompt:     "> ",
		height:     10,
		items:      items,
		termWidth:  80,
		termHeight: 24,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.applyFilter()
	return p
}

// Pick shows a picker and returns the selected item.
// Returns nil and no error when the user cancels.
func Pick(items []Item, opts ...PickerOption) (Item, error) {
	p := NewPicker(items, opts...)
	prog := tea.NewProgram(p, tea.WithAltScreen())
	m, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	result := m.(*Picker)
	if result.canceled {
		return nil, nil
	}
	return result.chosen, nil
}

// IsTTY returns true when stdin is connected to a terminal.
func IsTTY() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// --- Bubbletea model implementation ---

func (p *Picker) Init() tea.Cmd {
	return nil
}

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.termWidth = msg.Width
		p.termHeight = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			p.canceled = true
			return p, tea.Quit

		case "enter":
			if len(p.filtered) > 0 {
				p.chosen = p.filtered[p.cursor].item
			}
			return p, tea.Quit

		case "up", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
				if p.cursor < p.offset {
					p.offset = p.cursor
				}
			}
			return p, nil

		case "down", "ctrl+n":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
				vis := p.visibleHeight()
				if p.cursor >= p.offset+vis {
					p.offset = p.cursor - vis + 1
				}
			}
			return p, nil

		case "backspace":
			if len(p.query) > 0 {
				runes := []rune(p.query)
				p.query = string(runes[:len(runes)-1])
				p.applyFilter()
			}
			return p, nil

		default:
			if len(msg.String()) == 1 {
				p.query += msg.String()
				p.applyFilter()
			}
			return p, nil
		}
	}
	return p, nil
}

func (p *Picker) View() string {
	var b strings.Builder

	if p.title != "" {
		b.WriteString("  " + ui.Title.Render(p.title) + "\n\n")
	}

	// Query input
	prompt := lipgloss.NewStyle().Foreground(ui.Saffron).Bold(true).Render(p.prompt)
	b.WriteString("  " + prompt + p.query + blinkCursor() + "\n\n")

	// Filtered list
	vis := p.visibleHeight()
	end := p.offset + vis
	if end > len(p.filtered) {
		end = len(p.filtered)
	}

	if len(p.filtered) == 0 {
		b.WriteString("  " + ui.Muted.Render("No matches") + "\n")
	} else {
		for i := p.offset; i < end; i++ {
			b.WriteString(p.renderItem(p.filtered[i].item, i == p.cursor) + "\n")
		}
	}

	// Status bar
	b.WriteString("\n")
	status := ui.Muted.Render(fmt.Sprintf("  %d/%d", len(p.filtered), len(p.items)))
	help := ui.Muted.Render(" · ↑↓ navigate · enter select · esc cancel")
	b.WriteString(status + help + "\n")

	return b.String()
}

// --- internal helpers ---

func (p *Picker) visibleHeight() int {
	h := p.height
	if h <= 0 || h > p.termHeight-6 {
		h = p.termHeight - 6
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (p *Picker) applyFilter() {
	p.filtered = nil
	if p.query == "" {
		for _, item := range p.items {
			p.filtered = append(p.filtered, match{item: item})
		}
	} else {
		for _, item := range p.items {
			if ok, sc := FuzzyMatch(p.query, item.FilterValue()); ok {
				p.filtered = append(p.filtered, match{item: item, score: sc})
			}
		}
		rankMatches(p.filtered)
	}
	p.cursor = 0
	p.offset = 0
}

func (p *Picker) renderItem(item Item, selected bool) string {
	pointer := "  "
	titleStyle := lipgloss.NewStyle()

	if selected {
		pointer = ui.Accent.Render(ui.IconArrow + " ")
		titleStyle = lipgloss.NewStyle().Foreground(ui.Saffron).Bold(true)
	}

	title := titleStyle.Render(item.Title())
	desc := item.Description()
	if desc != "" {
		desc = "  " + ui.Muted.Render(desc)
	}

	return "  " + pointer + title + desc
}

func blinkCursor() string {
	return lipgloss.NewStyle().Foreground(ui.Saffron).Render("▎")
}

// rankMatches sorts by score descending. Stable insertion sort, fine for the
// short lists a picker shows.
func rankMatches(items []match) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && items[j].score < key.score {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
