package ui

import "github.com/charmbracelet/lipgloss"

// ritual's color palette: dawn embers over cool slate.
var (
	// Primary colors
	Ember   = lipgloss.Color("#E25822")
	Saffron = lipgloss.Color("#F4C430")
	Moss    = lipgloss.Color("#8A9A5B")
	Slate   = lipgloss.Color("#708090")
	Night   = lipgloss.Color("#2D2D34")
	Jade    = lipgloss.Color("#00A86B")
	Garnet  = lipgloss.Color("#C41E3A")
	Lake    = lipgloss.Color("#3A6EA5")
	Dim     = lipgloss.Color("#666666")
	Bright  = lipgloss.Color("#FFFFFF")
	Subtle  = lipgloss.Color("#AAAAAA")

	// Semantic styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Ember)

	Subtitle = lipgloss.NewStyle().
			Foreground(Saffron)

	Success = lipgloss.NewStyle().
		Foreground(Jade)

	Error = lipgloss.NewStyle().
		Foreground(Garnet)

	Warning = lipgloss.NewStyle().
		Foreground(Saffron)

	Info = lipgloss.NewStyle().
		Foreground(Lake)

	Muted = lipgloss.NewStyle().
		Foreground(Dim)

	Accent = lipgloss.NewStyle().
		Foreground(Ember).
		Bold(true)

	// Component styles
	Banner = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Ember).
		Padding(0, 1)

	Tag = lipgloss.NewStyle().
		Foreground(Bright).
		Background(Moss).
		Padding(0, 1).
		Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(Saffron).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Bright)
)

// Icon constants, one consistent emoji language.
const (
	IconRitual   = "🕯 "
	IconTask     = "📋"
	IconDone     = "✅"
	IconMissed   = "🔴"
	IconFire     = "🔥"
	IconBest     = "🏆"
	IconPaused   = "⏸ "
	IconRepeat   = "🔁"
	IconCalendar = "📅"
	IconBell     = "🔔"
	IconLock     = "🔐"
	IconStar     = "⭐"
	IconSpark    = "✨"
	IconWarn     = "⚠️ "
	IconError    = "✗ "
	IconOk       = "✓ "
	IconArrow    = "→"
	IconDot      = "·"
)
