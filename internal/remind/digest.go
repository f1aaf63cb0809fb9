package remind

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/stats"
)

// Digest is one day's reminder content.
type Digest struct {
	Day       cal.Day
	DueCount  int
	DoneCount int
	Undone    []Item
}

// Item is a single task still waiting today.
type Item struct {
	Title  string
	Streak int
}

// BuildDigest condenses the today board into notification content.
func BuildDigest(board []stats.BoardItem, day cal.Day) Digest {
	d := Digest{Day: day}
	for _, item := range board {
		if item.Summary.DoneToday {
			d.DoneCount++
		}
		if !item.Summary.DueToday {
			continue
		}
		d.DueCount++
		if !item.Summary.DoneToday {
			d.Undone = append(d.Undone, Item{
				Title:  item.Task.Title,
				Streak: item.Summary.Streak,
			})
		}
	}
	return d
}

// Empty reports whether there is nothing left to remind about.
func (d Digest) Empty() bool {
	return len(d.Undone) == 0
}

// Heading is the one-line summary used as the notification title line.
func (d Digest) Heading() string {
	n := len(d.Undone)
	if n == 1 {
		return "1 ritual still waiting today"
	}
	return fmt.Sprintf("%d rituals still waiting today", n)
}

// Plain renders the digest as plain terminal text.
func (d Digest) Plain() string {
	var b strings.Builder
	b.WriteString(d.Heading())
	b.WriteString("\n")
	for _, item := range d.Undone {
		b.WriteString("  · ")
		b.WriteString(item.Title)
		if item.Streak > 0 {
			fmt.Fprintf(&b, " — %d-day streak at risk", item.Streak)
		}
		b.WriteString("\n")
	}
	if d.DoneCount > 0 {
		fmt.Fprintf(&b, "  %d already done today\n", d.DoneCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

// HTML renders the digest for Telegram (parse mode HTML).
func (d Digest) HTML() string {
	var b strings.Builder
	b.WriteString("🕯 <b>ritual</b>\n")
	fmt.Fprintf(&b, "🗓 %s\n\n", d.Day.Time(time.Local).Format("Mon, Jan 2"))

	b.WriteString("<b>Still waiting</b>\n")
	for _, item := range d.Undone {
		b.WriteString("• ")
		b.WriteString(html.EscapeString(item.Title))
		if item.Streak > 0 {
			fmt.Fprintf(&b, " 🔥%d", item.Streak)
		}
		b.WriteString("\n")
	}
	if d.DoneCount > 0 {
		fmt.Fprintf(&b, "\n✅ %d already done today\n", d.DoneCount)
	}
	return strings.TrimSpace(b.String())
}
