package ui

import (
	"fmt"
	"os"
	"strings"
)

// Puts prints a styled line to stdout.
func Puts(s string) {
	fmt.Println(s)
}

// Putsf prints a formatted styled line to stdout.
func Putsf(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// Warn prints a warning message. Arguments format as in fmt.Sprintf.
func Warn(format string, args ...any) {
	fmt.Println(Warning.Render(IconWarn + fmt.Sprintf(format, args...)))
}

// Err prints an error message.
func Err(msg string) {
	// Force color output for errors to ensure visibility
	styled := Error.Copy().Bold(true).Render(IconError + msg)
	fmt.Fprintln(os.Stderr, styled)
}

// Ok prints a success message. Arguments format as in fmt.Sprintf.
func Ok(format string, args ...any) {
	fmt.Println(Success.Render(IconOk + fmt.Sprintf(format, args...)))
}

// Inf prints an info message. Arguments format as in fmt.Sprintf.
func Inf(format string, args ...any) {
	fmt.Println(Info.Render("  " + fmt.Sprintf(format, args...)))
}

// Header prints a section header.
func Header(s string) {
	fmt.Println()
	fmt.Println(Title.Render(s))
	fmt.Println(Muted.Render(strings.Repeat("─", len(s)+2)))
}

// Tip prints a helpful tip.
func Tip(msg string) {
	fmt.Println()
	fmt.Println(Muted.Render("  tip: " + msg))
}

// Kv prints a key-value pair, padded.
func Kv(key string, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-12s", key))
	v := ValueStyle.Render(value)
	fmt.Printf("%s %s\n", k, v)
}

// Greet prints a whimsical greeting based on context.
func Greet(name string) string {
	if name == "" {
		return IconRitual + "Hey there!"
	}
	return fmt.Sprintf("%sHey %s!", IconRitual, name)
}

// Die prints an error message and exits.
func Die(msg string) {
	Err(msg)
	os.Exit(1)
}

// Dief prints a formatted error message and exits.
func Dief(format string, args ...any) {
	Die(fmt.Sprintf(format, args...))
}
