package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up ritual for the first time",
	Long:  `Initialize ritual with your preferences. Creates config and data directories.`,
	RunE:  runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	return runInitWithReader(bufio.NewReader(os.Stdin))
}

func runInitWithReader(reader *bufio.Reader) error {
	fmt.Println(ui.Title.Render(ui.IconRitual + "Welcome to ritual!"))
	fmt.Println()
	ui.Inf("Let's get you set up. This takes about 20 seconds.")
	fmt.Println()

	// Name
	name := prompt(reader, "  What should I call you?", guessName())
	fmt.Println()

	// Week start, display only
	week := prompt(reader, "  Weeks start on monday or sunday?", "monday")
	week = strings.ToLower(strings.TrimSpace(week))
	if week != "monday" && week != "sunday" {
		ui.Warn("don't know %q, using monday", week)
		week = "monday"
	}
	fmt.Println()

	// Reminder time
	at := prompt(reader, "  When should daily reminders fire? (HH:MM)", "09:00")
	times, err := config.ParseClockList(at)
	if err != nil {
		ui.Warn("%v, using 09:00", err)
		times = []string{"09:00"}
	}
	fmt.Println()

	cfg := &config.Config{}
	cfg.User.Name = name
	cfg.Calendar.WeekStarts = week
	cfg.Remind.At = times

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	// Initialize database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	db.Close()

	paths := config.GetPaths()

	if name != "" {
		ui.Ok("All set, %s! %s", name, ui.IconSpark)
	} else {
		ui.Ok("All set! %s", ui.IconSpark)
	}
	fmt.Println()
	fmt.Println(ui.Muted.Render("  Created:"))
	fmt.Printf("    Config  %s\n", ui.Muted.Render(paths.ConfigFile))
	fmt.Printf("    Data    %s\n", ui.Muted.Render(paths.DBFile))
	fmt.Println()
	fmt.Println(ui.Muted.Render("  First steps:"))
	fmt.Printf("    %s\n", ui.Accent.Render(`ritual add "morning pages" --repeat daily`))
	fmt.Printf("    %s\n", ui.Accent.Render(`ritual add "long run" --repeat weekly --on sat`))
	fmt.Printf("    %s\n", ui.Accent.Render("ritual today"))
	fmt.Println()

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s %s ", question, ui.Muted.Render(fmt.Sprintf("(%s)", defaultVal)))
	} else {
		fmt.Printf("%s ", question)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func guessName() string {
	if name := gitUserName(); name != "" {
		return name
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return ""
}

// gitUserName reads user.name straight out of ~/.gitconfig, no exec.
func gitUserName() string {
	home, _ := os.UserHomeDir()
	data, err := os.ReadFile(home + "/.gitconfig")
	if err != nil {
		return ""
	}

	inUser := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "[user]" {
			inUser = true
			continue
		}
		if strings.HasPrefix(line, "[") {
			inUser = false
			continue
		}
		if inUser && strings.HasPrefix(line, "name") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				return strings.Trim(strings.TrimSpace(parts[1]), `"`)
			}
		}
	}
	return ""
}
