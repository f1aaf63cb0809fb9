package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/stats"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ritual",
	Short: "Daily rituals, kept",
	Long:  `ritual — recurring tasks, streaks, and gentle reminders. Show up every day.`,
	RunE:  runDashboard,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.Err(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// openService opens the store and builds the stats service over it.
// The caller owns the returned DB and must Close it.
func openService() (*store.DB, *stats.Service, error) {
	db, err := store.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	svc := stats.NewService(task.NewStore(db.Conn()), ledger.NewStore(db.Conn()))
	return db, svc, nil
}

// runDashboard shows the at-a-glance status when you just type `ritual`.
func runDashboard(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !config.Initialized() {
		fmt.Println(ui.Greet(""))
		fmt.Println()
		fmt.Println("  Looks like this is your first time here.")
		fmt.Println()
		fmt.Printf("  Run %s to get started.\n", ui.Accent.Render("ritual init"))
		fmt.Println()
		return nil
	}

	fmt.Println(ui.Greet(cfg.User.Name))
	fmt.Println()

	db, svc, err := openService()
	if err != nil {
		return err
	}
	defer db.Close()

	today := cal.Today()
	overview, err := svc.Overview(today)
	if err != nil {
		return fmt.Errorf("computing overview: %w", err)
	}

	todaySummary := fmt.Sprintf("%d of %d done", overview.DoneToday, overview.DueToday)
	if overview.DueToday == 0 {
		todaySummary = "nothing due"
	} else if overview.DoneToday == overview.DueToday {
		todaySummary += " " + ui.IconSpark
	}
	ui.Kv(ui.IconTask+" Today", todaySummary)

	if overview.Streak > 0 {
		streakStr := fmt.Sprintf("%d day", overview.Streak)
		if overview.Streak != 1 {
			streakStr += "s"
		}
		if overview.Best > overview.Streak {
			streakStr += ui.Muted.Render(fmt.Sprintf(" (best %d)", overview.Best))
		}
		ui.Kv(ui.IconFire+" Streak", streakStr)
	}

	ui.Kv(ui.IconCalendar+" Date", time.Now().Format("Monday, January 2"))

	// Tip
	left := overview.DueToday - overview.DoneToday
	switch {
	case overview.Tasks == 0:
		ui.Tip("`ritual add \"morning pages\" --repeat daily` to start your first ritual.")
	case left > 0:
		ui.Tip("`ritual today` to work through what's left.")
	case overview.DueToday > 0:
		ui.Tip("all done for today — `ritual stats` to admire the streaks.")
	default:
		ui.Tip("`ritual list` to see everything you track.")
	}

	fmt.Println()
	return nil
}
