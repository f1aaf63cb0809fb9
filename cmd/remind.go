package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/remind"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder daemon",
	Long: `Stay in the foreground and nudge you at the configured times.

Each reminder is a digest of what's still waiting today; days where
everything is done stay quiet. Desktop and Telegram delivery switch on
through ` + "`ritual config`" + `. Stop with Ctrl-C.`,
	RunE: runRemind,
}

var (
	remindAt  string
	remindNow bool
)

func init() {
	remindCmd.Flags().StringVar(&remindAt, "at", "", "Override reminder times for this run (e.g. 08:00,20:30)")
	remindCmd.Flags().BoolVar(&remindNow, "now", false, "Send one digest immediately and exit")
}

func runRemind(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, svc, err := openService()
	if err != nil {
		return err
	}
	defer db.Close()

	daemon := remind.NewDaemon(svc, db, time.Local)
	daemon.Use(remind.NewTerminalNotifier(os.Stdout))
	if cfg.Remind.DesktopEnabled() {
		daemon.Use(remind.NewDesktopNotifier())
	}
	if cfg.Remind.Telegram.Enabled() {
		tg, err := remind.NewTelegramNotifier(cfg.Remind.Telegram.Token, cfg.Remind.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("telegram setup: %w", err)
		}
		daemon.Use(tg)
	}

	if remindNow {
		sent, err := daemon.Deliver(cal.Today())
		if err != nil {
			return err
		}
		if !sent {
			ui.Inf("Nothing waiting today — no digest sent. %s", ui.IconSpark)
		}
		return nil
	}

	times := cfg.Remind.At
	if remindAt != "" {
		times, err = config.ParseClockList(remindAt)
		if err != nil {
			return err
		}
	}
	if err := daemon.Schedule(times); err != nil {
		return err
	}

	fmt.Println(ui.Title.Render("  " + ui.IconBell + " ritual remind"))
	ui.Kv("Times", strings.Join(times, ", "))
	if last := daemon.LastSent(); last != "" {
		ui.Kv("Last sent", last)
	}
	fmt.Println(ui.Muted.Render("  Ctrl-C to stop."))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return daemon.Run(ctx)
}
