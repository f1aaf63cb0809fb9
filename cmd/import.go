package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ritual-sh/ritual/internal/backup"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore from a snapshot",
	Long: `Replace everything with the contents of a snapshot file.

This is a full restore: current rituals and completions are dropped
first. Encrypted snapshots prompt for their passphrase (or read
RITUAL_PASSPHRASE).`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importForce bool

func init() {
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "Skip the confirmation prompt")
}

func runImport(_ *cobra.Command, args []string) error {
	path := args[0]

	snap, err := backup.Read(path, os.Getenv("RITUAL_PASSPHRASE"))
	if errors.Is(err, backup.ErrEncrypted) {
		passphrase, perr := readPassphrase(false)
		if perr != nil {
			return perr
		}
		snap, err = backup.Read(path, passphrase)
	}
	if err != nil {
		return err
	}

	if !importForce {
		what := fmt.Sprintf("Replace everything with %d %s and %d %s from %s? [y/N]",
			len(snap.Tasks), plural(len(snap.Tasks), "ritual", "rituals"),
			len(snap.Completions), plural(len(snap.Completions), "completion", "completions"),
			path)
		answer := prompt(bufio.NewReader(os.Stdin), what, "n")
		switch strings.ToLower(answer) {
		case "y", "yes":
		default:
			ui.Inf("Nothing imported.")
			return nil
		}
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := backup.Restore(db.Conn(), snap); err != nil {
		return err
	}

	fmt.Printf("  %s Imported %d %s and %d %s\n", ui.Success.Render("✓"),
		len(snap.Tasks), plural(len(snap.Tasks), "ritual", "rituals"),
		len(snap.Completions), plural(len(snap.Completions), "completion", "completions"))
	return nil
}
