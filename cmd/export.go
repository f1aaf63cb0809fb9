package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ritual-sh/ritual/internal/backup"
	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a snapshot of everything",
	Long: `Write all rituals and completions to a JSON snapshot.

The plain file is readable and diffable. With --encrypt it becomes an
age-armored blob locked by a passphrase (prompted, or taken from
RITUAL_PASSPHRASE). Restore either kind with ` + "`ritual import`" + `.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOutput  string
	exportEncrypt bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Destination file (default ritual-<date>.json)")
	exportCmd.Flags().BoolVar(&exportEncrypt, "encrypt", false, "Encrypt the snapshot with a passphrase")
}

func runExport(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := backup.Collect(task.NewStore(db.Conn()), ledger.NewStore(db.Conn()))
	if err != nil {
		return err
	}

	var passphrase string
	if exportEncrypt {
		passphrase, err = readPassphrase(true)
		if err != nil {
			return err
		}
	}

	path := exportOutput
	if path == "" {
		path = filepath.Join(cfg.Export.Dir, backup.DefaultFilename(cal.Today(), exportEncrypt))
	}

	if err := backup.Write(path, snap, passphrase); err != nil {
		return err
	}

	icon := ""
	if exportEncrypt {
		icon = " " + ui.IconLock
	}
	fmt.Printf("  %s Exported to %s%s\n", ui.Success.Render("✓"), path, icon)
	fmt.Println(ui.Muted.Render(fmt.Sprintf("    %d %s, %d %s",
		len(snap.Tasks), plural(len(snap.Tasks), "ritual", "rituals"),
		len(snap.Completions), plural(len(snap.Completions), "completion", "completions"))))
	return nil
}

// readPassphrase resolves the snapshot passphrase: the RITUAL_PASSPHRASE
// env var wins, then an interactive prompt. Prompts go to stderr so the
// command stays pipeable.
func readPassphrase(confirm bool) (string, error) {
	if p := os.Getenv("RITUAL_PASSPHRASE"); p != "" {
		return p, nil
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("passphrase required — set RITUAL_PASSPHRASE or run interactively")
	}

	fmt.Fprint(os.Stderr, ui.Muted.Render("  Passphrase: "))
	passBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}

	passphrase := strings.TrimSpace(string(passBytes))
	if passphrase == "" {
		return "", fmt.Errorf("passphrase can't be empty")
	}

	if confirm {
		fmt.Fprint(os.Stderr, ui.Muted.Render("  Confirm passphrase: "))
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase confirmation: %w", err)
		}
		if string(passBytes) != string(confirmBytes) {
			return "", fmt.Errorf("passphrases do not match")
		}
	}

	return passphrase, nil
}
