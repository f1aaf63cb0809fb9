package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/store"
	"github.com/ritual-sh/ritual/internal/task"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a ritual and its history",
	Long: `Delete a ritual for good, completions included.

If you just want it off the board, ` + "`ritual pause`" + ` keeps the history.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var rmForce bool

func init() {
	rmCmd.Flags().BoolVarP(&rmForce, "force", "f", false, "Skip the confirmation prompt")
}

func runRm(_ *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return err
	}
	defer db.Close()
	ts := task.NewStore(db.Conn())
	ls := ledger.NewStore(db.Conn())

	t, err := ts.Get(args[0])
	if err != nil {
		return err
	}
	days, err := ls.Days(t.ID)
	if err != nil {
		return err
	}

	if !rmForce {
		what := fmt.Sprintf("Delete %q", t.Title)
		if n := len(days); n == 1 {
			what += " and its 1 completion"
		} else if n > 1 {
			what += fmt.Sprintf(" and its %d completions", n)
		}
		answer := prompt(bufio.NewReader(os.Stdin), what+"? [y/N]", "n")
		switch strings.ToLower(answer) {
		case "y", "yes":
		default:
			ui.Inf("Kept %s.", t.Title)
			return nil
		}
	}

	if err := ts.Delete(t.ID); err != nil {
		return err
	}
	fmt.Printf("  %s Deleted %s\n", ui.Success.Render("✓"), t.Title)
	return nil
}
