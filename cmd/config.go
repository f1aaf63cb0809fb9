package cmd

import (
	"fmt"
	"strings"

	"github.com/ritual-sh/ritual/internal/config"
	"github.com/ritual-sh/ritual/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configListCmd)
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration file path",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(config.GetPaths().ConfigFile)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Run 'ritual config list' to see all keys.

Examples:
  ritual config set user.name "Robin"
  ritual config set remind.at "08:30,21:00"
  ritual config set remind.telegram.chat_id 123456789`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration keys with current values",
	RunE:  runConfigList,
}

func runConfigGet(_ *cobra.Command, args []string) error {
	entry, ok := config.LookupKey(args[0])
	if !ok {
		return unknownKeyError(args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println(entry.Get(cfg))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	entry, ok := config.LookupKey(key)
	if !ok {
		return unknownKeyError(key)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := entry.Set(cfg, value); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	ui.Ok("%s = %s", key, entry.Get(cfg))
	return nil
}

func runConfigUnset(_ *cobra.Command, args []string) error {
	key := args[0]

	entry, ok := config.LookupKey(key)
	if !ok {
		return unknownKeyError(key)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	entry.Unset(cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	ui.Ok("%s reset to default", key)
	return nil
}

func runConfigList(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println()
	for _, name := range config.ValidKeyNames() {
		entry, _ := config.LookupKey(name)
		val := entry.Get(cfg)
		if val == "" {
			val = ui.Muted.Render("(unset)")
		}
		fmt.Printf("  %s %s\n", ui.KeyStyle.Render(fmt.Sprintf("%-24s", name)), val)
		fmt.Printf("  %s %s\n", strings.Repeat(" ", 24), ui.Muted.Render(entry.Desc))
	}
	fmt.Println()
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	paths := config.GetPaths()

	ui.Header("Configuration")
	fmt.Println()
	ui.Kv("Name", cfg.User.Name)
	ui.Kv("Week starts", cfg.Calendar.WeekStarts)
	ui.Kv("Remind at", strings.Join(cfg.Remind.At, ", "))
	ui.Kv("Desktop", fmt.Sprintf("%t", cfg.Remind.DesktopEnabled()))
	ui.Kv("Telegram", fmt.Sprintf("%t", cfg.Remind.Telegram.Enabled()))
	fmt.Println()
	ui.Kv("Config", paths.ConfigFile)
	ui.Kv("Data", paths.DBFile)
	fmt.Println()
	ui.Tip(fmt.Sprintf("Edit directly: %s", ui.Accent.Render("$EDITOR "+paths.ConfigFile)))
	fmt.Println()

	return nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key %q — run %s to see available keys",
		key, ui.Accent.Render("ritual config list"))
}
