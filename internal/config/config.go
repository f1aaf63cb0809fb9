package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the top-level ritual configuration.
type Config struct {
	User     UserConfig     `toml:"user"`
	Calendar CalendarConfig `toml:"calendar"`
	Remind   RemindConfig   `toml:"remind"`
	Export   ExportConfig   `toml:"export"`
}

type UserConfig struct {
	Name string `toml:"name"`
}

// CalendarConfig controls how the week is displayed. Schedules store
// absolute weekdays, so this never changes when a task is due.
type CalendarConfig struct {
	WeekStarts string `toml:"week_starts"` // monday or sunday
}

// WeekStart returns the configured first day of the week,
// defaulting to Monday for missing or unrecognized values.
func (c CalendarConfig) WeekStart() time.Weekday {
	if c.WeekStarts == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// RemindConfig controls the remind daemon.
type RemindConfig struct {
	// At lists daemon check-in times as "HH:MM" local wall clock.
	At []string `toml:"at"`
	// Desktop controls terminal desktop notifications.
	// Defaults to true when not set in config (opt-out model).
	Desktop  *bool          `toml:"desktop,omitempty"`
	Telegram TelegramConfig `toml:"telegram,omitempty"`
}

// DesktopEnabled returns whether desktop notifications are enabled.
// Treats nil (missing from config) as true (opt-out model).
func (r RemindConfig) DesktopEnabled() bool {
	if r.Desktop == nil {
		return true
	}
	return *r.Desktop
}

// TelegramConfig enables the Telegram notifier when both fields are set.
type TelegramConfig struct {
	Token  string `toml:"token,omitempty"`
	ChatID int64  `toml:"chat_id,omitempty"`
}

// Enabled reports whether Telegram delivery is configured.
func (tc TelegramConfig) Enabled() bool {
	return tc.Token != "" && tc.ChatID != 0
}

// ExportConfig controls where `ritual export` writes by default.
type ExportConfig struct {
	Dir string `toml:"dir,omitempty"` // empty means current directory
}

// Paths returns standard XDG-compliant paths.
type Paths struct {
	ConfigDir  string
	DataDir    string
	StateDir   string
	ConfigFile string
	DBFile     string
}

// GetPaths returns the resolved paths. RITUAL_CONFIG_DIR and
// RITUAL_DATA_DIR win over the XDG vars, which win over the defaults.
func GetPaths() Paths {
	home, _ := os.UserHomeDir()

	configDir := os.Getenv("RITUAL_CONFIG_DIR")
	if configDir == "" {
		configDir = filepath.Join(envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config")), "ritual")
	}
	dataDir := os.Getenv("RITUAL_DATA_DIR")
	if dataDir == "" {
		dataDir = filepath.Join(envOr("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), "ritual")
	}
	stateDir := filepath.Join(envOr("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), "ritual")

	return Paths{
		ConfigDir:  configDir,
		DataDir:    dataDir,
		StateDir:   stateDir,
		ConfigFile: filepath.Join(configDir, "config.toml"),
		DBFile:     filepath.Join(dataDir, "ritual.db"),
	}
}

// EnsureDirs creates all required directories.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.ConfigDir, p.DataDir, p.StateDir}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Load reads config from disk, returning defaults if not found.
func Load() (*Config, error) {
	paths := GetPaths()
	cfg := defaultConfig()

	data, err := os.ReadFile(paths.ConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", paths.ConfigFile, err)
	}
	if len(cfg.Remind.At) == 0 {
		cfg.Remind.At = defaultConfig().Remind.At
	}
	return cfg, nil
}

// Save writes config to disk. The write goes through a temp file in the
// same directory so a crash never leaves a half-written config behind.
func Save(cfg *Config) error {
	paths := GetPaths()
	if err := paths.EnsureDirs(); err != nil {
		return err
	}

	f, err := os.CreateTemp(paths.ConfigDir, ".config-*.toml")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, paths.ConfigFile)
}

// Initialized returns true if ritual has been set up.
func Initialized() bool {
	paths := GetPaths()
	_, err := os.Stat(paths.ConfigFile)
	return err == nil
}

// BoolPtr returns a pointer to a bool value.
func BoolPtr(v bool) *bool {
	return &v
}

func defaultConfig() *Config {
	return &Config{
		User: UserConfig{
			Name: envOr("USER", ""),
		},
		Calendar: CalendarConfig{
			WeekStarts: "monday",
		},
		Remind: RemindConfig{
			At: []string{"09:00"},
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
