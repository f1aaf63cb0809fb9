package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// KeyType represents the data type of a config key.
type KeyType string

const (
	KeyTypeString KeyType = "string"
	KeyTypeInt    KeyType = "int"
	KeyTypeBool   KeyType = "bool"
	KeyTypeList   KeyType = "list"
)

// KeyEntry describes a known, settable config key.
type KeyEntry struct {
	// Type is the value's data type (string, int, bool, list).
	Type KeyType
	// Desc is a human-readable description shown in `ritual config list`.
	Desc string
	// DefaultStr is the string representation of the default/zero value.
	DefaultStr string

	// get returns the current value as a string.
	get func(*Config) string
	// set validates and applies the value to cfg, returning an error on bad input.
	set func(cfg *Config, value string) error
	// unset resets the key to its schema default.
	unset func(cfg *Config)
}

// Get returns the current value of the key as a string.
func (e *KeyEntry) Get(cfg *Config) string { return e.get(cfg) }

// Set validates and sets the value, returning a descriptive error on bad input.
func (e *KeyEntry) Set(cfg *Config, value string) error { return e.set(cfg, value) }

// Unset resets the key to its schema default.
func (e *KeyEntry) Unset(cfg *Config) { e.unset(cfg) }

// SchemaKeys is the authoritative registry of all settable config keys.
// Keys use dot-notation matching the TOML section structure.
var SchemaKeys = map[string]*KeyEntry{
	"user.name": {
		Type:       KeyTypeString,
		Desc:       "Display name used in greetings",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.User.Name },
		set:        func(cfg *Config, v string) error { cfg.User.Name = v; return nil },
		unset:      func(cfg *Config) { cfg.User.Name = "" },
	},
	"calendar.week_starts": {
		Type:       KeyTypeString,
		Desc:       "First day of the week in views (monday, sunday)",
		DefaultStr: "monday",
		get:        func(cfg *Config) string { return cfg.Calendar.WeekStarts },
		set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != "monday" && v != "sunday" {
				return fmt.Errorf("invalid week start %q (use monday or sunday)", v)
			}
			cfg.Calendar.WeekStarts = v
			return nil
		},
		unset: func(cfg *Config) { cfg.Calendar.WeekStarts = "monday" },
	},
	"remind.at": {
		Type:       KeyTypeList,
		Desc:       "Daily reminder times, comma-separated HH:MM",
		DefaultStr: "09:00",
		get:        func(cfg *Config) string { return strings.Join(cfg.Remind.At, ",") },
		set: func(cfg *Config, v string) error {
			times, err := ParseClockList(v)
			if err != nil {
				return err
			}
			cfg.Remind.At = times
			return nil
		},
		unset: func(cfg *Config) { cfg.Remind.At = []string{"09:00"} },
	},
	"remind.desktop": {
		Type:       KeyTypeBool,
		Desc:       "Send terminal desktop notifications from the remind daemon",
		DefaultStr: "true",
		get:        func(cfg *Config) string { return fmt.Sprintf("%t", cfg.Remind.DesktopEnabled()) },
		set: func(cfg *Config, v string) error {
			b, err := ParseBoolValue(v)
			if err != nil {
				return fmt.Errorf("invalid value %q for remind.desktop: %w", v, err)
			}
			cfg.Remind.Desktop = BoolPtr(b)
			return nil
		},
		unset: func(cfg *Config) { cfg.Remind.Desktop = BoolPtr(true) },
	},
	"remind.telegram.token": {
		Type:       KeyTypeString,
		Desc:       "Telegram bot token for reminder delivery",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.Remind.Telegram.Token },
		set:        func(cfg *Config, v string) error { cfg.Remind.Telegram.Token = v; return nil },
		unset:      func(cfg *Config) { cfg.Remind.Telegram.Token = "" },
	},
	"remind.telegram.chat_id": {
		Type:       KeyTypeInt,
		Desc:       "Telegram chat id for reminder delivery",
		DefaultStr: "0",
		get:        func(cfg *Config) string { return strconv.FormatInt(cfg.Remind.Telegram.ChatID, 10) },
		set: func(cfg *Config, v string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chat id %q: must be an integer", v)
			}
			cfg.Remind.Telegram.ChatID = id
			return nil
		},
		unset: func(cfg *Config) { cfg.Remind.Telegram.ChatID = 0 },
	},
	"export.dir": {
		Type:       KeyTypeString,
		Desc:       "Default directory for export files (empty = current dir)",
		DefaultStr: "",
		get:        func(cfg *Config) string { return cfg.Export.Dir },
		set:        func(cfg *Config, v string) error { cfg.Export.Dir = v; return nil },
		unset:      func(cfg *Config) { cfg.Export.Dir = "" },
	},
}

// ValidKeyNames returns the sorted list of all known config key names.
func ValidKeyNames() []string {
	names := make([]string, 0, len(SchemaKeys))
	for k := range SchemaKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LookupKey returns the KeyEntry for a known config key.
func LookupKey(key string) (*KeyEntry, bool) {
	entry, ok := SchemaKeys[key]
	return entry, ok
}

// ParseBoolValue accepts common boolean string representations.
// Valid truthy values: true, 1, yes, on.
// Valid falsy values: false, 0, no, off.
func ParseBoolValue(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q (use one of: true/false, 1/0, yes/no, on/off)", s)
	}
}

// ParseClockList parses a comma-separated list of "HH:MM" wall-clock
// times, normalizing each to two-digit form.
func ParseClockList(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	times := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tm, err := time.Parse("15:04", p)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q — use 24-hour HH:MM", p)
		}
		times = append(times, tm.Format("15:04"))
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no times given — use 24-hour HH:MM")
	}
	return times, nil
}
