// Package backup exports and restores ritual data as a versioned JSON
// snapshot, optionally age-encrypted with a passphrase (scrypt).
//
// Writes are atomic: data goes to a temp file, is fsync'd, then renamed
// into place to prevent corruption on crash.
package backup

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"

	"github.com/ritual-sh/ritual/internal/cal"
	"github.com/ritual-sh/ritual/internal/ledger"
	"github.com/ritual-sh/ritual/internal/task"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// ErrWrongPassphrase is returned when decryption fails due to a bad passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrCorrupted is returned when a snapshot file exists but cannot be parsed.
var ErrCorrupted = errors.New("snapshot file is corrupted or unreadable")

// ErrEncrypted is returned when reading an encrypted snapshot without a passphrase.
var ErrEncrypted = errors.New("snapshot is encrypted — a passphrase is required")

// Snapshot is the on-disk envelope (plaintext JSON inside the age file).
type Snapshot struct {
	Version     int                `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Tasks       []TaskRecord       `json:"tasks"`
	Completions []CompletionRecord `json:"completions"`
}

// TaskRecord is a task in snapshot form. Dates are "YYYY-MM-DD" strings
// so the file stays readable and diffable.
type TaskRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	RuleKind  string `json:"rule_kind"`
	Weekdays  string `json:"weekdays,omitempty"`
	MonthDays string `json:"month_days,omitempty"`
	CreatedOn string `json:"created_on"`
	StartOn   string `json:"start_on,omitempty"`
	Active    bool   `json:"active"`
}

// CompletionRecord is one completed day in snapshot form.
type CompletionRecord struct {
	TaskID string `json:"task_id"`
	Day    string `json:"day"`
}

// Collect builds a snapshot of everything in the database, including
// paused tasks.
func Collect(tasks *task.Store, completions *ledger.Store) (*Snapshot, error) {
	all, err := tasks.List(task.ListOptions{IncludePaused: true})
	if err != nil {
		return nil, fmt.Errorf("collecting tasks: %w", err)
	}
	done, err := completions.ListAll()
	if err != nil {
		return nil, fmt.Errorf("collecting completions: %w", err)
	}

	snap := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC(),
	}
	for _, t := range all {
		rec := TaskRecord{
			ID:        t.ID,
			Title:     t.Title,
			Category:  t.Category,
			RuleKind:  t.Rule.Kind,
			Weekdays:  t.Rule.Weekdays.String(),
			MonthDays: t.Rule.MonthDays.String(),
			CreatedOn: t.CreatedOn.String(),
			Active:    t.Active,
		}
		if t.StartOn != nil {
			rec.StartOn = t.StartOn.String()
		}
		snap.Tasks = append(snap.Tasks, rec)
	}
	for _, c := range done {
		snap.Completions = append(snap.Completions, CompletionRecord{
			TaskID: c.TaskID,
			Day:    c.Day.String(),
		})
	}
	sortRecords(snap)
	return snap, nil
}

// Write serializes the snapshot to path. With a non-empty passphrase the
// JSON is age-encrypted (scrypt) and armored; otherwise it is written as
// plain indented JSON.
func Write(path string, snap *Snapshot, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	var raw []byte
	var err error
	if passphrase == "" {
		raw, err = json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("serializing snapshot: %w", err)
		}
		raw = append(raw, '\n')
	} else {
		raw, err = encryptSnapshot(snap, passphrase)
		if err != nil {
			return err
		}
	}

	return atomicWrite(path, raw)
}

// Read loads a snapshot from path, decrypting when the file is an
// armored age blob. Returns ErrEncrypted if the file is encrypted and no
// passphrase was given, ErrWrongPassphrase on a bad passphrase, and
// ErrCorrupted when the contents cannot be parsed.
func Read(path, passphrase string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isArmored(raw) {
		if passphrase == "" {
			return nil, ErrEncrypted
		}
		return decryptSnapshot(raw, passphrase)
	}

	snap, err := parseSnapshot(raw)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore replaces all tasks and completions with the snapshot contents
// in a single transaction. On any error the database is left untouched.
func Restore(db *sql.DB, snap *Snapshot) error {
	if err := Validate(snap); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting restore: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM completions`); err != nil {
		return fmt.Errorf("clearing completions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clearing tasks: %w", err)
	}

	for _, rec := range snap.Tasks {
		rule, err := recordRule(rec)
		if err != nil {
			return fmt.Errorf("%w: task %q: %v", ErrCorrupted, rec.ID, err)
		}
		var startOn any
		if rec.StartOn != "" {
			startOn = rec.StartOn
		}
		activeInt := 0
		if rec.Active {
			activeInt = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO tasks (id, title, category, rule_kind, weekdays, month_days, created_on, start_on, active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Title, rec.Category, rule.Kind, rule.Weekdays.String(), rule.MonthDays.String(),
			rec.CreatedOn, startOn, activeInt,
		); err != nil {
			return fmt.Errorf("restoring task %q: %w", rec.ID, err)
		}
	}
	for _, c := range snap.Completions {
		if _, err := tx.Exec(
			`INSERT INTO completions (task_id, day) VALUES (?, ?)`,
			c.TaskID, c.Day,
		); err != nil {
			return fmt.Errorf("restoring completion for %q on %s: %w", c.TaskID, c.Day, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restore: %w", err)
	}
	return nil
}

// DefaultFilename names an export file for a given day.
func DefaultFilename(day cal.Day, encrypted bool) string {
	name := "ritual-" + day.String() + ".json"
	if encrypted {
		name += ".age"
	}
	return name
}

// Validate checks snapshot integrity: version, parseable rules and
// dates, and completions that reference snapshot tasks.
func Validate(snap *Snapshot) error {
	if snap.Version <= 0 {
		return fmt.Errorf("%w: missing snapshot version", ErrCorrupted)
	}
	if snap.Version > SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than this build supports (%d) — upgrade ritual",
			snap.Version, SnapshotVersion)
	}

	ids := make(map[string]bool, len(snap.Tasks))
	for i, rec := range snap.Tasks {
		if rec.ID == "" {
			return fmt.Errorf("%w: task %d has no id", ErrCorrupted, i)
		}
		if ids[rec.ID] {
			return fmt.Errorf("%w: duplicate task id %q", ErrCorrupted, rec.ID)
		}
		ids[rec.ID] = true
		if strings.TrimSpace(rec.Title) == "" {
			return fmt.Errorf("%w: task %q has no title", ErrCorrupted, rec.ID)
		}
		if _, err := recordRule(rec); err != nil {
			return fmt.Errorf("%w: task %q: %v", ErrCorrupted, rec.ID, err)
		}
		if _, err := cal.Parse(rec.CreatedOn); err != nil {
			return fmt.Errorf("%w: task %q has bad created_on %q", ErrCorrupted, rec.ID, rec.CreatedOn)
		}
		if rec.StartOn != "" {
			if _, err := cal.Parse(rec.StartOn); err != nil {
				return fmt.Errorf("%w: task %q has bad start_on %q", ErrCorrupted, rec.ID, rec.StartOn)
			}
		}
	}
	for i, c := range snap.Completions {
		if !ids[c.TaskID] {
			return fmt.Errorf("%w: completion %d references unknown task %q", ErrCorrupted, i, c.TaskID)
		}
		if _, err := cal.Parse(c.Day); err != nil {
			return fmt.Errorf("%w: completion %d has bad day %q", ErrCorrupted, i, c.Day)
		}
	}
	return nil
}

// recordRule rebuilds and validates the rule carried by a task record.
func recordRule(rec TaskRecord) (task.Rule, error) {
	kind, err := task.ParseKind(rec.RuleKind)
	if err != nil {
		return task.Rule{}, err
	}
	r := task.Rule{Kind: kind}
	switch kind {
	case task.KindWeekly:
		set, err := task.ParseWeekdaySet(rec.Weekdays)
		if err != nil {
			return task.Rule{}, err
		}
		r.Weekdays = set
	case task.KindMonthly:
		set, err := task.ParseMonthDaySet(rec.MonthDays)
		if err != nil {
			return task.Rule{}, err
		}
		r.MonthDays = set
	}
	return r, nil
}

// parseSnapshot unmarshals and sanity-checks plain JSON snapshot bytes.
func parseSnapshot(raw []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: parsing snapshot JSON: %v", ErrCorrupted, err)
	}
	if err := Validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// encryptSnapshot serializes and encrypts using age scrypt (passphrase-based).
func encryptSnapshot(snap *Snapshot, passphrase string) ([]byte, error) {
	jsonBytes, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("serializing snapshot: %w", err)
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age recipient: %w", err)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing age encryption: %w", err)
	}

	if _, err := w.Write(jsonBytes); err != nil {
		return nil, fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}

	return buf.Bytes(), nil
}

// decryptSnapshot decrypts and parses an armored age snapshot.
func decryptSnapshot(raw []byte, passphrase string) (*Snapshot, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age identity: %w", err)
	}

	armorReader := armor.NewReader(bytes.NewReader(raw))
	r, err := age.Decrypt(armorReader, identity)
	if err != nil {
		// filippo.io/age does not export typed errors for wrong passphrase (as of v1.x).
		// We detect it by matching known error message substrings. This is fragile:
		// if the library changes its error wording, wrong passphrases will silently
		// fall through to ErrCorrupted. Revisit if age exports typed errors in
		// a future release (track: https://github.com/FiloSottile/age/issues).
		msg := err.Error()
		if strings.Contains(msg, "no identity matched") || strings.Contains(msg, "incorrect") {
			return nil, fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading decrypted data: %v", ErrCorrupted, err)
	}

	return parseSnapshot(plaintext)
}

// isArmored reports whether raw looks like an armored age file.
func isArmored(raw []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(raw, " \t\r\n"), []byte(armor.Header))
}

// sortRecords orders snapshot contents deterministically so repeated
// exports of the same data produce identical files.
func sortRecords(snap *Snapshot) {
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].ID < snap.Tasks[j].ID })
	sort.Slice(snap.Completions, func(i, j int) bool {
		if snap.Completions[i].TaskID != snap.Completions[j].TaskID {
			return snap.Completions[i].TaskID < snap.Completions[j].TaskID
		}
		return snap.Completions[i].Day < snap.Completions[j].Day
	})
}

// atomicWrite writes data to path atomically: write temp file → fsync → rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ritual-backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Ensure cleanup on failure.
	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting temp file permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing snapshot file: %w", err)
	}

	success = true
	return nil
}
