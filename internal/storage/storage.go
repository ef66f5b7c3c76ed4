package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Tiliavir/trivial-break-reminder/internal/model"
)

// FileName is the file stored inside each day folder.
const FileName = "activity.json"

// ErrNotFound signals that no day file exists yet for the requested date.
var ErrNotFound = errors.New("no activity log for date")

// BaseDir returns the root data directory (~/.tbr).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tbr"), nil
}

// DaySegments returns the folder chain for a date, e.g. ["Activity","2022","4","3"].
// Segments are unpadded so local directories and remote folder names match.
func DaySegments(t time.Time) []string {
	return []string{
		"Activity",
		strconv.Itoa(t.Year()),
		strconv.Itoa(int(t.Month())),
		strconv.Itoa(t.Day()),
	}
}

// DayPath returns the local path of the given date's day file under base.
func DayPath(base string, t time.Time) string {
	parts := append([]string{base}, DaySegments(t)...)
	return filepath.Join(append(parts, FileName)...)
}

// LoadDay loads the DayFile for the given date. Returns ErrNotFound if no
// file exists yet; a zero-byte file counts as an empty day.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := DayPath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{}, fmt.Errorf("%w: %s", ErrNotFound, t.Format("2006-01-02"))
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return model.DayFile{Activity: []model.Entry{}}, nil
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date, creating the
// year/month/day directories on first write.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	return WriteRaw(DayPath(base, t), data)
}

// Append adds one entry to the end of the given date's log and persists it
// before returning. The day file is created lazily on first append.
func Append(base string, t time.Time, entry model.Entry) error {
	df, err := LoadDay(base, t)
	if errors.Is(err, ErrNotFound) {
		df = model.DayFile{Activity: []model.Entry{}}
	} else if err != nil {
		return err
	}
	df.Activity = append(df.Activity, entry)
	return SaveDay(base, t, df)
}

// WriteRaw atomically replaces the file at path with data, creating parent
// directories as needed. Readers never observe a partially written file.
func WriteRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
