package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-break-reminder/internal/model"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

func TestLoadDayNotExist(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	_, err := storage.LoadDay(base, day)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("LoadDay on missing file = %v, want ErrNotFound", err)
	}
}

func TestDaySegmentsUnpadded(t *testing.T) {
	day := time.Date(2022, 4, 3, 0, 0, 0, 0, time.UTC)
	got := storage.DaySegments(day)
	want := []string{"Activity", "2022", "4", "3"}
	if len(got) != len(want) {
		t.Fatalf("DaySegments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DaySegments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppendCreatesLazily(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	entry := model.NewEntry(day.Add(9*time.Hour), "writing tests", "dev@host", nil, nil)
	if err := storage.Append(base, day, entry); err != nil {
		t.Fatalf("Append (first): %v", err)
	}

	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay after append: %v", err)
	}
	if len(df.Activity) != 1 {
		t.Fatalf("LoadDay entries = %d, want 1", len(df.Activity))
	}
	if df.Activity[0].Activity != "writing tests" {
		t.Errorf("activity = %q, want %q", df.Activity[0].Activity, "writing tests")
	}
	if df.Activity[0].Device != "dev@host" {
		t.Errorf("device = %q, want %q", df.Activity[0].Device, "dev@host")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	for _, activity := range []string{"first", "second", "third"} {
		entry := model.NewEntry(day, activity, "dev@host", nil, nil)
		if err := storage.Append(base, day, entry); err != nil {
			t.Fatalf("Append %q: %v", activity, err)
		}
	}

	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(df.Activity) != 3 {
		t.Fatalf("entries = %d, want 3", len(df.Activity))
	}
	for i, want := range []string{"first", "second", "third"} {
		if df.Activity[i].Activity != want {
			t.Errorf("entry %d = %q, want %q", i, df.Activity[i].Activity, want)
		}
	}
}

func TestLoadDayEmptyFile(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	path := storage.DayPath(base, day)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay on empty file: %v", err)
	}
	if len(df.Activity) != 0 {
		t.Errorf("entries = %d, want 0", len(df.Activity))
	}
}

func TestLoadDayCorruptBackup(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	path := storage.DayPath(base, day)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := storage.LoadDay(base, day)
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}

	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}
