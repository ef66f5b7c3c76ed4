package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/trivial-break-reminder/internal/config"
	"github.com/Tiliavir/trivial-break-reminder/internal/model"
	"github.com/Tiliavir/trivial-break-reminder/internal/reminder"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
)

// fakeClock stands in for time.Now/time.Sleep; sleeping advances it.
type fakeClock struct {
	t      time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
}

type fakePrompter struct {
	clock       *fakeClock
	notifyDelay time.Duration

	text    string
	confirm []string

	asked      []string
	completing [][]string
	notified   []string
	pauseEnded bool
}

func (p *fakePrompter) AskText(prompt string) (string, error) {
	p.asked = append(p.asked, prompt)
	return p.text, nil
}

func (p *fakePrompter) AskCompletions(labels []string) ([]string, error) {
	p.completing = append(p.completing, labels)
	return p.confirm, nil
}

func (p *fakePrompter) Notify(message string) error {
	p.notified = append(p.notified, message)
	if p.clock != nil {
		p.clock.t = p.clock.t.Add(p.notifyDelay)
	}
	return nil
}

func (p *fakePrompter) SignalPauseEnd() error {
	p.pauseEnded = true
	return nil
}

type fakeSyncer struct {
	downloads   []time.Time
	uploads     []time.Time
	downloadErr error
	uploadErr   error
}

func (f *fakeSyncer) DownloadDay(_ context.Context, day time.Time) error {
	f.downloads = append(f.downloads, day)
	return f.downloadErr
}

func (f *fakeSyncer) UploadDay(_ context.Context, day time.Time) error {
	f.uploads = append(f.uploads, day)
	return f.uploadErr
}

func testConfig() config.Config {
	return config.Config{
		BreakIntervalMinutes: 15,
		CheckIntervalSeconds: 30,
		LookAwaySeconds:      60,
		Reminders:            map[string][]string{"Drink water": {"10:00"}},
	}
}

func newTestScheduler(t *testing.T, clock *fakeClock, prompter Prompter, syncer LogSyncer) *Scheduler {
	t.Helper()
	s := New(testConfig(), t.TempDir(), "dev@host", prompter, syncer, zap.NewNop())
	s.now = clock.now
	s.sleep = clock.sleep
	return s
}

func TestWaitForBreakAlignsToBoundary(t *testing.T) {
	// Epoch-relative: the next multiple of 900s after t=100 is t=900.
	clock := &fakeClock{t: time.Unix(100, 0)}
	s := newTestScheduler(t, clock, &fakePrompter{}, &fakeSyncer{})

	s.waitForBreak()

	boundary := time.Unix(900, 0)
	woke := clock.t
	if woke.Before(boundary) {
		t.Fatalf("woke at %v, before boundary %v", woke.Unix(), boundary.Unix())
	}
	if slack := woke.Sub(boundary); slack > 30*time.Second {
		t.Errorf("slack past boundary = %v, want <= one check interval", slack)
	}
	for _, d := range clock.sleeps {
		if d > 30*time.Second {
			t.Errorf("single sleep of %v exceeds check interval", d)
		}
		if d <= 0 {
			t.Errorf("non-positive sleep %v", d)
		}
	}
}

func TestWaitForBreakNearBoundary(t *testing.T) {
	// Less than one check interval to go: a single residual sleep.
	clock := &fakeClock{t: time.Unix(880, 0)}
	s := newTestScheduler(t, clock, &fakePrompter{}, &fakeSyncer{})

	s.waitForBreak()

	if len(clock.sleeps) != 1 {
		t.Fatalf("sleeps = %d, want 1", len(clock.sleeps))
	}
	if woke := clock.t; woke.Before(time.Unix(900, 0)) {
		t.Errorf("woke at %v, before boundary", woke.Unix())
	}
}

func TestCycleFullBreak(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 27, 10, 5, 0, 0, time.Local)}
	prompter := &fakePrompter{
		clock:       clock,
		notifyDelay: 10 * time.Second,
		text:        "reading mail",
		confirm:     []string{"Drink water"},
	}
	syncer := &fakeSyncer{}
	s := newTestScheduler(t, clock, prompter, syncer)

	// An earlier entry today at 09:55 puts the 10:00 rule inside the window.
	today := clock.t.UTC()
	prev := model.NewEntry(time.Date(2026, 2, 27, 9, 55, 0, 0, time.Local),
		"planning", "dev@host", nil, nil)
	if err := storage.Append(s.base, today, prev); err != nil {
		t.Fatal(err)
	}

	if err := s.cycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	// lastSync was zero, so the cycle must have synced down then up.
	if len(syncer.downloads) != 1 {
		t.Errorf("downloads = %d, want 1", len(syncer.downloads))
	}
	if len(syncer.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(syncer.uploads))
	}

	df, err := storage.LoadDay(s.base, today)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(df.Activity) != 2 {
		t.Fatalf("entries = %d, want 2", len(df.Activity))
	}
	got := df.Activity[1]
	if got.Activity != "reading mail" {
		t.Errorf("activity = %q, want %q", got.Activity, "reading mail")
	}
	if len(got.Raised) != 1 || got.Raised[0] != "Drink water" {
		t.Errorf("raised = %v, want [Drink water]", got.Raised)
	}
	if len(got.Completed) != 1 || got.Completed[0] != "Drink water" {
		t.Errorf("completed = %v, want [Drink water]", got.Completed)
	}
	if s.state.Contains("Drink water") {
		t.Error("completed reminder still raised in state")
	}

	// The raised label was offered for completion.
	if len(prompter.completing) != 1 {
		t.Fatalf("completion prompts = %d, want 1", len(prompter.completing))
	}

	// Compensated pause: the 10s the notice was open comes out of the sleep.
	if len(clock.sleeps) == 0 {
		t.Fatal("no pause sleep recorded")
	}
	if last := clock.sleeps[len(clock.sleeps)-1]; last != 50*time.Second {
		t.Errorf("pause sleep = %v, want 50s", last)
	}
	if !prompter.pauseEnded {
		t.Error("pause end was not signalled")
	}
}

func TestCycleSkipsSyncWhenFresh(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 27, 12, 0, 0, 0, time.Local)}
	prompter := &fakePrompter{clock: clock, text: "writing"}
	syncer := &fakeSyncer{}
	s := newTestScheduler(t, clock, prompter, syncer)
	s.lastSync = clock.t.Add(-time.Minute)

	if err := s.cycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	if len(syncer.downloads) != 0 {
		t.Errorf("downloads = %d, want 0 (fresh local copy)", len(syncer.downloads))
	}
	if len(syncer.uploads) != 1 {
		t.Errorf("uploads = %d, want 1", len(syncer.uploads))
	}
}

func TestCycleEmptyDayRaisesNothing(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 27, 10, 5, 0, 0, time.Local)}
	prompter := &fakePrompter{clock: clock, text: "first activity"}
	syncer := &fakeSyncer{}
	s := newTestScheduler(t, clock, prompter, syncer)

	if err := s.cycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}

	df, err := storage.LoadDay(s.base, clock.t.UTC())
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(df.Activity) != 1 {
		t.Fatalf("entries = %d, want 1", len(df.Activity))
	}
	if len(df.Activity[0].Raised) != 0 {
		t.Errorf("raised = %v, want none on a fresh day", df.Activity[0].Raised)
	}
	if len(prompter.completing) != 0 {
		t.Errorf("completion prompts = %d, want 0", len(prompter.completing))
	}
}

func TestCycleInconsistentLogAborts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 27, 12, 0, 0, 0, time.Local)}
	syncer := &fakeSyncer{}
	s := newTestScheduler(t, clock, &fakePrompter{clock: clock}, syncer)

	// A log that completes a reminder never raised: replay must refuse it.
	bad := model.NewEntry(time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local),
		"working", "other@host", nil, []string{"Drink water"})
	if err := storage.Append(s.base, clock.t.UTC(), bad); err != nil {
		t.Fatal(err)
	}

	err := s.cycle(context.Background())
	if !errors.Is(err, reminder.ErrInconsistentLog) {
		t.Fatalf("cycle = %v, want ErrInconsistentLog", err)
	}
}

func TestCycleSyncFailureAborts(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 27, 12, 0, 0, 0, time.Local)}
	syncErr := errors.New("remote store unavailable: boom")
	syncer := &fakeSyncer{downloadErr: syncErr}
	s := newTestScheduler(t, clock, &fakePrompter{clock: clock}, syncer)

	if err := s.cycle(context.Background()); !errors.Is(err, syncErr) {
		t.Fatalf("cycle = %v, want download error", err)
	}
	// Nothing may be prompted or logged after a failed sync.
	if _, err := storage.LoadDay(s.base, clock.t.UTC()); !errors.Is(err, storage.ErrNotFound) {
		t.Error("entry logged despite failed sync")
	}
}
