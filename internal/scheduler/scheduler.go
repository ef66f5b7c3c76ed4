// Package scheduler runs the break loop: wait for the next break boundary,
// refresh the local log from the remote store when stale, prompt the user,
// log the activity, and hold the look-away pause.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tiliavir/trivial-break-reminder/internal/config"
	"github.com/Tiliavir/trivial-break-reminder/internal/model"
	"github.com/Tiliavir/trivial-break-reminder/internal/reminder"
	"github.com/Tiliavir/trivial-break-reminder/internal/storage"
	"github.com/Tiliavir/trivial-break-reminder/internal/timecalc"
)

// Prompter is the interactive dialog surface used during a break. All calls
// block until the user responds (or the notice is dismissed).
type Prompter interface {
	AskText(prompt string) (string, error)
	AskCompletions(labels []string) ([]string, error)
	Notify(message string) error
	SignalPauseEnd() error
}

// LogSyncer moves the current day's log to and from the remote store.
type LogSyncer interface {
	DownloadDay(ctx context.Context, day time.Time) error
	UploadDay(ctx context.Context, day time.Time) error
}

// Scheduler drives the break loop. It is strictly sequential: no operation
// overlaps another, and all waits are blocking sleeps.
type Scheduler struct {
	cfg      config.Config
	base     string
	device   string
	prompter Prompter
	syncer   LogSyncer
	log      *zap.Logger

	now   func() time.Time
	sleep func(time.Duration)

	state    reminder.State
	lastSync time.Time
}

// New creates a Scheduler storing logs under base and stamping entries with
// the given device string.
func New(cfg config.Config, base, device string, prompter Prompter, syncer LogSyncer, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		base:     base,
		device:   device,
		prompter: prompter,
		syncer:   syncer,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
		state:    reminder.State{},
	}
}

// Run executes break cycles until one fails. There is no per-cycle recovery:
// the first error aborts the loop and propagates, and the process is expected
// to be restarted externally.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("break loop started",
		zap.Duration("break_interval", s.cfg.BreakInterval()),
		zap.Duration("check_interval", s.cfg.CheckInterval()),
	)
	for {
		s.waitForBreak()
		if err := s.cycle(ctx); err != nil {
			s.log.Error("break cycle failed", zap.Error(err))
			return err
		}
	}
}

// waitForBreak sleeps until the next wall-clock multiple of the break
// interval. Sleeping in check-interval steps keeps each wakeup cheap while
// never overshooting the boundary by more than one check interval; aligning
// to epoch multiples rather than loop-start time means missed cycles don't
// accumulate drift.
func (s *Scheduler) waitForBreak() {
	brk := s.cfg.BreakInterval()
	check := s.cfg.CheckInterval()
	for {
		remaining := timecalc.UntilNext(s.now(), brk)
		// UntilNext reports a full interval when now sits exactly on a
		// boundary; either way only the residual check sleep is left.
		if remaining == brk || remaining < check {
			break
		}
		s.sleep(timecalc.UntilNext(s.now(), check))
	}
	s.sleep(check)
}

// cycle performs one break: Syncing (if stale) → Prompting → LookingAway.
func (s *Scheduler) cycle(ctx context.Context) error {
	now := s.now()
	today := now.UTC()

	// Syncing: if another device may have appended since our last upload,
	// pull the remote copy and rebuild the raised set from it.
	if now.Sub(s.lastSync) > s.cfg.BreakInterval() {
		s.log.Debug("local log may be stale, syncing", zap.Time("last_sync", s.lastSync))
		if err := s.syncer.DownloadDay(ctx, today); err != nil {
			return err
		}
		state, err := s.reckonToday(today)
		if err != nil {
			return err
		}
		s.state = state
	}

	// Prompting.
	activity, err := s.prompter.AskText("What are you up to?")
	if err != nil {
		return fmt.Errorf("asking for activity: %w", err)
	}

	lastEntry, err := s.lastEntryTime(today)
	if err != nil {
		return err
	}
	raised, err := reminder.Raise(reminder.Rules(s.cfg.Reminders), s.state, lastEntry, s.now())
	if err != nil {
		return err
	}
	if len(raised) > 0 {
		s.log.Info("reminders raised", zap.Strings("labels", raised))
	}

	var confirmed []string
	if labels := s.state.Labels(); len(labels) > 0 {
		confirmed, err = s.prompter.AskCompletions(labels)
		if err != nil {
			return fmt.Errorf("asking for completions: %w", err)
		}
	}
	completed := reminder.Complete(s.state, confirmed)

	entry := model.NewEntry(s.now(), activity, s.device, raised, completed)
	if err := storage.Append(s.base, today, entry); err != nil {
		return err
	}
	if err := s.syncer.UploadDay(ctx, today); err != nil {
		return err
	}
	s.lastSync = s.now()

	// LookingAway: the pause spans exactly the configured time regardless of
	// how long the notice dialog itself was open.
	start := s.now()
	message := fmt.Sprintf("Look away from your screen for %d seconds.", s.cfg.LookAwaySeconds)
	if err := s.prompter.Notify(message); err != nil {
		return fmt.Errorf("showing look-away notice: %w", err)
	}
	if rest := start.Add(s.cfg.LookAway()).Sub(s.now()); rest > 0 {
		s.sleep(rest)
	}
	if err := s.prompter.SignalPauseEnd(); err != nil {
		return fmt.Errorf("signalling pause end: %w", err)
	}

	s.log.Debug("break cycle complete",
		zap.Strings("raised", raised),
		zap.Strings("completed", completed),
	)
	return nil
}

// reckonToday replays today's log into a raised set. A day with no file yet
// yields an empty set.
func (s *Scheduler) reckonToday(today time.Time) (reminder.State, error) {
	df, err := storage.LoadDay(s.base, today)
	if errors.Is(err, storage.ErrNotFound) {
		return reminder.State{}, nil
	}
	if err != nil {
		return nil, err
	}
	return reminder.Reckon(df.Activity)
}

// lastEntryTime returns the timestamp of today's most recent entry, or the
// zero time when the day has no entries yet.
func (s *Scheduler) lastEntryTime(today time.Time) (time.Time, error) {
	df, err := storage.LoadDay(s.base, today)
	if errors.Is(err, storage.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if len(df.Activity) == 0 {
		return time.Time{}, nil
	}
	last := df.Activity[len(df.Activity)-1]
	ts, err := last.Timestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing last entry time: %w", err)
	}
	return ts, nil
}
