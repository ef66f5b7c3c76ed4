// Package reminder evaluates which time-boxed reminders are due and rebuilds
// the raised-but-not-completed set by replaying a day's activity log.
package reminder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Tiliavir/trivial-break-reminder/internal/model"
)

// ErrInconsistentLog signals that a log entry completes a reminder that was
// never raised. It indicates a sync or ordering bug, so callers abort the
// cycle rather than silently ignore it.
var ErrInconsistentLog = errors.New("activity log completes a reminder that was never raised")

// Rules maps a reminder label to its daily trigger times ("HH:MM").
type Rules map[string][]string

// State is the set of reminder labels raised but not yet completed. It is a
// projection of the day's log, never persisted on its own.
type State map[string]struct{}

// Contains reports whether the label is currently raised.
func (s State) Contains(label string) bool {
	_, ok := s[label]
	return ok
}

// Labels returns the raised labels in sorted order for stable prompting.
func (s State) Labels() []string {
	labels := make([]string, 0, len(s))
	for label := range s {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Reckon replays entries in log order: each entry's raised labels are added
// to the set, then its completed labels removed. The result depends only on
// entry order, not on the entries' wall-clock timestamps.
func Reckon(entries []model.Entry) (State, error) {
	state := State{}
	for _, entry := range entries {
		for _, label := range entry.Raised {
			state[label] = struct{}{}
		}
		for _, label := range entry.Completed {
			if !state.Contains(label) {
				return nil, fmt.Errorf("%w: %q", ErrInconsistentLog, label)
			}
			delete(state, label)
		}
	}
	return state, nil
}

// Raise determines which rules are newly due: a rule not already raised whose
// scheduled time today falls strictly between the last log entry and now.
// lastEntry is the timestamp of today's most recent entry; when the day has
// no entries yet (zero lastEntry) nothing is due, so a freshly started day is
// not flooded with every trigger time that has already passed. Newly due
// labels are added to state and returned sorted; a label with several
// trigger times in the window is raised once.
func Raise(rules Rules, state State, lastEntry, now time.Time) ([]string, error) {
	if lastEntry.IsZero() {
		return nil, nil
	}

	var raised []string
	for label, times := range rules {
		if state.Contains(label) {
			continue
		}
		for _, hm := range times {
			scheduled, err := todayAt(now, hm)
			if err != nil {
				return nil, err
			}
			if lastEntry.Before(scheduled) && scheduled.Before(now) {
				raised = append(raised, label)
				break
			}
		}
	}

	sort.Strings(raised)
	for _, label := range raised {
		state[label] = struct{}{}
	}
	return raised, nil
}

// Complete removes each confirmed label from state and returns those that
// were actually raised. Confirming an unraised label is a no-op, so stale
// dialog state cannot corrupt the log.
func Complete(state State, confirmed []string) []string {
	completed := []string{}
	for _, label := range confirmed {
		if state.Contains(label) {
			delete(state, label)
			completed = append(completed, label)
		}
	}
	return completed
}

// todayAt combines now's date with an "HH:MM" trigger time in now's location.
func todayAt(now time.Time, hm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reminder time %q: %w", hm, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}
