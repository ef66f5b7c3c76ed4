package model

import "time"

// TimeFormat is the minute-precision timestamp format used in day files.
const TimeFormat = "2006-01-02 15:04"

// Entry represents a single logged activity.
type Entry struct {
	Time      string   `json:"time"`
	Activity  string   `json:"activity"`
	Device    string   `json:"device"`
	Raised    []string `json:"raised"`
	Completed []string `json:"completed"`
}

// NewEntry builds an Entry stamped with t at minute precision.
func NewEntry(t time.Time, activity, device string, raised, completed []string) Entry {
	if raised == nil {
		raised = []string{}
	}
	if completed == nil {
		completed = []string{}
	}
	return Entry{
		Time:      t.Format(TimeFormat),
		Activity:  activity,
		Device:    device,
		Raised:    raised,
		Completed: completed,
	}
}

// Timestamp parses the entry's wall-clock time in the local zone.
func (e Entry) Timestamp() (time.Time, error) {
	return time.ParseInLocation(TimeFormat, e.Time, time.Local)
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Activity []Entry `json:"activity"`
}
