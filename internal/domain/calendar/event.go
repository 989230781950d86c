package calendar

import (
	"sort"
	"time"
)

// Event is a calendar entry. Start and End are epoch milliseconds.
type Event struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       int64  `json:"startDate"`
	End         int64  `json:"endDate"`
	AllDay      bool   `json:"allDay"`
}

// Upcoming drops events that ended before now and sorts the rest by start.
func Upcoming(events []Event, now time.Time) []Event {
	cutoff := now.UnixMilli()
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if ev.End >= cutoff {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// Limit truncates events to at most n entries.
func Limit(events []Event, n int) []Event {
	if n < 0 || len(events) <= n {
		return events
	}
	return events[:n]
}
