package schedule

import (
	"fmt"
	"math"
	"time"
)

// BlockType distinguishes lessons from breaks.
type BlockType string

const (
	BlockLesson BlockType = "lesson"
	BlockBreak  BlockType = "break"
)

// Block is one slot of the bell schedule, times given as "HH:MM".
type Block struct {
	ID    string
	Label string
	Start string
	End   string
	Type  BlockType
}

// BellSchedule is the school's daily lesson and break plan.
var BellSchedule = []Block{
	{"lesson-1", "1. Stunde", "08:00", "08:45", BlockLesson},
	{"break-1", "1. Kurzpause", "08:45", "08:50", BlockBreak},
	{"lesson-2", "2. Stunde", "08:50", "09:35", BlockLesson},
	{"break-2", "2. Pause", "09:35", "09:45", BlockBreak},
	{"lesson-3", "3. Stunde", "09:45", "10:30", BlockLesson},
	{"lesson-4", "4. Stunde", "10:30", "11:15", BlockLesson},
	{"break-3", "3. Pause", "11:15", "11:30", BlockBreak},
	{"lesson-5", "5. Stunde", "11:30", "12:15", BlockLesson},
	{"break-4", "Hofpause", "12:15", "12:50", BlockBreak},
	{"lesson-6", "6. Stunde", "12:50", "13:35", BlockLesson},
	{"lesson-7", "7. Stunde", "13:45", "14:30", BlockLesson},
	{"break-5", "5. Pause", "14:30", "14:40", BlockBreak},
	{"lesson-8", "8. Stunde", "14:40", "15:25", BlockLesson},
	{"lesson-9", "9. Stunde", "15:25", "16:10", BlockLesson},
	{"break-6", "6. Pause", "16:10", "16:15", BlockBreak},
	{"lesson-10", "10. Stunde", "16:15", "17:00", BlockLesson},
	{"lesson-11", "11. Stunde", "17:00", "17:45", BlockLesson},
}

const (
	labelGap        = "Wechselzeit"
	labelOutOfHours = "Schulzeit"
)

// Progress describes where in the school day a moment falls.
type Progress struct {
	Label     string     `json:"label"`
	Type      BlockType  `json:"type"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Percent   float64    `json:"percent"`
	Remaining string     `json:"remaining"`
	Next      string     `json:"next,omitempty"`
}

type timedBlock struct {
	Block
	start time.Time
	end   time.Time
}

func clockOn(day time.Time, hhmm string) time.Time {
	var h, m int
	fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
}

func timed(blocks []Block, day time.Time) []timedBlock {
	out := make([]timedBlock, len(blocks))
	for i, b := range blocks {
		out[i] = timedBlock{Block: b, start: clockOn(day, b.Start), end: clockOn(day, b.End)}
	}
	return out
}

// Current computes the progress for now against the bell schedule.
func Current(now time.Time) Progress {
	return CurrentIn(BellSchedule, now)
}

// CurrentIn computes the progress for now against the given blocks, which
// must be ordered by start time.
func CurrentIn(blocks []Block, now time.Time) Progress {
	if len(blocks) == 0 {
		return Progress{Label: labelOutOfHours, Type: BlockBreak, Remaining: FormatRemaining(0)}
	}
	day := timed(blocks, now)

	var current, previous, next *timedBlock
	for i := range day {
		b := &day[i]
		switch {
		case !now.Before(b.start) && now.Before(b.end):
			current = b
			if i+1 < len(day) {
				next = &day[i+1]
			}
		case !b.end.After(now):
			previous = b
		case next == nil && b.start.After(now):
			next = b
		}
	}

	p := Progress{Label: labelOutOfHours, Type: BlockBreak}
	var start, end time.Time
	switch {
	case current != nil:
		p.Label, p.Type = current.Label, current.Type
		start, end = current.start, current.end
	case previous != nil && next != nil:
		p.Label = labelGap
		start, end = previous.end, next.start
	}
	if next != nil {
		p.Next = next.Label
	}
	if start.IsZero() {
		p.Remaining = FormatRemaining(0)
		return p
	}

	p.Start, p.End = &start, &end
	total := end.Sub(start)
	if total > 0 {
		p.Percent = math.Min(100, math.Max(0, float64(now.Sub(start))/float64(total)*100))
	}
	p.Remaining = FormatRemaining(end.Sub(now))
	return p
}

// FormatRemaining renders a duration rounded up to whole minutes
// ("5 Min.", "2 Std.", "1 Std. 5 Min.").
func FormatRemaining(d time.Duration) string {
	totalMinutes := int(math.Max(0, math.Ceil(d.Minutes())))
	hours, minutes := totalMinutes/60, totalMinutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d Min.", totalMinutes)
	case minutes == 0:
		return fmt.Sprintf("%d Std.", hours)
	default:
		return fmt.Sprintf("%d Std. %d Min.", hours, minutes)
	}
}
