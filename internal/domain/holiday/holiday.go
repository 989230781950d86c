package holiday

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Holiday is a school holiday period as published by ferien-api.de.
type Holiday struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Year      int       `json:"year"`
	StateCode string    `json:"stateCode"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// View is a holiday prepared for display.
type View struct {
	Name      string    `json:"name"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	DaysUntil string    `json:"daysUntil"`
}

// MinUpcoming is the number of upcoming holidays below which next year's
// data is added.
const MinUpcoming = 3

// Upcoming keeps holidays that end after now.
func Upcoming(holidays []Holiday, now time.Time) []Holiday {
	out := make([]Holiday, 0, len(holidays))
	for _, h := range holidays {
		if h.End.After(now) {
			out = append(out, h)
		}
	}
	return out
}

// FormatName strips a trailing region name ("herbstferien berlin") and
// capitalises the first letter, lower-casing the rest.
func FormatName(name, region string) string {
	if region != "" {
		suffix := regexp.MustCompile(`(?i)\s+` + regexp.QuoteMeta(region) + `$`)
		name = suffix.ReplaceAllString(name, "")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + strings.ToLower(name[size:])
}

// DaysUntilText describes how far away the start of a holiday is.
func DaysUntilText(start, now time.Time) string {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(startDay.Sub(today).Hours() / 24)
	switch {
	case days <= 0:
		return "Bereits begonnen"
	case days == 1:
		return "Beginnen morgen"
	default:
		return fmt.Sprintf("In %d Tagen", days)
	}
}

// Views converts up to limit holidays for display.
func Views(holidays []Holiday, region string, now time.Time, limit int) []View {
	if limit >= 0 && len(holidays) > limit {
		holidays = holidays[:limit]
	}
	out := make([]View, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, View{
			Name:      FormatName(h.Name, region),
			Start:     h.Start,
			End:       h.End,
			DaysUntil: DaysUntilText(h.Start, now),
		})
	}
	return out
}
