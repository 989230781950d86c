// Package icalendar fetches and decodes ICS calendar feeds.
package icalendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"school_dashboard/internal/domain/calendar"

	ics "github.com/arran4/golang-ical"
)

var ErrEmptyFeed = errors.New("calendar feed is empty")

type Feed struct {
	httpClient *http.Client
}

func NewFeed(httpClient *http.Client) *Feed {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Feed{httpClient: httpClient}
}

// Fetch downloads the feed at url and returns all of its events unfiltered.
func (f *Feed) Fetch(ctx context.Context, url string) ([]calendar.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build calendar request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("calendar feed returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}
	return Parse(bytes.NewReader(body))
}

// Parse decodes every VEVENT with a start date. A missing DTEND ends the
// event at its start.
func Parse(r io.Reader) ([]calendar.Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]calendar.Event, 0)
	for _, ev := range cal.Events() {
		allDay := isDateValue(ev.GetProperty(ics.ComponentPropertyDtStart))
		start, err := startOf(ev, allDay)
		if err != nil {
			continue
		}
		end, err := endOf(ev, allDay)
		if err != nil {
			end = start
		}
		events = append(events, calendar.Event{
			Summary:     value(ev, ics.ComponentPropertySummary),
			Description: value(ev, ics.ComponentPropertyDescription),
			Location:    value(ev, ics.ComponentPropertyLocation),
			Start:       start.UnixMilli(),
			End:         end.UnixMilli(),
			AllDay:      allDay,
		})
	}
	return events, nil
}

func startOf(ev *ics.VEvent, allDay bool) (time.Time, error) {
	if allDay {
		return ev.GetAllDayStartAt()
	}
	return ev.GetStartAt()
}

func endOf(ev *ics.VEvent, allDay bool) (time.Time, error) {
	if allDay {
		return ev.GetAllDayEndAt()
	}
	return ev.GetEndAt()
}

// isDateValue reports whether a DTSTART carries a date without time.
func isDateValue(p *ics.IANAProperty) bool {
	if p == nil {
		return false
	}
	for _, v := range p.ICalParameters[string(ics.ParameterValue)] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(p.Value) == len("20060102")
}

func value(ev *ics.VEvent, prop ics.ComponentProperty) string {
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return unescape(p.Value)
}

var textUnescaper = strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)

func unescape(s string) string {
	return textUnescaper.Replace(s)
}
