package app

import (
	"context"
	"testing"
	"time"

	"school_dashboard/internal/domain/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	events []calendar.Event
	err    error
	urls   []string
}

func (f *fakeFeed) Fetch(_ context.Context, url string) ([]calendar.Event, error) {
	f.urls = append(f.urls, url)
	return f.events, f.err
}

var calendarNow = time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)

func event(summary string, start time.Time, d time.Duration) calendar.Event {
	return calendar.Event{Summary: summary, Start: start.UnixMilli(), End: start.Add(d).UnixMilli()}
}

func newCalendarFixture(t *testing.T, url string, feed *fakeFeed) *CalendarService {
	t.Helper()
	svc := NewCalendarService(url, feed, newTestCache(t), testLogger())
	svc.now = fixedNow(calendarNow)
	return svc
}

func TestCalendarService_UpcomingFiltersSortsAndLimits(t *testing.T) {
	feed := &fakeFeed{events: []calendar.Event{
		event("Elternabend", calendarNow.Add(72*time.Hour), time.Hour),
		event("Gestern", calendarNow.Add(-24*time.Hour), time.Hour),
		event("Sportfest", calendarNow.Add(24*time.Hour), 4*time.Hour),
		event("Läuft noch", calendarNow.Add(-time.Hour), 2*time.Hour),
	}}
	svc := newCalendarFixture(t, "https://example.org/cal.ics", feed)

	got, err := svc.Upcoming(testContext(t), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Läuft noch", got[0].Summary)
	assert.Equal(t, "Sportfest", got[1].Summary)
	assert.Equal(t, []string{"https://example.org/cal.ics"}, feed.urls)
}

func TestCalendarService_LimitBounds(t *testing.T) {
	svc := newCalendarFixture(t, "https://example.org/cal.ics", &fakeFeed{})

	for _, limit := range []int{0, -1, MaxEventLimit + 1} {
		_, err := svc.Upcoming(testContext(t), limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
	_, err := svc.Upcoming(testContext(t), MaxEventLimit)
	assert.NoError(t, err)
}

func TestCalendarService_NotConfigured(t *testing.T) {
	svc := newCalendarFixture(t, "", &fakeFeed{})

	_, err := svc.Upcoming(testContext(t), DefaultEventLimit)
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)
}

func TestCalendarService_FallsBackToCachedEvents(t *testing.T) {
	ctx := testContext(t)
	feed := &fakeFeed{events: []calendar.Event{
		event("A", calendarNow.Add(time.Hour), time.Hour),
		event("B", calendarNow.Add(2*time.Hour), time.Hour),
		event("C", calendarNow.Add(3*time.Hour), time.Hour),
	}}
	svc := newCalendarFixture(t, "https://example.org/cal.ics", feed)
	_, err := svc.Upcoming(ctx, DefaultEventLimit)
	require.NoError(t, err)

	feed.events, feed.err = nil, errBoom
	got, err := svc.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Summary)
}

func TestCalendarService_ErrorWithoutCache(t *testing.T) {
	svc := newCalendarFixture(t, "https://example.org/cal.ics", &fakeFeed{err: errBoom})

	_, err := svc.Upcoming(testContext(t), DefaultEventLimit)
	assert.ErrorIs(t, err, errBoom)
}
