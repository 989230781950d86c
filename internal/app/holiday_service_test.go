package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"school_dashboard/internal/domain/holiday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidays struct {
	byYear map[int][]holiday.Holiday
	failOn map[int]bool
	years  []int
}

func (f *fakeHolidays) Holidays(_ context.Context, _ string, year int) ([]holiday.Holiday, error) {
	f.years = append(f.years, year)
	if f.failOn[year] {
		return nil, errBoom
	}
	return f.byYear[year], nil
}

func period(name string, start time.Time, days int) holiday.Holiday {
	return holiday.Holiday{Name: name, Start: start, End: start.AddDate(0, 0, days), Year: start.Year(), StateCode: "BE"}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHolidayService_AddsNextYearWhenFewUpcoming(t *testing.T) {
	source := &fakeHolidays{byYear: map[int][]holiday.Holiday{
		2025: {
			period("osterferien berlin", date(2025, 4, 14), 12),
			period("sommerferien berlin", date(2025, 7, 10), 42),
			period("herbstferien berlin", date(2025, 10, 20), 12),
			period("weihnachtsferien berlin", date(2025, 12, 22), 12),
		},
		2026: {period("winterferien berlin", date(2026, 2, 2), 5)},
	}}
	svc := NewHolidayService(source, nil, "BE", "berlin", newTestCache(t), testLogger())
	svc.now = fixedNow(date(2025, 10, 1))

	upcoming, err := svc.Upcoming(testContext(t))
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "winterferien berlin", upcoming[2].Name)
	assert.Equal(t, []int{2025, 2026}, source.years)
}

func TestHolidayService_EnoughUpcomingSkipsNextYear(t *testing.T) {
	source := &fakeHolidays{byYear: map[int][]holiday.Holiday{
		2025: {
			period("osterferien berlin", date(2025, 4, 14), 12),
			period("sommerferien berlin", date(2025, 7, 10), 42),
			period("herbstferien berlin", date(2025, 10, 20), 12),
		},
	}}
	svc := NewHolidayService(source, nil, "BE", "berlin", newTestCache(t), testLogger())
	svc.now = fixedNow(date(2025, 3, 1))

	upcoming, err := svc.Upcoming(testContext(t))
	require.NoError(t, err)
	assert.Len(t, upcoming, 3)
	assert.Equal(t, []int{2025}, source.years)
}

func TestHolidayService_FallsBackToBundledData(t *testing.T) {
	source := &fakeHolidays{failOn: map[int]bool{2025: true, 2026: true}}
	bundled := func(region string, year int) ([]holiday.Holiday, error) {
		if year != 2025 {
			return nil, fmt.Errorf("no bundled data for %s %d", region, year)
		}
		return []holiday.Holiday{period("herbstferien berlin", date(2025, 10, 20), 12)}, nil
	}
	svc := NewHolidayService(source, bundled, "BE", "berlin", newTestCache(t), testLogger())
	svc.now = fixedNow(date(2025, 10, 1))

	require.NoError(t, svc.Refresh(testContext(t)))
	state := svc.State()
	require.Len(t, state.Data, 1)
	assert.Equal(t, "Herbstferien", state.Data[0].Name)
	assert.Equal(t, "In 19 Tagen", state.Data[0].DaysUntil)
	assert.Empty(t, state.Error)
}

func TestHolidayService_FailureSetsMessage(t *testing.T) {
	source := &fakeHolidays{failOn: map[int]bool{2025: true}}
	svc := NewHolidayService(source, nil, "BE", "berlin", newTestCache(t), testLogger())
	svc.now = fixedNow(date(2025, 10, 1))

	err := svc.Refresh(testContext(t))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, HolidayErrorMessage, svc.State().Error)
}
