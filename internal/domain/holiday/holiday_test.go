package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUpcoming(t *testing.T) {
	now := day(2025, time.July, 1)
	holidays := []Holiday{
		{Name: "osterferien", End: day(2025, time.April, 25)},
		{Name: "sommerferien", End: day(2025, time.August, 29)},
	}
	got := Upcoming(holidays, now)
	assert.Len(t, got, 1)
	assert.Equal(t, "sommerferien", got[0].Name)
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, "Herbstferien", FormatName("herbstferien berlin", "berlin"))
	assert.Equal(t, "Herbstferien", FormatName("HERBSTFERIEN Berlin", "berlin"))
	assert.Equal(t, "Übergang", FormatName("übergang", "berlin"))
	assert.Equal(t, "Berlinale", FormatName("berlinale", "berlin"))
	assert.Equal(t, "", FormatName("  ", "berlin"))
}

func TestDaysUntilText(t *testing.T) {
	now := time.Date(2025, time.October, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "Bereits begonnen", DaysUntilText(day(2025, time.September, 30), now))
	assert.Equal(t, "Bereits begonnen", DaysUntilText(day(2025, time.October, 1), now))
	assert.Equal(t, "Beginnen morgen", DaysUntilText(day(2025, time.October, 2), now))
	assert.Equal(t, "In 19 Tagen", DaysUntilText(day(2025, time.October, 20), now))
}

func TestViews(t *testing.T) {
	now := day(2025, time.October, 1)
	holidays := []Holiday{
		{Name: "herbstferien berlin", Start: day(2025, time.October, 20)},
		{Name: "weihnachtsferien berlin", Start: day(2025, time.December, 22)},
	}
	views := Views(holidays, "berlin", now, 1)
	assert.Len(t, views, 1)
	assert.Equal(t, "Herbstferien", views[0].Name)
	assert.Equal(t, "In 19 Tagen", views[0].DaysUntil)
}
