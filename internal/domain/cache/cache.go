package cache

import (
	"context"
	"time"
)

// Keys of the cached API responses.
const (
	KeyTimeTables = "api/dsb/timetables"
	KeyPlans      = "api/substitution/plans"
	KeyCalendar   = "api/calendar/events"
	KeyWeather    = "api/weather"
	KeyTransit    = "api/transit"
	KeyHolidays   = "api/holidays"
)

// Entry is the last successful JSON payload stored for a key.
type Entry struct {
	Key         string
	JSONBody    string
	ContentHash string
	UpdatedAt   time.Time
	Version     int64
}

// Repository persists cache entries.
type Repository interface {
	Get(ctx context.Context, key string) (*Entry, error)
	// Upsert inserts the entry or replaces body and hash, bumping Version.
	Upsert(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]*Entry, error)
}
