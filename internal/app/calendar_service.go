package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/calendar"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const (
	DefaultEventLimit = 5
	MaxEventLimit     = 100
)

var (
	ErrCalendarNotConfigured = errors.New("calendar ICS URL is not configured")
	ErrInvalidLimit          = fmt.Errorf("limit must be between 1 and %d", MaxEventLimit)
)

// EventFeed loads all events of an ICS feed.
type EventFeed interface {
	Fetch(ctx context.Context, url string) ([]calendar.Event, error)
}

type CalendarService struct {
	url   string
	feed  EventFeed
	cache *CacheService
	now   func() time.Time
	log   *logrus.Entry
}

func NewCalendarService(url string, feed EventFeed, cache *CacheService, log *logrus.Entry) *CalendarService {
	return &CalendarService{
		url:   url,
		feed:  feed,
		cache: cache,
		now:   time.Now,
		log:   log.WithField("component", "calendar_service"),
	}
}

// Refresh loads upcoming events from the feed and caches them.
func (s *CalendarService) Refresh(ctx context.Context) ([]calendar.Event, error) {
	if s.url == "" {
		return nil, ErrCalendarNotConfigured
	}
	started := time.Now()
	events, err := s.feed.Fetch(ctx, s.url)
	metrics.ObserveFetch(metrics.SourceCalendar, started, err)
	if err != nil {
		return nil, err
	}
	upcoming := calendar.Upcoming(events, s.now())
	s.cache.StoreQuietly(ctx, cache.KeyCalendar, upcoming)
	return upcoming, nil
}

// Upcoming returns at most limit upcoming events. When the feed cannot be
// read the cached events are used; the error is returned only without cache.
func (s *CalendarService) Upcoming(ctx context.Context, limit int) ([]calendar.Event, error) {
	if limit < 1 || limit > MaxEventLimit {
		return nil, ErrInvalidLimit
	}
	events, err := s.Refresh(ctx)
	if err == nil {
		return calendar.Limit(events, limit), nil
	}
	s.log.WithError(err).Warn("Failed to fetch calendar events")

	var cached []calendar.Event
	ok, cacheErr := s.cache.Load(ctx, cache.KeyCalendar, &cached)
	if cacheErr != nil {
		s.log.WithError(cacheErr).Warn("Failed to read cached calendar events")
	}
	if ok {
		return calendar.Limit(cached, limit), nil
	}
	return nil, err
}
