package app

import (
	"context"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/holiday"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const (
	HolidayErrorMessage = "Fehler beim Laden der Feriendaten. Bitte versuche es später erneut."
	HolidayViewLimit    = 6
)

type HolidaySource interface {
	Holidays(ctx context.Context, region string, year int) ([]holiday.Holiday, error)
}

// BundledHolidays returns holidays shipped with the binary.
type BundledHolidays func(region string, year int) ([]holiday.Holiday, error)

type HolidayService struct {
	source  HolidaySource
	bundled BundledHolidays
	region  string
	// regionName is stripped from holiday names ("herbstferien berlin").
	regionName string
	cache      *CacheService
	panel      *Panel[[]holiday.View]
	now        func() time.Time
	log        *logrus.Entry
}

func NewHolidayService(source HolidaySource, bundled BundledHolidays, region, regionName string, cache *CacheService, log *logrus.Entry) *HolidayService {
	return &HolidayService{
		source:     source,
		bundled:    bundled,
		region:     region,
		regionName: regionName,
		cache:      cache,
		panel:      NewPanel[[]holiday.View](HolidayErrorMessage),
		now:        time.Now,
		log:        log.WithField("component", "holiday_service"),
	}
}

// Upcoming returns holidays ending after now. With fewer than
// holiday.MinUpcoming left this year, next year's holidays are appended.
func (s *HolidayService) Upcoming(ctx context.Context) ([]holiday.Holiday, error) {
	now := s.now()
	year := now.Year()

	current, err := s.load(ctx, year)
	if err != nil {
		return nil, err
	}
	upcoming := holiday.Upcoming(current, now)
	if len(upcoming) < holiday.MinUpcoming {
		next, err := s.load(ctx, year+1)
		if err != nil {
			s.log.WithError(err).WithField("year", year+1).Warn("Could not load next year's holidays")
		} else {
			upcoming = append(upcoming, next...)
		}
	}
	return upcoming, nil
}

// load asks the API and falls back to the bundled data set.
func (s *HolidayService) load(ctx context.Context, year int) ([]holiday.Holiday, error) {
	started := time.Now()
	holidays, err := s.source.Holidays(ctx, s.region, year)
	metrics.ObserveFetch(metrics.SourceHolidays, started, err)
	if err == nil {
		return holidays, nil
	}
	if s.bundled == nil {
		return nil, err
	}
	bundled, bErr := s.bundled(s.region, year)
	if bErr != nil || len(bundled) == 0 {
		return nil, err
	}
	s.log.WithError(err).WithField("year", year).Warn("Holiday API failed, using bundled data")
	return bundled, nil
}

func (s *HolidayService) Refresh(ctx context.Context) error {
	err := s.panel.Load(ctx, func(ctx context.Context) ([]holiday.View, error) {
		upcoming, err := s.Upcoming(ctx)
		if err != nil {
			return nil, err
		}
		return holiday.Views(upcoming, s.regionName, s.now(), HolidayViewLimit), nil
	})
	if err != nil {
		s.log.WithError(err).Warn("Failed to refresh holidays")
		return err
	}
	s.cache.StoreQuietly(ctx, cache.KeyHolidays, s.panel.State().Data)
	return nil
}

func (s *HolidayService) Restore(ctx context.Context) error {
	_, err := restorePanel(ctx, s.cache, cache.KeyHolidays, s.panel)
	return err
}

func (s *HolidayService) State() PanelState[[]holiday.View] {
	return s.panel.State()
}
