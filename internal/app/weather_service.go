package app

import (
	"context"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/weather"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const WeatherErrorMessage = "Wetterdaten konnten nicht geladen werden."

type WeatherSource interface {
	Forecast(ctx context.Context, latitude, longitude float64, now time.Time) (*weather.Report, error)
}

type WeatherService struct {
	source    WeatherSource
	latitude  float64
	longitude float64
	location  string
	cache     *CacheService
	panel     *Panel[*weather.Report]
	now       func() time.Time
	log       *logrus.Entry
}

func NewWeatherService(source WeatherSource, latitude, longitude float64, location string, cache *CacheService, log *logrus.Entry) *WeatherService {
	return &WeatherService{
		source:    source,
		latitude:  latitude,
		longitude: longitude,
		location:  location,
		cache:     cache,
		panel:     NewPanel[*weather.Report](WeatherErrorMessage),
		now:       time.Now,
		log:       log.WithField("component", "weather_service"),
	}
}

func (s *WeatherService) Refresh(ctx context.Context) error {
	started := time.Now()
	err := s.panel.Load(ctx, func(ctx context.Context) (*weather.Report, error) {
		report, err := s.source.Forecast(ctx, s.latitude, s.longitude, s.now())
		if err != nil {
			return nil, err
		}
		report.Location = s.location
		return report, nil
	})
	metrics.ObserveFetch(metrics.SourceWeather, started, err)
	if err != nil {
		s.log.WithError(err).Warn("Failed to refresh weather")
		return err
	}
	s.cache.StoreQuietly(ctx, cache.KeyWeather, s.panel.State().Data)
	return nil
}

// Restore seeds the panel from the response cache.
func (s *WeatherService) Restore(ctx context.Context) error {
	_, err := restorePanel(ctx, s.cache, cache.KeyWeather, s.panel)
	return err
}

func (s *WeatherService) State() PanelState[*weather.Report] {
	return s.panel.State()
}
