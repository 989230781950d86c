package app

import (
	"context"
	"errors"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/transit"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

const (
	TransitErrorMessage   = "Abfahrten konnten nicht geladen werden. Bitte später erneut versuchen."
	NoSuburbanStopMessage = "Keine S-Bahn-Station in der Nähe gefunden."
	SuburbanErrorMessage  = "S-Bahn-Abfahrten konnten nicht geladen werden."
)

var ErrNoStopsNearby = errors.New("no stops found near the school")

type TransitSource interface {
	NearbyStops(ctx context.Context, latitude, longitude float64) ([]transit.Stop, error)
	Departures(ctx context.Context, stopID string, suburbanOnly bool) ([]transit.Departure, error)
}

type TransitService struct {
	source    TransitSource
	latitude  float64
	longitude float64
	cache     *CacheService
	panel     *Panel[*transit.Board]
	log       *logrus.Entry
}

func NewTransitService(source TransitSource, latitude, longitude float64, cache *CacheService, log *logrus.Entry) *TransitService {
	return &TransitService{
		source:    source,
		latitude:  latitude,
		longitude: longitude,
		cache:     cache,
		panel:     NewPanel[*transit.Board](TransitErrorMessage),
		log:       log.WithField("component", "transit_service"),
	}
}

// Refresh loads departures for the nearest stop and the nearest S-Bahn
// station. A failure on the S-Bahn side only sets the board's SuburbanError.
func (s *TransitService) Refresh(ctx context.Context) error {
	started := time.Now()
	err := s.panel.Load(ctx, s.board)
	metrics.ObserveFetch(metrics.SourceTransit, started, err)
	if err != nil {
		s.log.WithError(err).Warn("Failed to refresh departures")
		return err
	}
	s.cache.StoreQuietly(ctx, cache.KeyTransit, s.panel.State().Data)
	return nil
}

func (s *TransitService) board(ctx context.Context) (*transit.Board, error) {
	stops, err := s.source.NearbyStops(ctx, s.latitude, s.longitude)
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, ErrNoStopsNearby
	}

	nearest := stops[0]
	deps, err := s.source.Departures(ctx, nearest.ID, false)
	if err != nil {
		return nil, err
	}
	board := &transit.Board{Stop: &nearest, Departures: deps, SuburbanDepartures: make([]transit.Departure, 0)}

	suburban := transit.NearestSuburban(stops)
	if suburban == nil {
		board.SuburbanError = NoSuburbanStopMessage
		return board, nil
	}
	board.SuburbanStop = suburban
	subDeps, err := s.source.Departures(ctx, suburban.ID, true)
	if err != nil {
		s.log.WithError(err).WithField("stop", suburban.Name).Warn("Failed to load S-Bahn departures")
		board.SuburbanError = SuburbanErrorMessage
		return board, nil
	}
	board.SuburbanDepartures = transit.FilterProduct(subDeps, transit.ProductSuburban)
	return board, nil
}

func (s *TransitService) Restore(ctx context.Context) error {
	_, err := restorePanel(ctx, s.cache, cache.KeyTransit, s.panel)
	return err
}

func (s *TransitService) State() PanelState[*transit.Board] {
	return s.panel.State()
}
