package app

import (
	"context"
	"encoding/json"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/substitution"
	"school_dashboard/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DSBClient is the DSBmobile API.
type DSBClient interface {
	TimeTables(ctx context.Context) ([]substitution.TimeTable, error)
	News(ctx context.Context) ([]substitution.News, error)
}

type DSBService struct {
	client DSBClient
	cache  *CacheService
	log    *logrus.Entry
}

func NewDSBService(client DSBClient, cache *CacheService, log *logrus.Entry) *DSBService {
	return &DSBService{client: client, cache: cache, log: log.WithField("component", "dsb_service")}
}

// TimeTables fetches the current timetables. A non-empty result is cached;
// when the fetch fails the cached timetables are returned instead, and the
// fetch error only when there are none.
func (s *DSBService) TimeTables(ctx context.Context) ([]substitution.TimeTable, error) {
	started := time.Now()
	tables, err := s.client.TimeTables(ctx)
	metrics.ObserveFetch(metrics.SourceDSB, started, err)
	if err == nil {
		if len(tables) > 0 {
			s.cache.StoreQuietly(ctx, cache.KeyTimeTables, tables)
		}
		return tables, nil
	}

	cached := s.cachedTimeTables(ctx)
	if len(cached) > 0 {
		s.log.WithError(err).Warn("Failed to fetch timetables, using cached data")
		return cached, nil
	}
	s.log.WithError(err).Warn("Failed to fetch timetables and no cache available")
	return nil, err
}

func (s *DSBService) News(ctx context.Context) ([]substitution.News, error) {
	return s.client.News(ctx)
}

type cachedTimeTable struct {
	UUID      string `json:"uuid"`
	GroupName string `json:"groupName"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Detail    string `json:"detail"`
}

func (s *DSBService) cachedTimeTables(ctx context.Context) []substitution.TimeTable {
	body, ok, err := s.cache.RawJSON(ctx, cache.KeyTimeTables)
	if err != nil || !ok {
		return nil
	}
	var raw []cachedTimeTable
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		s.log.WithError(err).Warn("Cached timetables are not a list")
		return nil
	}
	tables := make([]substitution.TimeTable, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r.UUID)
		if err != nil {
			s.log.WithField("uuid", r.UUID).Warn("Skipping cached timetable with invalid UUID")
			continue
		}
		tables = append(tables, substitution.TimeTable{
			UUID:      id,
			GroupName: r.GroupName,
			Date:      r.Date,
			Title:     r.Title,
			Detail:    r.Detail,
		})
	}
	return tables
}
