package app

import (
	"context"
	"time"
)

const (
	StatusUp   = "UP"
	StatusDown = "DOWN"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type CacheStatus struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int64     `json:"version"`
}

type DatabaseStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthReport struct {
	Status    string         `json:"status"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	UptimeMS  int64          `json:"uptime_ms"`
	Database  DatabaseStatus `json:"database"`
	Caches    []CacheStatus  `json:"caches"`
}

type HealthService struct {
	db        Pinger
	cache     *CacheService
	version   string
	startedAt time.Time
	now       func() time.Time
}

func NewHealthService(db Pinger, cache *CacheService, version string) *HealthService {
	return &HealthService{db: db, cache: cache, version: version, startedAt: time.Now(), now: time.Now}
}

// Check pings the database and lists the cached responses. The report is
// DOWN when the database is unreachable.
func (s *HealthService) Check(ctx context.Context) *HealthReport {
	now := s.now()
	report := &HealthReport{
		Status:    StatusUp,
		Version:   s.version,
		Timestamp: now,
		UptimeMS:  now.Sub(s.startedAt).Milliseconds(),
		Database:  DatabaseStatus{Status: StatusUp},
		Caches:    make([]CacheStatus, 0),
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		report.Status = StatusDown
		report.Database = DatabaseStatus{Status: StatusDown, Error: err.Error()}
		return report
	}

	entries, err := s.cache.Entries(ctx)
	if err != nil {
		report.Status = StatusDown
		report.Database = DatabaseStatus{Status: StatusDown, Error: err.Error()}
		return report
	}
	for _, e := range entries {
		report.Caches = append(report.Caches, CacheStatus{Key: e.Key, UpdatedAt: e.UpdatedAt, Version: e.Version})
	}
	return report
}
