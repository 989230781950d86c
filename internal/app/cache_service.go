package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"school_dashboard/internal/domain/cache"
	"school_dashboard/internal/domain/substitution"
	idb "school_dashboard/internal/infra/database"
	"school_dashboard/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// CacheService keeps the last successful payload of every data source so the
// dashboard can still render when a source is down.
type CacheService struct {
	repo cache.Repository
	now  func() time.Time
	log  *logrus.Entry
}

func NewCacheService(repo cache.Repository, log *logrus.Entry) *CacheService {
	return &CacheService{repo: repo, now: time.Now, log: log.WithField("component", "cache_service")}
}

// Store saves payload as JSON under key. Payloads identical to the stored one
// are not written again; it reports whether a write happened.
func (s *CacheService) Store(ctx context.Context, key string, payload any) (bool, error) {
	if key == "" || payload == nil {
		return false, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal cache payload %q: %w", key, err)
	}
	body := string(raw)
	hash := substitution.ContentHash(body)

	existing, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		if existing.ContentHash == hash {
			metrics.CacheWrites.WithLabelValues(key, "unchanged").Inc()
			return false, nil
		}
	case !errors.Is(err, idb.ErrCacheEntryNotFound):
		return false, err
	}

	entry := &cache.Entry{Key: key, JSONBody: body, ContentHash: hash, UpdatedAt: s.now()}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return false, err
	}
	metrics.CacheWrites.WithLabelValues(key, "written").Inc()
	s.log.WithFields(logrus.Fields{"key": key, "version": entry.Version}).Debug("Stored API response")
	return true, nil
}

// StoreQuietly is Store for callers that only log failures.
func (s *CacheService) StoreQuietly(ctx context.Context, key string, payload any) {
	if _, err := s.Store(ctx, key, payload); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to store API response")
	}
}

// RawJSON returns the stored JSON of key; ok is false when nothing is stored.
func (s *CacheService) RawJSON(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.entry(ctx, key)
	if err != nil || entry == nil {
		return "", false, err
	}
	return entry.JSONBody, true, nil
}

// Load decodes the stored JSON of key into v.
func (s *CacheService) Load(ctx context.Context, key string, v any) (bool, error) {
	_, ok, err := s.LoadWithTime(ctx, key, v)
	return ok, err
}

// LoadWithTime is Load that also returns when the entry was written.
func (s *CacheService) LoadWithTime(ctx context.Context, key string, v any) (time.Time, bool, error) {
	entry, err := s.entry(ctx, key)
	if err != nil || entry == nil {
		return time.Time{}, false, err
	}
	if err := json.Unmarshal([]byte(entry.JSONBody), v); err != nil {
		return time.Time{}, false, fmt.Errorf("decode cached %q: %w", key, err)
	}
	return entry.UpdatedAt, true, nil
}

func (s *CacheService) entry(ctx context.Context, key string) (*cache.Entry, error) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, idb.ErrCacheEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// Entries lists all cache entries.
func (s *CacheService) Entries(ctx context.Context) ([]*cache.Entry, error) {
	return s.repo.List(ctx)
}
