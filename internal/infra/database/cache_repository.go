package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"school_dashboard/internal/domain/cache"
)

var ErrCacheEntryNotFound = errors.New("cache entry not found")

type SQLCacheRepository struct {
	db *sql.DB
}

func NewSQLCacheRepository(db *sql.DB) *SQLCacheRepository {
	return &SQLCacheRepository{db: db}
}

func (r *SQLCacheRepository) Get(ctx context.Context, key string) (*cache.Entry, error) {
	query := `SELECT cache_key, json_body, content_hash, updated_at, version
               FROM api_response_cache WHERE cache_key = $1`
	e := &cache.Entry{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.JSONBody, &e.ContentHash, &e.UpdatedAt, &e.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCacheEntryNotFound
		}
		return nil, fmt.Errorf("error getting cache entry %q: %w", key, err)
	}
	return e, nil
}

// Upsert stores the entry; an existing row has its version incremented.
func (r *SQLCacheRepository) Upsert(ctx context.Context, e *cache.Entry) error {
	query := `INSERT INTO api_response_cache (cache_key, json_body, content_hash, updated_at, version)
               VALUES ($1, $2, $3, $4, 0)
               ON CONFLICT (cache_key) DO UPDATE
               SET json_body = excluded.json_body,
                   content_hash = excluded.content_hash,
                   updated_at = excluded.updated_at,
                   version = api_response_cache.version + 1
               RETURNING version`
	err := r.db.QueryRowContext(ctx, query, e.Key, e.JSONBody, e.ContentHash, e.UpdatedAt.UTC()).Scan(&e.Version)
	if err != nil {
		return fmt.Errorf("error upserting cache entry %q: %w", e.Key, err)
	}
	return nil
}

func (r *SQLCacheRepository) List(ctx context.Context) ([]*cache.Entry, error) {
	query := `SELECT cache_key, json_body, content_hash, updated_at, version
               FROM api_response_cache ORDER BY cache_key`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing cache entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*cache.Entry, 0)
	for rows.Next() {
		e := &cache.Entry{}
		if err := rows.Scan(&e.Key, &e.JSONBody, &e.ContentHash, &e.UpdatedAt, &e.Version); err != nil {
			return nil, fmt.Errorf("error scanning cache entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}
	return entries, nil
}
