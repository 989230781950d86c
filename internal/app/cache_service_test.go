package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCacheService_StoreSkipsUnchangedPayload(t *testing.T) {
	ctx := testContext(t)
	svc := newTestCache(t)

	written, err := svc.Store(ctx, "api/test", payload{Name: "a", Count: 1})
	require.NoError(t, err)
	assert.True(t, written)

	written, err = svc.Store(ctx, "api/test", payload{Name: "a", Count: 1})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = svc.Store(ctx, "api/test", payload{Name: "a", Count: 2})
	require.NoError(t, err)
	assert.True(t, written)

	entries, err := svc.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Version)
}

func TestCacheService_StoreIgnoresEmptyKeyAndNilPayload(t *testing.T) {
	ctx := testContext(t)
	svc := newTestCache(t)

	written, err := svc.Store(ctx, "", payload{})
	require.NoError(t, err)
	assert.False(t, written)

	written, err = svc.Store(ctx, "api/test", nil)
	require.NoError(t, err)
	assert.False(t, written)
}

func TestCacheService_RawJSONAndLoad(t *testing.T) {
	ctx := testContext(t)
	svc := newTestCache(t)
	stored := time.Date(2025, 4, 23, 7, 30, 0, 0, time.UTC)
	svc.now = fixedNow(stored)

	_, ok, err := svc.RawJSON(ctx, "api/missing")
	require.NoError(t, err)
	assert.False(t, ok)

	svc.StoreQuietly(ctx, "api/test", payload{Name: "plan", Count: 3})

	raw, ok, err := svc.RawJSON(ctx, "api/test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"plan","count":3}`, raw)

	var got payload
	updatedAt, ok, err := svc.LoadWithTime(ctx, "api/test", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "plan", Count: 3}, got)
	assert.True(t, stored.Equal(updatedAt))
}

func TestCacheService_LoadRejectsMismatchedShape(t *testing.T) {
	ctx := testContext(t)
	svc := newTestCache(t)
	svc.StoreQuietly(ctx, "api/test", []int{1, 2})

	var got payload
	ok, err := svc.Load(ctx, "api/test", &got)
	assert.Error(t, err)
	assert.False(t, ok)
}
