package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func TestHealthService_Up(t *testing.T) {
	ctx := testContext(t)
	c := newTestCache(t)
	c.StoreQuietly(ctx, "api/weather", map[string]int{"t": 1})
	svc := NewHealthService(fakePinger{}, c, "1.2.3")

	report := svc.Check(ctx)
	assert.Equal(t, StatusUp, report.Status)
	assert.Equal(t, "1.2.3", report.Version)
	assert.Equal(t, StatusUp, report.Database.Status)
	if assert.Len(t, report.Caches, 1) {
		assert.Equal(t, "api/weather", report.Caches[0].Key)
	}
	assert.GreaterOrEqual(t, report.UptimeMS, int64(0))
}

func TestHealthService_DatabaseDown(t *testing.T) {
	svc := NewHealthService(fakePinger{err: errBoom}, newTestCache(t), "1.2.3")

	report := svc.Check(testContext(t))
	assert.Equal(t, StatusDown, report.Status)
	assert.Equal(t, StatusDown, report.Database.Status)
	assert.Equal(t, "boom", report.Database.Error)
	assert.Empty(t, report.Caches)
}
