package app

import (
	"context"
	"testing"
	"time"

	"school_dashboard/internal/domain/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	report *weather.Report
	err    error
	calls  int
}

func (f *fakeWeather) Forecast(context.Context, float64, float64, time.Time) (*weather.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	return &r, nil
}

func TestWeatherService_RefreshSetsLocationAndCaches(t *testing.T) {
	ctx := testContext(t)
	c := newTestCache(t)
	source := &fakeWeather{report: &weather.Report{Current: weather.Current{Temperature: 12.5, Code: 3}}}
	svc := NewWeatherService(source, 52.43, 13.30, "Berlin-Lichterfelde", c, testLogger())

	require.NoError(t, svc.Refresh(ctx))
	state := svc.State()
	require.True(t, state.Loaded)
	assert.Equal(t, "Berlin-Lichterfelde", state.Data.Location)
	assert.Empty(t, state.Error)

	restored := NewWeatherService(&fakeWeather{err: errBoom}, 0, 0, "", c, testLogger())
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, 12.5, restored.State().Data.Current.Temperature)
}

func TestWeatherService_FailureSetsMessage(t *testing.T) {
	svc := NewWeatherService(&fakeWeather{err: errBoom}, 0, 0, "", newTestCache(t), testLogger())

	err := svc.Refresh(testContext(t))
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, WeatherErrorMessage, svc.State().Error)
	assert.False(t, svc.State().Loaded)
}
