package openmeteo

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "current": {"time": "2025-10-20T10:00", "temperature_2m": 12.34, "relative_humidity_2m": 65, "wind_speed_10m": 8.06, "weather_code": 2},
  "daily": {
    "time": ["2025-10-20", "2025-10-21", "2025-10-22"],
    "weather_code": [2, 0, 63],
    "temperature_2m_max": [12.9, 14.1, 10.0],
    "temperature_2m_min": [5.2, 6.0, 4.4]
  }
}`

func TestClient_Forecast(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		query = r.URL.RawQuery
		io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	now := time.Date(2025, 10, 20, 10, 0, 0, 0, time.UTC)
	report, err := NewClient(srv.URL, nil).Forecast(testContext(t), 52.43, 13.30, now)
	require.NoError(t, err)

	assert.Contains(t, query, "latitude=52.430000")
	assert.Contains(t, query, "forecast_days=3")

	assert.Equal(t, 12.3, report.Current.Temperature)
	assert.Equal(t, 65, report.Current.Humidity)
	assert.Equal(t, 8.1, report.Current.WindSpeed)
	assert.Equal(t, "Teilweise bewölkt", report.Current.Condition)

	require.Len(t, report.Forecast, 3)
	assert.Equal(t, "Heute", report.Forecast[0].Day)
	assert.Equal(t, "Morgen", report.Forecast[1].Day)
	assert.Equal(t, "Mi", report.Forecast[2].Day)
	assert.Equal(t, "Regen", report.Forecast[2].Condition)
	assert.Equal(t, 4.4, report.Forecast[2].Low)
	assert.Equal(t, now, report.FetchedAt)
}

func TestClient_ForecastErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "bad status", status: http.StatusServiceUnavailable, body: `{}`},
		{name: "broken json", status: http.StatusOK, body: `{"current":`},
		{name: "ragged series", status: http.StatusOK, body: `{"daily":{"time":["2025-10-20"],"weather_code":[]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil).Forecast(testContext(t), 0, 0, time.Now())
			assert.Error(t, err)
		})
	}
}
