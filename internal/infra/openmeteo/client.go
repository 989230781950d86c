// Package openmeteo reads current conditions and a short forecast from the
// Open-Meteo API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"school_dashboard/internal/domain/weather"
)

const (
	DefaultBaseURL = "https://api.open-meteo.com"
	ForecastDays   = 3
	timezone       = "Europe/Berlin"
)

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Client{baseURL: baseURL, httpClient: httpClient, loc: loc}
}

// Forecast returns the current conditions at the coordinates and the
// forecast for today and the next two days.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64, now time.Time) (*weather.Report, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', 6, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', 6, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", timezone)
	q.Set("forecast_days", strconv.Itoa(ForecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather api returned status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	return c.toReport(&body, now)
}

func (c *Client) toReport(body *forecastResponse, now time.Time) (*weather.Report, error) {
	d := body.Daily
	if len(d.WeatherCode) < len(d.Time) || len(d.TempMax) < len(d.Time) || len(d.TempMin) < len(d.Time) {
		return nil, fmt.Errorf("decode weather: daily series have different lengths")
	}

	cur := body.Current
	text, icon := weather.Describe(cur.WeatherCode)
	report := &weather.Report{
		Current: weather.Current{
			Temperature: round1(cur.Temperature),
			Humidity:    int(math.Round(cur.Humidity)),
			WindSpeed:   round1(cur.WindSpeed),
			Code:        cur.WeatherCode,
			Condition:   text,
			Icon:        icon,
		},
		Forecast:  make([]weather.DailyForecast, 0, len(d.Time)),
		FetchedAt: now,
	}

	today := now.In(c.loc)
	for i, day := range d.Time {
		date, err := time.ParseInLocation("2006-01-02", day, c.loc)
		if err != nil {
			return nil, fmt.Errorf("decode weather: invalid date %q: %w", day, err)
		}
		text, icon := weather.Describe(d.WeatherCode[i])
		report.Forecast = append(report.Forecast, weather.DailyForecast{
			Date:      day,
			Day:       weather.DayLabel(date, today),
			High:      round1(d.TempMax[i]),
			Low:       round1(d.TempMin[i]),
			Code:      d.WeatherCode[i],
			Condition: text,
			Icon:      icon,
		})
	}
	return report, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
