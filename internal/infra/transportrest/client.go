// Package transportrest is a client for the transport.rest (BVG) API.
package transportrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"school_dashboard/internal/domain/transit"
)

const (
	DefaultBaseURL = "https://v6.bvg.transport.rest"

	nearbyResults     = 30
	departureResults  = 10
	departureDuration = 60
)

var ErrUnexpectedResponse = errors.New("unexpected transit api response")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// NearbyStops returns stops around the coordinates, nearest first.
func (c *Client) NearbyStops(ctx context.Context, latitude, longitude float64) ([]transit.Stop, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("results", strconv.Itoa(nearbyResults))

	var stops []transit.Stop
	if err := c.get(ctx, "/locations/nearby?"+q.Encode(), &stops); err != nil {
		return nil, err
	}
	out := stops[:0]
	for _, s := range stops {
		if s.ID != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Departures returns the next departures at stopID within the hour.
// suburbanOnly asks the API to restrict results to S-Bahn lines.
func (c *Client) Departures(ctx context.Context, stopID string, suburbanOnly bool) ([]transit.Departure, error) {
	q := url.Values{}
	q.Set("results", strconv.Itoa(departureResults))
	q.Set("duration", strconv.Itoa(departureDuration))
	if suburbanOnly {
		q.Set("suburban", "true")
	}

	var body struct {
		Departures []transit.Departure `json:"departures"`
	}
	if err := c.get(ctx, "/stops/"+url.PathEscape(stopID)+"/departures?"+q.Encode(), &body); err != nil {
		return nil, err
	}
	if body.Departures == nil {
		return nil, fmt.Errorf("%w: departures missing", ErrUnexpectedResponse)
	}
	for i := range body.Departures {
		body.Departures[i].DelayText = transit.DelayText(body.Departures[i].Delay)
	}
	return body.Departures, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build transit request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transit request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transit api returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
