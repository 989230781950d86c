// Package ferien reads school holidays from ferien-api.de and ships a
// bundled dataset for when the API is unreachable.
package ferien

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"school_dashboard/internal/domain/holiday"
)

const DefaultBaseURL = "https://ferien-api.de"

// The API omits seconds ("2025-10-20T00:00Z").
var timeLayouts = []string{
	"2006-01-02T15:04Z07:00",
	time.RFC3339,
	"2006-01-02",
}

type wireHoliday struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Year      int    `json:"year"`
	StateCode string `json:"stateCode"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid holiday date %q", s)
}

func decode(data []byte) ([]holiday.Holiday, error) {
	var wire []wireHoliday
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	out := make([]holiday.Holiday, 0, len(wire))
	for _, w := range wire {
		start, err := parseTime(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseTime(w.End)
		if err != nil {
			return nil, err
		}
		out = append(out, holiday.Holiday{
			Start:     start,
			End:       end,
			Year:      w.Year,
			StateCode: w.StateCode,
			Name:      w.Name,
			Slug:      w.Slug,
		})
	}
	return out, nil
}

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

// Holidays returns the holidays of region in year.
func (c *Client) Holidays(ctx context.Context, region string, year int) ([]holiday.Holiday, error) {
	url := fmt.Sprintf("%s/api/v1/holidays/%s/%d", c.baseURL, strings.ToUpper(region), year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build holiday request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch holidays: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday api returned status %d", resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read holidays: %w", err)
	}
	return decode(buf.Bytes())
}

//go:embed data/holidays.json
var bundledJSON []byte

// Bundled returns the embedded holidays of region in year.
func Bundled(region string, year int) ([]holiday.Holiday, error) {
	all, err := decode(bundledJSON)
	if err != nil {
		return nil, err
	}
	out := make([]holiday.Holiday, 0)
	for _, h := range all {
		if h.Year == year && strings.EqualFold(h.StateCode, region) {
			out = append(out, h)
		}
	}
	return out, nil
}
