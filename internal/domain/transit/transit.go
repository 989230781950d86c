package transit

import (
	"fmt"
	"math"
	"time"
)

// Products lists which means of transport serve a stop.
type Products struct {
	Suburban bool `json:"suburban"`
	Subway   bool `json:"subway"`
	Tram     bool `json:"tram"`
	Bus      bool `json:"bus"`
	Ferry    bool `json:"ferry"`
	Express  bool `json:"express"`
	Regional bool `json:"regional"`
}

// Stop is a public transport stop near the school.
type Stop struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Distance int      `json:"distance,omitempty"`
	Products Products `json:"products"`
}

// Line is the line serving a departure.
type Line struct {
	Name    string `json:"name"`
	Product string `json:"product"`
	Mode    string `json:"mode"`
}

// Departure is a single upcoming departure.
type Departure struct {
	TripID      string     `json:"tripId"`
	Direction   string     `json:"direction"`
	Line        Line       `json:"line"`
	When        *time.Time `json:"when"`
	PlannedWhen *time.Time `json:"plannedWhen"`
	Delay       *int       `json:"delay"`
	DelayText   string     `json:"delayText"`
	Platform    string     `json:"platform,omitempty"`
}

// Board combines departures of the nearest stop and the nearest S-Bahn station.
type Board struct {
	Stop               *Stop       `json:"stop"`
	Departures         []Departure `json:"departures"`
	SuburbanStop       *Stop       `json:"suburbanStop"`
	SuburbanDepartures []Departure `json:"suburbanDepartures"`
	SuburbanError      string      `json:"suburbanError,omitempty"`
}

const ProductSuburban = "suburban"

// DelayText renders a delay given in seconds as "+n min" or "-n min".
// Delays shorter than a minute, and unknown delays, render empty.
func DelayText(seconds *int) string {
	if seconds == nil {
		return ""
	}
	minutes := int(math.Floor(float64(*seconds) / 60))
	switch {
	case minutes > 0:
		return fmt.Sprintf("+%d min", minutes)
	case minutes < 0:
		return fmt.Sprintf("%d min", minutes)
	default:
		return ""
	}
}

// NearestSuburban returns the first stop served by the S-Bahn.
func NearestSuburban(stops []Stop) *Stop {
	for i := range stops {
		if stops[i].Products.Suburban {
			return &stops[i]
		}
	}
	return nil
}

// FilterProduct keeps only departures of the given product.
func FilterProduct(deps []Departure, product string) []Departure {
	out := make([]Departure, 0, len(deps))
	for _, d := range deps {
		if d.Line.Product == product {
			out = append(out, d)
		}
	}
	return out
}
