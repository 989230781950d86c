package weather

import "time"

// Current holds the present conditions.
type Current struct {
	Temperature float64 `json:"temperature"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Code        int     `json:"code"`
	Condition   string  `json:"condition"`
	Icon        string  `json:"icon"`
}

// DailyForecast is the outlook for a single day.
type DailyForecast struct {
	Date      string  `json:"date"`
	Day       string  `json:"day"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Code      int     `json:"code"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// Report is what the weather panel shows.
type Report struct {
	Location  string          `json:"location"`
	Current   Current         `json:"current"`
	Forecast  []DailyForecast `json:"forecast"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

type condition struct {
	text string
	icon string
}

// WMO weather interpretation codes as used by Open-Meteo.
var conditions = map[int]condition{
	0:  {"Klar", "☀️"},
	1:  {"Überwiegend klar", "🌤️"},
	2:  {"Teilweise bewölkt", "⛅"},
	3:  {"Bedeckt", "☁️"},
	45: {"Nebel", "🌫️"},
	48: {"Reifnebel", "🌫️"},
	51: {"Leichter Nieselregen", "🌦️"},
	53: {"Nieselregen", "🌦️"},
	55: {"Starker Nieselregen", "🌧️"},
	56: {"Gefrierender Nieselregen", "🌧️"},
	57: {"Starker gefrierender Nieselregen", "🌧️"},
	61: {"Leichter Regen", "🌦️"},
	63: {"Regen", "🌧️"},
	65: {"Starker Regen", "🌧️"},
	66: {"Gefrierender Regen", "🌧️"},
	67: {"Starker gefrierender Regen", "🌧️"},
	71: {"Leichter Schneefall", "🌨️"},
	73: {"Schneefall", "🌨️"},
	75: {"Starker Schneefall", "❄️"},
	77: {"Schneegriesel", "🌨️"},
	80: {"Leichte Regenschauer", "🌦️"},
	81: {"Regenschauer", "🌧️"},
	82: {"Heftige Regenschauer", "⛈️"},
	85: {"Leichte Schneeschauer", "🌨️"},
	86: {"Starke Schneeschauer", "❄️"},
	95: {"Gewitter", "⛈️"},
	96: {"Gewitter mit leichtem Hagel", "⛈️"},
	99: {"Gewitter mit starkem Hagel", "⛈️"},
}

// Describe maps a WMO code to a German description and an icon.
func Describe(code int) (string, string) {
	if c, ok := conditions[code]; ok {
		return c.text, c.icon
	}
	return "Unbekannt", "❔"
}

var weekdays = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// DayLabel returns "Heute", "Morgen" or the short German weekday.
func DayLabel(day, today time.Time) string {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := today.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	switch int(a.Sub(b).Hours() / 24) {
	case 0:
		return "Heute"
	case 1:
		return "Morgen"
	default:
		return weekdays[day.Weekday()]
	}
}
