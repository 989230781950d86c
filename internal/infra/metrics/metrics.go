// Package metrics holds the prometheus collectors of the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source labels.
const (
	SourceDSB      = "dsb"
	SourcePlans    = "plans"
	SourceCalendar = "calendar"
	SourceWeather  = "weather"
	SourceTransit  = "transit"
	SourceHolidays = "holidays"
)

var (
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Name:      "source_fetch_failures_total",
		Help:      "Failed fetches per data source.",
	}, []string{"source"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dashboard",
		Name:      "source_fetch_duration_seconds",
		Help:      "Duration of data source fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	UnclassifiedEntries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard",
		Name:      "unclassified_entries_total",
		Help:      "Substitution entries whose classes matched no grade.",
	})

	PlanDocumentsChanged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard",
		Name:      "plan_documents_changed_total",
		Help:      "Plan pages stored with new content.",
	})

	CacheWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Name:      "cache_writes_total",
		Help:      "API response cache writes by key and outcome (written, unchanged).",
	}, []string{"key", "outcome"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Name:      "notifications_sent_total",
		Help:      "Telegram notifications by outcome.",
	}, []string{"outcome"})
)

// ObserveFetch records the duration of a fetch and counts it as failed when
// err is not nil.
func ObserveFetch(source string, started time.Time, err error) {
	FetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err != nil {
		FetchFailures.WithLabelValues(source).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
