package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus instruments for reminder lifecycle events.
type Metrics struct {
	registry *prometheus.Registry

	Created         prometheus.Counter
	Edited          prometheus.Counter
	Dismissed       prometheus.Counter
	Undone          prometheus.Counter
	Deleted         prometheus.Counter
	Fired           prometheus.Counter
	NotifyFallbacks prometheus.Counter
	NotifyFailures  prometheus.Counter
	CollectionSize  prometheus.Gauge
}

// New creates the metrics set on its own registry so tests can build
// independent instances.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifybuddy",
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}

	m := &Metrics{
		registry:        registry,
		Created:         counter("reminders_created_total", "Reminders created."),
		Edited:          counter("reminders_edited_total", "Reminders edited."),
		Dismissed:       counter("reminders_dismissed_total", "Reminders dismissed."),
		Undone:          counter("reminders_undone_total", "Dismissals undone."),
		Deleted:         counter("reminders_deleted_total", "Reminders deleted."),
		Fired:           counter("triggers_fired_total", "Triggers that fired and completed a reminder."),
		NotifyFallbacks: counter("notifications_fallback_total", "Notifications that needed the fallback display."),
		NotifyFailures:  counter("notifications_failed_total", "Notifications where both display attempts failed."),
	}

	m.CollectionSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "notifybuddy",
		Name:      "reminders_stored",
		Help:      "Number of reminder records in the store.",
	})
	registry.MustRegister(m.CollectionSize)

	return m
}

// Handler returns the HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
