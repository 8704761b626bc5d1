package events

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_ingested_total",
			Help: "Count of durably stored behavioral events by type and variant.",
		},
		[]string{"type", "variant"},
	)
)

func init() {
	prometheus.MustRegister(EventsIngested)
}
