package cmd

import (
	"github.com/prometheus/client_golang/prometheus"

	desk "github.com/fxdesk/deskreplay"
)

var (
	eventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deskreplay",
		Name:      "events_processed_total",
		Help:      "Number of events handled by the processor.",
	})
	handlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "deskreplay",
		Name:      "handler_errors_total",
		Help:      "Number of events that failed handling and aborted the run.",
	})
	eventDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "deskreplay",
		Name:      "event_handle_duration_seconds",
		Help:      "Per-event handling latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(eventsProcessed, handlerErrors, eventDuration)
}

func newProcessorMetrics() *desk.ProcessorMetrics {
	return &desk.ProcessorMetrics{
		EventsProcessed: eventsProcessed,
		HandlerErrors:   handlerErrors,
		EventDuration:   eventDuration,
	}
}
