package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	SectionFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "morning_thread_section_fetch_total",
		Help: "Number of report section fetches by section and result kind",
	}, []string{"section", "status"})

	SectionFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "morning_thread_section_fetch_duration_seconds",
		Help:    "Duration of a single report section fetch",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"section"})

	ReportBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "morning_thread_report_build_seconds",
		Help:    "Time to fetch all sections and build a report",
		Buckets: prometheus.DefBuckets,
	})

	DeliveryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "morning_thread_delivery_total",
		Help: "Number of report deliveries by trigger and status",
	}, []string{"trigger", "status"})

	ScheduledChats = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "morning_thread_scheduled_chats",
		Help: "Number of chats with a registered daily report",
	})
)

// MustRegister registers all collectors in the given registerer.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		SectionFetchTotal,
		SectionFetchDuration,
		ReportBuildDuration,
		DeliveryTotal,
		ScheduledChats,
	)
}

// ObserveSection records a finished section fetch. status is the error kind or StatusOK.
func ObserveSection(section, status string, started time.Time) {
	SectionFetchTotal.WithLabelValues(section, status).Inc()
	SectionFetchDuration.WithLabelValues(section).Observe(time.Since(started).Seconds())
}

// ObserveDelivery records a delivery attempt result.
func ObserveDelivery(trigger string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	DeliveryTotal.WithLabelValues(trigger, status).Inc()
}
