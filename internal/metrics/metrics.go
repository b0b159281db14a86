package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal counts persisted attendance events by type.
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_records_total",
		Help: "Attendance events recorded, by event type.",
	}, []string{"type"})

	// DuplicatesTotal counts online submissions rejected as duplicates.
	DuplicatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_duplicates_total",
		Help: "Online submissions rejected by the once-per-day check.",
	})

	// PhotoFailuresTotal counts photo payloads that blocked an event.
	PhotoFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_photo_failures_total",
		Help: "Photo payloads that failed processing and blocked the event.",
	})

	// PhotoDuration observes the synchronous photo pipeline latency.
	PhotoDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendance_photo_duration_seconds",
		Help:    "Time spent decoding, resizing, and storing a photo.",
		Buckets: prometheus.DefBuckets,
	})
)
