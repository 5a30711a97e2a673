package scheduler

import "github.com/prometheus/client_golang/prometheus"

var (
	// registrations counts trigger registrations by outcome ("ok"/"error").
	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medtrack_trigger_registrations_total",
			Help: "Total trigger registrations against the notification service by outcome.",
		},
		[]string{"outcome"},
	)

	// cancellations counts handle cancellations by outcome ("ok"/"error").
	cancellations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medtrack_trigger_cancellations_total",
			Help: "Total trigger cancellations against the notification service by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(registrations, cancellations)
}

func observe(vec *prometheus.CounterVec, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	vec.WithLabelValues(outcome).Inc()
}
