package echoapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lectureActivations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "conductor",
		Name:      "lecture_activations_total",
		Help:      "Number of attendance windows opened.",
	})

	attendanceSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conductor",
		Name:      "attendance_submissions_total",
		Help:      "Number of attendance submissions by outcome.",
	}, []string{"outcome"})
)
