package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type serviceMetrics struct {
	submissions   *prometheus.CounterVec
	statusChanges *prometheus.CounterVec
	deletions     prometheus.Counter
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	m := &serviceMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback submissions by outcome",
		}, []string{"outcome"}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_status_changes_total",
			Help: "Feedback status changes by new status",
		}, []string{"status"}),
		deletions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_deleted_total",
			Help: "Total number of deleted feedback entries",
		}),
	}
	reg.MustRegister(m.submissions, m.statusChanges, m.deletions)
	return m
}
