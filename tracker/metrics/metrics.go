package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollRoundsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_poll_rounds_total",
			Help: "Total number of polling ticks",
		},
	)

	statusFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_status_fetches_total",
			Help: "Status fetches by result",
		},
		[]string{"result"},
	)

	statusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_status_transitions_total",
			Help: "Applied task status transitions",
		},
		[]string{"task_type", "status"},
	)

	activeTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_active_tasks",
			Help: "Tasks in pending or processing at the last tick",
		},
	)

	feedbackSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_feedback_submissions_total",
			Help: "Feedback submissions by operation and result",
		},
		[]string{"operation", "result"},
	)

	sinkDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_sink_dropped_changes_total",
			Help: "Repository changes dropped because the sink buffer was full",
		},
	)

	registerOnce sync.Once
)

const (
	FetchOK         = "ok"
	FetchError      = "error"
	FetchRegression = "regression"
	FetchSkipped    = "in_flight"
)

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			pollRoundsTotal,
			statusFetchesTotal,
			statusTransitionsTotal,
			activeTasks,
			feedbackSubmissionsTotal,
			sinkDropsTotal,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordPollRound(active int) {
	pollRoundsTotal.Inc()
	activeTasks.Set(float64(active))
}

func RecordFetch(result string) {
	statusFetchesTotal.WithLabelValues(result).Inc()
}

func RecordTransition(taskType, status string) {
	statusTransitionsTotal.WithLabelValues(taskType, status).Inc()
}

func RecordFeedback(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	feedbackSubmissionsTotal.WithLabelValues(operation, result).Inc()
}

func RecordSinkDrop() {
	sinkDropsTotal.Inc()
}
