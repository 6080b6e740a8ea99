package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type EngineMetrics struct {
	SchedulesComputedTotal  *prometheus.CounterVec
	ScheduleDuration        prometheus.Histogram
	SolverRunsTotal         *prometheus.CounterVec
	RemindersPublishedTotal prometheus.Counter
}

var (
	HTTP = HTTPMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loantracker_http_requests_total",
				Help: "Total number of HTTP requests received.",
			},
			[]string{"method", "path", "code"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loantracker_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "code"},
		),
	}

	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "loantracker_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Engine = EngineMetrics{
		SchedulesComputedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loantracker_schedules_computed_total",
				Help: "Total number of amortization schedules computed, by kind.",
			},
			[]string{"kind"},
		),
		ScheduleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "loantracker_schedule_duration_seconds",
				Help:    "Histogram of schedule generation latencies.",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
		),
		SolverRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "loantracker_solver_runs_total",
				Help: "Total number of payoff-target solver runs, by outcome.",
			},
			[]string{"status"},
		),
		RemindersPublishedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loantracker_payment_reminders_published_total",
				Help: "Total number of upcoming-payment reminder events published.",
			},
		),
	}
)

func RecordHTTPRequest(method, path, code string, duration time.Duration) {
	HTTP.RequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTP.RequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordScheduleComputed(kind string, duration time.Duration) {
	Engine.SchedulesComputedTotal.WithLabelValues(kind).Inc()
	Engine.ScheduleDuration.Observe(duration.Seconds())
}

func RecordSolverRun(status string) {
	Engine.SolverRunsTotal.WithLabelValues(status).Inc()
}

func RecordReminderPublished() {
	Engine.RemindersPublishedTotal.Inc()
}
