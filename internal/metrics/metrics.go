// AngelaMos | 2026
// metrics.go

package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like
// without colliding on the default one.
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	taskCompletions  prometheus.Counter
	rewardsCredited  prometheus.Counter
	withdrawals      prometheus.Counter
	amountWithdrawn  prometheus.Counter
	feesCharged      prometheus.Counter
	jobUpgrades      *prometheus.CounterVec
	rejectedRequests *prometheus.CounterVec
}

func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "getcash"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),

		taskCompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "task_completions_total",
			Help:      "First-time task completions that credited a wallet.",
		}),
		rewardsCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rewards_credited_ugx_total",
			Help:      "Sum of task rewards credited, in UGX.",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "withdrawals_total",
			Help:      "Accepted withdrawal requests.",
		}),
		amountWithdrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "withdrawn_ugx_total",
			Help:      "Sum of withdrawal amounts debited, in UGX.",
		}),
		feesCharged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "withdrawal_fees_ugx_total",
			Help:      "Sum of withdrawal fees, in UGX.",
		}),
		jobUpgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "job_upgrades_total",
			Help:      "Job level upgrades by target level.",
		}, []string{"level"}),
		rejectedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rejected_total",
			Help:      "Ledger operations rejected by validation.",
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.taskCompletions,
		m.rewardsCredited,
		m.withdrawals,
		m.amountWithdrawn,
		m.feesCharged,
		m.jobUpgrades,
		m.rejectedRequests,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}

// Register adds an extra collector, such as the entity-count collector.
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.registry.Register(c)
}

func (m *Metrics) RequestStarted() {
	m.httpInFlight.Inc()
}

func (m *Metrics) RequestFinished(method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()

	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)

	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) TaskCompleted(reward int64) {
	m.taskCompletions.Inc()
	m.rewardsCredited.Add(float64(reward))
}

func (m *Metrics) WithdrawalRequested(amount, fee int64) {
	m.withdrawals.Inc()
	m.amountWithdrawn.Add(float64(amount))
	m.feesCharged.Add(float64(fee))
}

func (m *Metrics) JobUpgraded(level string) {
	m.jobUpgrades.WithLabelValues(level).Inc()
}

func (m *Metrics) Rejected(operation string) {
	m.rejectedRequests.WithLabelValues(operation).Inc()
}
