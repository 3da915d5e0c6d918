// AngelaMos | 2026
// collector.go

package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Counts struct {
	Users          int64 `json:"users"`
	Tasks          int64 `json:"tasks"`
	CompletedTasks int64 `json:"completedTasks"`
	Withdrawals    int64 `json:"withdrawals"`
}

type CountFunc func(ctx context.Context) (Counts, error)

// EntityCollector reads row counts at scrape time instead of keeping
// gauges in sync with every write.
type EntityCollector struct {
	count   CountFunc
	timeout time.Duration

	users          *prometheus.Desc
	tasks          *prometheus.Desc
	completedTasks *prometheus.Desc
	withdrawals    *prometheus.Desc
	up             *prometheus.Desc
}

func NewEntityCollector(namespace string, count CountFunc) *EntityCollector {
	if namespace == "" {
		namespace = "getcash"
	}

	return &EntityCollector{
		count:   count,
		timeout: 3 * time.Second,
		users: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "users"),
			"Registered users.", nil, nil),
		tasks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "tasks"),
			"Tasks currently listed.", nil, nil),
		completedTasks: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "completed_tasks"),
			"Stored completion records.", nil, nil),
		withdrawals: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "withdrawal_records"),
			"Stored withdrawal records.", nil, nil),
		up: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "store_up"),
			"Whether the last count query succeeded.", nil, nil),
	}
}

func (c *EntityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.users
	ch <- c.tasks
	ch <- c.completedTasks
	ch <- c.withdrawals
	ch <- c.up
}

func (c *EntityCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.count(ctx)
	if err != nil {
		slog.Warn("entity count scrape failed", "error", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.users, prometheus.GaugeValue, float64(counts.Users))
	ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(counts.Tasks))
	ch <- prometheus.MustNewConstMetric(
		c.completedTasks, prometheus.GaugeValue, float64(counts.CompletedTasks))
	ch <- prometheus.MustNewConstMetric(
		c.withdrawals, prometheus.GaugeValue, float64(counts.Withdrawals))
}
