package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/dataservice/chat2query/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const collectTimeout = 5 * time.Second

type todoStatsCollector struct {
	store          store.Store
	totalTodos     *prometheus.Desc
	completedTodos *prometheus.Desc
	activeTodos    *prometheus.Desc
}

// NewTodoStatsCollector reports the size of the todo table on every scrape.
func NewTodoStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_todo_%s", chat2query, name)
	}

	return &todoStatsCollector{
		store: s,
		totalTodos: prometheus.NewDesc(
			fqName("items_total"),
			"Total number of todo items.",
			nil,
			prometheus.Labels{},
		),
		completedTodos: prometheus.NewDesc(
			fqName("completed_items_total"),
			"Number of completed todo items.",
			nil,
			prometheus.Labels{},
		),
		activeTodos: prometheus.NewDesc(
			fqName("active_items_total"),
			"Number of todo items not completed yet.",
			nil,
			prometheus.Labels{},
		),
	}
}

func (c *todoStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalTodos
	ch <- c.completedTodos
	ch <- c.activeTodos
}

// Collect implements Collector.
func (c *todoStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.store.Statistics(ctx)
	if err != nil {
		zap.S().Named("todo_collector").Errorf("failed to collect todo statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalTodos, prometheus.GaugeValue, float64(stats.Total))
	ch <- prometheus.MustNewConstMetric(c.completedTodos, prometheus.GaugeValue, float64(stats.Completed))
	ch <- prometheus.MustNewConstMetric(c.activeTodos, prometheus.GaugeValue, float64(stats.Active()))
}
