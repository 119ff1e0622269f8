package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborline/omscore/internal/domain/outbox"
)

// OutboxMetricsCollector tracks outbox delivery outcomes and, via a polling
// goroutine, queue depth per status.
type OutboxMetricsCollector struct {
	repo outbox.Repository

	dispatchedTotal   prometheus.Counter
	retriedTotal      prometheus.Counter
	deadLetteredTotal prometheus.Counter
	queueDepth        *prometheus.GaugeVec

	cancelFunc   context.CancelFunc
	doneCh       chan struct{}
	pollInterval time.Duration
}

// NewOutboxMetricsCollector creates the outbox collectors.
func NewOutboxMetricsCollector(repo outbox.Repository) *OutboxMetricsCollector {
	return &OutboxMetricsCollector{
		repo: repo,
		dispatchedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_dispatched_total",
			Help:      "Total outbox events delivered to the in-process bus",
		}),
		retriedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_retried_total",
			Help:      "Total outbox delivery retries scheduled",
		}),
		deadLetteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_dead_lettered_total",
			Help:      "Total outbox events marked failed after exhausting attempts",
		}),
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "outbox_queue_depth",
				Help:      "Outbox rows by delivery status",
			},
			[]string{"status"},
		),
		pollInterval: 15 * time.Second,
	}
}

// Register registers the outbox collectors with the Prometheus registry.
func (c *OutboxMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}
	metrics := []prometheus.Collector{
		c.dispatchedTotal,
		c.retriedTotal,
		c.deadLetteredTotal,
		c.queueDepth,
	}
	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// Start begins the queue-depth polling goroutine.
func (c *OutboxMetricsCollector) Start(ctx context.Context) {
	ctx, c.cancelFunc = context.WithCancel(ctx)
	c.doneCh = make(chan struct{})

	go func() {
		defer close(c.doneCh)
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		c.updateQueueDepth(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.updateQueueDepth(ctx)
			}
		}
	}()
}

// Stop gracefully stops the polling goroutine.
func (c *OutboxMetricsCollector) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
		<-c.doneCh
	}
}

func (c *OutboxMetricsCollector) updateQueueDepth(ctx context.Context) {
	counts, err := c.repo.CountByStatus(ctx)
	if err != nil {
		return
	}
	for _, status := range []outbox.Status{
		outbox.StatusPending, outbox.StatusProcessing, outbox.StatusDelivered, outbox.StatusFailed,
	} {
		c.queueDepth.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

// RecordDispatched counts a delivered outbox event.
func (c *OutboxMetricsCollector) RecordDispatched() {
	c.dispatchedTotal.Inc()
}

// RecordRetried counts a scheduled retry.
func (c *OutboxMetricsCollector) RecordRetried() {
	c.retriedTotal.Inc()
}

// RecordDeadLettered counts a dead-lettered event.
func (c *OutboxMetricsCollector) RecordDeadLettered() {
	c.deadLetteredTotal.Inc()
}
