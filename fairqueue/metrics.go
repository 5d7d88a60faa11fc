package fairqueue

import "github.com/ygrebnov/shard/metrics"

type queueMetrics struct {
	queued     metrics.Counter
	dispatched metrics.Counter
}

func newQueueMetrics(p metrics.Provider) *queueMetrics {
	return &queueMetrics{
		queued: p.Counter(
			"shard.fairqueue.requests_queued",
			metrics.WithDescription("requests admitted into a priority class's queue"),
			metrics.WithUnit("1"),
		),
		dispatched: p.Counter(
			"shard.fairqueue.requests_dispatched",
			metrics.WithDescription("requests released for execution"),
			metrics.WithUnit("1"),
		),
	}
}
