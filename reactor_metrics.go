package shard

import "github.com/ygrebnov/shard/metrics"

// reactorMetrics collects the instruments a Reactor records against during
// Run (spec.md §1 names metrics as an external collaborator of the
// scheduler; this is the concrete wiring of that seam via metrics.Provider).
type reactorMetrics struct {
	scheduled    metrics.Counter
	ran          metrics.Counter
	taskDuration metrics.Histogram
}

func newReactorMetrics(p metrics.Provider) *reactorMetrics {
	return &reactorMetrics{
		scheduled: p.Counter(
			"shard.reactor.tasks_scheduled",
			metrics.WithDescription("tasks pushed onto the ready queue"),
			metrics.WithUnit("1"),
		),
		ran: p.Counter(
			"shard.reactor.tasks_run",
			metrics.WithDescription("tasks popped off the ready queue and executed"),
			metrics.WithUnit("1"),
		),
		taskDuration: p.Histogram(
			"shard.reactor.task_duration",
			metrics.WithDescription("wall time spent inside a single task's RunAndDispose"),
			metrics.WithUnit("seconds"),
		),
	}
}
