package shard

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/ygrebnov/shard/metrics"
)

// Poller is polled by the reactor whenever its ready queue runs dry
// (spec.md §6). Poll returns whether it produced any new ready work (and
// thus whether the reactor should loop again instead of returning).
type Poller interface {
	Poll() bool
}

// FailedFutureSink receives a leaked exception — a future destroyed while
// holding an exception that was never inspected (spec.md §3, §6, §7).
type FailedFutureSink interface {
	ReportFailedFuture(err error)
}

// Reactor is the single-shard cooperative scheduler (spec.md §4.E). A
// Reactor is not safe for concurrent use by more than one goroutine for its
// scheduling-internal methods (ready queues, Run); this mirrors spec.md §5
// — "the shard is the unit of isolation", not a Go implementation detail to
// work around. The two exceptions are RequestPreempt and Exit, which model
// the external timer source and an out-of-band shutdown request and are
// therefore safe to call from any goroutine.
type Reactor struct {
	cfg Config

	urgent ringQueue
	normal ringQueue

	preempt      atomic.Bool
	shuttingDown atomic.Bool
	exitCode     atomic.Int64

	pollers []Poller

	failedFutureSink FailedFutureSink
	metrics          *reactorMetrics
}

// NewReactor builds a Reactor from opts.
func NewReactor(opts ...Option) (*Reactor, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	provider := cfg.MetricsProvider
	if provider == nil {
		provider = metrics.NewNoopProvider()
	}
	return &Reactor{
		cfg:              cfg,
		failedFutureSink: cfg.FailedFutureSink,
		metrics:          newReactorMetrics(provider),
	}, nil
}

// Config returns the configuration the reactor was built with.
func (r *Reactor) Config() Config { return r.cfg }

// schedule is the internal entry point used by core.scheduleContinuation
// and core.attach's already-fulfilled fast path.
func (r *Reactor) schedule(t Task, urgent bool) {
	if urgent {
		r.urgent.push(t)
	} else {
		r.normal.push(t)
	}
	r.metrics.scheduled.Add(1)
}

// Schedule enqueues an externally-produced task (e.g. a poller's wakeup
// trampoline) at normal priority.
func (r *Reactor) Schedule(t Task) { r.schedule(t, false) }

// ScheduleUrgent enqueues t ahead of normal-priority work. Spec.md §4.E
// reserves this for "value fulfilment that was synchronously produced
// during the current task".
func (r *Reactor) ScheduleUrgent(t Task) { r.schedule(t, true) }

// NeedPreempt reports the current preemption flag (spec.md §4.D/§4.E):
// when true, Future-API operators must not take their inline fast path.
func (r *Reactor) NeedPreempt() bool { return r.preempt.Load() }

// RequestPreempt raises the preemption flag. It is the `need_preempt()`
// external timer source's write side (spec.md §6); call it from whatever
// goroutine drives real wall-clock ticks in an embedding application.
func (r *Reactor) RequestPreempt() { r.preempt.Store(true) }

// ClearPreempt lowers the preemption flag; Run calls this at the start of
// each pass over the ready queue, representing the start of a fresh
// task-quota window.
func (r *Reactor) ClearPreempt() { r.preempt.Store(false) }

// RegisterPoller adds p to the set consulted whenever the ready queue
// empties (spec.md §4.E "External work").
func (r *Reactor) RegisterPoller(p Poller) { r.pollers = append(r.pollers, p) }

// Exit requests shutdown: the scheduler drains remaining ready tasks and
// then Run returns code (spec.md §4.E "Shutdown"). Safe to call from any
// goroutine, including from inside a running task.
func (r *Reactor) Exit(code int) {
	r.exitCode.Store(int64(code))
	r.shuttingDown.Store(true)
}

func (r *Reactor) popReady() (Task, bool) {
	if t, ok := r.urgent.pop(); ok {
		return t, true
	}
	return r.normal.pop()
}

func (r *Reactor) readyLen() int { return r.urgent.len() + r.normal.len() }

// Run drains the ready queue, consulting registered pollers whenever it
// empties, until: the ready queue is empty and no poller produced work
// (Run returns 0, "idle" — the embedder decides whether to call Run again
// or block on external readiness), ctx is cancelled (returns -1), or Exit
// was called (returns the exit code after draining remaining ready tasks,
// spec.md §4.E "Shutdown").
//
// Within one pass over the ready queue, Run self-polices the task-quota
// budget described in spec.md §4.E/§5: once TaskQuota has elapsed since the
// last ClearPreempt, it raises the preemption flag itself, exactly as an
// external timer firing would. ClearPreempt is called at the top of every
// pass, starting a fresh quota window; embedders with a real timer source
// may call RequestPreempt/ClearPreempt independently and this self-policing
// becomes redundant but harmless (raising an already-raised flag is a
// no-op).
func (r *Reactor) Run(ctx context.Context) int {
	for {
		r.ClearPreempt()
		quotaStart := time.Now()

		for {
			if r.shuttingDown.Load() {
				return r.drain()
			}
			if ctx.Err() != nil {
				return -1
			}
			t, ok := r.popReady()
			if !ok {
				break
			}
			r.runTask(t)
			if !r.preempt.Load() && r.cfg.TaskQuota > 0 && time.Since(quotaStart) >= r.cfg.TaskQuota {
				r.RequestPreempt()
			}
		}

		if r.shuttingDown.Load() {
			return r.drain()
		}
		if ctx.Err() != nil {
			return -1
		}

		workDone := false
		for _, p := range r.pollers {
			if p.Poll() {
				workDone = true
			}
		}
		if !workDone {
			return 0
		}
	}
}

// drain runs every task still on the ready queue (the documented Shutdown
// sequence: "the scheduler drains remaining tasks then exits with the
// supplied code") and returns the exit code passed to Exit.
func (r *Reactor) drain() int {
	for {
		t, ok := r.popReady()
		if !ok {
			break
		}
		r.runTask(t)
	}
	return int(r.exitCode.Load())
}

func (r *Reactor) runTask(t Task) {
	r.metrics.ran.Add(1)
	start := time.Now()
	if err := runRecovered(t.RunAndDispose); err != nil && r.failedFutureSink != nil {
		r.failedFutureSink.ReportFailedFuture(err)
	}
	r.metrics.taskDuration.Record(time.Since(start).Seconds())
}
