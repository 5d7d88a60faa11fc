package fairqueue

import (
	"container/heap"
	"math"
	"time"

	"github.com/ygrebnov/shard/metrics"
)

// Config carries the capacity envelope and aging constant a Queue is built
// with (spec.md §4.F, fair_queue::config).
type Config struct {
	// Capacity bounds the resources a Queue will let execute concurrently.
	Capacity Ticket

	// Tau is the exponential aging time constant: accumulated cost decays
	// with e^(Δt/Tau), so a class idle for several multiples of Tau regains
	// priority quickly once it has work again (fair_queue.cc's
	// dispatch_requests cost formula).
	Tau time.Duration
}

func (c Config) tauMicros() float64 {
	if c.Tau <= 0 {
		return float64(time.Millisecond.Microseconds())
	}
	return float64(c.Tau.Microseconds())
}

// Queue dispatches queued requests across registered PriorityClasses in
// proportion to their shares, subject to a capacity envelope (spec.md
// §4.F). A Queue is not safe for concurrent use; callers serialize access to
// it the same way the owning Reactor serializes access to everything else
// on its shard (spec.md §5).
type Queue struct {
	cfg Config

	maxCapacity     Ticket
	resourcesQueued Ticket
	resourcesExec   Ticket
	requestsQueued  int
	requestsExec    int

	base       time.Time
	allClasses map[*PriorityClass]struct{}
	handles    classHeap

	m *queueMetrics
}

// New builds a Queue. provider may be nil, in which case metrics are
// discarded (spec.md §7's metrics collaborator, optional per shard.Config).
func New(cfg Config, provider metrics.Provider) *Queue {
	if provider == nil {
		provider = metrics.NewNoopProvider()
	}
	return &Queue{
		cfg:         cfg,
		maxCapacity: cfg.Capacity,
		base:        time.Now(),
		allClasses:  make(map[*PriorityClass]struct{}),
		m:           newQueueMetrics(provider),
	}
}

// Register creates a new PriorityClass with the given name and shares.
// Registering the same name twice is permitted and yields two independent
// classes — naming collisions are the caller's concern, matching
// fair_queue::register_priority_class, which takes no name at all; io_queue.cc
// layers name interning on top (see ioqueue.Queue's classFor).
func (q *Queue) Register(name string, shares uint32) *PriorityClass {
	if shares == 0 {
		shares = 1
	}
	pc := &PriorityClass{name: name, shares: shares}
	q.allClasses[pc] = struct{}{}
	return pc
}

// Unregister removes pc. It panics if pc still has queued requests, matching
// fair_queue::unregister_priority_class's assertion.
func (q *Queue) Unregister(pc *PriorityClass) {
	if len(pc.queue) != 0 {
		panic("fairqueue: Unregister called on a class with requests still queued")
	}
	delete(q.allClasses, pc)
}

// UpdateShares changes pc's share weight for future dispatch decisions.
func (q *Queue) UpdateShares(pc *PriorityClass, shares uint32) { pc.updateShares(shares) }

// Rename changes pc's label without touching its queued work or accumulated
// virtual time.
func (q *Queue) Rename(pc *PriorityClass, name string) { pc.name = name }

// Enqueue admits a request of the given cost into pc, to be run (via
// DispatchRequests) once capacity and its turn in priority order allow.
func (q *Queue) Enqueue(pc *PriorityClass, cost Ticket, run func()) {
	q.pushClass(pc)
	q.resourcesQueued = q.resourcesQueued.Add(cost)
	pc.queue = append(pc.queue, request{ticket: cost, run: run})
	q.requestsQueued++
	q.m.queued.Add(1)
}

func (q *Queue) pushClass(pc *PriorityClass) {
	if !pc.queued {
		heap.Push(&q.handles, pc)
		pc.queued = true
	}
}

func (q *Queue) popClass() *PriorityClass {
	pc := heap.Pop(&q.handles).(*PriorityClass)
	pc.queued = false
	return pc
}

// NotifyRequestsFinished releases cost back into the capacity envelope once
// a dispatched request has completed (fair_queue::notify_requests_finished).
func (q *Queue) NotifyRequestsFinished(cost Ticket) {
	q.resourcesExec = q.resourcesExec.Sub(cost)
	q.requestsExec--
}

// CanDispatch reports whether there is queued work and spare capacity.
func (q *Queue) CanDispatch() bool {
	return q.resourcesQueued.NonZero() && q.resourcesExec.Less(q.maxCapacity)
}

// Waiters returns the number of requests currently queued.
func (q *Queue) Waiters() int { return q.requestsQueued }

// Executing returns the number of requests currently executing.
func (q *Queue) Executing() int { return q.requestsExec }

// normalizeFactor is the renormalization multiplier applied to every
// class's accumulated counter once virtual time threatens to overflow
// float64, matching fair_queue::normalize_factor's use of the smallest
// representable positive float.
func normalizeFactor() float64 { return math.SmallestNonzeroFloat64 }

func (q *Queue) normalizeStats() {
	delta := math.Log(normalizeFactor()) * q.cfg.tauMicros()
	// delta is negative; subtracting it advances base into the future,
	// matching fair_queue::normalize_stats.
	q.base = q.base.Add(-time.Duration(delta) * time.Microsecond)
	for pc := range q.allClasses {
		pc.accumulated *= normalizeFactor()
	}
}

// DispatchRequests drains as much queued work as current capacity and
// priority ordering allow, running each admitted request's closure
// synchronously before moving to the next (fair_queue::dispatch_requests).
// Call it from the reactor loop or a poller, not concurrently with Enqueue.
func (q *Queue) DispatchRequests() {
	for q.CanDispatch() {
		var pc *PriorityClass
		for {
			pc = q.popClass()
			if len(pc.queue) != 0 {
				break
			}
		}

		req := pc.queue[0]
		pc.queue = pc.queue[1:]
		q.resourcesExec = q.resourcesExec.Add(req.ticket)
		q.resourcesQueued = q.resourcesQueued.Sub(req.ticket)
		q.requestsExec++
		q.requestsQueued--

		reqCost := req.ticket.Normalize(q.maxCapacity) / float64(pc.shares)
		next := pc.accumulated + q.dispatchCost(reqCost)
		for math.IsInf(next, 1) {
			q.normalizeStats()
			next = pc.accumulated + q.dispatchCost(reqCost)
		}
		pc.accumulated = next

		if len(pc.queue) != 0 {
			q.pushClass(pc)
		}

		q.m.dispatched.Add(1)
		req.run()
	}
}

func (q *Queue) dispatchCost(reqCost float64) float64 {
	delta := time.Since(q.base).Microseconds()
	return math.Exp(float64(delta)/q.cfg.tauMicros()) * reqCost
}
