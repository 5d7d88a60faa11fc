package ioqueue

import (
	"fmt"
	"sync"

	"github.com/ygrebnov/shard/fairqueue"
	"github.com/ygrebnov/shard/metrics"
	"github.com/ygrebnov/shard/pool"
)

// Config mirrors io_queue::config's request-costing knobs (spec.md §4.G).
// The capacity envelope and aging constant live in the embedded
// fairqueue.Config; MaxRequestCount/MaxBytesCount from io_queue::config
// map onto its Capacity ticket's Weight/Size axes.
type Config struct {
	// DiskReqWriteToReadMultiplier and DiskBytesWriteToReadMultiplier scale a
	// write request's weight and byte cost relative to a same-sized read,
	// matching io_queue::config's disk_req_write_to_read_multiplier /
	// disk_bytes_write_to_read_multiplier.
	DiskReqWriteToReadMultiplier   uint32
	DiskBytesWriteToReadMultiplier uint32

	fairqueue.Config
}

func (c Config) ticket(req Request) fairqueue.Ticket {
	switch req.Kind {
	case Write:
		return fairqueue.Ticket{
			Weight: c.DiskReqWriteToReadMultiplier,
			Size:   c.DiskBytesWriteToReadMultiplier * uint32(req.Len),
		}
	default:
		return fairqueue.Ticket{
			Weight: readRequestBaseCount,
			Size:   readRequestBaseCount * uint32(req.Len),
		}
	}
}

// Submitter is the external collaborator that actually performs an I/O
// operation once the fair queue admits it (spec.md §6's IOSubmitter,
// engine().submit_io in io_queue.cc). It must eventually call exactly one
// of d.CompleteWith/d.Fail; until it does, the descriptor's resource cost
// stays charged against the queue's capacity envelope.
type Submitter interface {
	SubmitIO(d *Descriptor, req Request)
}

// classRegistry interns priority-class names process-wide, the Go analogue
// of io_queue::register_one_priority_class's mutex-guarded fixed-size
// _registered_shares/_registered_names arrays. A map replaces the fixed
// array: Go has no equivalent need to pre-size a lock-free lookup table for
// a bounded _max_classes, so the array's capacity ceiling is dropped along
// with it. The first shares value registered for a name is kept; later
// registrations of that name get the stored value back.
type classRegistry struct {
	mu     sync.Mutex
	shares map[string]uint32
}

func newClassRegistry() *classRegistry {
	return &classRegistry{shares: make(map[string]uint32)}
}

// globalClasses is the process-wide registry shared by every Queue.
var globalClasses = newClassRegistry()

func (r *classRegistry) register(name string, shares uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.shares[name]; ok {
		return existing
	}
	r.shares[name] = shares
	return shares
}

// Queue admits I/O requests, costing and routing them through an embedded
// fairqueue.Queue keyed by priority-class name (spec.md §4.G).
type Queue struct {
	cfg       Config
	fq        *fairqueue.Queue
	registry  *classRegistry
	submitter Submitter

	mu      sync.Mutex
	classes map[string]*fairqueue.PriorityClass

	descriptors pool.Pool
}

// New builds a Queue that hands admitted requests to submitter. provider
// may be nil (metrics discarded).
func New(cfg Config, submitter Submitter, provider metrics.Provider) *Queue {
	q := &Queue{
		cfg:       cfg,
		fq:        fairqueue.New(cfg.Config, provider),
		registry:  globalClasses,
		submitter: submitter,
		classes:   make(map[string]*fairqueue.PriorityClass),
	}
	q.descriptors = pool.NewDynamic(func() interface{} { return &Descriptor{} })
	return q
}

// classFor returns (registering on first use) the priority class for name,
// matching io_queue::find_or_create_class's lazy-creation semantics, minus
// the per-shard/per-id indirection (that generality belongs to a
// multi-shard topology layer outside this core's scope, spec.md §1).
func (q *Queue) classFor(name string, shares uint32) *fairqueue.PriorityClass {
	q.mu.Lock()
	defer q.mu.Unlock()
	if pc, ok := q.classes[name]; ok {
		return pc
	}
	resolved := q.registry.register(name, shares)
	pc := q.fq.Register(name, resolved)
	q.classes[name] = pc
	return pc
}

func (q *Queue) putDescriptor(d *Descriptor) {
	d.reset()
	q.descriptors.Put(d)
}

// Submit costs req against the named priority class and queues it with the
// fair queue; onComplete is invoked exactly once, with the result of
// running, after DispatchRequests admits it (io_queue::queue_request).
// Submit never blocks; dispatch happens when the caller next drives
// DispatchRequests (typically from the owning Reactor's run loop via a
// registered Poller).
func (q *Queue) Submit(className string, shares uint32, req Request, onComplete func(n uint64, err error)) error {
	if req.Kind != Read && req.Kind != Write {
		return fmt.Errorf("ioqueue: unrecognized request kind %d", req.Kind)
	}
	pc := q.classFor(className, shares)
	ticket := q.cfg.ticket(req)

	d := q.descriptors.Get().(*Descriptor)
	d.queue = q
	d.ticket = ticket
	d.onComplete = onComplete

	q.fq.Enqueue(pc, ticket, func() {
		q.submitter.SubmitIO(d, req)
	})
	return nil
}

// DispatchRequests drives the embedded fair queue's admission pass.
func (q *Queue) DispatchRequests() { q.fq.DispatchRequests() }

// Waiters returns the number of requests currently queued awaiting
// dispatch, used by ygrebnov/shard's ioQueuePoller to decide whether a
// dispatch pass produced work.
func (q *Queue) Waiters() int { return q.fq.Waiters() }

// UpdateShares changes the named class's share weight, registering it with
// the given default shares first if it does not yet exist
// (io_queue::update_shares_for_class).
func (q *Queue) UpdateShares(className string, shares uint32) {
	pc := q.classFor(className, shares)
	q.fq.UpdateShares(pc, shares)
}

// Rename relabels an existing class (io_queue::rename_priority_class).
func (q *Queue) Rename(className, newName string) {
	q.mu.Lock()
	pc, ok := q.classes[className]
	if ok {
		delete(q.classes, className)
		q.classes[newName] = pc
	}
	q.mu.Unlock()
	if ok {
		q.fq.Rename(pc, newName)
	}
}
