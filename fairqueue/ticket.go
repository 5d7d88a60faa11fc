// Package fairqueue implements the priority-weighted, virtual-time fair
// queue used to admit I/O requests onto a capacity-bounded resource
// (spec.md §4.F). It is transcribed from fair_queue.cc, generalized from a
// single-shard I/O subsystem's internal data type into a standalone package
// any ygrebnov/shard consumer can register priority classes against.
package fairqueue

import "fmt"

// Ticket is the two-dimensional resource cost of a request: a request-count
// weight and a byte-size weight (spec.md §4.F, fair_queue_ticket).
type Ticket struct {
	Weight uint32
	Size   uint32
}

// Normalize expresses t as a single dimensionless cost relative to a
// capacity envelope, matching fair_queue_ticket::normalize.
func (t Ticket) Normalize(capacity Ticket) float64 {
	return float64(t.Weight)/float64(capacity.Weight) + float64(t.Size)/float64(capacity.Size)
}

// Add returns the component-wise sum of t and o.
func (t Ticket) Add(o Ticket) Ticket {
	return Ticket{Weight: t.Weight + o.Weight, Size: t.Size + o.Size}
}

// Sub returns the component-wise difference of t and o.
func (t Ticket) Sub(o Ticket) Ticket {
	return Ticket{Weight: t.Weight - o.Weight, Size: t.Size - o.Size}
}

// Less reports whether t is strictly below rhs on both axes, matching
// fair_queue_ticket::operator< (used only for capacity-envelope comparisons,
// not for ordering priority classes — that uses accumulated virtual time).
func (t Ticket) Less(rhs Ticket) bool {
	return t.Weight < rhs.Weight && t.Size < rhs.Size
}

// NonZero reports whether either axis carries a positive cost, matching
// fair_queue_ticket::operator bool.
func (t Ticket) NonZero() bool { return t.Weight > 0 || t.Size > 0 }

func (t Ticket) String() string { return fmt.Sprintf("%d:%d", t.Weight, t.Size) }
