package fairqueue

// request is one queued unit of work awaiting dispatch: its resource cost
// and the closure to run once admitted (fair_queue.cc's
// priority_class::request).
type request struct {
	ticket Ticket
	run    func()
}

// PriorityClass is a named admission lane with its own share weight and
// accumulated virtual-time counter (spec.md §4.F, fair_queue.cc's
// priority_class). Obtain one via Queue.Register; do not construct directly.
type PriorityClass struct {
	name        string
	shares      uint32
	accumulated float64
	queue       []request

	queued bool // currently linked into the dispatch heap
	index  int  // heap.Interface bookkeeping
}

// Name returns the label the class was registered or renamed with.
func (pc *PriorityClass) Name() string { return pc.name }

// Shares returns the class's current share weight.
func (pc *PriorityClass) Shares() uint32 { return pc.shares }

func (pc *PriorityClass) updateShares(shares uint32) {
	if shares == 0 {
		shares = 1
	}
	pc.shares = shares
}
