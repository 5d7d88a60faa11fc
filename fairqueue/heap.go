package fairqueue

// classHeap is a container/heap min-heap of *PriorityClass ordered by
// accumulated virtual time: the class with the least accumulated cost is
// dispatched next (fair_queue.cc's _handles priority_queue, whose
// class_compare orders by accumulated so the smallest sits at top()).
type classHeap []*PriorityClass

func (h classHeap) Len() int { return len(h) }

func (h classHeap) Less(i, j int) bool { return h[i].accumulated < h[j].accumulated }

func (h classHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *classHeap) Push(x any) {
	pc := x.(*PriorityClass)
	pc.index = len(*h)
	*h = append(*h, pc)
}

func (h *classHeap) Pop() any {
	old := *h
	n := len(old)
	pc := old[n-1]
	old[n-1] = nil
	pc.index = -1
	*h = old[:n-1]
	return pc
}
