package txpool

// frontierItem is one sender's next-selectable transaction: the entry
// paired with the effective fee it was queued under, so the heap ordering
// stays stable even though effective fee depends on baseFee at push time.
type frontierItem struct {
	entry          *pooledTx
	effectiveFee   uint64
	index          int
}

// frontierHeap is a max-heap over frontierItem ordered by effective fee
// descending, tied-broken by earliest admission time — the k-way merge
// driving SelectForBlock across senders.
type frontierHeap []*frontierItem

func (h frontierHeap) Len() int { return len(h) }

func (h frontierHeap) Less(i, j int) bool {
	if h[i].effectiveFee != h[j].effectiveFee {
		return h[i].effectiveFee > h[j].effectiveFee
	}
	return h[i].entry.admittedAt.Before(h[j].entry.admittedAt)
}

func (h frontierHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *frontierHeap) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
