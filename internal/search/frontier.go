package search

import "container/heap"

// frontierItem snapshots the priority at push time. Node priorities only
// change after a pop, so the snapshot stays accurate while queued.
type frontierItem struct {
	idx      int32
	priority float64
	seq      uint64
}

// frontierHeap is a min-heap by priority, then insertion order.
type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// frontier is the open priority queue of a search run.
type frontier struct {
	items frontierHeap
	seq   uint64
}

func newFrontier() *frontier {
	return &frontier{items: make(frontierHeap, 0, 64)}
}

func (f *frontier) push(idx int32, priority float64) {
	f.seq++
	heap.Push(&f.items, frontierItem{idx: idx, priority: priority, seq: f.seq})
}

// pop removes the lowest-priority item. The frontier must not be empty.
func (f *frontier) pop() int32 {
	return heap.Pop(&f.items).(frontierItem).idx
}

func (f *frontier) len() int {
	return len(f.items)
}
