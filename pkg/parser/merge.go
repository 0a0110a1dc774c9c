package parser

import (
	"container/heap"
	"slices"
)

// SortEvents stably sorts events by Event.Less.
func SortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Less(&b):
			return -1
		case b.Less(&a):
			return 1
		default:
			return 0
		}
	})
}

// MergeEvents combines per-file event runs, each already sorted with
// SortEvents and given in discovery order, into a single stream ordered by
// timestamp, then file, then line.
func MergeEvents(runs ...[]Event) []Event {
	total := 0
	h := &eventHeap{}
	for i, run := range runs {
		total += len(run)
		if len(run) > 0 {
			*h = append(*h, &heapItem{runs: runs, run: i})
		}
	}
	heap.Init(h)

	merged := make([]Event, 0, total)
	for h.Len() > 0 {
		item := (*h)[0]
		merged = append(merged, *item.event())

		// Advance within the same run
		item.pos++
		if item.pos < len(runs[item.run]) {
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
		}
	}

	return merged
}

// heapItem is a cursor into one run for the priority queue.
type heapItem struct {
	runs [][]Event
	run  int
	pos  int
}

func (it *heapItem) event() *Event {
	return &it.runs[it.run][it.pos]
}

// eventHeap implements heap.Interface for timestamp-ordered merging.
type eventHeap []*heapItem

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	a, b := h[i].event(), h[j].event()
	if a.Less(b) {
		return true
	}
	if b.Less(a) {
		return false
	}
	return h[i].run < h[j].run
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
