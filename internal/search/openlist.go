package search

import (
	"container/heap"

	"stripsplan/internal/ground"
)

// Entry is one open-list entry: a state id and the priority it was pushed
// with (spec.md §4.6's "(primary, secondary) priority, value = state id").
// G records the g-value the entry's priority was computed from, so the
// driver can recognize a stale entry — one superseded by a later, better
// push for the same state — without removing it from the heap (spec.md
// §4.6: "re-push with a better priority is allowed without removing the
// older entry").
//
// This is grounded on the inference.PriorityQueue/PQItem shape implied by
// the teacher's max_probability_path.go (a container/heap Dijkstra variant
// pushing (id, priority) pairs); the teacher's actual PriorityQueue/PQItem
// type definitions are not present in the retrieved sources, so the
// heap.Interface plumbing below is written fresh against that usage shape
// rather than copied (see DESIGN.md).
type Entry struct {
	StateID   int
	Primary   int64
	Secondary int64
	G         ground.Cost

	index int
}

type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

// Less breaks ties by secondary priority then state-id ascending (spec.md
// §5 "Ordering guarantees").
func (h entryHeap) Less(i, j int) bool {
	if h[i].Primary != h[j].Primary {
		return h[i].Primary < h[j].Primary
	}
	if h[i].Secondary != h[j].Secondary {
		return h[i].Secondary < h[j].Secondary
	}
	return h[i].StateID < h[j].StateID
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// OpenList is C6's ordered multiset keyed by (primary, secondary) priority.
type OpenList struct {
	h entryHeap
}

// NewOpenList returns an empty open list.
func NewOpenList() *OpenList {
	return &OpenList{}
}

// Push inserts a new entry. It never removes or updates an existing entry
// for the same state — the pop loop is responsible for discarding stale
// ones (spec.md §4.6).
func (o *OpenList) Push(stateID int, primary, secondary int64, g ground.Cost) {
	heap.Push(&o.h, &Entry{StateID: stateID, Primary: primary, Secondary: secondary, G: g})
}

// PopMin removes and returns the minimum-priority entry, or ok=false if the
// list is empty.
func (o *OpenList) PopMin() (*Entry, bool) {
	if len(o.h) == 0 {
		return nil, false
	}
	return heap.Pop(&o.h).(*Entry), true
}

// Len reports the number of entries currently queued, including any stale
// ones not yet popped.
func (o *OpenList) Len() int {
	return len(o.h)
}
