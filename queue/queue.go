package queue

import "container/heap"

// Compile time check to ensure PriorityQueue satisfies the heap interface.
var _ heap.Interface = (*PriorityQueue)(nil)

// Candidate is a scored reference into a caller-owned ordering, typically a
// position in a vocabulary slice or a concept list.
type Candidate struct {
	Ref   int     // Ref is the caller-side position of the scored entry.
	Score float64 // Score is the priority of the entry in the queue.
	Index int     // Index is maintained by the heap.Interface methods.
}

// PriorityQueue implements heap.Interface and holds Candidates.
//
// With Max unset the queue is a min-heap on Score, which is what a bounded
// top-K keeps: the worst survivor sits at the root. Equal scores order by
// Ref descending so later entries are evicted before earlier ones and the
// extracted result stays stable with respect to input order.
type PriorityQueue struct {
	Max   bool         // Max flips the queue into a max-heap.
	Items []*Candidate // Items contains the elements of the priority queue.
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.Items) }

// Less reports whether the element with index i should sort before the element with index j.
func (pq *PriorityQueue) Less(i, j int) bool {
	a, b := pq.Items[i], pq.Items[j]
	if a.Score == b.Score {
		// Later refs drain first regardless of heap direction.
		return a.Ref > b.Ref
	}
	if pq.Max {
		return a.Score > b.Score
	}
	return a.Score < b.Score
}

// Swap swaps the elements with indexes i and j.
func (pq *PriorityQueue) Swap(i, j int) {
	pq.Items[i], pq.Items[j] = pq.Items[j], pq.Items[i]
	pq.Items[i].Index, pq.Items[j].Index = i, j // Update indices
}

// Push adds x to the priority queue.
func (pq *PriorityQueue) Push(x any) {
	item, _ := x.(*Candidate)
	item.Index = len(pq.Items)
	pq.Items = append(pq.Items, item)
}

// Pop removes and returns the top element from the priority queue.
func (pq *PriorityQueue) Pop() any {
	if len(pq.Items) == 0 {
		return nil
	}

	old := pq.Items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil       // Avoid memory leak
	item.Index = -1      // For safety
	pq.Items = old[:n-1] // Reslice without creating a new underlying array

	return item
}

// Top returns the top element of the priority queue.
func (pq *PriorityQueue) Top() any {
	return pq.Items[0]
}
