package hdc

import (
	"container/heap"

	"github.com/hupe1980/symgo/queue"
)

// Match is one top-K result: a position in the searched vocabulary and its
// similarity to the query.
type Match struct {
	Index      int
	Similarity float64
}

// TopK returns the k vocabulary entries most similar to the query, sorted
// by similarity descending with ties broken by input order. k may exceed
// the vocabulary size, in which case all entries are returned.
func (s *Space) TopK(query Vector, vocab []Vector, k int) ([]Match, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	if err := s.check(query); err != nil {
		return nil, err
	}

	// Bounded min-heap: the worst survivor sits at the root. On a score
	// tie with the root the newcomer loses, which keeps input order
	// stable.
	pq := &queue.PriorityQueue{}
	heap.Init(pq)

	for i, v := range vocab {
		sim, err := s.Similarity(query, v)
		if err != nil {
			return nil, err
		}

		if pq.Len() < k {
			heap.Push(pq, &queue.Candidate{Ref: i, Score: sim})
			continue
		}
		if top := pq.Top().(*queue.Candidate); sim > top.Score {
			heap.Pop(pq)
			heap.Push(pq, &queue.Candidate{Ref: i, Score: sim})
		}
	}

	out := make([]Match, pq.Len())
	for i := pq.Len() - 1; i >= 0; i-- {
		c := heap.Pop(pq).(*queue.Candidate)
		out[i] = Match{Index: c.Ref, Similarity: c.Score}
	}
	return out, nil
}
