package knn

import (
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/ferortega/cf4j-sub001/internal/queue"
)

// NotFound pads neighbor rows once fewer than k candidates remain.
const NotFound = -1

// scanMaxK is the largest k for which repeated scanning beats the heap.
const scanMaxK = 4

// TopK returns the indices of the k highest scores in descending order, ties
// broken by ascending index. NaN and negative infinity are never selected.
// If fewer than k scores qualify, the tail of the result is NotFound.
// scores is not modified. k == 0 yields an empty result; callers validate k,
// and a negative k panics like a negative make length.
func TopK(scores []float64, k int) []int {
	return TopKExcluding(scores, k, NotFound)
}

// TopKExcluding is TopK with index self never selected.
func TopKExcluding(scores []float64, k, self int) []int {
	if k < 0 {
		panic("knn: negative k")
	}
	if k == 0 {
		return []int{}
	}
	out := make([]int, k)
	selectInto(out, scores, self)
	return out
}

// selectInto fills dst with the top len(dst) indices of scores, skipping self.
func selectInto(dst []int, scores []float64, self int) {
	if len(dst) <= scanMaxK {
		topKScan(dst, scores, self)
		return
	}
	topKHeap(dst, scores, self)
}

func candidate(scores []float64, i, self int) bool {
	s := scores[i]
	return i != self && !math.IsNaN(s) && !math.IsInf(s, -1)
}

// topKHeap keeps the best len(dst) candidates in a bounded min-heap.
func topKHeap(dst []int, scores []float64, self int) {
	k := len(dst)
	pq := queue.NewMin(k)
	for i := range scores {
		if !candidate(scores, i, self) {
			continue
		}
		pq.PushBounded(queue.Item{Index: i, Score: scores[i]}, k)
	}

	n := pq.DrainBest(dst)
	for i := n; i < k; i++ {
		dst[i] = NotFound
	}
}

// topKScan repeatedly picks the best unconsumed candidate. A strict
// comparison keeps the lowest index among equal scores.
func topKScan(dst []int, scores []float64, self int) {
	consumed := bitset.New(uint(len(scores)))
	for slot := range dst {
		best := NotFound
		for i := range scores {
			if consumed.Test(uint(i)) || !candidate(scores, i, self) {
				continue
			}
			if best == NotFound || scores[i] > scores[best] {
				best = i
			}
		}
		if best == NotFound {
			for j := slot; j < len(dst); j++ {
				dst[j] = NotFound
			}
			return
		}
		consumed.Set(uint(best))
		dst[slot] = best
	}
}
