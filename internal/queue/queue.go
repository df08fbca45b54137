// Package queue provides the bounded priority queue used for top-k selection.
package queue

// Item is a scored index.
type Item struct {
	Index int
	Score float64
}

// Worse reports whether a ranks below b: a lower score, or an equal score
// with a higher index. This is a strict total order for non-NaN scores.
func Worse(a, b Item) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

// PriorityQueue is a value-based binary heap whose top is the worst item it
// holds. Bounded to k items it retains the k best items seen.
type PriorityQueue struct {
	items []Item
}

// NewMin initializes a new priority queue with the worst item on top.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{
		items: make([]Item, 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Top returns the worst element of the heap.
func (pq *PriorityQueue) Top() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) Push(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PushBounded inserts item if the queue holds fewer than k items, or replaces
// the current worst item if item ranks above it. It reports whether item was kept.
func (pq *PriorityQueue) PushBounded(item Item, k int) bool {
	if len(pq.items) < k {
		pq.Push(item)
		return true
	}
	if k == 0 || !Worse(pq.items[0], item) {
		return false
	}
	pq.items[0] = item
	pq.siftDown(0)
	return true
}

// Pop removes and returns the worst element.
func (pq *PriorityQueue) Pop() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// DrainBest empties the queue into dst ordered best first and returns the
// number of items written. dst must hold at least Len() items.
func (pq *PriorityQueue) DrainBest(dst []int) int {
	n := len(pq.items)
	for i := n - 1; i >= 0; i-- {
		item, _ := pq.Pop()
		dst[i] = item.Index
	}
	return n
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue) less(i, j int) bool {
	return Worse(pq.items[i], pq.items[j])
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
