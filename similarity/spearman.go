package similarity

import (
	"sort"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// SpearmanRank is Spearman's rank correlation over the common counterparts:
// 1 - 6·Σd² / (n·(n²-1)), where d is the rank difference of a counterpart.
// Tied ratings share the average of the ranks they span. A single common
// counterpart is undefined.
type SpearmanRank struct{}

// Name implements Metric.
func (SpearmanRank) Name() string { return "spearman" }

// Similarity implements Metric.
func (SpearmanRank) Similarity(a, b *datamodel.Entity) float64 {
	var ra, rb []float64
	for p := range common(a, b) {
		ra = append(ra, p.a)
		rb = append(rb, p.b)
	}

	n := len(ra)
	if n < 2 {
		return Undefined
	}

	rankA := ranks(ra)
	rankB := ranks(rb)

	sum := 0.0
	for i := range n {
		d := rankA[i] - rankB[i]
		sum += d * d
	}

	fn := float64(n)
	return defined(1 - 6*sum/(fn*(fn*fn-1)))
}

// ranks returns the 1-based fractional ranks of values in descending order.
func ranks(values []float64) []float64 {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return values[order[i]] > values[order[j]]
	})

	out := make([]float64, len(values))
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && values[order[end]] == values[order[start]] {
			end++
		}
		// Positions start..end-1 share ranks start+1..end.
		rank := float64(start+1+end) / 2
		for _, idx := range order[start:end] {
			out[idx] = rank
		}
		start = end
	}
	return out
}
