package similarity

import (
	"context"
	"errors"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// Cosine is the cosine of the angle between the two rating vectors
// restricted to their common counterparts.
type Cosine struct{}

// Name implements Metric.
func (Cosine) Name() string { return "cosine" }

// Similarity implements Metric.
func (Cosine) Similarity(a, b *datamodel.Entity) float64 {
	var num, denA, denB float64
	n := 0
	for p := range common(a, b) {
		num += p.a * p.b
		denA += p.a * p.a
		denB += p.b * p.b
		n++
	}
	if n == 0 {
		return Undefined
	}
	return correlation(num, denA, denB)
}

// PearsonCorrelation centers every rating by its entity's average rating.
type PearsonCorrelation struct{}

// Name implements Metric.
func (PearsonCorrelation) Name() string { return "pearson" }

// Similarity implements Metric.
func (PearsonCorrelation) Similarity(a, b *datamodel.Entity) float64 {
	avgA, avgB := a.Average(), b.Average()

	var num, denA, denB float64
	n := 0
	for p := range common(a, b) {
		da, db := p.a-avgA, p.b-avgB
		num += da * db
		denA += da * da
		denB += db * db
		n++
	}
	if n == 0 {
		return Undefined
	}
	return correlation(num, denA, denB)
}

// ConstrainedPearsonCorrelation centers every rating by the median of the
// rating scale.
type ConstrainedPearsonCorrelation struct {
	scale scale
}

// NewConstrainedPearsonCorrelation returns an unprepared metric.
func NewConstrainedPearsonCorrelation() *ConstrainedPearsonCorrelation {
	return &ConstrainedPearsonCorrelation{}
}

// Name implements Metric.
func (*ConstrainedPearsonCorrelation) Name() string { return "constrained-pearson" }

// Prepare implements Preparer.
func (m *ConstrainedPearsonCorrelation) Prepare(_ context.Context, c Context) error {
	m.scale.set(c)
	return nil
}

// Similarity implements Metric.
func (m *ConstrainedPearsonCorrelation) Similarity(a, b *datamodel.Entity) float64 {
	med := m.scale.median()

	var num, denA, denB float64
	n := 0
	for p := range common(a, b) {
		da, db := p.a-med, p.b-med
		num += da * db
		denA += da * da
		denB += db * db
		n++
	}
	if n == 0 {
		return Undefined
	}
	return correlation(num, denA, denB)
}

// errNoCounterparts is returned by Prepare when the context lacks the
// counterpart side.
var errNoCounterparts = errors.New("similarity: context has no counterparts")

// AdjustedCosine centers every rating by the counterpart's average rating.
type AdjustedCosine struct {
	averages []float64
}

// NewAdjustedCosine returns an unprepared metric.
func NewAdjustedCosine() *AdjustedCosine {
	return &AdjustedCosine{}
}

// Name implements Metric.
func (*AdjustedCosine) Name() string { return "adjusted-cosine" }

// Prepare implements Preparer.
func (m *AdjustedCosine) Prepare(_ context.Context, c Context) error {
	if c.Counterparts == nil {
		return errNoCounterparts
	}
	m.averages = make([]float64, c.Counterparts.Len())
	for i := range m.averages {
		m.averages[i] = c.Counterparts.At(i).Average()
	}
	return nil
}

// Similarity implements Metric.
func (m *AdjustedCosine) Similarity(a, b *datamodel.Entity) float64 {
	if m.averages == nil {
		return Undefined
	}

	var num, denA, denB float64
	n := 0
	for p := range common(a, b) {
		avg := m.averages[p.counterpart]
		da, db := p.a-avg, p.b-avg
		num += da * db
		denA += da * da
		denB += db * db
		n++
	}
	if n == 0 {
		return Undefined
	}
	return correlation(num, denA, denB)
}
