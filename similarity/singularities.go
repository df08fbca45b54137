package similarity

import (
	"context"
	"math"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// Singularities weights rating agreement by how singular each rating is:
// agreeing on a counterpart that few entities rated as relevant counts more
// than agreeing on a popular one.
//
// A rating is relevant when it is at least the relevance threshold.
type Singularities struct {
	configured float64
	threshold  float64
	scale      scale

	// Per counterpart: 1 - share of entities with a relevant rating, and
	// 1 - share with a not-relevant rating. Written only by Prepare.
	relevant    []float64
	notRelevant []float64
}

// NewSingularities returns an unprepared metric. A NaN threshold selects the
// point three quarters up the rating scale (4 on a 1..5 scale).
func NewSingularities(threshold float64) *Singularities {
	return &Singularities{configured: threshold, threshold: threshold}
}

// Name implements Metric.
func (*Singularities) Name() string { return "singularities" }

// Threshold returns the effective relevance threshold. It is NaN until a
// metric created without a threshold has been prepared.
func (m *Singularities) Threshold() float64 { return m.threshold }

// Prepare implements Preparer.
func (m *Singularities) Prepare(ctx context.Context, c Context) error {
	if c.Counterparts == nil || c.Entities == nil {
		return errNoCounterparts
	}

	m.scale.set(c)
	m.threshold = m.configured
	if math.IsNaN(m.threshold) {
		m.threshold = c.MinRating + 0.75*c.Range()
	}

	numEntities := float64(c.Entities.Len())
	numCounterparts := c.Counterparts.Len()
	m.relevant = make([]float64, numCounterparts)
	m.notRelevant = make([]float64, numCounterparts)

	for i := range numCounterparts {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		rel, not := 0, 0
		for _, r := range c.Counterparts.At(i).Ratings() {
			if m.isRelevant(r.Value) {
				rel++
			} else {
				not++
			}
		}
		m.relevant[i] = 1 - float64(rel)/numEntities
		m.notRelevant[i] = 1 - float64(not)/numEntities
	}
	return nil
}

func (m *Singularities) isRelevant(v float64) bool { return v >= m.threshold }

// Similarity implements Metric.
func (m *Singularities) Similarity(a, b *datamodel.Entity) float64 {
	width := m.scale.width()
	if m.relevant == nil || width == 0 {
		return Undefined
	}

	var (
		sumRel, sumNot, sumMixed float64
		nRel, nNot, nMixed       int
	)
	for p := range common(a, b) {
		diff := (p.a - p.b) / width
		term := 1 - diff*diff
		sRel := m.relevant[p.counterpart]
		sNot := m.notRelevant[p.counterpart]

		relA, relB := m.isRelevant(p.a), m.isRelevant(p.b)
		switch {
		case relA && relB:
			sumRel += term * sRel * sRel
			nRel++
		case !relA && !relB:
			sumNot += term * sNot * sNot
			nNot++
		default:
			sumMixed += term * sRel * sNot
			nMixed++
		}
	}

	if nRel+nNot+nMixed == 0 {
		return Undefined
	}
	return (bucket(sumRel, nRel) + bucket(sumNot, nNot) + bucket(sumMixed, nMixed)) / 3
}

func bucket(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
