package similarity

import (
	"context"
	"math"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// PIP is the Proximity-Impact-Popularity measure. Each common counterpart
// contributes proximity·impact·popularity; the result is the raw sum and is
// not bounded to [-1, 1].
type PIP struct {
	scale    scale
	averages []float64
}

// NewPIP returns an unprepared metric.
func NewPIP() *PIP { return &PIP{} }

// Name implements Metric.
func (*PIP) Name() string { return "pip" }

// Prepare implements Preparer.
func (m *PIP) Prepare(_ context.Context, c Context) error {
	if c.Counterparts == nil {
		return errNoCounterparts
	}
	m.scale.set(c)
	m.averages = make([]float64, c.Counterparts.Len())
	for i := range m.averages {
		m.averages[i] = c.Counterparts.At(i).Average()
	}
	return nil
}

// Similarity implements Metric.
func (m *PIP) Similarity(a, b *datamodel.Entity) float64 {
	if m.averages == nil {
		return Undefined
	}

	med := m.scale.median()
	width := m.scale.width()

	sum := 0.0
	n := 0
	for p := range common(a, b) {
		agree := !((p.a > med && p.b < med) || (p.a < med && p.b > med))

		d := math.Abs(p.a - p.b)
		if !agree {
			d *= 2
		}
		proximity := (2*width + 1) - d
		proximity *= proximity

		impact := (math.Abs(p.a-med) + 1) * (math.Abs(p.b-med) + 1)
		if !agree {
			impact = 1 / impact
		}

		popularity := 1.0
		avg := m.averages[p.counterpart]
		if (p.a > avg && p.b > avg) || (p.a < avg && p.b < avg) {
			dev := (p.a+p.b)/2 - avg
			popularity += dev * dev
		}

		sum += proximity * impact * popularity
		n++
	}
	if n == 0 {
		return Undefined
	}
	return defined(sum)
}
