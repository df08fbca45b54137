package similarity

import (
	"context"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// Jaccard is the ratio of common counterparts to the union of both
// entities' counterparts. Rating values are ignored.
type Jaccard struct{}

// Name implements Metric.
func (Jaccard) Name() string { return "jaccard" }

// Similarity implements Metric.
func (Jaccard) Similarity(a, b *datamodel.Entity) float64 {
	n := a.CommonCount(b)
	if n == 0 {
		return Undefined
	}
	return jaccard(a, b, n)
}

// msd returns the mean squared difference of the common ratings normalized
// by the scale width, and the number of common counterparts.
func msd(a, b *datamodel.Entity, width float64) (float64, int) {
	sum := 0.0
	n := 0
	for p := range common(a, b) {
		diff := (p.a - p.b) / width
		sum += diff * diff
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// MSD is 1 minus the mean squared difference of the normalized common ratings.
type MSD struct {
	scale scale
}

// NewMSD returns an unprepared metric.
func NewMSD() *MSD { return &MSD{} }

// Name implements Metric.
func (*MSD) Name() string { return "msd" }

// Prepare implements Preparer.
func (m *MSD) Prepare(_ context.Context, c Context) error {
	m.scale.set(c)
	return nil
}

// Similarity implements Metric.
func (m *MSD) Similarity(a, b *datamodel.Entity) float64 {
	w := m.scale.width()
	if w == 0 {
		return Undefined
	}
	mean, n := msd(a, b, w)
	if n == 0 {
		return Undefined
	}
	return 1 - mean
}

// JMSD multiplies Jaccard by MSD.
type JMSD struct {
	scale scale
}

// NewJMSD returns an unprepared metric.
func NewJMSD() *JMSD { return &JMSD{} }

// Name implements Metric.
func (*JMSD) Name() string { return "jmsd" }

// Prepare implements Preparer.
func (m *JMSD) Prepare(_ context.Context, c Context) error {
	m.scale.set(c)
	return nil
}

// Similarity implements Metric.
func (m *JMSD) Similarity(a, b *datamodel.Entity) float64 {
	w := m.scale.width()
	if w == 0 {
		return Undefined
	}
	mean, n := msd(a, b, w)
	if n == 0 {
		return Undefined
	}
	return jaccard(a, b, n) * (1 - mean)
}

// CJMSD weights JMSD by the coverage of b: the share of all counterparts that
// b rated and a did not. It is directional.
type CJMSD struct {
	scale        scale
	counterparts int
}

// NewCJMSD returns an unprepared metric.
func NewCJMSD() *CJMSD { return &CJMSD{} }

// Name implements Metric.
func (*CJMSD) Name() string { return "cjmsd" }

// Prepare implements Preparer.
func (m *CJMSD) Prepare(_ context.Context, c Context) error {
	if c.Counterparts == nil {
		return errNoCounterparts
	}
	m.scale.set(c)
	m.counterparts = c.Counterparts.Len()
	return nil
}

// Similarity implements Metric.
func (m *CJMSD) Similarity(a, b *datamodel.Entity) float64 {
	w := m.scale.width()
	if w == 0 || m.counterparts == 0 {
		return Undefined
	}
	mean, n := msd(a, b, w)
	if n == 0 {
		return Undefined
	}
	coverage := float64(b.Len()-n) / float64(m.counterparts)
	return coverage * jaccard(a, b, n) * (1 - mean)
}
