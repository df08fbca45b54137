package similarity

import (
	"context"
	"iter"
	"math"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// Undefined is the similarity of pairs that cannot be compared.
var Undefined = math.Inf(-1)

// IsUndefined reports whether v is the undefined sentinel.
func IsUndefined(v float64) bool { return math.IsInf(v, -1) }

// Metric computes the similarity of two entities of the same side.
// Implementations must be safe for concurrent use once prepared.
type Metric interface {
	Name() string
	Similarity(a, b *datamodel.Entity) float64
}

// Preparer is implemented by metrics that need a one-time precomputation
// over the rating store before the first Similarity call. Prepare stores its
// state on the metric, so one instance serves one pass at a time.
type Preparer interface {
	Prepare(ctx context.Context, c Context) error
}

// Context describes the side a metric operates on.
type Context struct {
	// Entities is the side being compared.
	Entities datamodel.EntitySet
	// Counterparts is the opposite side.
	Counterparts datamodel.EntitySet
	// MinRating and MaxRating bound the rating scale.
	MinRating float64
	MaxRating float64
}

// NewContext returns the context of a view.
func NewContext(v datamodel.View) Context {
	return Context{
		Entities:     v,
		Counterparts: v.Counterparts(),
		MinRating:    v.MinRating(),
		MaxRating:    v.MaxRating(),
	}
}

// Median returns the midpoint of the rating scale.
func (c Context) Median() float64 { return (c.MaxRating + c.MinRating) / 2 }

// Range returns the width of the rating scale.
func (c Context) Range() float64 { return c.MaxRating - c.MinRating }

// pair is one common counterpart of two entities.
type pair struct {
	counterpart int
	a, b        float64
}

// common yields the counterparts rated by both a and b in ascending order.
func common(a, b *datamodel.Entity) iter.Seq[pair] {
	return func(yield func(pair) bool) {
		ra, rb := a.Ratings(), b.Ratings()
		i, j := 0, 0
		for i < len(ra) && j < len(rb) {
			switch ca, cb := ra[i].Counterpart, rb[j].Counterpart; {
			case ca < cb:
				i++
			case ca > cb:
				j++
			default:
				if !yield(pair{counterpart: ca, a: ra[i].Value, b: rb[j].Value}) {
					return
				}
				i++
				j++
			}
		}
	}
}

// defined maps NaN and infinities to Undefined.
func defined(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return v
}

// correlation finishes a centered or uncentered cosine accumulator.
func correlation(num, denA, denB float64) float64 {
	if denA == 0 || denB == 0 {
		return Undefined
	}
	return defined(num / math.Sqrt(denA*denB))
}

// jaccard returns |A∩B| / |A∪B|.
func jaccard(a, b *datamodel.Entity, n int) float64 {
	return float64(n) / float64(a.Len()+b.Len()-n)
}

// scale holds the rating scale captured by Prepare.
type scale struct {
	min, max float64
}

func (s *scale) set(c Context) {
	s.min, s.max = c.MinRating, c.MaxRating
}

func (s scale) median() float64 { return (s.max + s.min) / 2 }

func (s scale) width() float64 { return s.max - s.min }
