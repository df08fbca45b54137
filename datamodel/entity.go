package datamodel

import (
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Rating is a single (counterpart, value) pair of an Entity.
type Rating struct {
	// Counterpart is the dense index of the entity on the opposite side.
	Counterpart int
	// Value is the rating score.
	Value float64
}

// Entity is a user or an item. Entities are frozen once the DataModel is built
// and are safe for concurrent reads.
type Entity struct {
	id      string
	index   int
	ratings []Rating
	average float64
	set     *roaring.Bitmap
}

func newEntity(id string, index int, ratings []Rating) *Entity {
	sort.Slice(ratings, func(i, j int) bool {
		return ratings[i].Counterpart < ratings[j].Counterpart
	})

	set := roaring.New()
	sum := 0.0
	for _, r := range ratings {
		set.AddInt(r.Counterpart)
		sum += r.Value
	}
	set.RunOptimize()

	avg := math.NaN()
	if len(ratings) > 0 {
		avg = sum / float64(len(ratings))
	}

	return &Entity{
		id:      id,
		index:   index,
		ratings: ratings,
		average: avg,
		set:     set,
	}
}

// ID returns the external identifier.
func (e *Entity) ID() string { return e.id }

// Index returns the dense index of the entity on its side.
func (e *Entity) Index() int { return e.index }

// Len returns the number of ratings.
func (e *Entity) Len() int { return len(e.ratings) }

// Ratings returns the rating list sorted ascending by counterpart.
// The returned slice is shared and must not be modified.
func (e *Entity) Ratings() []Rating { return e.ratings }

// CounterpartAt returns the counterpart index at position pos.
func (e *Entity) CounterpartAt(pos int) int { return e.ratings[pos].Counterpart }

// RatingAt returns the rating value at position pos.
func (e *Entity) RatingAt(pos int) float64 { return e.ratings[pos].Value }

// Average returns the mean of the entity's ratings, or NaN if it has none.
func (e *Entity) Average() float64 { return e.average }

// FindCounterpart returns the position of counterpart c in the rating list,
// or -1 if the entity did not rate c.
func (e *Entity) FindCounterpart(c int) int {
	lo, hi := 0, len(e.ratings)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch cp := e.ratings[mid].Counterpart; {
		case cp == c:
			return mid
		case cp < c:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return -1
}

// Rating returns the rating given to counterpart c and whether it exists.
func (e *Entity) Rating(c int) (float64, bool) {
	pos := e.FindCounterpart(c)
	if pos < 0 {
		return 0, false
	}
	return e.ratings[pos].Value, true
}

// Contains reports whether the entity rated counterpart c.
func (e *Entity) Contains(c int) bool {
	if c < 0 || c > math.MaxUint32 {
		return false
	}
	return e.set.Contains(uint32(c))
}

// Counterparts returns a copy of the set of rated counterparts.
func (e *Entity) Counterparts() *roaring.Bitmap { return e.set.Clone() }

// CommonCount returns the number of counterparts rated by both entities.
func (e *Entity) CommonCount(other *Entity) int {
	return int(e.set.AndCardinality(other.set))
}
