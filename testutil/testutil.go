package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/ferortega/cf4j-sub001/datamodel"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Scores returns n uniform scores in [0, 1). A fraction of them, chosen with
// probability holes, is replaced by NaN or -Inf.
func (r *RNG) Scores(n int, holes float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		switch {
		case r.rand.Float64() >= holes:
			out[i] = r.rand.Float64()
		case r.rand.Intn(2) == 0:
			out[i] = math.NaN()
		default:
			out[i] = math.Inf(-1)
		}
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, s=1.5 gives a heavy tail.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}

	return n - 1
}

// RandomModel builds a sparse data model where every (user, item) cell is
// rated with probability density. Ratings are integers in [minRating, maxRating].
// Every user and item receives at least one rating.
func (r *RNG) RandomModel(users, items int, density float64, minRating, maxRating int) *datamodel.DataModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := datamodel.NewBuilder()
	span := maxRating - minRating + 1
	rated := make([]bool, items)

	for u := range users {
		hasRating := false
		for i := range items {
			if r.rand.Float64() >= density {
				continue
			}
			mustAdd(b, UserID(u), ItemID(i), float64(minRating+r.rand.Intn(span)))
			rated[i] = true
			hasRating = true
		}
		if !hasRating {
			i := r.rand.Intn(items)
			mustAdd(b, UserID(u), ItemID(i), float64(minRating+r.rand.Intn(span)))
			rated[i] = true
		}
	}
	for i, ok := range rated {
		if !ok {
			mustAdd(b, UserID(r.rand.Intn(users)), ItemID(i), float64(minRating+r.rand.Intn(span)))
		}
	}

	dm, err := b.Build()
	if err != nil {
		panic(err)
	}
	return dm
}

// PopularityModel builds a data model where each user rates perUser items
// drawn with Zipfian popularity.
func (r *RNG) PopularityModel(users, items, perUser int, s float64) *datamodel.DataModel {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := datamodel.NewBuilder()
	for u := range users {
		seen := make(map[int]struct{}, perUser)
		for len(seen) < min(perUser, items) {
			i := r.zipfLocked(items, s)
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			mustAdd(b, UserID(u), ItemID(i), float64(1+r.rand.Intn(5)))
		}
	}

	dm, err := b.Build()
	if err != nil {
		panic(err)
	}
	return dm
}

// UserID formats a stable, sort-preserving user id.
func UserID(u int) string { return fmt.Sprintf("u%06d", u) }

// ItemID formats a stable, sort-preserving item id.
func ItemID(i int) string { return fmt.Sprintf("i%06d", i) }

func mustAdd(b *datamodel.Builder, user, item string, rating float64) {
	if err := b.AddRating(user, item, rating); err != nil {
		panic(err)
	}
}

// ReferenceModel returns the four-user table on a 1..5 scale:
//
//	        item0 item1 item2 item3
//	Tim       4     -     3     -
//	Kim       4     -     2     -
//	Laurie    -     2     -     4
//	Mike      5     5     3     1
//
// Laurie shares no item with Tim or Kim.
func ReferenceModel() *datamodel.DataModel {
	b := datamodel.NewBuilder()
	for _, r := range []struct {
		user, item string
		rating     float64
	}{
		{"Tim", "item0", 4}, {"Tim", "item2", 3},
		{"Kim", "item0", 4}, {"Kim", "item2", 2},
		{"Laurie", "item1", 2}, {"Laurie", "item3", 4},
		{"Mike", "item0", 5}, {"Mike", "item1", 5}, {"Mike", "item2", 3}, {"Mike", "item3", 1},
	} {
		mustAdd(b, r.user, r.item, r.rating)
	}

	dm, err := b.Build()
	if err != nil {
		panic(err)
	}
	return dm
}

// ExactTopK returns the indices of the k largest finite-or-+Inf scores by a
// full stable sort. NaN and -Inf are skipped; missing slots are -1.
// Ties are ordered by ascending index.
func ExactTopK(scores []float64, k int) []int {
	idx := make([]int, 0, len(scores))
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, -1) {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	out := make([]int, k)
	for i := range out {
		if i < len(idx) {
			out[i] = idx[i]
		} else {
			out[i] = -1
		}
	}
	return out
}
