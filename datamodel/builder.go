package datamodel

import (
	"fmt"
	"math"
	"sort"
)

type ratingKey struct {
	user string
	item string
}

// Builder accumulates ratings and produces an immutable DataModel.
// A Builder is not safe for concurrent use.
type Builder struct {
	ratings map[ratingKey]float64
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{ratings: make(map[ratingKey]float64)}
}

// Len returns the number of ratings added so far.
func (b *Builder) Len() int { return len(b.ratings) }

// AddRating records that userID rated itemID with rating.
func (b *Builder) AddRating(userID, itemID string, rating float64) error {
	if userID == "" || itemID == "" {
		return fmt.Errorf("%w: empty id (user=%q item=%q)", ErrInvalidRating, userID, itemID)
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return fmt.Errorf("%w: %v for user=%q item=%q", ErrInvalidRating, rating, userID, itemID)
	}

	key := ratingKey{user: userID, item: itemID}
	if _, ok := b.ratings[key]; ok {
		return fmt.Errorf("%w: user=%q item=%q", ErrDuplicateRating, userID, itemID)
	}
	b.ratings[key] = rating
	return nil
}

// Build freezes the accumulated ratings into a DataModel.
// The Builder may keep being used afterwards; later additions do not affect
// the returned model.
func (b *Builder) Build() (*DataModel, error) {
	if len(b.ratings) == 0 {
		return nil, ErrEmpty
	}

	userIndex := make(map[string]int)
	itemIndex := make(map[string]int)
	for k := range b.ratings {
		userIndex[k.user] = 0
		itemIndex[k.item] = 0
	}
	userIDs := sortedKeys(userIndex)
	itemIDs := sortedKeys(itemIndex)

	userRatings := make([][]Rating, len(userIDs))
	itemRatings := make([][]Rating, len(itemIDs))

	var (
		minValue = math.Inf(1)
		maxValue = math.Inf(-1)
	)
	for k, v := range b.ratings {
		u := userIndex[k.user]
		i := itemIndex[k.item]
		userRatings[u] = append(userRatings[u], Rating{Counterpart: i, Value: v})
		itemRatings[i] = append(itemRatings[i], Rating{Counterpart: u, Value: v})

		minValue = math.Min(minValue, v)
		maxValue = math.Max(maxValue, v)
	}

	dm := &DataModel{
		users:      make([]*Entity, len(userIDs)),
		items:      make([]*Entity, len(itemIDs)),
		userIndex:  userIndex,
		itemIndex:  itemIndex,
		numRatings: len(b.ratings),
		minRating:  minValue,
		maxRating:  maxValue,
	}
	// Summed in (user, item) index order so equal inputs give equal averages.
	var sum float64
	for u, id := range userIDs {
		dm.users[u] = newEntity(id, u, userRatings[u])
		for _, r := range dm.users[u].Ratings() {
			sum += r.Value
		}
	}
	dm.avgRating = sum / float64(len(b.ratings))
	for i, id := range itemIDs {
		dm.items[i] = newEntity(id, i, itemRatings[i])
	}

	return dm, nil
}

// sortedKeys assigns dense indices to the keys of m in sorted order and
// returns the keys.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		m[k] = i
	}
	return keys
}
