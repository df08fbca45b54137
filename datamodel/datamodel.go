package datamodel

import (
	"errors"
)

var (
	// ErrEmpty is returned when building a DataModel without ratings.
	ErrEmpty = errors.New("datamodel: no ratings")

	// ErrDuplicateRating is returned when a (user, item) pair is rated twice.
	ErrDuplicateRating = errors.New("datamodel: duplicate rating")

	// ErrInvalidRating is returned for NaN or infinite ratings and empty ids.
	ErrInvalidRating = errors.New("datamodel: invalid rating")
)

// DataModel is an immutable rating store. All methods are safe for concurrent use.
type DataModel struct {
	users     []*Entity
	items     []*Entity
	userIndex map[string]int
	itemIndex map[string]int

	numRatings int
	minRating  float64
	maxRating  float64
	avgRating  float64
}

// NumberOfUsers returns the number of users.
func (dm *DataModel) NumberOfUsers() int { return len(dm.users) }

// NumberOfItems returns the number of items.
func (dm *DataModel) NumberOfItems() int { return len(dm.items) }

// NumberOfRatings returns the total number of ratings.
func (dm *DataModel) NumberOfRatings() int { return dm.numRatings }

// User returns the user at dense index i.
func (dm *DataModel) User(i int) *Entity { return dm.users[i] }

// Item returns the item at dense index i.
func (dm *DataModel) Item(i int) *Entity { return dm.items[i] }

// FindUserIndex returns the dense index of the user with the given id, or -1.
func (dm *DataModel) FindUserIndex(id string) int {
	if i, ok := dm.userIndex[id]; ok {
		return i
	}
	return -1
}

// FindItemIndex returns the dense index of the item with the given id, or -1.
func (dm *DataModel) FindItemIndex(id string) int {
	if i, ok := dm.itemIndex[id]; ok {
		return i
	}
	return -1
}

// MinRating returns the smallest rating in the store.
func (dm *DataModel) MinRating() float64 { return dm.minRating }

// MaxRating returns the largest rating in the store.
func (dm *DataModel) MaxRating() float64 { return dm.maxRating }

// AverageRating returns the mean of all ratings.
func (dm *DataModel) AverageRating() float64 { return dm.avgRating }
