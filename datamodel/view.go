package datamodel

import (
	"fmt"
	"strings"
)

// Side selects which half of a DataModel a pass iterates over.
type Side int

const (
	// UserSide iterates over users; counterparts are items.
	UserSide Side = iota
	// ItemSide iterates over items; counterparts are users.
	ItemSide
)

func (s Side) String() string {
	switch s {
	case UserSide:
		return "user"
	case ItemSide:
		return "item"
	default:
		return "unknown"
	}
}

// ParseSide parses "user" or "item", case-insensitively.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "user":
		return UserSide, nil
	case "item":
		return ItemSide, nil
	default:
		return 0, fmt.Errorf("datamodel: unknown side %q", s)
	}
}

// EntitySet is an indexed collection of entities.
type EntitySet interface {
	Len() int
	At(i int) *Entity
}

type entities []*Entity

func (e entities) Len() int         { return len(e) }
func (e entities) At(i int) *Entity { return e[i] }

// View is one side of a DataModel together with its counterpart side and the
// store-wide rating scale.
type View struct {
	side         Side
	entities     entities
	counterparts entities
	minRating    float64
	maxRating    float64
}

// Users returns the user side of dm.
func Users(dm *DataModel) View {
	return View{
		side:         UserSide,
		entities:     dm.users,
		counterparts: dm.items,
		minRating:    dm.minRating,
		maxRating:    dm.maxRating,
	}
}

// Items returns the item side of dm.
func Items(dm *DataModel) View {
	return View{
		side:         ItemSide,
		entities:     dm.items,
		counterparts: dm.users,
		minRating:    dm.minRating,
		maxRating:    dm.maxRating,
	}
}

// Of returns the view for the given side.
func Of(dm *DataModel, side Side) View {
	if side == ItemSide {
		return Items(dm)
	}
	return Users(dm)
}

// Side returns the side this view iterates over.
func (v View) Side() Side { return v.side }

// Len returns the number of entities on this side.
func (v View) Len() int { return len(v.entities) }

// At returns the entity at dense index i.
func (v View) At(i int) *Entity { return v.entities[i] }

// Counterparts returns the opposite side.
func (v View) Counterparts() EntitySet { return v.counterparts }

// MinRating returns the lower bound of the rating scale.
func (v View) MinRating() float64 { return v.minRating }

// MaxRating returns the upper bound of the rating scale.
func (v View) MaxRating() float64 { return v.maxRating }
