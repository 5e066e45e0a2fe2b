// Package world holds the land parcels agents work and the map that owns them.
package world

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLand is returned when an agent holds no land to produce on.
	ErrNoLand = errors.New("agent has no land")
	// ErrUnknownLand is returned for a holding that is not on the map.
	ErrUnknownLand = errors.New("land index out of range")
)

// Land is a parcel with fixed productivity (p >= 0).
type Land struct {
	Productivity float64 `json:"productivity"`
}

// Map is the ordered, immutable set of lands. Every period of a run shares
// the same *Map.
type Map struct {
	lands []Land
}

// NewMap creates a map owning a copy of the given lands.
func NewMap(lands ...Land) *Map {
	return &Map{lands: append([]Land(nil), lands...)}
}

// FromProductivities creates a map with one land per productivity value.
func FromProductivities(ps []float64) *Map {
	lands := make([]Land, len(ps))
	for i, p := range ps {
		lands[i] = Land{Productivity: p}
	}
	return &Map{lands: lands}
}

// Len returns the number of lands.
func (m *Map) Len() int {
	return len(m.lands)
}

// Land returns the land at index i, or false if i is not on the map.
func (m *Map) Land(i int) (Land, bool) {
	if i < 0 || i >= len(m.lands) {
		return Land{}, false
	}
	return m.lands[i], true
}

// Productivities returns a copy of every land's productivity in map order.
func (m *Map) Productivities() []float64 {
	ps := make([]float64, len(m.lands))
	for i, l := range m.lands {
		ps[i] = l.Productivity
	}
	return ps
}

// BestProductivity returns the highest productivity among the held lands.
// Ties go to the first maximal holding.
func (m *Map) BestProductivity(holdings []int) (float64, error) {
	if len(holdings) == 0 {
		return 0, ErrNoLand
	}
	best := 0.0
	for n, idx := range holdings {
		land, ok := m.Land(idx)
		if !ok {
			return 0, fmt.Errorf("%w: %d (map has %d)", ErrUnknownLand, idx, len(m.lands))
		}
		if n == 0 || land.Productivity > best {
			best = land.Productivity
		}
	}
	return best, nil
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(lands=%d, productivity=%v)", m.Len(), m.Productivities())
}
