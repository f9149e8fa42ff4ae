package game

import (
	"github.com/lucas/territories/internal/game/grid"
)

// Map is a grid of tiles plus the move resolver and visibility/
// reinforcement sweeps that operate over it. It is touched by exactly
// one goroutine at a time — the owning Runner — per the single-writer
// rule in spec §5; it carries no internal locking of its own.
type Map struct {
	g     grid.Grid
	tiles []*Tile
}

// NewMap returns a Map of the given dimensions, every tile a Mountain.
func NewMap(width, height int) *Map {
	g := grid.New(width, height)
	tiles := make([]*Tile, g.Len())
	for i := range tiles {
		tiles[i] = NewTile()
	}
	return &Map{g: g, tiles: tiles}
}

func (m *Map) Width() int   { return m.g.Width() }
func (m *Map) Height() int  { return m.g.Height() }
func (m *Map) Len() int     { return m.g.Len() }
func (m *Map) Tile(i int) *Tile { return m.tiles[i] }
func (m *Map) Grid() grid.Grid  { return m.g }

// ApplyMove resolves a single move: validate, attack, then propagate
// ownership and visibility changes per the outcome. See spec §4.4.
func (m *Map) ApplyMove(mv Move) error {
	if !m.g.IsValidIndex(mv.From) {
		return ErrFromInvalidTile
	}
	src := m.tiles[mv.From]

	dstIdx, ok := m.g.Neighbor(mv.From, mv.Direction)
	if !ok {
		return ErrToInvalidTile
	}
	dst := m.tiles[dstIdx]

	if src.Owner == nil || *src.Owner != mv.Player {
		return ErrSourceTileNotOwned
	}

	result, err := src.Attack(dst)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case GeneralCaptured:
		m.transferTerritory(result.DefeatedPlayer, mv.Player)
	case TileCaptured:
		if result.HasDefeated {
			m.ShrinkHorizon(result.DefeatedPlayer, dstIdx)
		}
		m.EnlargeHorizon(mv.Player, dstIdx)
	case StatuQuo:
		// No visibility change.
	}
	return nil
}

// transferTerritory moves every tile owned by defeated to attacker, and
// every tile visible to defeated becomes visible to attacker instead.
// Iteration order is left-to-right, top-to-bottom; per spec §4.4 the
// outcome is order-independent.
func (m *Map) transferTerritory(defeated, attacker PlayerId) {
	for _, t := range m.tiles {
		if t.IsMountain() {
			continue
		}
		if t.Owner != nil && *t.Owner == defeated {
			t.SetOwner(&attacker)
		}
		if t.IsVisibleBy(defeated) {
			t.HideFrom(defeated)
			t.RevealTo(attacker)
		}
	}
}

// EnlargeHorizon reveals every non-Mountain extended neighbor of idx to p.
func (m *Map) EnlargeHorizon(p PlayerId, idx int) {
	for _, n := range m.g.ExtendedNeighbors(idx) {
		t := m.tiles[n]
		if !t.IsMountain() {
			t.RevealTo(p)
		}
	}
}

// ShrinkHorizon hides idx's non-Mountain extended neighbors from p,
// unless p owns that neighbor itself or still owns one of its extended
// neighbors.
func (m *Map) ShrinkHorizon(p PlayerId, idx int) {
	for _, n := range m.g.ExtendedNeighbors(idx) {
		t := m.tiles[n]
		if t.IsMountain() || !t.IsVisibleBy(p) {
			continue
		}
		if t.Owner != nil && *t.Owner == p {
			continue // p still owns n outright; always stays visible to p
		}
		if !m.OwnsExtendedNeighbor(p, n) {
			t.HideFrom(p)
		}
	}
}

// OwnsExtendedNeighbor reports whether any extended neighbor of idx is
// owned by p.
func (m *Map) OwnsExtendedNeighbor(p PlayerId, idx int) bool {
	for _, n := range m.g.ExtendedNeighbors(idx) {
		t := m.tiles[n]
		if t.Owner != nil && *t.Owner == p {
			return true
		}
	}
	return false
}

// Reinforce adds units on the reinforcement cadence (spec §4.4):
// generals and owned cities always gain a unit; other owned open
// tiles only gain one when full is true.
func (m *Map) Reinforce(full bool) {
	for _, t := range m.tiles {
		if t.IsMountain() {
			continue
		}
		switch {
		case t.IsGeneral():
			t.IncrUnits(1)
		case t.IsCity() && t.Owner != nil:
			t.IncrUnits(1)
		case t.Owner != nil && full:
			t.IncrUnits(1)
		}
	}
}

// String is a compact ASCII rendering, useful for debugging and test
// failure messages.
func (m *Map) String() string {
	s := ""
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			t := m.tiles[m.g.Index(x, y)]
			switch t.Kind {
			case KindMountain:
				s += "#"
			case KindGeneral:
				s += "G"
			case KindCity:
				s += "C"
			default:
				s += "."
			}
		}
		s += "\n"
	}
	return s
}
