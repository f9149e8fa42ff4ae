// Package worldgen builds a random, connected game board: it sizes the
// grid from the player count, places one general per player with a
// minimum separation, and carves open terrain out of solid mountain
// until every general shares one connected component. It mirrors the
// structure of the originating project's own worldgen subpackage (a
// dedicated generator package alongside the game package), but the
// algorithm itself is grounded on the union-find carve used by the
// original generals-rs map generator rather than the originating
// project's noise-octave biome generator — this board has no biomes,
// only mountain, open, city and general.
package worldgen

import (
	"math/rand"

	"github.com/lucas/territories/internal/game/grid"
)

// Params tunes the generator. The zero value is never used directly;
// callers get sane defaults from DefaultParams and override them from
// config.GameConfig.
type Params struct {
	// MinDistance is the minimum Manhattan separation enforced between
	// any two generals.
	MinDistance int
	// MinGridSize is the floor on both grid dimensions before the
	// per-player and random deltas are added.
	MinGridSize int
	// GridSizeMaxDelta bounds the random per-dimension padding.
	GridSizeMaxDelta int
}

// DefaultParams mirrors the original generals-rs generator's constants.
func DefaultParams() Params {
	return Params{MinDistance: 10, MinGridSize: 17, GridSizeMaxDelta: 6}
}

// TileKind mirrors game.TileKind without importing the game package,
// keeping worldgen a leaf package the way grid is. Generate's caller
// converts these into game.Tile values.
type TileKind int

const (
	Mountain TileKind = iota
	Open
	General
)

// Result is the generated board: a flat row-major tile-kind array plus
// the indices at which generals were placed, in the order they were
// placed (which becomes the player assignment order).
type Result struct {
	Width    int
	Height   int
	Kinds    []TileKind
	Generals []int
}

// Generate produces a connected random board sized for nbGenerals
// players. rng should be seeded by the caller for reproducibility; the
// originating project's own generators follow the same
// rand.New(rand.NewSource(seed)) idiom rather than sharing a package
// level source.
func Generate(nbGenerals int, rng *rand.Rand, p Params) Result {
	width := p.MinGridSize + nbGenerals + rng.Intn(p.GridSizeMaxDelta+1)
	height := p.MinGridSize + nbGenerals + rng.Intn(p.GridSizeMaxDelta+1)

	g := grid.New(width, height)
	kinds := make([]TileKind, g.Len())

	generals := spawnGenerals(g, nbGenerals, rng, kinds, p.MinDistance)
	carve(g, kinds, generals, rng)

	return Result{Width: width, Height: height, Kinds: kinds, Generals: generals}
}

// spawnGenerals randomly places nbGenerals generals such that every
// pair is at least minDistance apart (Manhattan), pruning the
// available-tile pool after each placement.
func spawnGenerals(g grid.Grid, nbGenerals int, rng *rand.Rand, kinds []TileKind, minDistance int) []int {
	available := make([]int, g.Len())
	for i := range available {
		available[i] = i
	}

	generals := make([]int, 0, nbGenerals)
	for len(generals) < nbGenerals {
		if len(available) == 0 {
			// The grid sizing formula guarantees enough room for 2-8
			// generals; this would only trip if Generate were called
			// with an unreasonable player count.
			break
		}
		pick := rng.Intn(len(available))
		idx := available[pick]
		generals = append(generals, idx)
		kinds[idx] = General

		available = removeWithinDistance(g, available, idx, minDistance)
	}
	return generals
}

// removeWithinDistance drops every index within minDistance (Manhattan)
// of newGeneral from the available pool.
func removeWithinDistance(g grid.Grid, available []int, newGeneral, minDistance int) []int {
	kept := available[:0:0]
	for _, idx := range available {
		if g.Manhattan(idx, newGeneral) >= minDistance {
			kept = append(kept, idx)
		}
	}
	return kept
}

// carve repeatedly opens a random tile and unions it with any already-
// open direct neighbor, stopping once every general shares a connected
// component with the first.
func carve(g grid.Grid, kinds []TileKind, generals []int, rng *rand.Rand) {
	uf := grid.NewUnionFind(g.Len())
	order := rng.Perm(g.Len())

	anchor := generals[0]

	for _, idx := range order {
		if kinds[idx] == Open || kinds[idx] == General {
			continue
		}
		kinds[idx] = Open

		for _, n := range g.DirectNeighbors(idx) {
			if kinds[n] == Open || kinds[n] == General {
				if !uf.InSameSet(idx, n) {
					uf.Union(idx, n)
				}
			}
		}

		if allConnected(uf, anchor, generals) {
			return
		}
	}
}

func allConnected(uf *grid.UnionFind, anchor int, generals []int) bool {
	for _, general := range generals[1:] {
		if !uf.InSameSet(anchor, general) {
			return false
		}
	}
	return true
}
