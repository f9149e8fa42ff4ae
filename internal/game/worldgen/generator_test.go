package worldgen

import (
	"math/rand"
	"testing"

	"github.com/lucas/territories/internal/game/grid"
)

func TestGenerateDimensions(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(1))
	res := Generate(2, rng, p)
	if res.Width < p.MinGridSize+2 || res.Width > p.MinGridSize+2+p.GridSizeMaxDelta {
		t.Fatalf("width %d out of expected range", res.Width)
	}
	if res.Height < p.MinGridSize+2 || res.Height > p.MinGridSize+2+p.GridSizeMaxDelta {
		t.Fatalf("height %d out of expected range", res.Height)
	}
}

func TestGenerateGeneralCount(t *testing.T) {
	p := DefaultParams()
	for _, n := range []int{2, 3, 4, 8} {
		rng := rand.New(rand.NewSource(int64(n)))
		res := Generate(n, rng, p)
		if len(res.Generals) != n {
			t.Fatalf("nbGenerals=%d: got %d generals", n, len(res.Generals))
		}
	}
}

// TestGeneralSeparation is property P8: pairwise general distances must
// be at least MinDistance (Manhattan).
func TestGeneralSeparation(t *testing.T) {
	p := DefaultParams()
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		res := Generate(4, rng, p)
		g := grid.New(res.Width, res.Height)
		for i := 0; i < len(res.Generals); i++ {
			for j := i + 1; j < len(res.Generals); j++ {
				d := g.Manhattan(res.Generals[i], res.Generals[j])
				if d < p.MinDistance {
					t.Fatalf("seed %d: generals %d and %d are %d apart, want >= %d", seed, i, j, d, p.MinDistance)
				}
			}
		}
	}
}

// TestGeneralsConnected is property P7: every general must be reachable
// from the first via 4-connectivity over non-Mountain tiles.
func TestGeneralsConnected(t *testing.T) {
	p := DefaultParams()
	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed * 7919))
		res := Generate(3, rng, p)
		g := grid.New(res.Width, res.Height)

		visited := make([]bool, len(res.Kinds))
		queue := []int{res.Generals[0]}
		visited[res.Generals[0]] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range g.DirectNeighbors(cur) {
				if res.Kinds[n] != Mountain && !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}

		for _, general := range res.Generals {
			if !visited[general] {
				t.Fatalf("seed %d: general at %d is not reachable from the first general", seed, general)
			}
		}
	}
}

// TestCustomParamsHonored checks that non-default grid-size parameters
// actually drive the board width, not just the defaults.
func TestCustomParamsHonored(t *testing.T) {
	p := Params{MinDistance: 3, MinGridSize: 12, GridSizeMaxDelta: 2}
	rng := rand.New(rand.NewSource(99))
	res := Generate(4, rng, p)
	if res.Width < p.MinGridSize+4 || res.Width > p.MinGridSize+4+p.GridSizeMaxDelta {
		t.Fatalf("width %d out of expected range for custom params", res.Width)
	}
}
