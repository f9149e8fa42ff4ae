// Package grid implements the rectangular index space the game board is
// laid out on: row-major indexing, 4- and 8-neighborhood queries, and
// Manhattan distance. It has no notion of tile contents — that lives in
// the game package, one level up.
package grid

// Direction is one of the four cardinal directions a move can travel.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String renders the lowercase wire form used by the JSON protocol.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDirection parses the lowercase wire form into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	default:
		return 0, false
	}
}

// Grid is a row-major index space of fixed width and height.
type Grid struct {
	width  int
	height int
}

// New returns a Grid of the given dimensions.
func New(width, height int) Grid {
	return Grid{width: width, height: height}
}

func (g Grid) Width() int  { return g.width }
func (g Grid) Height() int { return g.height }
func (g Grid) Len() int    { return g.width * g.height }

// Index returns the row-major index of (column, line).
func (g Grid) Index(column, line int) int {
	return column + line*g.width
}

func (g Grid) coordinates(i int) (column, line int) {
	return i % g.width, i / g.width
}

// IsValidIndex reports whether i falls within the grid.
func (g Grid) IsValidIndex(i int) bool {
	return i >= 0 && i < g.width*g.height
}

// Manhattan returns the Manhattan distance between two indices.
func (g Grid) Manhattan(i1, i2 int) int {
	c1, l1 := g.coordinates(i1)
	c2, l2 := g.coordinates(i2)
	return absInt(c1-c2) + absInt(l1-l2)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// UpLeft, Up, UpRight, Left, Right, DownLeft, Down, DownRight each return
// the neighboring index in that direction, or (-1, false) if it would
// fall off the edge of the grid.

func (g Grid) UpLeft(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == 0 || l == 0 {
		return -1, false
	}
	return g.Index(c-1, l-1), true
}

func (g Grid) Up(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if l == 0 {
		return -1, false
	}
	return g.Index(c, l-1), true
}

func (g Grid) UpRight(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == g.width-1 || l == 0 {
		return -1, false
	}
	return g.Index(c+1, l-1), true
}

func (g Grid) Left(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == 0 {
		return -1, false
	}
	return g.Index(c-1, l), true
}

func (g Grid) Right(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == g.width-1 {
		return -1, false
	}
	return g.Index(c+1, l), true
}

func (g Grid) DownLeft(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == 0 || l == g.height-1 {
		return -1, false
	}
	return g.Index(c-1, l+1), true
}

func (g Grid) Down(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if l == g.height-1 {
		return -1, false
	}
	return g.Index(c, l+1), true
}

func (g Grid) DownRight(i int) (int, bool) {
	if !g.IsValidIndex(i) {
		return -1, false
	}
	c, l := g.coordinates(i)
	if c == g.width-1 || l == g.height-1 {
		return -1, false
	}
	return g.Index(c+1, l+1), true
}

// Neighbor returns the index adjacent to i in the given direction.
func (g Grid) Neighbor(i int, dir Direction) (int, bool) {
	switch dir {
	case Up:
		return g.Up(i)
	case Down:
		return g.Down(i)
	case Left:
		return g.Left(i)
	case Right:
		return g.Right(i)
	default:
		return -1, false
	}
}

// DirectNeighbors returns the up-to-4 orthogonally adjacent indices, in
// the fixed and tested order Up, Left, Right, Down.
func (g Grid) DirectNeighbors(i int) []int {
	candidates := [4]struct {
		idx int
		ok  bool
	}{}
	candidates[0].idx, candidates[0].ok = g.Up(i)
	candidates[1].idx, candidates[1].ok = g.Left(i)
	candidates[2].idx, candidates[2].ok = g.Right(i)
	candidates[3].idx, candidates[3].ok = g.Down(i)

	out := make([]int, 0, 4)
	for _, c := range candidates {
		if c.ok {
			out = append(out, c.idx)
		}
	}
	return out
}

// ExtendedNeighbors returns the up-to-8 surrounding indices, in the fixed
// and tested order UL, U, UR, L, R, DL, D, DR.
func (g Grid) ExtendedNeighbors(i int) []int {
	candidates := [8]struct {
		idx int
		ok  bool
	}{}
	candidates[0].idx, candidates[0].ok = g.UpLeft(i)
	candidates[1].idx, candidates[1].ok = g.Up(i)
	candidates[2].idx, candidates[2].ok = g.UpRight(i)
	candidates[3].idx, candidates[3].ok = g.Left(i)
	candidates[4].idx, candidates[4].ok = g.Right(i)
	candidates[5].idx, candidates[5].ok = g.DownLeft(i)
	candidates[6].idx, candidates[6].ok = g.Down(i)
	candidates[7].idx, candidates[7].ok = g.DownRight(i)

	out := make([]int, 0, 8)
	for _, c := range candidates {
		if c.ok {
			out = append(out, c.idx)
		}
	}
	return out
}
