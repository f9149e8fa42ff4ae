package game

// PlayerId is a dense integer assigned to a player at lobby promotion:
// 0, 1, 2, ... in the order their connections were accepted.
type PlayerId int

// TileKind is the terrain/role of a single board cell.
type TileKind int

const (
	KindMountain TileKind = iota
	KindOpen
	KindCity
	KindGeneral
)

func (k TileKind) String() string {
	switch k {
	case KindMountain:
		return "mountain"
	case KindOpen:
		return "open"
	case KindCity:
		return "city"
	case KindGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// MoveOutcome describes what happened to the destination tile of an attack.
type MoveOutcome int

const (
	// StatuQuo: no tile changed hands.
	StatuQuo MoveOutcome = iota
	// TileCaptured: an open or city tile changed hands. DefeatedPlayer is
	// set when the tile had a previous owner.
	TileCaptured
	// GeneralCaptured: the destination was a general; DefeatedPlayer is
	// always set.
	GeneralCaptured
)

// MoveResult is the outcome of a single Tile.Attack call.
type MoveResult struct {
	Outcome        MoveOutcome
	DefeatedPlayer PlayerId
	HasDefeated    bool
}

// InvalidMove is the error taxonomy for a rejected attack, matching
// spec §7 exactly.
type InvalidMove string

const (
	ErrFromInvalidTile    InvalidMove = "from tile is out of bounds or a mountain"
	ErrToInvalidTile      InvalidMove = "to tile is out of bounds or a mountain"
	ErrNotEnoughUnits     InvalidMove = "source tile does not have enough units"
	ErrSourceTileNotOwned InvalidMove = "source tile is not owned by the mover"
)

func (e InvalidMove) Error() string { return string(e) }

// Tile is one cell of the board. Fog-of-war bookkeeping (VisibleBy,
// DirtyFor) lives on the tile itself, exactly as in the originating
// Rust model, because every mutation needs to know who was watching
// before the change to mark them dirty afterward.
type Tile struct {
	Kind      TileKind
	Owner     *PlayerId
	Units     uint16
	VisibleBy map[PlayerId]struct{}
	DirtyFor  map[PlayerId]struct{}
}

// NewTile returns a fresh Mountain tile, unowned, with no units — the
// zero state every generated board starts from.
func NewTile() *Tile {
	return &Tile{
		Kind:      KindMountain,
		VisibleBy: make(map[PlayerId]struct{}),
		DirtyFor:  make(map[PlayerId]struct{}),
	}
}

func (t *Tile) IsMountain() bool { return t.Kind == KindMountain }
func (t *Tile) IsOpen() bool     { return t.Kind == KindOpen }
func (t *Tile) IsGeneral() bool  { return t.Kind == KindGeneral }
func (t *Tile) IsCity() bool     { return t.Kind == KindCity }

func (t *Tile) IsVisibleBy(p PlayerId) bool {
	_, ok := t.VisibleBy[p]
	return ok
}

func (t *Tile) IsDirtyFor(p PlayerId) bool {
	_, ok := t.DirtyFor[p]
	return ok
}

func (t *Tile) IsDirty() bool { return len(t.DirtyFor) > 0 }

// SetClean empties the dirty-for set, acknowledging that every current
// member has already been sent this tile's latest state.
func (t *Tile) SetClean() {
	for p := range t.DirtyFor {
		delete(t.DirtyFor, p)
	}
}

// setDirty marks every player currently watching this tile as owed a
// change notification — I5.
func (t *Tile) setDirty() {
	for p := range t.VisibleBy {
		t.DirtyFor[p] = struct{}{}
	}
}

// HideFrom removes p from the visible set. A no-op if p was not visible.
func (t *Tile) HideFrom(p PlayerId) {
	if _, ok := t.VisibleBy[p]; ok {
		delete(t.VisibleBy, p)
		t.DirtyFor[p] = struct{}{}
	}
}

// RevealTo adds p to the visible set and unconditionally marks it dirty,
// even if p could already see the tile — this asymmetry with HideFrom
// matches the original implementation exactly.
func (t *Tile) RevealTo(p PlayerId) {
	t.VisibleBy[p] = struct{}{}
	t.DirtyFor[p] = struct{}{}
}

// SetOwner assigns (or clears, with nil) the tile's owner. Mountains
// reject all mutation (I6).
func (t *Tile) SetOwner(p *PlayerId) {
	if t.IsMountain() {
		return
	}
	t.setDirty()
	if t.Owner != nil {
		t.DirtyFor[*t.Owner] = struct{}{}
	}
	t.Owner = p
	if t.Owner != nil {
		t.RevealTo(*t.Owner)
	}
}

// SetUnits assigns the unit count. Mountain-guarded.
func (t *Tile) SetUnits(units uint16) {
	if t.IsMountain() {
		return
	}
	t.Units = units
	t.setDirty()
}

// IncrUnits adds to the unit count. Mountain-guarded.
func (t *Tile) IncrUnits(units uint16) {
	if t.IsMountain() {
		return
	}
	t.Units += units
	t.setDirty()
}

func (t *Tile) MakeOpen() {
	t.Kind = KindOpen
	t.setDirty()
}

func (t *Tile) MakeGeneral() {
	t.Kind = KindGeneral
	t.setDirty()
}

func (t *Tile) MakeMountain() {
	t.Kind = KindMountain
	t.setDirty()
}

func (t *Tile) makeCity() {
	t.Kind = KindCity
	t.setDirty()
}

// Attack performs a move from this tile (the source) onto dst. See
// spec §4.3 for the full precondition/outcome table.
func (t *Tile) Attack(dst *Tile) (MoveResult, error) {
	if t.IsMountain() {
		return MoveResult{}, ErrFromInvalidTile
	}
	if dst.IsMountain() {
		return MoveResult{}, ErrToInvalidTile
	}
	if t.Units < 2 {
		return MoveResult{}, ErrNotEnoughUnits
	}
	if t.Owner == nil {
		return MoveResult{}, ErrSourceTileNotOwned
	}
	attacker := *t.Owner
	A := t.Units - 1

	var result MoveResult

	switch {
	case dst.Owner != nil && *dst.Owner == attacker:
		// Same owner: reinforce, no capture.
		dst.Units += A
		result = MoveResult{Outcome: StatuQuo}

	case dst.Owner != nil:
		// Different owner.
		defender := *dst.Owner
		if dst.Units >= A {
			dst.Units -= A
			result = MoveResult{Outcome: StatuQuo}
		} else {
			dst.Units = A - dst.Units
			dst.Owner = &attacker
			if dst.Kind == KindGeneral {
				dst.makeCity()
				result = MoveResult{Outcome: GeneralCaptured, DefeatedPlayer: defender, HasDefeated: true}
			} else {
				result = MoveResult{Outcome: TileCaptured, DefeatedPlayer: defender, HasDefeated: true}
			}
		}

	default:
		// Unowned destination.
		if dst.Units >= A {
			dst.Units -= A
			result = MoveResult{Outcome: StatuQuo}
		} else {
			dst.Units = A - dst.Units
			dst.Owner = &attacker
			result = MoveResult{Outcome: TileCaptured}
		}
	}

	t.Units = 1
	t.setDirty()
	dst.setDirty()
	return result, nil
}
