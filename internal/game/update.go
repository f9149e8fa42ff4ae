package game

import "encoding/json"

// marshalPair encodes (a, b) as the two-element JSON array [a, b].
func marshalPair(a, b interface{}) ([]byte, error) {
	return json.Marshal([2]interface{}{a, b})
}

// PlayerSnapshot is the wire form of a Player (spec §6.3): owned_tiles
// is omitted when zero, defeated_at when nil.
type PlayerSnapshot struct {
	ID         PlayerId `json:"id"`
	OwnedTiles uint32   `json:"owned_tiles,omitempty"`
	DefeatedAt *uint64  `json:"defeated_at,omitempty"`
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{ID: p.ID, OwnedTiles: p.OwnedTiles, DefeatedAt: p.DefeatedAt}
}

// TileSnapshot is the wire form of a Tile: owner omitted when nil,
// units omitted when zero, kind omitted when Open. visible_by and
// dirty_for are never serialized — they are server-internal.
type TileSnapshot struct {
	Owner *PlayerId `json:"owner,omitempty"`
	Units uint16    `json:"units,omitempty"`
	Kind  *string   `json:"kind,omitempty"`
}

func (t *Tile) Snapshot() TileSnapshot {
	s := TileSnapshot{Owner: t.Owner, Units: t.Units}
	if t.Kind != KindOpen {
		k := t.Kind.String()
		s.Kind = &k
	}
	return s
}

// TileEntry pairs a tile's board index with its snapshot; it marshals
// to the wire as a two-element JSON array, matching the originating
// protocol's compact [index, tile] encoding.
type TileEntry struct {
	Index int
	Tile  TileSnapshot
}

// MarshalJSON encodes a TileEntry as [index, tile].
func (e TileEntry) MarshalJSON() ([]byte, error) {
	return marshalPair(e.Index, e.Tile)
}

// Update is the full, unfiltered render of one tick: every player's
// standing plus the set of tiles that changed (or, on turn 0, every
// tile). Filtered produces the per-player fog-obscured view that
// actually goes out over the wire.
type Update struct {
	Turn    uint64                      `json:"turn"`
	Width   int                         `json:"width"`
	Height  int                         `json:"height"`
	Players map[PlayerId]PlayerSnapshot `json:"players"`
	Tiles   []TileEntry                 `json:"tiles"`

	isInitial     bool
	visibleByTile []*Tile
}

// Filtered returns the per-player view of this update per spec §6.3:
// only dirty-for-this-player (or first-turn) tiles are included, and
// any included tile the player cannot currently see has its contents
// obscured — zero units, General shown as Open with no owner, City
// shown as Mountain.
func (u Update) Filtered(p PlayerId) Update {
	out := Update{
		Turn:    u.Turn,
		Width:   u.Width,
		Height:  u.Height,
		Players: u.Players,
		Tiles:   make([]TileEntry, 0, len(u.Tiles)),
	}

	for _, entry := range u.Tiles {
		t := u.visibleByTile[entry.Index]
		if !u.isInitial && !t.IsDirtyFor(p) {
			continue
		}
		snap := entry.Tile
		if !t.IsVisibleBy(p) {
			snap.Units = 0
			if t.IsGeneral() {
				// Shown as a plain Open tile with no owner.
				snap.Kind = nil
				snap.Owner = nil
			}
			if t.IsCity() {
				mountain := KindMountain.String()
				snap.Kind = &mountain
			}
		}
		out.Tiles = append(out.Tiles, TileEntry{Index: entry.Index, Tile: snap})
	}
	return out
}
