package game

import (
	"math/rand"

	"github.com/lucas/territories/internal/game/worldgen"
)

// Game holds one running match: the board, every player's standing, and
// the turn counter. It exposes the operations spec.md §4.6 names (New,
// Resign, ApplyMove, Tick, RenderUpdate) plus ClearDirty, RenderFull,
// UndefeatedCount and Winner for the runner and the dev routes.
type Game struct {
	Map     *Map
	Players map[PlayerId]*Player
	Turn    uint64
}

// NewGame generates a board sized for len(players) and assigns each
// player their general in the order the generator returned them.
func NewGame(players []PlayerId, seed int64, params worldgen.Params) *Game {
	rng := rand.New(rand.NewSource(seed))
	result := worldgen.Generate(len(players), rng, params)

	m := NewMap(result.Width, result.Height)
	for i, kind := range result.Kinds {
		switch kind {
		case worldgen.Open:
			m.tiles[i].MakeOpen()
		case worldgen.General:
			m.tiles[i].MakeGeneral()
		}
	}

	g := &Game{
		Map:     m,
		Players: make(map[PlayerId]*Player, len(players)),
		Turn:    0,
	}

	for i, p := range players {
		g.Players[p] = NewPlayer(p)
		g.Players[p].OwnedTiles = 1

		generalIdx := result.Generals[i]
		pid := p
		m.tiles[generalIdx].SetOwner(&pid)
		m.EnlargeHorizon(p, generalIdx)
	}

	return g
}

// Resign marks a player defeated at the current turn, if not already.
// Their tiles are not transferred; they stay on the board and keep being
// reinforced on the usual cadence until some other player captures them.
func (g *Game) Resign(p PlayerId) {
	player, ok := g.Players[p]
	if !ok || player.Defeated() {
		return
	}
	turn := g.Turn
	player.DefeatedAt = &turn
}

// ApplyMove validates the mover and, if legal, applies the move to the
// map. Invalid moves (including moves from an unknown or defeated
// player) are silently dropped — per spec §4.6/§7, this layer never
// propagates a move error.
func (g *Game) ApplyMove(mv Move) {
	player, ok := g.Players[mv.Player]
	if !ok || !player.CanMove() {
		return
	}
	// Swallow the error: an InvalidMove here is a stale or malicious
	// move against the current board, not a bug, and never needs to be
	// reported back to the client per spec §7.
	_ = g.Map.ApplyMove(mv)
}

// Tick advances the turn counter and applies reinforcement on the
// scheduled cadence: full reinforcement every 50th turn, partial
// (generals and cities only) every even turn otherwise.
func (g *Game) Tick() {
	g.Turn++
	switch {
	case g.Turn%50 == 0:
		g.Map.Reinforce(true)
	case g.Turn%2 == 0:
		g.Map.Reinforce(false)
	}
}

// RenderUpdate recounts every player's owned tiles, collects the set of
// dirty (or, on the first turn, every) tiles, and marks any undefeated
// player left with zero tiles as defeated — in that order, per the
// resolved "recount before marking defeated" design note in spec §9.
// Dirty bits are NOT cleared here: Filtered reads per-player dirty
// state for each proxy in turn, so clearing has to wait until every
// player has been rendered this tick — see Game.ClearDirty, which the
// runner calls once after that loop.
func (g *Game) RenderUpdate() Update {
	isFirstTurn := g.Turn == 0

	for _, p := range g.Players {
		p.OwnedTiles = 0
	}

	entries := make([]TileEntry, 0)
	for idx, t := range g.Map.tiles {
		if t.Owner != nil {
			if p, ok := g.Players[*t.Owner]; ok {
				p.OwnedTiles++
			}
		}
		if isFirstTurn || t.IsDirty() {
			entries = append(entries, TileEntry{Index: idx, Tile: t.Snapshot()})
		}
	}

	for _, p := range g.Players {
		if !p.Defeated() && p.OwnedTiles == 0 {
			turn := g.Turn
			p.DefeatedAt = &turn
		}
	}

	players := make(map[PlayerId]PlayerSnapshot, len(g.Players))
	for id, p := range g.Players {
		players[id] = p.Snapshot()
	}

	return Update{
		Turn:          g.Turn,
		Width:         g.Map.Width(),
		Height:        g.Map.Height(),
		Players:       players,
		Tiles:         entries,
		isInitial:     isFirstTurn,
		visibleByTile: g.Map.tiles,
	}
}

// RenderFull returns every tile on the board, bypassing the dirty-
// tracking RenderUpdate relies on for the normal per-tick broadcast.
// Used only by the unfiltered dev state dump — never fed into
// Filtered, so fog of war is irrelevant to its output.
func (g *Game) RenderFull() Update {
	entries := make([]TileEntry, 0, len(g.Map.tiles))
	for idx, t := range g.Map.tiles {
		entries = append(entries, TileEntry{Index: idx, Tile: t.Snapshot()})
	}

	players := make(map[PlayerId]PlayerSnapshot, len(g.Players))
	for id, p := range g.Players {
		players[id] = p.Snapshot()
	}

	return Update{
		Turn:    g.Turn,
		Width:   g.Map.Width(),
		Height:  g.Map.Height(),
		Players: players,
		Tiles:   entries,
	}
}

// ClearDirty acknowledges every tile's current dirty state. The runner
// calls this once per tick, after every player's Filtered view of the
// latest RenderUpdate has been sent — never before, or a later player
// in iteration order would see an empty diff for tiles only the
// earlier players actually needed to see.
func (g *Game) ClearDirty() {
	for _, t := range g.Map.tiles {
		t.SetClean()
	}
}

// UndefeatedCount returns how many players have not yet been marked
// defeated — used by the runner to decide when a game is over.
func (g *Game) UndefeatedCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.Defeated() {
			n++
		}
	}
	return n
}

// Winner returns the sole undefeated player, if exactly one remains.
func (g *Game) Winner() (PlayerId, bool) {
	var winner PlayerId
	count := 0
	for id, p := range g.Players {
		if !p.Defeated() {
			winner = id
			count++
		}
	}
	if count == 1 {
		return winner, true
	}
	return 0, false
}
