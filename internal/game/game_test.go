package game

import (
	"testing"

	"github.com/lucas/territories/internal/game/worldgen"
)

func TestNewGameAssignsGeneralsAndVisibility(t *testing.T) {
	g := NewGame([]PlayerId{0, 1}, 42, worldgen.DefaultParams())

	if len(g.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(g.Players))
	}
	for id, p := range g.Players {
		if p.OwnedTiles != 1 {
			t.Fatalf("player %d OwnedTiles = %d, want 1", id, p.OwnedTiles)
		}
		if p.Defeated() {
			t.Fatalf("player %d should not start defeated", id)
		}
	}

	found := 0
	for i := 0; i < g.Map.Len(); i++ {
		tile := g.Map.Tile(i)
		if !tile.IsGeneral() {
			continue
		}
		found++
		if tile.Owner == nil {
			t.Fatalf("general at %d has no owner", i)
		}
		if !tile.IsVisibleBy(*tile.Owner) {
			t.Fatalf("general at %d not visible to its own owner (P2)", i)
		}
	}
	if found != 2 {
		t.Fatalf("found %d generals, want 2", found)
	}
}

func TestTickReinforcementCadence(t *testing.T) {
	g := NewGame([]PlayerId{0}, 7, worldgen.DefaultParams())

	var generalIdx int = -1
	for i := 0; i < g.Map.Len(); i++ {
		if g.Map.Tile(i).IsGeneral() {
			generalIdx = i
			break
		}
	}
	if generalIdx < 0 {
		t.Fatal("no general found")
	}

	startUnits := g.Map.Tile(generalIdx).Units

	g.Tick() // turn 1: odd, no reinforcement
	if g.Map.Tile(generalIdx).Units != startUnits {
		t.Fatalf("turn 1 should not reinforce: got %d want %d", g.Map.Tile(generalIdx).Units, startUnits)
	}

	g.Tick() // turn 2: even, partial reinforcement (general always reinforces)
	if g.Map.Tile(generalIdx).Units != startUnits+1 {
		t.Fatalf("turn 2 should reinforce the general: got %d want %d", g.Map.Tile(generalIdx).Units, startUnits+1)
	}
}

func TestTickFullReinforcementEvery50th(t *testing.T) {
	g := NewGame([]PlayerId{0}, 7, worldgen.DefaultParams())

	var generalIdx int = -1
	for i := 0; i < g.Map.Len(); i++ {
		if g.Map.Tile(i).IsGeneral() {
			generalIdx = i
			break
		}
	}

	// Give the player a plain open tile to distinguish partial vs full.
	var openIdx int = -1
	for i := 0; i < g.Map.Len(); i++ {
		tile := g.Map.Tile(i)
		if tile.IsOpen() && tile.Owner == nil {
			openIdx = i
			break
		}
	}
	if openIdx < 0 {
		t.Fatal("no free open tile available to set up the test")
	}
	p := PlayerId(0)
	g.Map.Tile(openIdx).SetOwner(&p)
	g.Map.Tile(openIdx).Units = 5

	for g.Turn < 49 {
		g.Tick()
	}
	if g.Map.Tile(openIdx).Units != 5 {
		t.Fatalf("open tile should not reinforce before turn 50: got %d", g.Map.Tile(openIdx).Units)
	}

	g.Tick() // turn 50: full reinforcement
	if g.Turn != 50 {
		t.Fatalf("turn = %d, want 50", g.Turn)
	}
	if g.Map.Tile(openIdx).Units != 6 {
		t.Fatalf("open tile should reinforce on turn 50: got %d, want 6", g.Map.Tile(openIdx).Units)
	}
	_ = generalIdx
}

func TestResignMarksDefeatedAndStopsMoves(t *testing.T) {
	g := NewGame([]PlayerId{0, 1}, 3, worldgen.DefaultParams())

	g.Resign(0)
	p := g.Players[0]
	if !p.Defeated() {
		t.Fatal("player 0 should be defeated after resigning")
	}
	if p.CanMove() {
		t.Fatal("a defeated player should not be able to move")
	}

	// Resigning twice must not move DefeatedAt.
	firstTurn := *p.DefeatedAt
	g.Tick()
	g.Resign(0)
	if *p.DefeatedAt != firstTurn {
		t.Fatal("re-resigning an already-defeated player should be a no-op")
	}
}

func TestApplyMoveIgnoredForUnknownOrDefeatedPlayer(t *testing.T) {
	g := NewGame([]PlayerId{0, 1}, 9, worldgen.DefaultParams())
	g.Resign(1)

	// Should not panic and should not affect the board.
	g.ApplyMove(Move{Player: 1, From: 0, Direction: DirUp})
	g.ApplyMove(Move{Player: 99, From: 0, Direction: DirUp})
}

func TestRenderUpdateMarksZeroTilePlayerDefeated(t *testing.T) {
	g := NewGame([]PlayerId{0, 1}, 11, worldgen.DefaultParams())

	// Strip player 1's ownership from every tile directly, simulating
	// total territorial loss without going through a capture sequence.
	for i := 0; i < g.Map.Len(); i++ {
		tile := g.Map.Tile(i)
		if tile.Owner != nil && *tile.Owner == 1 {
			tile.Owner = nil
		}
	}

	g.Tick()
	update := g.RenderUpdate()

	if !g.Players[1].Defeated() {
		t.Fatal("player 1 should be marked defeated once it owns zero tiles")
	}
	if g.Players[1].OwnedTiles != 0 {
		t.Fatalf("player 1 OwnedTiles = %d, want 0", g.Players[1].OwnedTiles)
	}
	if update.Players[1].OwnedTiles != 0 {
		t.Fatalf("snapshot OwnedTiles = %d, want 0", update.Players[1].OwnedTiles)
	}
}

func TestRenderUpdateCleanSecondCallIsEmpty(t *testing.T) {
	// P6: once every player has consumed a render and the runner has
	// acknowledged it via ClearDirty, a second render with no
	// intervening state change must carry no tiles at all.
	g := NewGame([]PlayerId{0, 1}, 5, worldgen.DefaultParams())

	first := g.RenderUpdate()
	if len(first.Tiles) == 0 {
		t.Fatal("first render (initial turn) should include every tile")
	}
	g.ClearDirty()
	// Leave turn 0 (which always renders every tile); turn 1 is odd, so
	// no reinforcement changes any tile.
	g.Tick()

	second := g.RenderUpdate()
	if len(second.Tiles) != 0 {
		t.Fatalf("second render with no state change should be empty, got %d entries", len(second.Tiles))
	}
}

func TestFilteredSurvivesAcrossMultiplePlayersBeforeClear(t *testing.T) {
	// Regression test: Filtered must read per-player dirty state that is
	// still intact for every player in the render loop, not just the
	// first one — dirty bits are only cleared once, after the whole
	// per-player loop finishes (see Game.ClearDirty).
	g := NewGame([]PlayerId{0, 1}, 5, worldgen.DefaultParams())
	// Move past turn 0, where Filtered includes every tile regardless of
	// dirty state; the tiles revealed at game setup are still dirty.
	g.Tick()

	update := g.RenderUpdate()
	first := update.Filtered(0)
	second := update.Filtered(1)
	if len(first.Tiles) == 0 {
		t.Fatal("player 0's filtered view should not be empty")
	}
	if len(second.Tiles) == 0 {
		t.Fatal("player 1's filtered view should not be empty")
	}
}

func TestUndefeatedCountAndWinner(t *testing.T) {
	g := NewGame([]PlayerId{0, 1, 2}, 17, worldgen.DefaultParams())

	if g.UndefeatedCount() != 3 {
		t.Fatalf("UndefeatedCount = %d, want 3", g.UndefeatedCount())
	}
	if _, ok := g.Winner(); ok {
		t.Fatal("no winner should exist with 3 undefeated players")
	}

	g.Resign(0)
	g.Resign(1)
	if g.UndefeatedCount() != 1 {
		t.Fatalf("UndefeatedCount = %d, want 1", g.UndefeatedCount())
	}
	winner, ok := g.Winner()
	if !ok || winner != 2 {
		t.Fatalf("winner = (%d, %v), want (2, true)", winner, ok)
	}
}
