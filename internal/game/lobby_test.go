package game

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lucas/territories/internal/game/worldgen"
)

func newTestEndpoint() Endpoint {
	return Endpoint{
		Actions: make(chan Action, 1),
		Updates: make(chan []byte, 8),
		Closed:  make(chan struct{}),
	}
}

func TestLobbyDoesNotPromoteBelowThreshold(t *testing.T) {
	l := NewLobby(2, 50*time.Millisecond, worldgen.DefaultParams(), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	id, promoted := l.Join(ctx, newTestEndpoint())
	if promoted {
		t.Fatal("a single endpoint should not promote a 2-player lobby")
	}
	if id != uuid.Nil {
		t.Fatalf("gameID = %v, want uuid.Nil when not promoted", id)
	}
	if len(l.ListGames()) != 0 {
		t.Fatal("no game should be running yet")
	}
}

func TestLobbyPromotesAtThresholdWithDensePlayerIds(t *testing.T) {
	l := NewLobby(2, 50*time.Millisecond, worldgen.DefaultParams(), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Join(ctx, newTestEndpoint())
	id, promoted := l.Join(ctx, newTestEndpoint())
	if !promoted {
		t.Fatal("the second endpoint should promote the pending game")
	}
	if id == uuid.Nil {
		t.Fatal("promoted game should carry a real ID")
	}

	runner, ok := l.Runner(id)
	if !ok {
		t.Fatal("promoted game should be looked-up-able by ID")
	}
	if len(runner.proxies) != 2 {
		t.Fatalf("len(proxies) = %d, want 2", len(runner.proxies))
	}
	for _, pid := range []PlayerId{0, 1} {
		if _, ok := runner.proxies[pid]; !ok {
			t.Fatalf("expected a dense PlayerId %d among the promoted proxies", pid)
		}
	}

	games := l.ListGames()
	if len(games) != 1 || games[0] != id {
		t.Fatalf("ListGames = %v, want [%v]", games, id)
	}

	l.StopAll(context.Background())
}

func TestLobbyStartsFreshPendingGameAfterPromotion(t *testing.T) {
	l := NewLobby(2, 50*time.Millisecond, worldgen.DefaultParams(), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Join(ctx, newTestEndpoint())
	firstID, _ := l.Join(ctx, newTestEndpoint())

	_, promoted := l.Join(ctx, newTestEndpoint())
	if promoted {
		t.Fatal("a fresh pending game should not promote on its first endpoint")
	}

	secondID, promoted := l.Join(ctx, newTestEndpoint())
	if !promoted {
		t.Fatal("the fresh pending game's second endpoint should promote it")
	}
	if secondID == firstID {
		t.Fatal("the second promoted game must have a distinct ID from the first")
	}

	l.StopAll(context.Background())
}

func TestLobbyCleansUpRunnerOnGameOver(t *testing.T) {
	l := NewLobby(1, 20*time.Millisecond, worldgen.DefaultParams(), testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A single-seat lobby immediately promotes and starts a one-player
	// game, which is over from tick one (UndefeatedCount() <= 1).
	id, promoted := l.Join(ctx, newTestEndpoint())
	if !promoted {
		t.Fatal("a 1-player lobby should promote on its first endpoint")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(l.ListGames()) == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("runner for game %v was never cleaned up after game over", id)
}
