package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lucas/territories/internal/game/worldgen"
)

// Endpoint is everything the Lobby needs from a freshly-accepted
// connection to fold it into a pending game: the channel pair plus a
// transport-closed signal, all supplied by package ws.
type Endpoint struct {
	Actions <-chan Action
	Updates chan<- []byte
	Closed  <-chan struct{}
}

// pendingGame accumulates endpoints until it reaches its target size,
// at which point Lobby promotes it into a running Runner (spec §4.9).
type pendingGame struct {
	endpoints []Endpoint
	size      int
}

func newPendingGame(size int) *pendingGame {
	return &pendingGame{size: size}
}

func (pg *pendingGame) ready() bool { return len(pg.endpoints) == pg.size }

// Lobby accepts new endpoints, buffers them into a single pending game,
// and promotes + spawns a Runner once the pending game reaches its
// target size. It also tracks every running game, the way the
// originating project's Manager tracks every Engine, for operational
// listing (GET /api/games) and graceful shutdown.
type Lobby struct {
	mu      sync.Mutex
	pending *pendingGame

	size       int
	tick       time.Duration
	genParams  worldgen.Params
	seed       int64

	runners map[uuid.UUID]*Runner
	log     *zap.SugaredLogger
}

// NewLobby builds a Lobby with the given pending-game threshold, tick
// cadence, and map-generation parameters.
func NewLobby(size int, tick time.Duration, genParams worldgen.Params, log *zap.SugaredLogger) *Lobby {
	return &Lobby{
		pending:   newPendingGame(size),
		size:      size,
		tick:      tick,
		genParams: genParams,
		runners:   make(map[uuid.UUID]*Runner),
		log:       log,
	}
}

// Join adds a freshly-accepted endpoint to the current pending game. If
// this endpoint fills it, a new Runner is constructed and spawned, and
// this returns its ID.
func (l *Lobby) Join(ctx context.Context, ep Endpoint) (gameID uuid.UUID, promoted bool) {
	l.mu.Lock()

	l.pending.endpoints = append(l.pending.endpoints, ep)
	if !l.pending.ready() {
		l.mu.Unlock()
		return uuid.Nil, false
	}

	promotedPG := l.pending
	l.pending = newPendingGame(l.size)
	l.mu.Unlock()

	id := uuid.New()
	runner := l.promote(id, promotedPG)

	l.mu.Lock()
	l.runners[id] = runner
	l.mu.Unlock()

	runner.OnGameOver(func(id uuid.UUID, winner PlayerId, hasWinner bool) {
		l.mu.Lock()
		delete(l.runners, id)
		l.mu.Unlock()
		if hasWinner {
			l.log.Infow("game finished", "game", id, "winner", winner)
		} else {
			l.log.Infow("game finished with no winner", "game", id)
		}
	})

	runner.Start(ctx)
	return id, true
}

// promote assigns each endpoint a dense PlayerId in the order it was
// accepted (starting at 0), builds the Game, wires a Proxy per
// endpoint, and returns the Runner ready to Start.
func (l *Lobby) promote(id uuid.UUID, pg *pendingGame) *Runner {
	players := make([]PlayerId, len(pg.endpoints))
	proxies := make(map[PlayerId]*Proxy, len(pg.endpoints))

	for i, ep := range pg.endpoints {
		pid := PlayerId(i)
		players[i] = pid
		proxies[pid] = NewProxy(pid, ep.Actions, ep.Updates, ep.Closed)
	}

	g := NewGame(players, l.nextSeed(), l.genParams)
	return NewRunner(id, g, proxies, players, l.tick, l.log)
}

// nextSeed returns a fresh map-generation seed. Using wall-clock time
// here (rather than a fixed constant) is the one legitimate use of
// real randomness-by-time in this package; map connectivity and
// general placement don't need to be reproducible across games, only
// within a single generator run's own test harness (which seeds
// explicitly).
func (l *Lobby) nextSeed() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seed++
	return time.Now().UnixNano() ^ l.seed
}

// ListGames returns the IDs of every currently-running game.
func (l *Lobby) ListGames() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(l.runners))
	for id := range l.runners {
		ids = append(ids, id)
	}
	return ids
}

// Runner looks up a running game's Runner by ID.
func (l *Lobby) Runner(id uuid.UUID) (*Runner, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.runners[id]
	return r, ok
}

// StopAll cancels every running game's tick loop and waits for each to
// exit, bounded by ctx. Waiting fans in through errgroup rather than a
// hand-rolled sync.WaitGroup, so a ctx cancellation during shutdown
// unblocks every still-running waiter at once instead of only the one
// select statement was watching.
func (l *Lobby) StopAll(ctx context.Context) {
	l.mu.Lock()
	runners := make([]*Runner, 0, len(l.runners))
	for _, r := range l.runners {
		runners = append(runners, r)
	}
	l.mu.Unlock()

	for _, r := range runners {
		r.Stop()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error {
			select {
			case <-r.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	_ = g.Wait()
}
