package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner owns one Game and the connection proxies for every player in
// it, and drives the fixed wall-clock tick loop that is the hard part
// of this whole system (spec §4.8, component C7).
type Runner struct {
	ID      uuid.UUID
	game    *Game
	proxies map[PlayerId]*Proxy
	order   []PlayerId // stable endpoint-iteration order for this process run

	tickInterval time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
	log          *zap.SugaredLogger

	forceTick chan chan struct{}
	debugReq  chan chan Update

	onGameOver func(id uuid.UUID, winner PlayerId, hasWinner bool)
}

// NewRunner builds a Runner for an already-constructed Game and the
// proxies that were promoted alongside it, in promotion order.
func NewRunner(id uuid.UUID, g *Game, proxies map[PlayerId]*Proxy, order []PlayerId, tickInterval time.Duration, log *zap.SugaredLogger) *Runner {
	return &Runner{
		ID:           id,
		game:         g,
		proxies:      proxies,
		order:        order,
		tickInterval: tickInterval,
		done:         make(chan struct{}),
		log:          log,
		forceTick:    make(chan chan struct{}),
		debugReq:     make(chan chan Update),
	}
}

// Tick returns the current turn counter, for operational listing.
func (r *Runner) Tick() uint64 { return r.game.Turn }

// PlayerCount returns how many players were promoted into this game.
func (r *Runner) PlayerCount() int { return len(r.order) }

// ForceTick requests an out-of-band tick, bypassing the ticker. It
// blocks until the run loop has actually applied it — the single-
// writer rule on Game/Map means this must happen on the run loop's own
// goroutine, not the calling HTTP handler's.
func (r *Runner) ForceTick(ctx context.Context) {
	ack := make(chan struct{})
	select {
	case r.forceTick <- ack:
		<-ack
	case <-ctx.Done():
	case <-r.done:
	}
}

// DebugState returns a full, unfiltered snapshot of the current board,
// computed on the run loop goroutine for the same single-writer reason
// as ForceTick.
func (r *Runner) DebugState(ctx context.Context) (Update, bool) {
	resp := make(chan Update)
	select {
	case r.debugReq <- resp:
	case <-ctx.Done():
		return Update{}, false
	case <-r.done:
		return Update{}, false
	}
	select {
	case u := <-resp:
		return u, true
	case <-ctx.Done():
		return Update{}, false
	}
}

// OnGameOver registers a callback fired once the runner stops itself
// because at most one player remains undefeated.
func (r *Runner) OnGameOver(fn func(id uuid.UUID, winner PlayerId, hasWinner bool)) {
	r.onGameOver = fn
}

// Start spawns the tick loop goroutine.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.run(ctx)
}

// Stop cancels the tick loop. Safe to call more than once.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Done is closed once the runner's loop has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }

func (r *Runner) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	// Send the initial (turn 0) snapshot before waiting for the first
	// tick, so clients render something the instant they connect.
	r.renderAndSend()

	for {
		r.flushOutbound()

		select {
		case <-ctx.Done():
			return

		case resp := <-r.debugReq:
			resp <- r.game.RenderFull()

		case ack := <-r.forceTick:
			r.advance()
			close(ack)
			if r.gameOver() {
				return
			}

		case <-ticker.C:
			r.advance()
			if r.gameOver() {
				return
			}
		}
	}
}

// advance runs one tick's worth of state transition: drain actions,
// advance the turn counter, apply one queued move per endpoint, then
// render and flush. Shared by the ticker-driven path and ForceTick.
func (r *Runner) advance() {
	r.drainActions()
	r.game.Tick()
	r.applyQueuedMoves()
	r.renderAndSend()
	r.flushOutbound()
}

// gameOver reports whether at most one player remains undefeated,
// firing the onGameOver callback exactly once if so.
func (r *Runner) gameOver() bool {
	if r.game.UndefeatedCount() > 1 {
		return false
	}
	winner, hasWinner := r.game.Winner()
	if r.onGameOver != nil {
		r.onGameOver(r.ID, winner, hasWinner)
	}
	return true
}

// flushOutbound gives every non-resigned proxy a chance to drain its
// outbound buffer into the transport; here that cooperative step is
// implicit (ws.Client.writePump drains independently), so this only
// needs to detect already-closed sinks and force resignation.
func (r *Runner) flushOutbound() {
	for _, p := range r.order {
		proxy := r.proxies[p]
		if proxy.Resigned {
			continue
		}
		if proxy.IsTransportClosed() {
			r.forceResign(proxy)
		}
	}
}

func (r *Runner) drainActions() {
	for _, p := range r.order {
		proxy := r.proxies[p]
		if proxy.Resigned {
			continue
		}
		proxy.PollActions()
		if proxy.Resigned {
			r.game.Resign(p)
		}
	}
}

func (r *Runner) applyQueuedMoves() {
	for _, p := range r.order {
		proxy := r.proxies[p]
		if proxy.Resigned {
			continue
		}
		if mv, ok := proxy.GetMove(); ok {
			r.game.ApplyMove(mv)
		}
	}
}

func (r *Runner) renderAndSend() {
	update := r.game.RenderUpdate()
	for _, p := range r.order {
		proxy := r.proxies[p]
		if proxy.Resigned {
			continue
		}
		data, err := json.Marshal(update.Filtered(p))
		if err != nil {
			r.log.Errorw("failed to marshal update", "game", r.ID, "player", p, "error", err)
			continue
		}
		if !proxy.Offer(data) {
			r.forceResign(proxy)
		}
	}
	// Every proxy has now seen this tick's diff; safe to clear dirty bits.
	r.game.ClearDirty()
}

func (r *Runner) forceResign(p *Proxy) {
	p.Resigned = true
	r.game.Resign(p.Player)
	r.log.Infow("player forced to resign", "game", r.ID, "player", p.Player)
}
