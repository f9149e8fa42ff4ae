package game

// Proxy is the runner-side half of a connection endpoint (spec §4.7,
// component C6). The I/O side lives in package ws; Proxy only knows
// about channels of already-parsed Actions and already-rendered wire
// bytes, never about WebSockets.
type Proxy struct {
	Player PlayerId

	actions <-chan Action
	Updates chan<- []byte
	// Closed is closed by the connection's I/O side the moment its
	// transport dies, so the runner's flush step can notice a dead
	// sink without attempting (and panicking on) a send.
	Closed <-chan struct{}

	PendingMoves []Move
	Resigned     bool
}

// NewProxy wires a Proxy to the channel pair a connection endpoint
// exposes: actions flowing in, rendered update frames flowing out, and
// a closed signal for transport teardown.
func NewProxy(player PlayerId, actions <-chan Action, updates chan<- []byte, closed <-chan struct{}) *Proxy {
	return &Proxy{Player: player, actions: actions, Updates: updates, Closed: closed}
}

// IsTransportClosed reports, without blocking, whether the underlying
// transport has torn down.
func (p *Proxy) IsTransportClosed() bool {
	select {
	case <-p.Closed:
		return true
	default:
		return false
	}
}

// PollActions drains every action currently buffered on the inbound
// channel, non-blockingly. Move actions are appended (stamped with this
// proxy's player id); CancelMoves clears the queue and keeps draining;
// Resign latches Resigned, clears the queue, and stops draining
// immediately — matching the original connection's poll_actions, where
// only Resign (not CancelMoves) ends the loop early. A closed channel
// is treated the same as an explicit Resign.
func (p *Proxy) PollActions() {
	for {
		select {
		case a, ok := <-p.actions:
			if !ok {
				p.resign()
				return
			}
			switch a.Kind {
			case ActionMove:
				mv := a.Move
				mv.Player = p.Player
				p.PendingMoves = append(p.PendingMoves, mv)
			case ActionCancelMoves:
				p.PendingMoves = p.PendingMoves[:0]
			case ActionResign:
				p.resign()
				return
			}
		default:
			return
		}
	}
}

func (p *Proxy) resign() {
	p.Resigned = true
	p.PendingMoves = p.PendingMoves[:0]
}

// GetMove pops at most one queued move — the runner applies no more
// than one Move per endpoint per tick (spec §4.7).
func (p *Proxy) GetMove() (Move, bool) {
	if len(p.PendingMoves) == 0 {
		return Move{}, false
	}
	mv := p.PendingMoves[0]
	p.PendingMoves = p.PendingMoves[1:]
	return mv, true
}

// Offer non-blockingly pushes a rendered update frame to the outbound
// sink. It reports false if the sink is full or closed — per spec
// §4.7/§4.8, that is treated by the runner as forced resignation.
func (p *Proxy) Offer(data []byte) (ok bool) {
	defer func() {
		// If Updates has been closed, the send panics; this converts
		// that into the same "offer failed" signal as a full buffer.
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case p.Updates <- data:
		return true
	default:
		return false
	}
}
