package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lucas/territories/internal/game"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from
	// the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to the peer at this cadence; must be less
	// than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frame size.
	maxMessageSize = 4096

	// actionBuffer and updateBuffer size the channel pair handed to the
	// runner; a burst of client actions or a tick's worth of unread
	// updates shouldn't immediately trip backpressure-as-resignation.
	actionBuffer = 8
	updateBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is the I/O side of a connection endpoint (spec component C6):
// it owns the websocket, and pumps bytes in both directions between it
// and the channel pair game.Proxy consumes on the runner side.
type Client struct {
	ID   uuid.UUID
	conn *websocket.Conn
	hub  *Hub
	log  *zap.SugaredLogger

	actions chan game.Action
	updates chan []byte
	closed  chan struct{}
}

// ServeWS upgrades the request to a WebSocket, wires a fresh Client to
// a fresh game.Endpoint, registers it with the hub, hands the endpoint
// to the lobby, and starts the read/write pumps. There is no separate
// join step: joining the current pending game happens immediately on
// a successful upgrade.
func ServeWS(hub *Hub, lobby *game.Lobby, log *zap.SugaredLogger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &Client{
		ID:      uuid.New(),
		conn:    conn,
		hub:     hub,
		log:     log,
		actions: make(chan game.Action, actionBuffer),
		updates: make(chan []byte, updateBuffer),
		closed:  make(chan struct{}),
	}

	hub.Register(c)

	ep := game.Endpoint{
		Actions: c.actions,
		Updates: c.updates,
		Closed:  c.closed,
	}
	// The request context is cancelled as soon as this handler returns,
	// so it must not bound the lifetime of a game this join may start.
	gameID, promoted := lobby.Join(context.Background(), ep)
	if promoted {
		log.Infow("game started", "game", gameID, "client", c.ID)
	}

	go c.writePump()
	go c.readPump()
}

// readPump reads frames off the wire, parses them into game.Actions,
// and offers them non-blockingly onto the outbound-to-runner channel.
// A full channel drops the action (logged at debug level); the runner
// never sees it, so a client sending faster than the runner drains
// loses the excess.
func (c *Client) readPump() {
	defer func() {
		close(c.closed)
		close(c.actions)
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warnw("websocket read error", "client", c.ID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			// Binary frames are logged and dropped, never applied.
			c.log.Debugw("dropping non-text frame", "client", c.ID, "type", msgType)
			continue
		}

		action, err := game.ParseAction(data)
		if err != nil {
			c.log.Debugw("dropping malformed action", "client", c.ID, "error", err)
			continue
		}

		select {
		case c.actions <- action:
		default:
			c.log.Debugw("action channel full, dropping action", "client", c.ID)
		}
	}
}

// writePump drains rendered update frames and writes them to the wire,
// keeping the connection alive with periodic pings on pingPeriod.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.updates:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
