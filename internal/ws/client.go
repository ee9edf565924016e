package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wanheng20031114/whgame-Tetris/internal/model"
	"github.com/wanheng20031114/whgame-Tetris/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The game is served from arbitrary hosts during development.
	// Lock this down when a canonical origin exists.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection for an authenticated player.
type Client struct {
	hub    *Hub
	relay  *Relay
	conn   *websocket.Conn
	player model.Player
	send   chan protocol.Envelope
	logger *slog.Logger
}

// Handler upgrades websocket requests. Authentication uses the session
// token passed as the token query parameter; connections without a valid
// token are closed without explanation.
func Handler(hub *Hub, relay *Relay, logger *slog.Logger) http.HandlerFunc {
	logger = logger.With(slog.String("component", "ws"))
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		player, err := relay.auth.GetPlayer(r.URL.Query().Get("token"))
		if err != nil {
			_ = conn.Close()
			return
		}

		client := &Client{
			hub:    hub,
			relay:  relay,
			conn:   conn,
			player: *player,
			send:   make(chan protocol.Envelope, sendBuffer),
			logger: logger.With(slog.String("player", string(player.ID))),
		}

		if prev := hub.add(client); prev != nil {
			prev.close()
		}

		go client.writePump()
		client.readPump()
	}
}

func (c *Client) close() {
	_ = c.conn.Close()
}

// readPump reads envelopes until the connection dies, dispatching each
// into the relay. It owns the connection's read side.
func (c *Client) readPump() {
	defer func() {
		if c.hub.remove(c) {
			c.relay.HandleDisconnect(c.player)
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.Warn("malformed envelope", slog.String("error", err.Error()))
			continue
		}

		c.relay.HandleMessage(c.player, env)
	}
}

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
