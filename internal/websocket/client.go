package websocket

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Watcher connections are one-directional: the server streams trace events
// down, the peer only ever sends control frames back.
const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second // must stay under idleTimeout
	readLimit    = 512
)

// Client is one attached trace watcher: a websocket connection following a
// single run.
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	QueryID uuid.UUID

	// Send buffers outbound events; the hub drops the watcher when it
	// stops draining.
	Send chan []byte
}

// run services the connection until the peer leaves or the hub closes the
// send channel. Writes happen on their own goroutine so a stalled reader
// cannot block ping delivery.
func (c *Client) run() {
	go c.writeLoop()
	c.readLoop()
}

// readLoop exists to notice disconnects and answer pings. Data frames from
// watchers are read and thrown away.
func (c *Client) readLoop() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(idleTimeout))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(idleTimeout))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("trace watcher %s read error: %v", c.QueryID, err)
			}
			return
		}
	}
}

// writeLoop forwards hub events and keeps the connection alive with pings.
// Trace events are small and infrequent, so each one goes out as its own
// frame rather than being batched.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, event); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
