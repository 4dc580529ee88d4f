package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs attaches a trace watcher to the hub for the given run and blocks
// until the watcher leaves.
func ServeWs(hub *Hub, conn *websocket.Conn, queryID uuid.UUID) {
	client := &Client{Hub: hub, Conn: conn, QueryID: queryID, Send: make(chan []byte, 256)}
	hub.register <- client
	client.run()
}
