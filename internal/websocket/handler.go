package websocket

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the connection with the hub and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, handle MessageHandler) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(hub, c, userID, handle)
	hub.register <- client

	go client.writePump()
	client.readPump(ctx)
}
