package websocket

import (
	"admissions-rag-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

// ServeWs handles a chat websocket connection for one user.
func ServeWs(hub *Hub, c *websocket.Conn, userKey string, chatService service.IChatService) {
	client := &Client{
		Hub:         hub,
		Conn:        c,
		UserKey:     userKey,
		Send:        make(chan []byte, 256),
		chatService: chatService,
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
