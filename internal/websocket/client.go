package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"admissions-rag-be/internal/dto"
	"admissions-rag-be/internal/pkg/serverutils"
	"admissions-rag-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// UserKey associated with this connection
	UserKey string

	// Buffered channel of outbound messages.
	Send chan []byte

	chatService service.IChatService
}

// readPump reads chat requests from the connection and streams each answer
// back through the Send channel.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for user %s: %v", c.UserKey, err)
			}
			break
		}

		// Each question resets the read deadline: streaming an answer can
		// outlast a single pong interval.
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.handleQuestion(raw)
	}
}

func (c *Client) handleQuestion(raw []byte) {
	var req dto.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.sendDelta(dto.ChatDelta{Error: "invalid request payload", Done: true})
		return
	}
	if req.UserEmail == "" {
		req.UserEmail = c.UserKey
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		c.sendDelta(dto.ChatDelta{Error: err.Error(), Done: true})
		return
	}

	completion := c.chatService.Stream(context.Background(), &req, func(d dto.ChatDelta) error {
		c.sendDelta(d)
		return nil
	})

	c.sendDelta(dto.ChatDelta{
		ConversationId: completion.ConversationId,
		Done:           true,
	})
}

func (c *Client) sendDelta(d dto.ChatDelta) {
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Buffer full: the writePump is stuck, drop the connection.
		c.Hub.unregister <- c
	}
}

// writePump pumps messages from the Send channel to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
