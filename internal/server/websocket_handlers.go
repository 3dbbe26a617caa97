package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"ripple/internal/middleware"
	"ripple/internal/notifications"
)

// wsIncoming is the frame format clients send over the chat socket.
type wsIncoming struct {
	Type           string `json:"type"`
	ConversationID uint   `json:"conversation_id"`
}

// WebSocketChatHandler handles GET /api/ws/chat. Clients join and leave
// conversation rooms over the socket; joined rooms receive newMessage
// events as they are published.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			slog.Warn("websocket registration rejected", "user_id", userID, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var msg wsIncoming
			if err := json.Unmarshal(raw, &msg); err != nil {
				slog.Debug("ignoring malformed websocket frame", "user_id", userID)
				return
			}

			switch msg.Type {
			case "join":
				// Only participants may subscribe to a conversation room.
				ok, err := s.chatService.IsParticipant(ctx, msg.ConversationID, userID)
				if err != nil || !ok {
					return
				}
				s.hub.JoinRoom(userID, msg.ConversationID)

				ack := notifications.Event{
					Type:           "joined",
					ConversationID: msg.ConversationID,
					Payload:        fiber.Map{"conversation_id": msg.ConversationID},
				}
				if data, err := json.Marshal(ack); err == nil {
					c.TrySend(data)
				}

			case "leave":
				s.hub.LeaveRoom(userID, msg.ConversationID)
			}
		}

		// Welcome frame so clients can confirm the session.
		welcome := notifications.Event{
			Type:    "connected",
			Payload: fiber.Map{"user_id": userID},
		}
		if data, err := json.Marshal(welcome); err == nil {
			client.TrySend(data)
		}

		go client.WritePump()
		client.ReadPump()
	})
}
