package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/service"
)

// CreateConversation handles POST /api/conversations
func (s *Server) CreateConversation(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req struct {
		Name           string `json:"name,omitempty"`
		IsGroup        bool   `json:"is_group,omitempty"`
		ParticipantIDs []uint `json:"participant_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	conv, err := s.chatService.CreateConversation(c.Context(), service.CreateConversationInput{
		UserID:         userID,
		Name:           req.Name,
		IsGroup:        req.IsGroup,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv)
}

// GetConversations handles GET /api/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	convs, err := s.chatService.GetConversations(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(convs)
}

// GetConversation handles GET /api/conversations/:id
func (s *Server) GetConversation(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	conv, err := s.chatService.GetConversationForUser(c.Context(), convID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(conv)
}

// DeleteConversation handles DELETE /api/conversations/:id
func (s *Server) DeleteConversation(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.chatService.DeleteConversation(c.Context(), convID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetMessages handles GET /api/conversations/:id/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	messages, err := s.chatService.GetMessagesForUser(c.Context(), convID, userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/conversations/:id/messages. The message
// is durable before any notification goes out; realtime delivery is
// best-effort.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	convID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.SendMessage(c.Context(), service.SendMessageInput{
		UserID:         userID,
		ConversationID: convID,
		Content:        req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.notifyNewMessage(message)

	return c.Status(fiber.StatusCreated).JSON(message)
}

// UpdateMessage handles PUT /api/messages/:id
func (s *Server) UpdateMessage(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.chatService.UpdateMessage(c.Context(), service.UpdateMessageInput{
		UserID:    userID,
		MessageID: messageID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(message)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.chatService.DeleteMessage(c.Context(), messageID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// notifyNewMessage fans a persisted message out to the conversation
// room. With Redis the event goes through pub/sub so every instance
// delivers it; without Redis it falls back to the local hub. Failures
// are logged, never returned: the message is already stored.
func (s *Server) notifyNewMessage(message *models.Message) {
	event := notifications.Event{
		Type:           notifications.EventNewMessage,
		ConversationID: message.ConversationID,
		Payload:        message,
	}

	if s.notifier != nil {
		payload, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal message event", "message_id", message.ID, "error", err)
			return
		}
		go func() {
			if err := s.notifier.PublishConversation(context.Background(), message.ConversationID, string(payload)); err != nil {
				slog.Warn("failed to publish message event", "conversation_id", message.ConversationID, "error", err)
			}
		}()
		return
	}

	s.hub.BroadcastToRoom(message.ConversationID, event)
}
