package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
)

const maxMessageContentLen = 10000

// ChatService provides conversation and message business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

// CreateConversationInput is the input for creating a conversation.
type CreateConversationInput struct {
	UserID         uint
	Name           string
	IsGroup        bool
	ParticipantIDs []uint
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	UserID         uint
	ConversationID uint
	Content        string
}

// UpdateMessageInput is the input for editing a message.
type UpdateMessageInput struct {
	UserID    uint
	MessageID uint
	Content   string
}

// NewChatService returns a new ChatService.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		isAdmin:  isAdmin,
	}
}

// CreateConversation creates a DM or group conversation. The creator is
// always a participant, the participant set is de-duplicated, and a DM
// must name exactly one other participant.
func (s *ChatService) CreateConversation(ctx context.Context, in CreateConversationInput) (*models.Conversation, error) {
	// De-duplicate, with the creator implicitly included.
	seen := map[uint]bool{in.UserID: true}
	participants := []uint{in.UserID}
	for _, id := range in.ParticipantIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		participants = append(participants, id)
	}

	if !in.IsGroup && len(participants) != 2 {
		return nil, models.NewValidationError("Direct conversations require exactly one other participant")
	}
	if in.IsGroup && len(participants) < 2 {
		return nil, models.NewValidationError("Group conversations require at least one other participant")
	}

	for _, id := range participants {
		if id == in.UserID {
			continue
		}
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}

	// Names are a group-chat affordance; DMs render the other
	// participant's name client-side.
	name := in.Name
	if !in.IsGroup {
		name = ""
	}

	conv := &models.Conversation{
		Name:      name,
		IsGroup:   in.IsGroup,
		CreatedBy: in.UserID,
	}
	if err := s.chatRepo.CreateConversation(ctx, conv, participants); err != nil {
		return nil, err
	}
	return s.chatRepo.GetConversation(ctx, conv.ID)
}

// GetConversations returns the user's conversations, most recently
// active first.
func (s *ChatService) GetConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	return s.chatRepo.GetUserConversations(ctx, userID)
}

// GetConversationForUser returns the conversation if the user is a
// participant.
func (s *ChatService) GetConversationForUser(ctx context.Context, convID, userID uint) (*models.Conversation, error) {
	conv, err := s.chatRepo.GetConversation(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !isConversationParticipant(conv, userID) {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return conv, nil
}

// DeleteConversation removes a conversation; a participant or an admin
// may delete.
func (s *ChatService) DeleteConversation(ctx context.Context, convID, actorID uint) error {
	conv, err := s.chatRepo.GetConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !isConversationParticipant(conv, actorID) {
		admin, err := s.actorIsAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You are not a participant in this conversation")
		}
	}
	return s.chatRepo.DeleteConversation(ctx, convID)
}

// SendMessage persists a trimmed, non-empty message from a participant
// and returns it with the sender attached. Realtime delivery happens in
// the handler after the message is durable.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	ok, err := s.chatRepo.IsParticipant(ctx, in.ConversationID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}

	message := &models.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.UserID,
		Content:        content,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if sender, err := s.userRepo.GetByID(ctx, in.UserID); err == nil {
		message.Sender = sender
	}
	return message, nil
}

// GetMessagesForUser returns a conversation's messages oldest first,
// for participants only.
func (s *ChatService) GetMessagesForUser(ctx context.Context, convID, userID uint, limit, offset int) ([]*models.Message, error) {
	ok, err := s.chatRepo.IsParticipant(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish an unknown conversation from a membership denial.
		if _, err := s.chatRepo.GetConversation(ctx, convID); err != nil {
			return nil, err
		}
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return s.chatRepo.GetMessages(ctx, convID, limit, offset)
}

// UpdateMessage edits a message; only its author may edit.
func (s *ChatService) UpdateMessage(ctx context.Context, in UpdateMessageInput) (*models.Message, error) {
	msg, err := s.chatRepo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own messages")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	msg.Content = content
	if err := s.chatRepo.UpdateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessage(ctx, msg.ID)
}

// DeleteMessage removes a message; the author or an admin may delete.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, actorID uint) error {
	msg, err := s.chatRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != actorID {
		admin, err := s.actorIsAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own messages")
		}
	}
	return s.chatRepo.DeleteMessage(ctx, messageID)
}

// IsParticipant reports conversation membership; the websocket join
// path uses it before subscribing a client to a room.
func (s *ChatService) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	return s.chatRepo.IsParticipant(ctx, convID, userID)
}

func isConversationParticipant(conv *models.Conversation, userID uint) bool {
	for _, participant := range conv.Participants {
		if participant.ID == userID {
			return true
		}
	}
	return false
}

func (s *ChatService) actorIsAdmin(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
