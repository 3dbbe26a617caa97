package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation represents a chat conversation (1-on-1 or group).
// Non-group conversations hold exactly two participants.
type Conversation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `json:"name"` // For group chats
	IsGroup      bool           `gorm:"default:false" json:"is_group"`
	CreatedBy    uint           `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Participants []User         `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
	Messages     []Message      `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// Message represents a chat message
type Message struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	ConversationID uint           `gorm:"not null;index" json:"conversation_id"`
	Conversation   *Conversation  `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	SenderID       uint           `gorm:"not null;index" json:"sender_id"`
	Sender         *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content        string         `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// ConversationParticipant is the join table GORM uses for the
// many2many relationship between conversations and users.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
