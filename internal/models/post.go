package models

import (
	"time"

	"gorm.io/gorm"
)

// Privacy controls who may read a post and its comments.
type Privacy string

const (
	// PrivacyPublic posts are visible to every authenticated user.
	PrivacyPublic Privacy = "PUBLIC"
	// PrivacyPrivate posts are visible to the owner and their followers.
	PrivacyPrivate Privacy = "PRIVATE"
	// PrivacyRestricted posts are visible only to the owner and admins,
	// and block comment edits for everyone, including the comment author.
	PrivacyRestricted Privacy = "RESTRICTED"
)

// Valid reports whether p is one of the known privacy levels.
func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyPrivate, PrivacyRestricted:
		return true
	}
	return false
}

type Post struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Content  string  `gorm:"not null" json:"content"`
	ImageURL string  `json:"image_url"`
	Privacy  Privacy `gorm:"type:varchar(20);default:'PUBLIC';not null" json:"privacy"`
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	User     User    `gorm:"foreignKey:UserID" json:"user"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"-" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"-" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"-" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	PostID    uint           `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"user"`
	Post Post `gorm:"foreignKey:PostID" json:"post"`
}
