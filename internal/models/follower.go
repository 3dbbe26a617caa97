package models

import (
	"time"

	"gorm.io/gorm"
)

// Follower is a directed follow edge: FollowerID follows FollowedID.
// Each pair may exist at most once.
type Follower struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FollowerID uint           `gorm:"not null;uniqueIndex:idx_follower_followed" json:"follower_id"`
	FollowedID uint           `gorm:"not null;uniqueIndex:idx_follower_followed" json:"followed_id"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	FollowerUser User `gorm:"foreignKey:FollowerID" json:"follower_user,omitempty"`
	FollowedUser User `gorm:"foreignKey:FollowedID" json:"followed_user,omitempty"`
}

// TableName specifies the table name for GORM
func (Follower) TableName() string {
	return "followers"
}
