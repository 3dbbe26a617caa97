package repository

import (
	"context"

	"gorm.io/gorm"

	"ripple/internal/models"
)

// FollowerRepository defines the interface for follow-edge operations.
type FollowerRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
}

type followerRepository struct {
	db *gorm.DB
}

// NewFollowerRepository creates a new follower repository
func NewFollowerRepository(db *gorm.DB) FollowerRepository {
	return &followerRepository{db: db}
}

// Create inserts the follow edge; following the same user twice
// surfaces as a Conflict via the unique index.
func (r *followerRepository) Create(ctx context.Context, followerID, followedID uint) error {
	edge := models.Follower{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Already following this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete hard-deletes the edge; unfollowing someone not followed is NotFound.
func (r *followerRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	res := r.db.WithContext(ctx).Unscoped().
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follower{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessageError("Follow relationship not found")
	}
	return nil
}

func (r *followerRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follower{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Followers lists the users following userID.
func (r *followerRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN followers f ON users.id = f.follower_id").
		Where("f.followed_id = ? AND f.deleted_at IS NULL", userID).
		Preload("Profile").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Following lists the users userID follows.
func (r *followerRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN followers f ON users.id = f.followed_id").
		Where("f.follower_id = ? AND f.deleted_at IS NULL", userID).
		Preload("Profile").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
