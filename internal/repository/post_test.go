package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

func TestPostRepository_CreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	liker := createTestUser(t, db, "liker")

	post := &models.Post{Content: "hello world", UserID: owner.ID, Privacy: models.PrivacyPublic}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	require.NoError(t, db.Create(&models.Like{UserID: liker.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Comment{Content: "first", UserID: liker.ID, PostID: post.ID}).Error)

	got, err := repo.GetByID(ctx, post.ID, liker.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	assert.Equal(t, 1, got.LikesCount)
	assert.Equal(t, 1, got.CommentsCount)
	assert.True(t, got.Liked)
	assert.Equal(t, "owner", got.User.Username)

	// A viewer who has not liked the post sees Liked=false.
	asOwner, err := repo.GetByID(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, asOwner.Liked)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), 404, 1)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_GetByUserID_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "chrono")
	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.Post{Content: content, UserID: owner.ID, Privacy: models.PrivacyPublic}))
	}

	posts, err := repo.GetByUserID(ctx, owner.ID, 10, 0, owner.ID)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	// created_at ties resolve by insertion order in sqlite; the newest
	// id should come first.
	assert.GreaterOrEqual(t, posts[0].ID, posts[2].ID)
}

func TestPostRepository_GetFollowingFeed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	reader := createTestUser(t, db, "reader")
	followed := createTestUser(t, db, "followed")
	stranger := createTestUser(t, db, "stranger")

	require.NoError(t, db.Create(&models.Follower{FollowerID: reader.ID, FollowedID: followed.ID}).Error)

	require.NoError(t, repo.Create(ctx, &models.Post{Content: "from followed", UserID: followed.ID, Privacy: models.PrivacyPublic}))
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "from stranger", UserID: stranger.ID, Privacy: models.PrivacyPublic}))
	require.NoError(t, repo.Create(ctx, &models.Post{Content: "own post", UserID: reader.ID, Privacy: models.PrivacyPublic}))

	feed, err := repo.GetFollowingFeed(ctx, reader.ID, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "from followed", feed[0].Content)
}

func TestPostRepository_LikeUnlike(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "author")
	fan := createTestUser(t, db, "fan")
	post := &models.Post{Content: "likeable", UserID: owner.ID, Privacy: models.PrivacyPublic}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))

	// Second like of the same post is a conflict.
	err := repo.Like(ctx, fan.ID, post.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)

	require.NoError(t, repo.Unlike(ctx, fan.ID, post.ID))

	// Unliking a post that is not liked is NotFound.
	err = repo.Unlike(ctx, fan.ID, post.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	// Like works again after the unlike (the row was hard-deleted).
	require.NoError(t, repo.Like(ctx, fan.ID, post.ID))
}

func TestPostRepository_Delete_RemovesDependents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "deleter")
	post := &models.Post{Content: "doomed", UserID: owner.ID, Privacy: models.PrivacyPublic}
	require.NoError(t, repo.Create(ctx, post))
	require.NoError(t, db.Create(&models.Comment{Content: "bye", UserID: owner.ID, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: owner.ID, PostID: post.ID}).Error)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.GetByID(ctx, post.ID, owner.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	var count int64
	db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Zero(t, count)
	db.Unscoped().Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Zero(t, count)
}
