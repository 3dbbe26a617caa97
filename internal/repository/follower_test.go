package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ripple/internal/models"
)

func TestFollowerRepository_CreateAndExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowerRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))

	exists, err := repo.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// The edge is directed.
	reverse, err := repo.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)
}

func TestFollowerRepository_DuplicateIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowerRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))

	err := repo.Create(ctx, alice.ID, bob.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeConflict, appErr.Code)
}

func TestFollowerRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowerRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Delete(ctx, alice.ID, bob.ID))

	// Deleting an absent edge is NotFound.
	err := repo.Delete(ctx, alice.ID, bob.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	// Re-following after unfollow works (hard delete frees the index).
	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))
}

func TestFollowerRepository_Listings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFollowerRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, repo.Create(ctx, bob.ID, alice.ID))
	require.NoError(t, repo.Create(ctx, carol.ID, alice.ID))
	require.NoError(t, repo.Create(ctx, alice.ID, bob.ID))

	followers, err := repo.Followers(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	following, err := repo.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "bob", following[0].Username)
}
