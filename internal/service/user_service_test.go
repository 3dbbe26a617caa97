package service

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	getByGitHubIDFn     func(context.Context, string) (*models.User, error)
	createWithProfileFn func(context.Context, *models.User) error
	updateFn            func(context.Context, *models.User) error
	updateProfileFn     func(context.Context, *models.Profile) error
	setAdminFn          func(context.Context, uint, bool) error
	deleteCascadeFn     func(context.Context, uint) error
	listFn              func(context.Context, int, int) ([]models.User, error)
	searchFn            func(context.Context, string, string, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByGitHubID(ctx context.Context, githubID string) (*models.User, error) {
	return s.getByGitHubIDFn(ctx, githubID)
}
func (s *userRepoStub) CreateWithProfile(ctx context.Context, user *models.User) error {
	return s.createWithProfileFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return s.updateProfileFn(ctx, profile)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, isAdmin bool) error {
	return s.setAdminFn(ctx, id, isAdmin)
}
func (s *userRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, username, email string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, username, email, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:           func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:        func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByGitHubIDFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createWithProfileFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn:            func(_ context.Context, _ *models.User) error { return nil },
		updateProfileFn:     func(_ context.Context, _ *models.Profile) error { return nil },
		setAdminFn:          func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteCascadeFn:     func(_ context.Context, _ uint) error { return nil },
		listFn:              func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		searchFn:            func(_ context.Context, _, _ string, _ int) ([]models.User, error) { return nil, nil },
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("only the owner may update", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowerRepo())
		bio := "hi"
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ActorID: 1, UserID: 2, Bio: &bio})
		assertForbiddenError(t, err)
	})

	t.Run("nil fields are left unchanged", func(t *testing.T) {
		t.Parallel()
		var saved *models.Profile
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{
				ID:      id,
				Profile: &models.Profile{UserID: id, Bio: "old bio", Location: "Lisbon"},
			}, nil
		}
		userRepo.updateProfileFn = func(_ context.Context, p *models.Profile) error {
			saved = p
			return nil
		}
		svc := NewUserService(userRepo, noopFollowerRepo())
		bio := "new bio"
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ActorID: 1, UserID: 1, Bio: &bio})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "new bio", saved.Bio)
		assert.Equal(t, "Lisbon", saved.Location)
	})

	t.Run("creates the profile when missing", func(t *testing.T) {
		t.Parallel()
		var saved *models.Profile
		userRepo := noopUserRepo()
		userRepo.updateProfileFn = func(_ context.Context, p *models.Profile) error {
			saved = p
			return nil
		}
		svc := NewUserService(userRepo, noopFollowerRepo())
		website := "https://example.com"
		_, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{ActorID: 1, UserID: 1, Website: &website})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, uint(1), saved.UserID)
		assert.Equal(t, "https://example.com", saved.Website)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	t.Run("self delete", func(t *testing.T) {
		t.Parallel()
		deleted := uint(0)
		userRepo := noopUserRepo()
		userRepo.deleteCascadeFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		svc := NewUserService(userRepo, noopFollowerRepo())
		require.NoError(t, svc.DeleteUser(context.Background(), 1, 1, false))
		assert.Equal(t, uint(1), deleted)
	})

	t.Run("non-admin cannot delete another account", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowerRepo())
		assertForbiddenError(t, svc.DeleteUser(context.Background(), 2, 1, false))
	})

	t.Run("admin can delete another account", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowerRepo())
		require.NoError(t, svc.DeleteUser(context.Background(), 2, 1, true))
	})
}

func TestUserService_Search_RequiresQuery(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), noopFollowerRepo())
	_, err := svc.Search(context.Background(), "", "", 20)
	assertValidationError(t, err)
}

func TestUserService_Follow(t *testing.T) {
	t.Parallel()

	t.Run("cannot follow yourself", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo(), noopFollowerRepo())
		assertValidationError(t, svc.Follow(context.Background(), 1, 1))
	})

	t.Run("target must exist", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewUserService(userRepo, noopFollowerRepo())
		assertAppErrorCode(t, svc.Follow(context.Background(), 1, 99), models.CodeNotFound)
	})

	t.Run("duplicate follow propagates conflict", func(t *testing.T) {
		t.Parallel()
		followerRepo := noopFollowerRepo()
		followerRepo.createFn = func(_ context.Context, _, _ uint) error {
			return models.NewConflictError("Already following this user")
		}
		svc := NewUserService(noopUserRepo(), followerRepo)
		assertAppErrorCode(t, svc.Follow(context.Background(), 1, 2), models.CodeConflict)
	})

	t.Run("creates the directed edge", func(t *testing.T) {
		t.Parallel()
		var gotFollower, gotFollowed uint
		followerRepo := noopFollowerRepo()
		followerRepo.createFn = func(_ context.Context, followerID, followedID uint) error {
			gotFollower, gotFollowed = followerID, followedID
			return nil
		}
		svc := NewUserService(noopUserRepo(), followerRepo)
		require.NoError(t, svc.Follow(context.Background(), 1, 2))
		assert.Equal(t, uint(1), gotFollower)
		assert.Equal(t, uint(2), gotFollowed)
	})
}

func TestUserService_Followers_PublicProjection(t *testing.T) {
	t.Parallel()

	email := "alice@example.com"
	followerRepo := noopFollowerRepo()
	followerRepo.followersFn = func(_ context.Context, _ uint) ([]models.User, error) {
		return []models.User{{ID: 3, Username: "alice", Email: &email, Password: "hash"}}, nil
	}
	svc := NewUserService(noopUserRepo(), followerRepo)
	users, err := svc.Followers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestUserService_SetRole(t *testing.T) {
	t.Parallel()

	var gotID uint
	var gotAdmin bool
	userRepo := noopUserRepo()
	userRepo.setAdminFn = func(_ context.Context, id uint, isAdmin bool) error {
		gotID, gotAdmin = id, isAdmin
		return nil
	}
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, IsAdmin: gotAdmin}, nil
	}
	svc := NewUserService(userRepo, noopFollowerRepo())
	user, err := svc.SetRole(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, uint(5), gotID)
	assert.True(t, user.IsAdmin)
}
