package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// UserService provides user, profile, and follow-graph business logic.
type UserService struct {
	userRepo     repository.UserRepository
	followerRepo repository.FollowerRepository
}

// UpdateProfileInput carries the profile fields a user may edit. Nil
// fields are left unchanged.
type UpdateProfileInput struct {
	ActorID  uint
	UserID   uint
	Bio      *string
	Avatar   *string
	Location *string
	Website  *string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followerRepo repository.FollowerRepository) *UserService {
	return &UserService{userRepo: userRepo, followerRepo: followerRepo}
}

// GetUser returns the full record; callers expose it only to the user
// themself or an admin.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetPublicProfile returns the public projection of a user.
func (s *UserService) GetPublicProfile(ctx context.Context, id uint) (*models.PublicUser, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateProfile applies the non-nil fields; only the profile owner may
// update.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if in.ActorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile
	if profile == nil {
		profile = &models.Profile{UserID: user.ID}
	}

	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.Avatar != nil {
		profile.Avatar = *in.Avatar
	}
	if in.Location != nil {
		profile.Location = *in.Location
	}
	if in.Website != nil {
		profile.Website = *in.Website
	}

	if err := s.userRepo.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, in.UserID)
}

// DeleteUser removes an account and everything it owns. The user
// themself or an admin may delete.
func (s *UserService) DeleteUser(ctx context.Context, targetID, actorID uint, actorIsAdmin bool) error {
	if targetID != actorID && !actorIsAdmin {
		return models.NewForbiddenError("You can only delete your own account")
	}
	return s.userRepo.DeleteCascade(ctx, targetID)
}

// SetRole flips the admin flag; the route gating restricts this to
// admins. The change takes effect on the target's next request.
func (s *UserService) SetRole(ctx context.Context, targetID uint, isAdmin bool) (*models.User, error) {
	if err := s.userRepo.SetAdmin(ctx, targetID, isAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, targetID)
}

// Search finds users by username and/or email substring; at least one
// query parameter is required.
func (s *UserService) Search(ctx context.Context, username, email string, limit int) ([]models.PublicUser, error) {
	if username == "" && email == "" {
		return nil, models.NewValidationError("Provide a username or email query")
	}
	users, err := s.userRepo.Search(ctx, username, email, limit)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// ListUsers returns a page of accounts; the route gating restricts this
// to admins.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// Follow creates a follow edge from actor to target. Following yourself
// is invalid; following twice is a Conflict.
func (s *UserService) Follow(ctx context.Context, actorID, targetID uint) error {
	if actorID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.followerRepo.Create(ctx, actorID, targetID)
}

// Unfollow removes the follow edge; unfollowing someone not followed is
// NotFound.
func (s *UserService) Unfollow(ctx context.Context, actorID, targetID uint) error {
	return s.followerRepo.Delete(ctx, actorID, targetID)
}

// Followers lists the users following the given user.
func (s *UserService) Followers(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followerRepo.Followers(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

// Following lists the users the given user follows.
func (s *UserService) Following(ctx context.Context, userID uint) ([]models.PublicUser, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followerRepo.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
