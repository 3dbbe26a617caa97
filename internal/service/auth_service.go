// Package service provides application business logic (auth, posts, users, chat).
package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"ripple/internal/auth"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// AuthService owns registration and the two login paths (local
// credentials and GitHub OAuth).
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

// RegisterInput is the input for local signup.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the input for local login.
type LoginInput struct {
	Email    string
	Password string
}

// NewAuthService returns a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register creates a local account. The user and their empty profile are
// created atomically; a duplicate email is a Conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, "", models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", models.NewConflictError("An account with this email already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    &in.Email,
		Password: string(hashed),
	}
	if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// Login verifies local credentials. An unknown email is NotFound; an
// OAuth-only account or a wrong password is Unauthorized.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", models.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", models.NewNotFoundMessageError("No account with this email")
	}
	if user.Password == "" {
		// Account created through OAuth; there is no password to check.
		return nil, "", models.NewUnauthorizedError("This account signs in with GitHub")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, "", models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// LoginGitHub signs a GitHub identity in, creating the account on first
// login. GitHub accounts may lack an email; that is tolerated.
func (s *AuthService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*models.User, string, error) {
	if gh == nil || gh.ID == "" {
		return nil, "", models.NewValidationError("GitHub identity is incomplete")
	}

	user, err := s.userRepo.GetByGitHubID(ctx, gh.ID)
	if err != nil {
		return nil, "", err
	}

	if user == nil {
		username, err := s.availableUsername(ctx, gh.Login, gh.ID)
		if err != nil {
			return nil, "", err
		}

		user = &models.User{
			Username: username,
			GitHubID: &gh.ID,
			Profile:  &models.Profile{Avatar: gh.AvatarURL},
		}
		if gh.Email != "" {
			user.Email = &gh.Email
		}
		if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
			return nil, "", err
		}
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}
	return user, token, nil
}

// availableUsername returns the GitHub login if free, otherwise a
// deterministic variant derived from the GitHub id.
func (s *AuthService) availableUsername(ctx context.Context, login, githubID string) (string, error) {
	if login == "" {
		return "gh_" + githubID, nil
	}
	existing, err := s.userRepo.GetByUsername(ctx, login)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return login, nil
	}
	return fmt.Sprintf("%s_gh%s", login, githubID), nil
}
