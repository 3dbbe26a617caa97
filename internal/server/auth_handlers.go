package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Register(c.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, token, err := s.authService.Login(c.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// GitHubRedirect handles GET /api/auth/github: it issues a short-lived
// signed state and sends the browser to GitHub's consent page.
func (s *Server) GitHubRedirect(c *fiber.Ctx) error {
	if s.github == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("GitHub sign-in is not configured"))
	}

	state, err := s.tokens.IssueOAuthState("github")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Redirect(s.github.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GitHubCallback handles GET /api/auth/github/callback: it verifies the
// state, exchanges the code for a GitHub identity, and signs the user
// in, creating the account on first login.
func (s *Server) GitHubCallback(c *fiber.Ctx) error {
	if s.github == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("GitHub sign-in is not configured"))
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("state and code are required"))
	}

	provider, err := s.tokens.VerifyOAuthState(state)
	if err != nil || provider != "github" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired OAuth state"))
	}

	ghUser, err := s.github.Exchange(c.Context(), code)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("GitHub code exchange failed"))
	}

	user, token, err := s.authService.LoginGitHub(c.Context(), ghUser)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return ""
	}
	return header[len(prefix):]
}
