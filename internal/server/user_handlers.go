package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// GetMe handles GET /api/users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	user, err := s.userService.GetUser(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req struct {
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
		Location *string `json:"location"`
		Website  *string `json:"website"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		ActorID:  userID,
		UserID:   userID,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
		Location: req.Location,
		Website:  req.Website,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID, isAdmin := currentUser(c)

	if err := s.userService.DeleteUser(c.Context(), userID, userID, isAdmin); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteUser handles DELETE /api/users/:id (self or admin)
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, isAdmin := currentUser(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteUser(c.Context(), targetID, userID, isAdmin); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.userService.GetPublicProfile(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// SearchUsers handles GET /api/users/search?username=...&email=...
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	users, err := s.userService.Search(c.Context(), c.Query("username"), c.Query("email"), page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// ListUsers handles GET /api/users (admin only)
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	users, err := s.userService.ListUsers(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// SetUserRole handles PUT /api/users/:id/role (admin only)
func (s *Server) SetUserRole(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetRole(c.Context(), targetID, req.IsAdmin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Follow(c.Context(), userID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Now following",
	})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.Unfollow(c.Context(), userID, targetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Followers(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.userService.Following(c.Context(), targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}
