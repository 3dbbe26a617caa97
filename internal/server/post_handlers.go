package server

import (
	"github.com/gofiber/fiber/v2"

	"ripple/internal/models"
	"ripple/internal/service"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)

	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url,omitempty"`
		Privacy  string `json:"privacy,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:   userID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Privacy:  models.Privacy(req.Privacy),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetMyPosts handles GET /api/posts
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	page := parsePagination(c, 20)

	posts, err := s.postService.ListOwn(c.Context(), userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 20)

	posts, err := s.postService.ListByUser(c.Context(), targetID, userID, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetFollowingFeed handles GET /api/posts/feed
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	page := parsePagination(c, 20)

	posts, err := s.postService.FollowingFeed(c.Context(), userID, page.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  *string `json:"content"`
		ImageURL *string `json:"image_url"`
		Privacy  *string `json:"privacy"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var privacy *models.Privacy
	if req.Privacy != nil {
		p := models.Privacy(*req.Privacy)
		privacy = &p
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:   userID,
		PostID:   postID,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		Privacy:  privacy,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, userID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.LikePost(c.Context(), postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, _ := currentUser(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.UnlikePost(c.Context(), postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
