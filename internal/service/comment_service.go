package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/policy"
	"ripple/internal/repository"
)

const maxCommentLen = 10000

// CommentService provides comment business logic. Reading and adding
// comments go through the same visibility table as reading the post.
type CommentService struct {
	commentRepo  repository.CommentRepository
	postRepo     repository.PostRepository
	followerRepo repository.FollowerRepository
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

// CreateCommentInput is the input for adding a comment.
type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	Content  string
	ParentID *uint
}

// UpdateCommentInput is the input for editing a comment.
type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	followerRepo repository.FollowerRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *CommentService {
	return &CommentService{
		commentRepo:  commentRepo,
		postRepo:     postRepo,
		followerRepo: followerRepo,
		isAdmin:      isAdmin,
	}
}

// ListComments returns a post's comments oldest first, if the viewer
// may read the post.
func (s *CommentService) ListComments(ctx context.Context, postID, viewerID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// CreateComment adds a comment to a post the viewer may read. A parent
// comment, when given, must exist and belong to the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, post, in.UserID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  content,
		UserID:   in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// UpdateComment edits a comment. Only the author may edit, and comments
// on RESTRICTED posts cannot be edited by anyone.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !policy.CanEditComment(post.Privacy) {
		return nil, models.NewForbiddenError("Comments on restricted posts cannot be edited")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment; the author or an admin may delete.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actorID {
		admin, err := s.actorIsAdmin(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, models.NewForbiddenError("You can only delete your own comments")
		}
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) authorizeView(ctx context.Context, post *models.Post, viewerID uint) error {
	admin := false
	follows := false
	if viewerID != post.UserID {
		var err error
		admin, err = s.actorIsAdmin(ctx, viewerID)
		if err != nil {
			return err
		}
		if !admin {
			follows, err = s.followerRepo.Exists(ctx, viewerID, post.UserID)
			if err != nil {
				return err
			}
		}
	}

	decision := policy.Decide(post.UserID, post.Privacy, viewerID, admin, follows)
	switch decision.Reason {
	case policy.DenyNone:
		return nil
	case policy.DenyNeedsFollow:
		return models.NewForbiddenError("This post is private; follow the author to see it")
	default:
		return models.NewForbiddenError("You do not have access to this post")
	}
}

func (s *CommentService) actorIsAdmin(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
