package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/policy"
	"ripple/internal/repository"
)

const maxPostContentLen = 10000

// PostService provides post and like business logic.
type PostService struct {
	postRepo     repository.PostRepository
	followerRepo repository.FollowerRepository
	isAdmin      func(ctx context.Context, userID uint) (bool, error)
}

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	UserID   uint
	Content  string
	ImageURL string
	Privacy  models.Privacy
}

// UpdatePostInput is the input for updating a post. Nil fields are left
// unchanged.
type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Content  *string
	ImageURL *string
	Privacy  *models.Privacy
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	followerRepo repository.FollowerRepository,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		followerRepo: followerRepo,
		isAdmin:      isAdmin,
	}
}

// CreatePost creates a post. Privacy defaults to PUBLIC.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Post too long (max 10000 characters)")
	}
	if in.Privacy == "" {
		in.Privacy = models.PrivacyPublic
	}
	if !in.Privacy.Valid() {
		return nil, models.NewValidationError("Privacy must be PUBLIC, PRIVATE, or RESTRICTED")
	}

	post := &models.Post{
		Content:  content,
		ImageURL: in.ImageURL,
		Privacy:  in.Privacy,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns the post if the visibility table allows the viewer to
// read it.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, post, viewerID); err != nil {
		return nil, err
	}
	return post, nil
}

// ListOwn returns the viewer's own posts, newest first.
func (s *PostService) ListOwn(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, userID)
}

// ListByUser returns another user's posts filtered by the visibility
// table. One follow check covers every post in the page since they all
// share an owner.
func (s *PostService) ListByUser(ctx context.Context, targetID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	posts, err := s.postRepo.GetByUserID(ctx, targetID, limit, offset, viewerID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	admin, follows, err := s.viewerStanding(ctx, targetID, viewerID)
	if err != nil {
		return nil, err
	}

	visible := make([]*models.Post, 0, len(posts))
	for _, post := range posts {
		if policy.Decide(post.UserID, post.Privacy, viewerID, admin, follows).Allowed {
			visible = append(visible, post)
		}
	}
	return visible, nil
}

// FollowingFeed returns the newest posts from users the viewer follows.
// Every post in the feed is from a followed owner, so the visibility
// table admits all of them.
func (s *PostService) FollowingFeed(ctx context.Context, viewerID uint, limit int) ([]*models.Post, error) {
	return s.postRepo.GetFollowingFeed(ctx, viewerID, limit)
}

// UpdatePost applies the non-nil fields; only the owner may update.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, models.NewValidationError("Content is required")
		}
		if len(content) > maxPostContentLen {
			return nil, models.NewValidationError("Post too long (max 10000 characters)")
		}
		post.Content = content
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if in.Privacy != nil {
		if !in.Privacy.Valid() {
			return nil, models.NewValidationError("Privacy must be PUBLIC, PRIVATE, or RESTRICTED")
		}
		post.Privacy = *in.Privacy
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// DeletePost removes the post; the owner or an admin may delete.
func (s *PostService) DeletePost(ctx context.Context, postID, actorID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, actorID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		admin, err := s.actorIsAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewForbiddenError("You can only delete your own posts")
		}
	}
	return s.postRepo.Delete(ctx, postID)
}

// LikePost records a like; liking twice is a Conflict.
func (s *PostService) LikePost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// UnlikePost removes a like; removing an absent like is NotFound.
func (s *PostService) UnlikePost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// authorizeView runs the visibility table for one post and maps the
// deny reasons onto distinguishable errors.
func (s *PostService) authorizeView(ctx context.Context, post *models.Post, viewerID uint) error {
	admin, follows, err := s.viewerStanding(ctx, post.UserID, viewerID)
	if err != nil {
		return err
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

// viewerStanding resolves the two viewer-dependent inputs of the
// visibility table. The follow lookup is skipped when the viewer is the
// owner or an admin since neither branch needs it.
func (s *PostService) viewerStanding(ctx context.Context, ownerID, viewerID uint) (admin, follows bool, err error) {
	if viewerID == ownerID {
		return false, false, nil
	}
	admin, err = s.actorIsAdmin(ctx, viewerID)
	if err != nil {
		return false, false, err
	}
	if admin {
		return true, false, nil
	}
	follows, err = s.followerRepo.Exists(ctx, viewerID, ownerID)
	if err != nil {
		return false, false, err
	}
	return false, follows, nil
}

func (s *PostService) actorIsAdmin(ctx context.Context, userID uint) (bool, error) {
	if s.isAdmin == nil {
		return false, nil
	}
	return s.isAdmin(ctx, userID)
}
