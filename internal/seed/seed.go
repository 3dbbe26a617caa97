// Package seed creates demo data for development and testing.
package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much data the seeder creates.
type Options struct {
	NumUsers     int
	PostsPerUser int
	ShouldClean  bool
}

// DefaultOptions is a small but connected data set: enough users to
// exercise follows, privacy, and conversations without a long seed run.
func DefaultOptions() Options {
	return Options{NumUsers: 25, PostsPerUser: 4}
}

// DemoPassword is the password every seeded account gets.
const DemoPassword = "Sup3r-Demo-Pass!"

var privacyMix = []models.Privacy{
	models.PrivacyPublic, models.PrivacyPublic, models.PrivacyPublic,
	models.PrivacyPrivate,
	models.PrivacyRestricted,
}

// Run populates the database with users, follow edges, posts, comments,
// likes, and conversations. It is idempotent only after Clean.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.NumUsers <= 0 {
		opts = DefaultOptions()
	}

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return err
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}
	if err := createFollows(db, r, users); err != nil {
		return err
	}
	posts, err := createPosts(db, r, users, opts.PostsPerUser)
	if err != nil {
		return err
	}
	if err := createCommentsAndLikes(db, r, users, posts); err != nil {
		return err
	}
	if err := createConversations(db, r, users); err != nil {
		return err
	}

	slog.Info("seed complete", "users", len(users), "posts", len(posts))
	return nil
}

// Clean removes all seeded rows. Order matters for FK constraints.
func Clean(db *gorm.DB) error {
	tables := []any{
		&models.Message{}, &models.ConversationParticipant{}, &models.Conversation{},
		&models.Like{}, &models.Comment{}, &models.Post{},
		&models.Follower{}, &models.Profile{}, &models.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("cleaning %T: %w", table, err)
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n+1)

	adminEmail := "admin@ripple.local"
	admin := &models.User{
		Username: "admin",
		Email:    &adminEmail,
		Password: string(hash),
		IsAdmin:  true,
		Profile:  &models.Profile{Bio: "Keeping the lights on."},
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, err
	}
	users = append(users, admin)

	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		email := fmt.Sprintf("%s@%s", username, gofakeit.DomainName())
		user := &models.User{
			Username: username,
			Email:    &email,
			Password: string(hash),
			Profile: &models.Profile{
				Bio:      gofakeit.Quote(),
				Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
				Location: fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
				Website:  gofakeit.URL(),
			},
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFollows gives each user a handful of outgoing follow edges so
// private posts have an audience.
func createFollows(db *gorm.DB, r *rand.Rand, users []*models.User) error {
	for _, u := range users {
		n := 2 + r.Intn(5)
		seen := map[uint]bool{u.ID: true}
		for i := 0; i < n; i++ {
			target := users[r.Intn(len(users))]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			edge := models.Follower{FollowerID: u.ID, FollowedID: target.ID}
			if err := db.Create(&edge).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func createPosts(db *gorm.DB, r *rand.Rand, users []*models.User, perUser int) ([]*models.Post, error) {
	if perUser <= 0 {
		perUser = 4
	}
	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			post := &models.Post{
				Content:   gofakeit.Paragraph(1, 2, 8, " "),
				Privacy:   privacyMix[r.Intn(len(privacyMix))],
				UserID:    u.ID,
				CreatedAt: spreadBack(r, 60),
			}
			if r.Intn(3) == 0 {
				post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
			}
			if err := db.Create(post).Error; err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func createCommentsAndLikes(db *gorm.DB, r *rand.Rand, users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		// Keep the graph honest: only commenters who could actually
		// see the post. Public posts are readable by everyone; private
		// and restricted ones only get the owner's comments here.
		var commenters []*models.User
		if post.Privacy == models.PrivacyPublic {
			commenters = users
		} else {
			for _, u := range users {
				if u.ID == post.UserID {
					commenters = append(commenters, u)
				}
			}
		}

		var firstComment *models.Comment
		for i := 0; i < r.Intn(4); i++ {
			author := commenters[r.Intn(len(commenters))]
			comment := &models.Comment{
				Content: gofakeit.Sentence(8 + r.Intn(10)),
				UserID:  author.ID,
				PostID:  post.ID,
			}
			if firstComment != nil && r.Intn(3) == 0 {
				comment.ParentID = &firstComment.ID
			}
			if err := db.Create(comment).Error; err != nil {
				return err
			}
			if firstComment == nil {
				firstComment = comment
			}
		}

		for _, u := range users {
			if u.ID != post.UserID && r.Intn(4) == 0 {
				like := models.Like{UserID: u.ID, PostID: post.ID}
				if err := db.Create(&like).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func createConversations(db *gorm.DB, r *rand.Rand, users []*models.User) error {
	if len(users) < 4 {
		return nil
	}

	// A few DMs between random pairs.
	for i := 0; i < len(users)/3; i++ {
		a, b := users[r.Intn(len(users))], users[r.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		if err := createConversation(db, r, &models.Conversation{CreatedBy: a.ID}, []*models.User{a, b}); err != nil {
			return err
		}
	}

	// One group chat with a handful of members.
	members := []*models.User{users[0]}
	for _, u := range users[1:] {
		if len(members) >= 5 {
			break
		}
		members = append(members, u)
	}
	group := &models.Conversation{
		Name:      gofakeit.HipsterWord(),
		IsGroup:   true,
		CreatedBy: members[0].ID,
	}
	return createConversation(db, r, group, members)
}

func createConversation(db *gorm.DB, r *rand.Rand, conv *models.Conversation, members []*models.User) error {
	if err := db.Create(conv).Error; err != nil {
		return err
	}
	for _, m := range members {
		p := models.ConversationParticipant{ConversationID: conv.ID, UserID: m.ID}
		if err := db.Create(&p).Error; err != nil {
			return err
		}
	}
	for i := 0; i < 3+r.Intn(10); i++ {
		sender := members[r.Intn(len(members))]
		msg := models.Message{
			ConversationID: conv.ID,
			SenderID:       sender.ID,
			Content:        gofakeit.HipsterSentence(4 + r.Intn(12)),
			CreatedAt:      spreadBack(r, 14),
		}
		if err := db.Create(&msg).Error; err != nil {
			return err
		}
	}
	return nil
}

// spreadBack returns a timestamp up to maxDays in the past so feeds
// don't look like they were created in one burst.
func spreadBack(r *rand.Rand, maxDays int) time.Time {
	return time.Now().
		Add(-time.Duration(r.Intn(maxDays*24)) * time.Hour).
		Add(-time.Duration(r.Intn(60)) * time.Minute)
}
