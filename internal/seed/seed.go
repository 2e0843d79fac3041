// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder creates demo data: users, a follow mesh, posts, comments, likes
// and the notifications those engagements would have produced.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters for FK constraints.
func (s *Seeder) ClearAll() error {
	for _, table := range []string{"notifications", "likes", "comments", "posts", "follows", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")
	return nil
}

// Run seeds the database according to the options.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if err := s.seedFollows(users); err != nil {
		return err
	}
	posts, err := s.seedPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.seedComments(users, posts); err != nil {
		return err
	}
	if err := s.seedLikes(users, posts); err != nil {
		return err
	}

	log.Printf("Seeded %d users and %d posts", len(users), len(posts))
	return nil
}

// All seeded accounts share one password so demos can log in as anyone.
const seedPassword = "Password123!"

func (s *Seeder) seedUsers(n int) ([]*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := &models.User{
			Username: username,
			Email:    fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(8),
		}
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("creating user %s: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// seedFollows builds a sparse directed mesh; each user follows a handful of
// others and gets the matching notification.
func (s *Seeder) seedFollows(users []*models.User) error {
	for _, follower := range users {
		count := 2 + s.rng.Intn(5)
		for i := 0; i < count; i++ {
			target := users[s.rng.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			res := s.db.Exec(
				`INSERT INTO follows (follower_id, followee_id, created_at)
				 VALUES (?, ?, CURRENT_TIMESTAMP)
				 ON CONFLICT (follower_id, followee_id) DO NOTHING`,
				follower.ID, target.ID,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				notif := &models.Notification{
					RecipientID: target.ID,
					ActorID:     follower.ID,
					Verb:        "followed",
					TargetType:  models.TargetUser,
					TargetID:    target.ID,
				}
				if err := s.db.Create(notif).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		post := &models.Post{
			UserID:  author.ID,
			Title:   gofakeit.Sentence(5),
			Content: gofakeit.Paragraph(1, 3, 5, "\n"),
		}
		// Spread created_at over the past 90 days so feeds look lived-in.
		daysBack := s.rng.Intn(90)
		minsBack := s.rng.Intn(24 * 60)
		post.CreatedAt = time.Now().
			Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(minsBack)*time.Minute)
		if err := s.db.Create(post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		count := s.rng.Intn(4)
		for i := 0; i < count; i++ {
			commenter := users[s.rng.Intn(len(users))]
			comment := &models.Comment{
				UserID:  commenter.ID,
				PostID:  post.ID,
				Content: gofakeit.Sentence(10),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedLikes(users []*models.User, posts []*models.Post) error {
	for _, post := range posts {
		count := s.rng.Intn(6)
		for i := 0; i < count; i++ {
			liker := users[s.rng.Intn(len(users))]
			res := s.db.Exec(
				`INSERT INTO likes (user_id, post_id, created_at)
				 VALUES (?, ?, CURRENT_TIMESTAMP)
				 ON CONFLICT (user_id, post_id) DO NOTHING`,
				liker.ID, post.ID,
			)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				notif := &models.Notification{
					RecipientID: post.UserID,
					ActorID:     liker.ID,
					Verb:        "liked",
					TargetType:  models.TargetPost,
					TargetID:    post.ID,
				}
				if err := s.db.Create(notif).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}
