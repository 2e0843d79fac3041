package service

import (
	"context"
	"testing"
	"time"

	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type engagementFixture struct {
	db    *gorm.DB
	svc   *EngagementService
	cfg   *config.Config
	users repository.UserRepository
	posts repository.PostRepository
	notif repository.NotificationRepository
}

func newEngagementFixture(t *testing.T) *engagementFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{NotifySelfActions: true, NotifyOnFollow: true}
	users := repository.NewUserRepository(db)
	follows := repository.NewFollowRepository(db)
	posts := repository.NewPostRepository(db)
	notif := repository.NewNotificationRepository(db)

	svc := NewEngagementService(db, users, follows, posts, notif, notifications.NewNotifier(nil), cfg)
	return &engagementFixture{db: db, svc: svc, cfg: cfg, users: users, posts: posts, notif: notif}
}

func (f *engagementFixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *engagementFixture) createPost(t *testing.T, authorID uint, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{UserID: authorID, Title: title, Content: "body of " + title}
	p.CreatedAt = at
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func TestEngagementService_FollowUser(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	t.Run("cannot follow yourself", func(t *testing.T) {
		_, err := f.svc.FollowUser(ctx, alice.ID, alice.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		assert.Equal(t, "You cannot follow yourself.", appErr.Message)
	})

	t.Run("missing target is not found", func(t *testing.T) {
		_, err := f.svc.FollowUser(ctx, alice.ID, 9999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("first follow creates edge and notification", func(t *testing.T) {
		res, err := f.svc.FollowUser(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, res.Changed)
		assert.Equal(t, "You are now following bob.", res.Detail)
		assert.Equal(t, int64(1), res.FollowersCount)
		assert.Equal(t, int64(1), res.FollowingCount)

		notifs, err := f.notif.ListForRecipient(ctx, bob.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, VerbFollowed, notifs[0].Verb)
		assert.Equal(t, alice.ID, notifs[0].ActorID)
		assert.Equal(t, models.TargetUser, notifs[0].TargetType)
	})

	t.Run("repeat follow is a no-op", func(t *testing.T) {
		res, err := f.svc.FollowUser(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, res.Changed)
		assert.Equal(t, "You are already following bob.", res.Detail)
		assert.Equal(t, int64(1), res.FollowersCount)

		// No second notification either.
		notifs, err := f.notif.ListForRecipient(ctx, bob.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	})
}

func TestEngagementService_FollowWithoutNotification(t *testing.T) {
	f := newEngagementFixture(t)
	f.cfg.NotifyOnFollow = false
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	res, err := f.svc.FollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	notifs, err := f.notif.ListForRecipient(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, notifs)
}

func TestEngagementService_UnfollowUser(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	_, err := f.svc.FollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	res, err := f.svc.UnfollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "You have unfollowed bob.", res.Detail)
	assert.Equal(t, int64(0), res.FollowersCount)

	res, err = f.svc.UnfollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, "You were not following bob.", res.Detail)
}

func TestEngagementService_Feed(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	reader := f.createUser(t, "reader")
	followed := f.createUser(t, "followed")
	stranger := f.createUser(t, "stranger")

	base := time.Now().Add(-time.Hour)
	old := f.createPost(t, followed.ID, "old", base)
	recent := f.createPost(t, followed.ID, "recent", base.Add(30*time.Minute))
	f.createPost(t, stranger.ID, "unseen", base.Add(45*time.Minute))

	t.Run("empty before following anyone", func(t *testing.T) {
		feed, err := f.svc.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		assert.Empty(t, feed)
	})

	_, err := f.svc.FollowUser(ctx, reader.ID, followed.ID)
	require.NoError(t, err)

	t.Run("only followed authors, newest first", func(t *testing.T) {
		feed, err := f.svc.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, feed, 2)
		assert.Equal(t, recent.ID, feed[0].ID)
		assert.Equal(t, old.ID, feed[1].ID)
	})

	t.Run("own posts are not in the feed", func(t *testing.T) {
		f.createPost(t, reader.ID, "mine", base.Add(50*time.Minute))
		feed, err := f.svc.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		for _, p := range feed {
			assert.NotEqual(t, reader.ID, p.UserID)
		}
	})

	t.Run("unfollow empties the feed immediately", func(t *testing.T) {
		_, err := f.svc.UnfollowUser(ctx, reader.ID, followed.ID)
		require.NoError(t, err)
		feed, err := f.svc.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		assert.Empty(t, feed)
	})
}

func TestEngagementService_LikePost(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	fan := f.createUser(t, "fan")
	post := f.createPost(t, author.ID, "likeable", time.Now())

	t.Run("missing post is not found", func(t *testing.T) {
		_, err := f.svc.LikePost(ctx, fan.ID, 9999)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("like records row and notification together", func(t *testing.T) {
		got, err := f.svc.LikePost(ctx, fan.ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)
		assert.True(t, got.Liked)

		notifs, err := f.notif.ListForRecipient(ctx, author.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, VerbLiked, notifs[0].Verb)
		assert.Equal(t, fan.ID, notifs[0].ActorID)
		assert.Equal(t, models.TargetPost, notifs[0].TargetType)
		assert.Equal(t, post.ID, notifs[0].TargetID)
	})

	t.Run("second like conflicts and adds nothing", func(t *testing.T) {
		_, err := f.svc.LikePost(ctx, fan.ID, post.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
		assert.Equal(t, "Already liked", appErr.Message)

		count, err := f.posts.CountLikes(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		notifs, err := f.notif.ListForRecipient(ctx, author.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	})
}

func TestEngagementService_LikeOwnPost(t *testing.T) {
	ctx := context.Background()

	t.Run("self notification on by default", func(t *testing.T) {
		f := newEngagementFixture(t)
		author := f.createUser(t, "author")
		post := f.createPost(t, author.ID, "own", time.Now())

		_, err := f.svc.LikePost(ctx, author.ID, post.ID)
		require.NoError(t, err)

		notifs, err := f.notif.ListForRecipient(ctx, author.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Equal(t, author.ID, notifs[0].ActorID)
	})

	t.Run("self notification can be disabled", func(t *testing.T) {
		f := newEngagementFixture(t)
		f.cfg.NotifySelfActions = false
		author := f.createUser(t, "author")
		post := f.createPost(t, author.ID, "own", time.Now())

		got, err := f.svc.LikePost(ctx, author.ID, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)

		notifs, err := f.notif.ListForRecipient(ctx, author.ID, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, notifs)
	})
}

func TestEngagementService_UnlikePost(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	author := f.createUser(t, "author")
	fan := f.createUser(t, "fan")
	post := f.createPost(t, author.ID, "likeable", time.Now())

	_, err := f.svc.LikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)

	got, err := f.svc.UnlikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
	assert.False(t, got.Liked)

	// Unliking again succeeds without changing anything.
	got, err = f.svc.UnlikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikesCount)
}

func TestEngagementService_FollowerListings(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	zed := f.createUser(t, "zed")
	amy := f.createUser(t, "amy")
	target := f.createUser(t, "target")

	for _, follower := range []*models.User{zed, amy} {
		_, err := f.svc.FollowUser(ctx, follower.ID, target.ID)
		require.NoError(t, err)
	}

	followers, err := f.svc.Followers(ctx, target.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, followers, 2)
	assert.Equal(t, "amy", followers[0].Username)
	assert.Equal(t, "zed", followers[1].Username)

	following, err := f.svc.Following(ctx, amy.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "target", following[0].Username)

	_, err = f.svc.Followers(ctx, 9999, 10, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestEngagementService_ConcurrentDuplicateFollows(t *testing.T) {
	f := newEngagementFixture(t)
	ctx := context.Background()
	alice := f.createUser(t, "alice")
	bob := f.createUser(t, "bob")

	// Serialized here, but the edge is guarded by a unique index so any
	// interleaving yields exactly one row.
	createdCount := 0
	for i := 0; i < 5; i++ {
		res, err := f.svc.FollowUser(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		if res.Changed {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)

	var edges int64
	require.NoError(t, f.db.Model(&models.Follow{}).Count(&edges).Error)
	assert.Equal(t, int64(1), edges)
}
