package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Integration(t *testing.T) {
	posts := NewPostRepository(testDB)
	follows := NewFollowRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	reader := &models.User{Username: fmt.Sprintf("reader_%d", ts), Email: fmt.Sprintf("reader_%d@e.com", ts)}
	author := &models.User{Username: fmt.Sprintf("author_%d", ts), Email: fmt.Sprintf("author_%d@e.com", ts)}
	outsider := &models.User{Username: fmt.Sprintf("out_%d", ts), Email: fmt.Sprintf("out_%d@e.com", ts)}
	testDB.Create(reader)
	testDB.Create(author)
	testDB.Create(outsider)

	followed := &models.Post{UserID: author.ID, Title: "followed post", Content: "hello"}
	stray := &models.Post{UserID: outsider.ID, Title: "stray post", Content: "unseen"}
	require.NoError(t, posts.Create(ctx, followed))
	require.NoError(t, posts.Create(ctx, stray))

	_, err := follows.Create(ctx, reader.ID, author.ID)
	require.NoError(t, err)

	t.Run("Feed only contains followed authors", func(t *testing.T) {
		feed, err := posts.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		ids := make([]uint, 0, len(feed))
		for _, p := range feed {
			ids = append(ids, p.UserID)
		}
		assert.Contains(t, ids, author.ID)
		assert.NotContains(t, ids, outsider.ID)
	})

	t.Run("Feed is newest first", func(t *testing.T) {
		later := &models.Post{UserID: author.ID, Title: "later", Content: "newer"}
		require.NoError(t, posts.Create(ctx, later))

		feed, err := posts.Feed(ctx, reader.ID, 50, 0)
		require.NoError(t, err)
		require.NotEmpty(t, feed)
		for i := 1; i < len(feed); i++ {
			assert.False(t, feed[i-1].CreatedAt.Before(feed[i].CreatedAt))
		}
	})

	t.Run("Like is idempotent and visible in details", func(t *testing.T) {
		created, err := posts.Like(ctx, reader.ID, followed.ID)
		require.NoError(t, err)
		assert.True(t, created)

		again, err := posts.Like(ctx, reader.ID, followed.ID)
		require.NoError(t, err)
		assert.False(t, again)

		got, err := posts.GetByID(ctx, followed.ID, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.LikesCount)
		assert.True(t, got.Liked)
	})

	t.Run("Unlike reports whether the like existed", func(t *testing.T) {
		removed, err := posts.Unlike(ctx, reader.ID, followed.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = posts.Unlike(ctx, reader.ID, followed.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		count, err := posts.CountLikes(ctx, followed.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Search matches title and content", func(t *testing.T) {
		found, err := posts.Search(ctx, "stray", 10, 0, 0)
		require.NoError(t, err)
		require.NotEmpty(t, found)
		assert.Equal(t, stray.ID, found[0].ID)
	})
}

func TestNotificationRepository_Integration(t *testing.T) {
	repo := NewNotificationRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	recipient := &models.User{Username: fmt.Sprintf("rcpt_%d", ts), Email: fmt.Sprintf("rcpt_%d@e.com", ts)}
	actor := &models.User{Username: fmt.Sprintf("actor_%d", ts), Email: fmt.Sprintf("actor_%d@e.com", ts)}
	testDB.Create(recipient)
	testDB.Create(actor)

	first := &models.Notification{
		RecipientID: recipient.ID,
		ActorID:     actor.ID,
		Verb:        "followed",
		TargetType:  models.TargetUser,
		TargetID:    recipient.ID,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.Notification{
		RecipientID: recipient.ID,
		ActorID:     actor.ID,
		Verb:        "liked",
		TargetType:  models.TargetPost,
		TargetID:    99,
	}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.ListForRecipient(ctx, recipient.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "liked", list[0].Verb)
	assert.Equal(t, actor.Username, list[0].Actor.Username)

	count, err := repo.CountForRecipient(ctx, recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Nothing addressed to the actor.
	none, err := repo.ListForRecipient(ctx, actor.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
