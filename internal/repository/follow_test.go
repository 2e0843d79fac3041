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

func TestFollowRepository_Integration(t *testing.T) {
	repo := NewFollowRepository(testDB)
	ctx := context.Background()

	ts := time.Now().UnixNano()
	alice := &models.User{Username: fmt.Sprintf("alice_%d", ts), Email: fmt.Sprintf("alice_%d@e.com", ts)}
	bob := &models.User{Username: fmt.Sprintf("bob_%d", ts), Email: fmt.Sprintf("bob_%d@e.com", ts)}
	testDB.Create(alice)
	testDB.Create(bob)

	t.Run("Create is idempotent", func(t *testing.T) {
		created, err := repo.Create(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, created)

		again, err := repo.Create(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, again)

		count, err := repo.CountFollowers(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("Exists and listings", func(t *testing.T) {
		ok, err := repo.Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Exists(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		followers, err := repo.Followers(ctx, bob.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, followers, 1)
		assert.Equal(t, alice.Username, followers[0].Username)

		following, err := repo.Following(ctx, alice.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, following, 1)
		assert.Equal(t, bob.Username, following[0].Username)
	})

	t.Run("Delete reports whether the edge existed", func(t *testing.T) {
		removed, err := repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.Delete(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		count, err := repo.CountFollowing(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})
}
