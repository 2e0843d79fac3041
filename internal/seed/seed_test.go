package seed

import (
	"testing"

	"ripple/internal/database"
	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSeederRun(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	s := NewSeeder(db)
	require.NoError(t, s.Run(Options{NumUsers: 10, NumPosts: 25, ShouldClean: true}))

	var userCount, postCount, followCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)
	assert.Equal(t, int64(10), userCount)
	assert.Equal(t, int64(25), postCount)
	assert.Positive(t, followCount)

	// No self-follows in the mesh.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = followee_id").
		Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	// Every like has a matching notification.
	var likeCount, likedNotifs int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likeCount).Error)
	require.NoError(t, db.Model(&models.Notification{}).
		Where("verb = ?", "liked").
		Count(&likedNotifs).Error)
	assert.Equal(t, likeCount, likedNotifs)

	// Clean wipes everything.
	require.NoError(t, s.ClearAll())
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Zero(t, userCount)
}
