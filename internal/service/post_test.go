package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestPostService_CreatePost(t *testing.T) {
	f := newEngagementFixture(t)
	svc := NewPostService(f.posts, f.users)
	ctx := context.Background()
	author := f.createUser(t, "author")

	t.Run("valid", func(t *testing.T) {
		post, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "hello", Content: "world"})
		require.NoError(t, err)
		assert.Equal(t, author.ID, post.UserID)
		assert.Equal(t, "hello", post.Title)
		assert.Equal(t, 0, post.LikesCount)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Content: "body"})
		assertValidationError(t, err)
	})

	t.Run("missing content", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Title: "title"})
		assertValidationError(t, err)
	})

	t.Run("oversized title", func(t *testing.T) {
		_, err := svc.CreatePost(ctx, CreatePostInput{
			UserID: author.ID, Title: strings.Repeat("t", 201), Content: "body",
		})
		assertValidationError(t, err)
	})
}

func TestPostService_OwnerOnlyMutation(t *testing.T) {
	f := newEngagementFixture(t)
	svc := NewPostService(f.posts, f.users)
	ctx := context.Background()
	owner := f.createUser(t, "owner")
	intruder := f.createUser(t, "intruder")
	post := f.createPost(t, owner.ID, "mine", time.Now())

	_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: intruder.ID, PostID: post.ID, Title: "stolen"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	err = svc.DeletePost(ctx, intruder.ID, post.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)

	updated, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: owner.ID, PostID: post.ID, Title: "still mine"})
	require.NoError(t, err)
	assert.Equal(t, "still mine", updated.Title)

	require.NoError(t, svc.DeletePost(ctx, owner.ID, post.ID))
	_, err = svc.GetPost(ctx, post.ID, owner.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostService_SearchRequiresQuery(t *testing.T) {
	f := newEngagementFixture(t)
	svc := NewPostService(f.posts, f.users)

	_, err := svc.SearchPosts(context.Background(), "", 10, 0, 0)
	assertValidationError(t, err)
}

func TestCommentService_Lifecycle(t *testing.T) {
	f := newEngagementFixture(t)
	comments := repository.NewCommentRepository(f.db)
	svc := NewCommentService(comments, f.posts)
	ctx := context.Background()
	author := f.createUser(t, "author")
	commenter := f.createUser(t, "commenter")
	post := f.createPost(t, author.ID, "commentable", time.Now())

	t.Run("empty content rejected", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: commenter.ID, PostID: post.ID})
		assertValidationError(t, err)
	})

	t.Run("comment on missing post is not found", func(t *testing.T) {
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: commenter.ID, PostID: 9999, Content: "hi"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	comment, err := svc.CreateComment(ctx, CreateCommentInput{UserID: commenter.ID, PostID: post.ID, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, commenter.ID, comment.UserID)

	t.Run("owner-only update", func(t *testing.T) {
		_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: author.ID, CommentID: comment.ID, Content: "hijack"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)

		updated, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: commenter.ID, CommentID: comment.ID, Content: "edited"})
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Content)
	})

	t.Run("comment count surfaces on the post", func(t *testing.T) {
		got, err := f.posts.GetByID(ctx, post.ID, commenter.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CommentsCount)
	})

	t.Run("owner-only delete", func(t *testing.T) {
		err := svc.DeleteComment(ctx, author.ID, comment.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHORIZED", appErr.Code)

		require.NoError(t, svc.DeleteComment(ctx, commenter.ID, comment.ID))
		listed, err := svc.ListByPost(ctx, post.ID, 10, 0, commenter.ID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})
}
