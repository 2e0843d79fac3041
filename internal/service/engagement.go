// Package service contains the business logic layer.
package service

import (
	"context"
	"fmt"

	"ripple/internal/config"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/repository"

	"gorm.io/gorm"
)

// Notification verbs recorded by engagement actions.
const (
	VerbFollowed = "followed"
	VerbLiked    = "liked"
)

// FollowResult describes the outcome of a follow or unfollow request,
// including the counts recomputed after the change.
type FollowResult struct {
	Detail         string `json:"detail"`
	Changed        bool   `json:"changed"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// EngagementService orchestrates follows, feeds and likes. It owns the
// transaction boundary where an engagement write and its notification
// must commit or roll back together.
type EngagementService struct {
	db         *gorm.DB
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	notifRepo  repository.NotificationRepository
	notifier   *notifications.Notifier
	cfg        *config.Config
}

// NewEngagementService returns a new EngagementService.
func NewEngagementService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	postRepo repository.PostRepository,
	notifRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
	cfg *config.Config,
) *EngagementService {
	return &EngagementService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		postRepo:   postRepo,
		notifRepo:  notifRepo,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// FollowUser makes userID follow targetID. Following an already followed
// user is not an error; the result reports whether the edge was created.
// The self-check runs before target resolution so following yourself is
// rejected even when your own record lookup would succeed.
func (s *EngagementService) FollowUser(ctx context.Context, userID, targetID uint) (*FollowResult, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself.")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var created bool
	var notif *models.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		created, txErr = repository.NewFollowRepository(tx).Create(ctx, userID, targetID)
		if txErr != nil {
			return txErr
		}
		if created && s.cfg.NotifyOnFollow {
			notif = &models.Notification{
				RecipientID: targetID,
				ActorID:     userID,
				Verb:        VerbFollowed,
				TargetType:  models.TargetUser,
				TargetID:    targetID,
			}
			return s.notifRepo.WithTx(tx).Create(ctx, notif)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		middleware.EngagementEvents.WithLabelValues("follow", "created").Inc()
		s.publish(ctx, notif)
	} else {
		middleware.EngagementEvents.WithLabelValues("follow", "duplicate").Inc()
	}

	detail := fmt.Sprintf("You are now following %s.", target.Username)
	if !created {
		detail = fmt.Sprintf("You are already following %s.", target.Username)
	}
	return s.followResult(ctx, userID, targetID, detail, created)
}

// UnfollowUser removes the follow edge if present. Unfollowing a user you
// never followed is a no-op, not an error.
func (s *EngagementService) UnfollowUser(ctx context.Context, userID, targetID uint) (*FollowResult, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot unfollow yourself.")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	removed, err := s.followRepo.Delete(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	if removed {
		middleware.EngagementEvents.WithLabelValues("unfollow", "removed").Inc()
	} else {
		middleware.EngagementEvents.WithLabelValues("unfollow", "noop").Inc()
	}

	detail := fmt.Sprintf("You have unfollowed %s.", target.Username)
	if !removed {
		detail = fmt.Sprintf("You were not following %s.", target.Username)
	}
	return s.followResult(ctx, userID, targetID, detail, removed)
}

func (s *EngagementService) followResult(ctx context.Context, userID, targetID uint, detail string, changed bool) (*FollowResult, error) {
	followers, err := s.followRepo.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{
		Detail:         detail,
		Changed:        changed,
		FollowersCount: followers,
		FollowingCount: following,
	}, nil
}

// Feed returns posts authored by users the given user follows, newest first.
func (s *EngagementService) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, userID, limit, offset)
}

// Followers lists the users following targetID.
func (s *EngagementService) Followers(ctx context.Context, targetID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, targetID, limit, offset)
}

// Following lists the users targetID follows.
func (s *EngagementService) Following(ctx context.Context, targetID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, targetID, limit, offset)
}

// LikePost records a like for the post. Liking a post twice fails with a
// conflict. The like row and its notification commit in one transaction so
// a recorded like is never missing its notification.
func (s *EngagementService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	var notif *models.Notification
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, txErr := repository.NewPostRepository(tx).Like(ctx, userID, postID)
		if txErr != nil {
			return txErr
		}
		if !created {
			return models.NewConflictError("Already liked")
		}
		if post.UserID == userID && !s.cfg.NotifySelfActions {
			return nil
		}
		notif = &models.Notification{
			RecipientID: post.UserID,
			ActorID:     userID,
			Verb:        VerbLiked,
			TargetType:  models.TargetPost,
			TargetID:    postID,
		}
		return s.notifRepo.WithTx(tx).Create(ctx, notif)
	})
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "CONFLICT" {
			middleware.EngagementEvents.WithLabelValues("like", "duplicate").Inc()
		}
		return nil, err
	}

	middleware.EngagementEvents.WithLabelValues("like", "created").Inc()
	s.publish(ctx, notif)

	return s.postRepo.GetByID(ctx, postID, userID)
}

// UnlikePost removes the caller's like from the post. Unliking a post that
// was never liked succeeds without changing anything.
func (s *EngagementService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	removed, err := s.postRepo.Unlike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if removed {
		middleware.EngagementEvents.WithLabelValues("unlike", "removed").Inc()
	} else {
		middleware.EngagementEvents.WithLabelValues("unlike", "noop").Inc()
	}

	return s.postRepo.GetByID(ctx, postID, userID)
}

// publish fans the committed notification out over Redis. Failures are
// logged and swallowed; the notification row is already durable.
func (s *EngagementService) publish(ctx context.Context, notif *models.Notification) {
	if notif == nil {
		return
	}
	middleware.NotificationsEmitted.WithLabelValues(notif.Verb).Inc()
	if err := s.notifier.PublishNotification(ctx, notif); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			"recipient_id", notif.RecipientID, "verb", notif.Verb, "error", err)
	}
}
