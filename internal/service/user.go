package service

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"
)

// UserService provides profile lookups and updates.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	UserID   uint
	Username string
	Bio      string
}

// Profile is a user together with their follow counts.
type Profile struct {
	models.User
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the user with follower and following counts attached.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.CountFollowers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: *user, FollowersCount: followers, FollowingCount: following}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, models.NewConflictError("Username already taken")
		}
		user.Username = in.Username
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, user.ID)

	return user, nil
}

// SetRole promotes or demotes a user. Callers enforce admin authorization.
func (s *UserService) SetRole(ctx context.Context, targetID uint, role models.Role) (*models.User, error) {
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, models.NewValidationError("Invalid role")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, user.ID)

	return user, nil
}
