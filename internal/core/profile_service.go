package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/models"
)

const (
	fetchProfileMessage  = "Failed to fetch profile"
	updateProfileMessage = "Failed to update profile"
)

type profileService struct {
	userRepo db.UserRepository
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(ur db.UserRepository, logger *zap.Logger) ProfileService {
	return &profileService{userRepo: ur, logger: logger}
}

// Fetch reads then writes without a transaction; concurrent first loads
// from two sessions both write and the last one wins.
func (s *profileService) Fetch(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, apperror.Wrap(err, fetchProfileMessage)
	}

	fresh := models.DefaultProfile()
	if err := s.userRepo.SetProfile(ctx, userID, fresh); err != nil {
		return nil, apperror.Wrap(err, fetchProfileMessage)
	}
	s.logger.Info("Created default profile", zap.String("uid", userID))
	return &fresh, nil
}

func (s *profileService) Update(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if err := patch.Validate(); err != nil {
		return apperror.Validation(err.Error(), err)
	}
	if patch.Empty() {
		return nil
	}
	if err := s.userRepo.MergeProfile(ctx, userID, patch); err != nil {
		return apperror.Wrap(err, updateProfileMessage)
	}
	return nil
}
