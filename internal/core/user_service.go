package core

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/models"
)

type userService struct {
	userRepo db.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService instance.
func NewUserService(ur db.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: ur, logger: logger}
}

func (s *userService) Transform(ctx context.Context, id *models.Identity) *models.User {
	if id == nil {
		return nil
	}
	user := &models.User{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
	}

	isAdmin, err := s.userRepo.IsAdmin(ctx, id.UID)
	switch {
	case err == nil:
		user.IsAdmin = isAdmin
	case errors.Is(err, db.ErrNotFound):
	default:
		s.logger.Warn("Error fetching user data", zap.String("uid", id.UID), zap.Error(err))
	}
	return user
}

func (s *userService) CreateCompanion(ctx context.Context, id *models.Identity) error {
	profile := models.DefaultProfile()
	profile.Email = id.Email
	if err := s.userRepo.CreateCompanion(ctx, id.UID, profile, false); err != nil {
		return err
	}
	s.logger.Info("Created companion document", zap.String("uid", id.UID))
	return nil
}
