package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/portfolio/internal/models"
)

type userRepository struct {
	store DocumentStore
}

// NewUserRepository creates a UserRepository over the `users` collection.
func NewUserRepository(store DocumentStore) UserRepository {
	return &userRepository{store: store}
}

// IsAdmin reads the companion document's isAdmin flag. A missing document
// yields ErrNotFound.
func (r *userRepository) IsAdmin(ctx context.Context, uid string) (bool, error) {
	doc, err := r.store.Get(ctx, UsersCollection, uid)
	if err != nil {
		return false, err
	}
	return doc.Bool("isAdmin"), nil
}

// GetProfile reads the profile fields of the companion document.
func (r *userRepository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, UsersCollection, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", uid, err)
	}

	profile := models.DefaultProfile()
	if err := doc.Decode(&profile); err != nil {
		return nil, err
	}
	if profile.Experiences == nil {
		profile.Experiences = []models.Experience{}
	}
	if profile.Education == nil {
		profile.Education = []models.Education{}
	}
	if profile.Skills == nil {
		profile.Skills = []models.Skill{}
	}
	return &profile, nil
}

func (r *userRepository) CreateCompanion(ctx context.Context, uid string, profile models.UserProfile, isAdmin bool) error {
	data := profileFields(profile)
	data["isAdmin"] = isAdmin
	if err := r.store.Set(ctx, UsersCollection, uid, data); err != nil {
		return fmt.Errorf("failed to create companion document for user %s: %w", uid, err)
	}
	return nil
}

func (r *userRepository) SetProfile(ctx context.Context, uid string, profile models.UserProfile) error {
	if err := r.store.Merge(ctx, UsersCollection, uid, profileFields(profile)); err != nil {
		return fmt.Errorf("failed to write profile for user %s: %w", uid, err)
	}
	return nil
}

// MergeProfile writes only the fields the patch sets; untouched fields and
// lists keep their stored values.
func (r *userRepository) MergeProfile(ctx context.Context, uid string, patch models.ProfilePatch) error {
	if err := r.store.Merge(ctx, UsersCollection, uid, patch.Fields()); err != nil {
		return fmt.Errorf("failed to merge profile for user %s: %w", uid, err)
	}
	return nil
}

func profileFields(p models.UserProfile) map[string]interface{} {
	p = p.Clone()
	fields := map[string]interface{}{
		"name":        p.Name,
		"avatar":      p.Avatar,
		"bio":         p.Bio,
		"experiences": p.Experiences,
		"education":   p.Education,
		"skills":      p.Skills,
	}
	if p.Email != "" {
		fields["email"] = p.Email
	}
	return fields
}
