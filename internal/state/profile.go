package state

import (
	"context"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

// FetchUserProfile loads the profile of UserID into the profile slice.
type FetchUserProfile struct {
	UserID string
}

func (FetchUserProfile) Type() string { return "profile/fetchProfile" }

func (a FetchUserProfile) run(ctx context.Context, s *Store) error {
	s.commit(func(st *State) {
		st.Profile.Loading = true
		setError(&st.Profile.Error, &st.Profile.ErrorKind, nil)
	})

	profile, err := s.services.Profiles.Fetch(ctx, a.UserID)
	if err != nil {
		appErr := apperror.Wrap(err, "Failed to fetch profile")
		s.commit(func(st *State) {
			st.Profile.Loading = false
			setError(&st.Profile.Error, &st.Profile.ErrorKind, appErr)
		})
		return appErr
	}

	s.commit(func(st *State) {
		p := profile.Clone()
		st.Profile.Profile = &p
		st.Profile.Loading = false
	})
	return nil
}

// UpdateUserProfile merges Patch into the stored profile and mirrors the
// merge into the slice. Fields the patch leaves nil survive on both sides.
type UpdateUserProfile struct {
	UserID string
	Patch  models.ProfilePatch
}

func (UpdateUserProfile) Type() string { return "profile/updateProfile" }

func (a UpdateUserProfile) run(ctx context.Context, s *Store) error {
	s.commit(func(st *State) {
		st.Profile.Loading = true
		setError(&st.Profile.Error, &st.Profile.ErrorKind, nil)
	})

	patch := a.Patch.WithItemIDs(s.now())
	if err := s.services.Profiles.Update(ctx, a.UserID, patch); err != nil {
		appErr := apperror.Wrap(err, "Failed to update profile")
		s.commit(func(st *State) {
			st.Profile.Loading = false
			setError(&st.Profile.Error, &st.Profile.ErrorKind, appErr)
		})
		return appErr
	}

	s.commit(func(st *State) {
		base := models.DefaultProfile()
		if st.Profile.Profile != nil {
			base = *st.Profile.Profile
		}
		merged := patch.Apply(base)
		st.Profile.Profile = &merged
		st.Profile.Loading = false
	})
	return nil
}

// ResetProfile clears the profile slice.
type ResetProfile struct{}

func (ResetProfile) Type() string { return "profile/resetProfile" }

func (ResetProfile) run(_ context.Context, s *Store) error {
	s.commit(func(st *State) {
		st.Profile = ProfileState{}
	})
	return nil
}
