package state

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/identity"
	"github.com/example/portfolio/internal/models"
)

// SignIn checks credentials and stores the resulting user.
type SignIn struct {
	Credentials models.Credentials
}

func (SignIn) Type() string { return "auth/signIn" }

func (a SignIn) run(ctx context.Context, s *Store) error {
	s.commit(func(st *State) {
		st.Auth.Loading = true
		setError(&st.Auth.Error, &st.Auth.ErrorKind, nil)
	})

	id, err := s.services.Auth.SignIn(ctx, a.Credentials.Email, a.Credentials.Password)
	if err != nil {
		appErr := apperror.SignInError(err)
		s.commit(func(st *State) {
			st.Auth.Loading = false
			setError(&st.Auth.Error, &st.Auth.ErrorKind, appErr)
		})
		return appErr
	}

	user := s.services.Users.Transform(ctx, id)
	s.commit(func(st *State) {
		st.Auth.CurrentUser = user
		st.Auth.Loading = false
	})
	return nil
}

// SignUp creates an account and its companion document, then stores the
// new user. A failed companion write is logged; the account stays usable.
type SignUp struct {
	Credentials models.Credentials
}

func (SignUp) Type() string { return "auth/signUp" }

func (a SignUp) run(ctx context.Context, s *Store) error {
	s.commit(func(st *State) {
		st.Auth.Loading = true
		setError(&st.Auth.Error, &st.Auth.ErrorKind, nil)
	})

	id, err := s.services.Auth.SignUp(ctx, a.Credentials.Email, a.Credentials.Password)
	if err != nil {
		appErr := apperror.SignUpError(err)
		s.commit(func(st *State) {
			st.Auth.Loading = false
			setError(&st.Auth.Error, &st.Auth.ErrorKind, appErr)
		})
		return appErr
	}

	if err := s.services.Users.CreateCompanion(ctx, id); err != nil {
		s.logger.Warn("Failed to create companion document", zap.String("uid", id.UID), zap.Error(err))
	}
	user := s.services.Users.Transform(ctx, id)
	s.commit(func(st *State) {
		st.Auth.CurrentUser = user
		st.Auth.Loading = false
	})
	return nil
}

// SignOut ends the provider session and clears the current user.
type SignOut struct{}

func (SignOut) Type() string { return "auth/signOut" }

func (SignOut) run(ctx context.Context, s *Store) error {
	err := s.services.Auth.SignOut(ctx)
	if err != nil && !errors.Is(err, identity.ErrNoSession) {
		appErr := apperror.New(apperror.KindUnknown, "", apperror.DefaultSignOutMessage, err)
		s.commit(func(st *State) {
			st.Auth.CurrentUser = nil
			setError(&st.Auth.Error, &st.Auth.ErrorKind, appErr)
		})
		return appErr
	}
	s.commit(func(st *State) {
		st.Auth.CurrentUser = nil
		setError(&st.Auth.Error, &st.Auth.ErrorKind, nil)
	})
	return nil
}

// SetAuthUser stores the resolved user and marks auth as initialized.
type SetAuthUser struct {
	User *models.User
}

func (SetAuthUser) Type() string { return "auth/setAuthUser" }

func (a SetAuthUser) run(_ context.Context, s *Store) error {
	s.commit(func(st *State) {
		if a.User != nil {
			u := *a.User
			st.Auth.CurrentUser = &u
		} else {
			st.Auth.CurrentUser = nil
		}
		st.Auth.Initialized = true
		st.Auth.Loading = false
	})
	return nil
}
