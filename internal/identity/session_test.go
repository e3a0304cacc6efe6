package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

type fakeAuthenticator struct {
	signInErr error
	revoked   []string
}

func (f *fakeAuthenticator) SignIn(_ context.Context, email, _ string) (*models.Identity, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &models.Identity{UID: "uid-" + email, Email: email, IDToken: "tok"}, nil
}

func (f *fakeAuthenticator) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return f.SignIn(ctx, email, password)
}

func (f *fakeAuthenticator) Verify(_ context.Context, idToken string) (*models.Identity, error) {
	if idToken != "tok" {
		return nil, codeError(apperror.CodeInvalidCredential, nil)
	}
	return &models.Identity{UID: "uid-restored"}, nil
}

func (f *fakeAuthenticator) Revoke(_ context.Context, uid string) error {
	f.revoked = append(f.revoked, uid)
	return nil
}

func receive(t *testing.T, ch <-chan *models.Identity) *models.Identity {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for auth state callback")
		return nil
	}
}

func TestSession_OnAuthStateChanged(t *testing.T) {
	s := NewSession(&fakeAuthenticator{}, zap.NewNop())
	ch := make(chan *models.Identity, 4)

	unsubscribe := s.OnAuthStateChanged(func(id *models.Identity) { ch <- id })
	assert.Nil(t, receive(t, ch), "first callback carries the current (empty) state")

	_, err := s.SignIn(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	id := receive(t, ch)
	require.NotNil(t, id)
	assert.Equal(t, "uid-a@b.c", id.UID)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.SignOut(context.Background()))
	select {
	case <-ch:
		t.Fatal("callback fired after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Nil(t, s.Current())
}

func TestSession_SignInFailureKeepsState(t *testing.T) {
	s := NewSession(&fakeAuthenticator{signInErr: codeError(apperror.CodeInvalidCredential, nil)}, zap.NewNop())

	_, err := s.SignIn(context.Background(), "a@b.c", "bad")
	var pe apperror.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, apperror.CodeInvalidCredential, pe.ProviderCode())
	assert.Nil(t, s.Current())
}

func TestSession_SignOut(t *testing.T) {
	auth := &fakeAuthenticator{}
	s := NewSession(auth, zap.NewNop())

	assert.ErrorIs(t, s.SignOut(context.Background()), ErrNoSession)

	_, err := s.SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	require.NoError(t, s.SignOut(context.Background()))
	assert.Equal(t, []string{"uid-a@b.c"}, auth.revoked)
	assert.Nil(t, s.Current())
}

func TestSession_Restore(t *testing.T) {
	s := NewSession(&fakeAuthenticator{}, zap.NewNop())

	_, err := s.Restore(context.Background(), "forged")
	assert.Error(t, err)
	assert.Nil(t, s.Current())

	id, err := s.Restore(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "uid-restored", id.UID)
	assert.Equal(t, "tok", s.Current().IDToken)
}
