// Package identity is the authentication half of the remote data service.
//
// A Session holds the signed-in identity of one client and fans out auth state
// changes to its subscribers. Credential checks are delegated to an
// Authenticator shared by all sessions: FirebaseAuthenticator against Firebase
// Authentication, LocalAuthenticator against accounts kept in a document store.
package identity

import (
	"context"
	"errors"

	"github.com/example/portfolio/internal/models"
)

// Provider is what the auth slice and lifecycle consume.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	// Current returns the signed-in identity or nil.
	Current() *models.Identity
	// OnAuthStateChanged registers fn to be called asynchronously with the
	// current identity right away and again on every change. The returned
	// function removes the registration.
	OnAuthStateChanged(fn func(*models.Identity)) (unsubscribe func())
	// Restore signs the session in from a previously issued ID token.
	Restore(ctx context.Context, idToken string) (*models.Identity, error)
}

// Authenticator performs stateless credential operations.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password string) (*models.Identity, error)
	// Verify checks an ID token and returns the identity it was issued for.
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
	// Revoke invalidates every token issued to uid so far.
	Revoke(ctx context.Context, uid string) error
}

// Error is an auth failure carrying a provider code such as
// "auth/invalid-credential".
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// ProviderCode implements apperror.ProviderError.
func (e *Error) ProviderCode() string { return e.Code }

func codeError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// ErrNoSession is returned by SignOut when nobody is signed in.
var ErrNoSession = errors.New("no signed-in user")
