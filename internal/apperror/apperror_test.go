package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeProviderErr struct{ code string }

func (e fakeProviderErr) Error() string        { return "provider: " + e.code }
func (e fakeProviderErr) ProviderCode() string { return e.code }

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "Post not found", Message(fmt.Errorf("fetch: %w", NotFound("Post not found"))))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("x")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("gone")))
	assert.Equal(t, KindNetwork, KindOf(fmt.Errorf("wrapped: %w", Network("offline", nil))))
}

func TestErrorIsSentinel(t *testing.T) {
	cause := errors.New("rpc failed")
	err := New(KindNetwork, "", "offline", cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "fallback"))

	nf := NotFound("missing")
	assert.Same(t, nf, Wrap(fmt.Errorf("ctx: %w", nf), "fallback"))

	w := Wrap(errors.New(""), "Failed to fetch posts")
	assert.Equal(t, KindUnknown, w.Kind)
	assert.Equal(t, "Failed to fetch posts", w.Message)
}

func TestSignInError(t *testing.T) {
	tests := []struct {
		name string
		code string
		kind Kind
		msg  string
	}{
		{"invalid credential", CodeInvalidCredential, KindCredential, "Invalid email or password."},
		{"too many requests", CodeTooManyRequests, KindCredential, "Too many failed attempts. Please try again later."},
		{"user not found", CodeUserNotFound, KindCredential, "No account found with this email."},
		{"network", CodeNetworkFailed, KindNetwork, DefaultSignInMessage},
		{"unmapped provider code", "auth/operation-not-allowed", KindCredential, DefaultSignInMessage},
		{"no code", "", KindUnknown, DefaultSignInMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cause error = fakeProviderErr{code: tt.code}
			if tt.code == "" {
				cause = errors.New("socket closed")
			}
			got := SignInError(fmt.Errorf("sign in: %w", cause))
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.msg, got.Message)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestSignUpError(t *testing.T) {
	assert.Equal(t, "An account with this email already exists.",
		SignUpError(fakeProviderErr{CodeEmailAlreadyInUse}).Message)
	assert.Equal(t, "Password should be at least 6 characters.",
		SignUpError(fakeProviderErr{CodeWeakPassword}).Message)
	assert.Equal(t, "Please enter a valid email address.",
		SignUpError(fakeProviderErr{CodeInvalidEmail}).Message)
	assert.Equal(t, DefaultSignUpMessage,
		SignUpError(fakeProviderErr{CodeInvalidCredential}).Message)
	assert.Nil(t, SignUpError(nil))
}
