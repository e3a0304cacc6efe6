package apperror

import "errors"

// Provider error codes understood by the friendly-message tables. Auth
// provider adapters translate their native failures into these.
const (
	CodeInvalidCredential = "auth/invalid-credential"
	CodeTooManyRequests   = "auth/too-many-requests"
	CodeUserNotFound      = "auth/user-not-found"
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeWeakPassword      = "auth/weak-password"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeInternal          = "auth/internal-error"
)

const (
	DefaultSignInMessage  = "Failed to sign in. Please check your credentials."
	DefaultSignUpMessage  = "Failed to create account. Please try again."
	DefaultSignOutMessage = "Failed to sign out"
	DefaultSessionMessage = "Failed to authenticate user"
)

var signInMessages = map[string]string{
	CodeInvalidCredential: "Invalid email or password.",
	CodeTooManyRequests:   "Too many failed attempts. Please try again later.",
	CodeUserNotFound:      "No account found with this email.",
}

var signUpMessages = map[string]string{
	CodeEmailAlreadyInUse: "An account with this email already exists.",
	CodeWeakPassword:      "Password should be at least 6 characters.",
	CodeInvalidEmail:      "Please enter a valid email address.",
}

// SignInError maps a provider failure during sign-in to a user-facing error.
func SignInError(err error) *Error {
	return mapAuthError(err, signInMessages, DefaultSignInMessage)
}

// SignUpError maps a provider failure during sign-up to a user-facing error.
func SignUpError(err error) *Error {
	return mapAuthError(err, signUpMessages, DefaultSignUpMessage)
}

// ProviderError is implemented by auth provider failures that expose a
// provider error code.
type ProviderError interface {
	error
	ProviderCode() string
}

func mapAuthError(err error, table map[string]string, fallback string) *Error {
	if err == nil {
		return nil
	}
	code := codeOf(err)
	kind := KindCredential
	if code == CodeNetworkFailed {
		kind = KindNetwork
	}
	msg, ok := table[code]
	if !ok {
		msg = fallback
		if code == "" || code == CodeInternal {
			kind = KindUnknown
		}
	}
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

func codeOf(err error) string {
	var pe ProviderError
	if errors.As(err, &pe) {
		return pe.ProviderCode()
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
