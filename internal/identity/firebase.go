package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/models"
)

// FirebaseAuthenticator checks passwords through the Identity Toolkit REST
// API (the same endpoint the web SDK uses) and verifies or revokes ID tokens
// through the Admin SDK.
type FirebaseAuthenticator struct {
	toolkit *identitytoolkit.Service
	admin   *auth.Client
	logger  *zap.Logger
}

// NewFirebaseAuthenticator creates the Identity Toolkit service with the
// project's Web API key and the Admin SDK auth client from app.
func NewFirebaseAuthenticator(ctx context.Context, app *firebase.App, apiKey string, logger *zap.Logger) (*FirebaseAuthenticator, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	return &FirebaseAuthenticator{toolkit: toolkit, admin: admin, logger: logger}, nil
}

func (a *FirebaseAuthenticator) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := a.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toolkitError(err)
	}
	return &models.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoUrl,
		IDToken:     resp.IdToken,
	}, nil
}

func (a *FirebaseAuthenticator) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	resp, err := a.toolkit.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, toolkitError(err)
	}
	return &models.Identity{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		IDToken:     resp.IdToken,
	}, nil
}

// Verify checks the ID token signature and expiry, then loads the current
// user record so profile fields reflect the latest state.
func (a *FirebaseAuthenticator) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := a.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, codeError(apperror.CodeInvalidCredential, err)
	}
	record, err := a.admin.GetUser(ctx, token.UID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, codeError(apperror.CodeUserNotFound, err)
		}
		return nil, codeError(apperror.CodeNetworkFailed, err)
	}
	return &models.Identity{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		PhotoURL:    record.PhotoURL,
		IDToken:     idToken,
	}, nil
}

func (a *FirebaseAuthenticator) Revoke(ctx context.Context, uid string) error {
	if err := a.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoking refresh tokens for %s: %w", uid, err)
	}
	a.logger.Debug("Revoked refresh tokens", zap.String("uid", uid))
	return nil
}

// toolkitCodes maps Identity Toolkit error messages to provider codes.
var toolkitCodes = map[string]string{
	"INVALID_PASSWORD":            apperror.CodeInvalidCredential,
	"INVALID_LOGIN_CREDENTIALS":   apperror.CodeInvalidCredential,
	"USER_DISABLED":               apperror.CodeInvalidCredential,
	"EMAIL_NOT_FOUND":             apperror.CodeUserNotFound,
	"TOO_MANY_ATTEMPTS_TRY_LATER": apperror.CodeTooManyRequests,
	"EMAIL_EXISTS":                apperror.CodeEmailAlreadyInUse,
	"WEAK_PASSWORD":               apperror.CodeWeakPassword,
	"INVALID_EMAIL":               apperror.CodeInvalidEmail,
	"MISSING_PASSWORD":            apperror.CodeWeakPassword,
}

func toolkitError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return codeError(apperror.CodeNetworkFailed, err)
	}
	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	key := strings.TrimSpace(strings.SplitN(gerr.Message, ":", 2)[0])
	if code, ok := toolkitCodes[key]; ok {
		return codeError(code, err)
	}
	return codeError(apperror.CodeInternal, err)
}
