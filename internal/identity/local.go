package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/portfolio/internal/apperror"
	"github.com/example/portfolio/internal/db"
	"github.com/example/portfolio/internal/models"
)

// AccountsCollection holds local credential records, keyed by UID.
const AccountsCollection = "accounts"

// generationField is the account's token generation, bumped on Revoke.
const generationField = "tokenGeneration"

const (
	localIssuer      = "portfolio-local"
	minPasswordLen   = 6
	maxPasswordLen   = 72 // bcrypt limit
	maxFailedSignIns = 5
	lockoutWindow    = 15 * time.Minute
	maxTrackedEmails = 10000
	defaultTokenTTL  = time.Hour
)

// LocalAuthenticator keeps bcrypt-hashed accounts in a document store and
// issues HS256 ID tokens.
type LocalAuthenticator struct {
	store    db.DocumentStore
	secret   []byte
	cost     int
	tokenTTL time.Duration
	now      func() time.Time

	mu        sync.Mutex
	failures  map[string]failureRecord
	lastSweep time.Time
}

type failureRecord struct {
	count int
	last  time.Time
}

// localClaims carries the account's token generation; Revoke bumps the
// stored generation, which invalidates every token issued before it
// regardless of clock resolution.
type localClaims struct {
	Email      string `json:"email"`
	Generation int    `json:"gen"`
	jwt.RegisteredClaims
}

// NewLocalAuthenticator creates a LocalAuthenticator. The secret must be at
// least 16 bytes.
func NewLocalAuthenticator(store db.DocumentStore, secret string) (*LocalAuthenticator, error) {
	if len(secret) < 16 {
		return nil, errors.New("local auth: JWT secret must be at least 16 characters")
	}
	return &LocalAuthenticator{
		store:    store,
		secret:   []byte(secret),
		cost:     bcrypt.DefaultCost,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
		failures: make(map[string]failureRecord),
	}, nil
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *LocalAuthenticator) WithCost(cost int) *LocalAuthenticator {
	a.cost = cost
	return a
}

func (a *LocalAuthenticator) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, codeError(apperror.CodeInvalidEmail, err)
	}
	if len(password) < minPasswordLen {
		return nil, codeError(apperror.CodeWeakPassword, nil)
	}
	if len(password) > maxPasswordLen {
		return nil, codeError(apperror.CodeWeakPassword, errors.New("password must be 72 bytes or fewer"))
	}

	if _, err := a.findByEmail(ctx, email); err == nil {
		return nil, codeError(apperror.CodeEmailAlreadyInUse, nil)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, codeError(apperror.CodeNetworkFailed, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, codeError(apperror.CodeInternal, fmt.Errorf("hashing password: %w", err))
	}

	uid := uuid.NewString()
	if err := a.store.Set(ctx, AccountsCollection, uid, map[string]interface{}{
		"email":        email,
		"passwordHash": string(hash),
		"displayName":  "",
		"photoURL":     "",
		"createdAt":    db.ServerTimestamp,
	}); err != nil {
		return nil, codeError(apperror.CodeNetworkFailed, err)
	}

	id := &models.Identity{UID: uid, Email: email}
	if id.IDToken, err = a.issue(id, 0); err != nil {
		return nil, codeError(apperror.CodeInternal, err)
	}
	return id, nil
}

func (a *LocalAuthenticator) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if a.lockedOut(email) {
		return nil, codeError(apperror.CodeTooManyRequests, nil)
	}

	doc, err := a.findByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, codeError(apperror.CodeUserNotFound, nil)
	}
	if err != nil {
		return nil, codeError(apperror.CodeNetworkFailed, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doc.String("passwordHash")), []byte(password)); err != nil {
		a.recordFailure(email)
		return nil, codeError(apperror.CodeInvalidCredential, nil)
	}
	a.clearFailures(email)

	id := identityFromAccount(doc)
	if id.IDToken, err = a.issue(id, doc.Int(generationField)); err != nil {
		return nil, codeError(apperror.CodeInternal, err)
	}
	return id, nil
}

func (a *LocalAuthenticator) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, codeError(apperror.CodeInvalidCredential, fmt.Errorf("invalid token: %w", err))
	}

	doc, err := a.store.Get(ctx, AccountsCollection, claims.Subject)
	if errors.Is(err, db.ErrNotFound) {
		return nil, codeError(apperror.CodeUserNotFound, nil)
	}
	if err != nil {
		return nil, codeError(apperror.CodeNetworkFailed, err)
	}

	if claims.Generation != doc.Int(generationField) {
		return nil, codeError(apperror.CodeInvalidCredential, errors.New("token revoked"))
	}

	id := identityFromAccount(doc)
	id.IDToken = idToken
	return id, nil
}

// Revoke makes every token issued so far fail verification, including ones
// issued within the same second.
func (a *LocalAuthenticator) Revoke(ctx context.Context, uid string) error {
	doc, err := a.store.Get(ctx, AccountsCollection, uid)
	if err != nil {
		return fmt.Errorf("revoking tokens for %s: %w", uid, err)
	}
	err = a.store.Update(ctx, AccountsCollection, uid, map[string]interface{}{
		generationField: doc.Int(generationField) + 1,
	})
	if err != nil {
		return fmt.Errorf("revoking tokens for %s: %w", uid, err)
	}
	return nil
}

func (a *LocalAuthenticator) issue(id *models.Identity, generation int) (string, error) {
	now := a.now()
	claims := localClaims{
		Email:      id.Email,
		Generation: generation,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			Issuer:    localIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (a *LocalAuthenticator) findByEmail(ctx context.Context, email string) (*db.Document, error) {
	docs, err := a.store.Query(ctx, AccountsCollection, db.Query{}.Where("email", email).Take(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, db.ErrNotFound
	}
	return docs[0], nil
}

func (a *LocalAuthenticator) lockedOut(email string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.failures[email]
	if !ok {
		return false
	}
	if a.now().Sub(rec.last) > lockoutWindow {
		delete(a.failures, email)
		return false
	}
	return rec.count >= maxFailedSignIns
}

func (a *LocalAuthenticator) recordFailure(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	if now.Sub(a.lastSweep) > lockoutWindow {
		a.sweepFailures(now)
	}
	rec, ok := a.failures[email]
	if !ok && len(a.failures) >= maxTrackedEmails {
		a.evictOldestFailure()
	}
	rec.count++
	rec.last = now
	a.failures[email] = rec
}

// sweepFailures drops records whose lockout window has passed. Callers hold
// a.mu.
func (a *LocalAuthenticator) sweepFailures(now time.Time) {
	for email, rec := range a.failures {
		if now.Sub(rec.last) > lockoutWindow {
			delete(a.failures, email)
		}
	}
	a.lastSweep = now
}

// evictOldestFailure keeps the map bounded when many distinct emails fail
// within one window. Callers hold a.mu.
func (a *LocalAuthenticator) evictOldestFailure() {
	var (
		oldest string
		at     time.Time
	)
	for email, rec := range a.failures {
		if oldest == "" || rec.last.Before(at) {
			oldest, at = email, rec.last
		}
	}
	delete(a.failures, oldest)
}

func (a *LocalAuthenticator) clearFailures(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, email)
}

func identityFromAccount(doc *db.Document) *models.Identity {
	return &models.Identity{
		UID:         doc.ID,
		Email:       doc.String("email"),
		DisplayName: doc.String("displayName"),
		PhotoURL:    doc.String("photoURL"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
