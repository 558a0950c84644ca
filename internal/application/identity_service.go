package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meetsync/internal/persistence"
)

// DefaultTokenTTL is how long an issued access token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// IdentityService provisions accounts and issues the opaque bearer tokens
// the HTTP layer resolves into a Principal. A token travels as "id.secret";
// only an argon2id digest of the secret is stored.
type IdentityService struct {
	users       UserStore
	tokens      TokenStore
	idGenerator func() string
	now         func() time.Time
	tokenTTL    time.Duration
	params      Argon2idParams
	logger      *slog.Logger
}

// NewIdentityService wires dependencies for account and token operations.
func NewIdentityService(users UserStore, tokens TokenStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *IdentityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &IdentityService{
		users:       users,
		tokens:      tokens,
		idGenerator: idGenerator,
		now:         now,
		tokenTTL:    DefaultTokenTTL,
		params:      DefaultArgon2idParams,
		logger:      defaultLogger(logger),
	}
}

// WithTokenTTL overrides the token lifetime, primarily for tests.
func (s *IdentityService) WithTokenTTL(ttl time.Duration) *IdentityService {
	if ttl > 0 {
		s.tokenTTL = ttl
	}
	return s
}

// CreateUser provisions an account with an empty availability grid.
func (s *IdentityService) CreateUser(ctx context.Context, input NewUserInput) (persistence.User, error) {
	logger := serviceLogger(ctx, s.logger, "identity", "create_user")

	vErr := &ValidationError{}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		vErr.add("email", "a valid email address is required")
	}
	if input.FirstName == "" {
		vErr.add("firstName", "first name is required")
	}
	if vErr.HasErrors() {
		return persistence.User{}, vErr
	}

	createdAt := s.now()
	user := persistence.User{
		ID:        s.idGenerator(),
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			vErr.add("email", "email address is already registered")
			return persistence.User{}, vErr
		}
		return persistence.User{}, mapStoreError(err)
	}
	logger.InfoContext(ctx, "user created", "user_id", user.ID)
	return user, nil
}

// IssueToken mints a bearer token for the user owning the given email
// address. The returned string is the only copy of the secret.
func (s *IdentityService) IssueToken(ctx context.Context, email string) (string, error) {
	logger := serviceLogger(ctx, s.logger, "identity", "issue_token")

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", mapStoreError(err)
	}

	secret, err := newTokenSecret()
	if err != nil {
		return "", err
	}
	digest, err := digestTokenSecret(secret, s.params)
	if err != nil {
		return "", err
	}

	token := persistence.AccessToken{
		ID:           s.idGenerator(),
		UserID:       user.ID,
		SecretDigest: digest,
		ExpiresAt:    s.now().Add(s.tokenTTL),
		CreatedAt:    s.now(),
	}
	if err := s.tokens.CreateToken(ctx, token); err != nil {
		return "", mapStoreError(err)
	}
	logger.InfoContext(ctx, "token issued", "user_id", user.ID, "token_id", token.ID)
	return token.ID + "." + secret, nil
}

// Resolve authenticates a presented bearer token and returns the principal
// it belongs to. Unknown, malformed or mismatched tokens resolve to
// ErrInvalidToken; expired ones to ErrTokenExpired.
func (s *IdentityService) Resolve(ctx context.Context, bearer string) (Principal, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(bearer), ".")
	if !ok || id == "" || secret == "" {
		return Principal{}, ErrInvalidToken
	}

	token, err := s.tokens.GetToken(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, err
	}
	if !s.now().Before(token.ExpiresAt) {
		return Principal{}, ErrTokenExpired
	}
	if err := verifyTokenSecret(token.SecretDigest, secret); err != nil {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: token.UserID}, nil
}

// Profile returns the account behind a principal.
func (s *IdentityService) Profile(ctx context.Context, principal Principal) (persistence.User, error) {
	user, err := s.users.GetUser(ctx, principal.UserID)
	if err != nil {
		return persistence.User{}, mapStoreError(err)
	}
	return user, nil
}

// PurgeExpired deletes every token whose expiry is at or before now. Run
// periodically by the server's janitor schedule.
func (s *IdentityService) PurgeExpired(ctx context.Context) error {
	logger := serviceLogger(ctx, s.logger, "identity", "purge_expired")
	if err := s.tokens.DeleteExpiredTokens(ctx, s.now()); err != nil {
		logger.ErrorContext(ctx, "token purge failed", "error", err)
		return err
	}
	logger.InfoContext(ctx, "expired tokens purged")
	return nil
}
