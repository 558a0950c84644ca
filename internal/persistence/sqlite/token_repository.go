package sqlite

import (
	"context"
	"time"

	"github.com/example/meetsync/internal/persistence"
)

// CreateToken stores a new access token.
func (s *Store) CreateToken(ctx context.Context, token persistence.AccessToken) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, user_id, secret_digest, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		token.ID, token.UserID, token.SecretDigest,
		formatTime(token.ExpiresAt), formatTime(token.CreatedAt))
	return mapError(err)
}

// GetToken retrieves a token by id.
func (s *Store) GetToken(ctx context.Context, id string) (persistence.AccessToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, secret_digest, expires_at, created_at
		FROM access_tokens WHERE id = ?`, id)

	var token persistence.AccessToken
	var expiresAt, createdAt string
	err := row.Scan(&token.ID, &token.UserID, &token.SecretDigest, &expiresAt, &createdAt)
	if err != nil {
		return persistence.AccessToken{}, mapError(err)
	}
	if token.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.AccessToken{}, err
	}
	if token.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AccessToken{}, err
	}
	return token, nil
}

// DeleteExpiredTokens removes every token that expired at or before the
// reference instant.
func (s *Store) DeleteExpiredTokens(ctx context.Context, reference time.Time) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at <= ?`, formatTime(reference))
	return mapError(err)
}
