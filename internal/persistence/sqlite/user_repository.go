package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/meetsync/internal/persistence"
)

// CreateUser stores a new user account.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	availability, err := encodeGrid(user.Availability)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, availability, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.FirstName, user.LastName, availability,
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt))
	return mapError(err)
}

// UpdateUser replaces the stored account fields, including the availability
// grid.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	availability, err := encodeGrid(user.Availability)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = ?, first_name = ?, last_name = ?, availability = ?, updated_at = ?
		WHERE id = ?`,
		user.Email, user.FirstName, user.LastName, availability,
		formatTime(user.UpdatedAt), user.ID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, availability, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address, case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, availability, created_at, updated_at
		FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// DeleteUser removes a user; their meetings, participations and tokens
// cascade.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	s.hub.notify(ctx)
	return nil
}

func scanUser(row *sql.Row) (persistence.User, error) {
	var user persistence.User
	var availability, createdAt, updatedAt string
	err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&availability, &createdAt, &updatedAt)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	if user.Availability, err = decodeGrid(availability); err != nil {
		return persistence.User{}, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}
