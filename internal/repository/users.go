package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// CreateUser creates a new staff account in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO pawn.users (name, username, pass_hash, role, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Name, user.Username, user.PassHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByUsername retrieves a user by username
func (r *Repository) FindUserByUsername(username string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, username, pass_hash, role, created_at
		FROM pawn.users
		WHERE username = $1`
	err := r.db.QueryRow(query, username).
		Scan(&user.ID, &user.Name, &user.Username, &user.PassHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(id int64) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, name, username, pass_hash, role, created_at
		FROM pawn.users
		WHERE id = $1`
	err := r.db.QueryRow(query, id).
		Scan(&user.ID, &user.Name, &user.Username, &user.PassHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns all staff accounts, oldest first.
func (r *Repository) ListUsers() ([]*models.User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, username, pass_hash, role, created_at
		FROM pawn.users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Name, &user.Username,
			&user.PassHash, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes a staff account.
func (r *Repository) DeleteUser(id int64) error {
	res, err := r.db.Exec(`DELETE FROM pawn.users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(res)
}

// UpdateUserPassword replaces a user's password hash.
func (r *Repository) UpdateUserPassword(id int64, passHash string) error {
	res, err := r.db.Exec(`UPDATE pawn.users SET pass_hash = $1 WHERE id = $2`,
		passHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res)
}

// CreatePasswordReset stores a recovery token, replacing any previous one
// with the same token value.
func (r *Repository) CreatePasswordReset(reset *models.PasswordReset) error {
	_, err := r.db.Exec(`
		INSERT INTO pawn.password_resets (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`,
		reset.Token, reset.UserID, reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create password reset: %w", err)
	}
	return nil
}

// FindPasswordReset retrieves a recovery token for a specific user.
func (r *Repository) FindPasswordReset(token string, userID int64) (*models.PasswordReset, error) {
	reset := &models.PasswordReset{}
	err := r.db.QueryRow(`
		SELECT token, user_id, expires_at, created_at
		FROM pawn.password_resets
		WHERE token = $1 AND user_id = $2`,
		token, userID).
		Scan(&reset.Token, &reset.UserID, &reset.ExpiresAt, &reset.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find password reset: %w", err)
	}
	return reset, nil
}

// DeletePasswordReset discards a used or expired token.
func (r *Repository) DeletePasswordReset(token string) error {
	_, err := r.db.Exec(`DELETE FROM pawn.password_resets WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete password reset: %w", err)
	}
	return nil
}

// PurgeExpiredResets clears tokens past their expiry.
func (r *Repository) PurgeExpiredResets(now time.Time) error {
	_, err := r.db.Exec(`DELETE FROM pawn.password_resets WHERE expires_at < $1`, now)
	if err != nil {
		return fmt.Errorf("failed to purge expired resets: %w", err)
	}
	return nil
}
