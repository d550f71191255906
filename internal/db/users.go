package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shalteor/kitchenhub/internal/models"
)

// CreateUser inserts a new user. ErrUserExists is returned when the username
// is taken, including when a concurrent insert wins the race.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (username, password, created_at) VALUES (?, ?, ?)`

	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, query, user.Username, user.PasswordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password, created_at FROM users WHERE username = ?`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, username))
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, username, password, created_at FROM users WHERE id = ?`
	return db.scanUser(db.conn.QueryRowContext(ctx, query, id))
}

// CountUsersByUsername reports how many rows carry username
func (db *DB) CountUsersByUsername(ctx context.Context, username string) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
