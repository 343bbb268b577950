package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// UpsertUser inserts a user or refreshes its display fields.
func (t *tx) UpsertUser(ctx context.Context, user models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, username)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			username = excluded.username
	`

	_, err := t.exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Username,
	)
	if err != nil {
		return t.wrap("failed to upsert user", err)
	}

	return nil
}

// User retrieves a user by their ID.
func (t *tx) User(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, username
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	err := t.queryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Username,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, t.wrap("failed to get user", err)
	}

	return user, nil
}
