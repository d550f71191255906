package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shalteor/kitchenhub/internal/models"
)

// ListShoppingItems returns open items first, newest first within each group
func (db *DB) ListShoppingItems(ctx context.Context) ([]models.ShoppingItem, error) {
	query := `
		SELECT id, item, quantity, category, completed, created_at, updated_at
		FROM shopping_items
		ORDER BY completed ASC, created_at DESC, id DESC
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items: %w", err)
	}
	defer rows.Close()

	items := []models.ShoppingItem{}
	for rows.Next() {
		var item models.ShoppingItem
		if err := rows.Scan(
			&item.ID,
			&item.Item,
			&item.Quantity,
			&item.Category,
			&item.Completed,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shopping items: %w", err)
	}
	return items, nil
}

// GetShoppingItem retrieves one item by ID
func (db *DB) GetShoppingItem(ctx context.Context, id int64) (*models.ShoppingItem, error) {
	query := `
		SELECT id, item, quantity, category, completed, created_at, updated_at
		FROM shopping_items
		WHERE id = ?
	`

	item := &models.ShoppingItem{}
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.Item,
		&item.Quantity,
		&item.Category,
		&item.Completed,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping item: %w", err)
	}
	return item, nil
}

// AddShoppingItem inserts an item and fills in its ID and timestamps
func (db *DB) AddShoppingItem(ctx context.Context, item *models.ShoppingItem) error {
	query := `
		INSERT INTO shopping_items (item, quantity, category, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx, query, item.Item, item.Quantity, item.Category, item.Completed, now, now)
	if err != nil {
		return fmt.Errorf("failed to add shopping item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// ToggleShoppingItem flips the completion flag in one statement and returns
// the item name with its new state.
func (db *DB) ToggleShoppingItem(ctx context.Context, id int64) (string, bool, error) {
	query := `
		UPDATE shopping_items
		SET completed = NOT completed, updated_at = ?
		WHERE id = ?
		RETURNING item, completed
	`

	var name string
	var completed bool
	err := db.conn.QueryRowContext(ctx, query, time.Now().UTC(), id).Scan(&name, &completed)
	if err == sql.ErrNoRows {
		return "", false, ErrItemNotFound
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to toggle shopping item: %w", err)
	}
	return name, completed, nil
}

// EditShoppingItem overwrites an item and returns its previous name
func (db *DB) EditShoppingItem(ctx context.Context, id int64, name, quantity, category string) (string, error) {
	var previous string
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT item FROM shopping_items WHERE id = ?`, id).Scan(&previous)
		if err == sql.ErrNoRows {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get shopping item: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE shopping_items
			SET item = ?, quantity = ?, category = ?, updated_at = ?
			WHERE id = ?
		`, name, quantity, category, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to edit shopping item: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// DeleteShoppingItem removes an item and returns the name it had
func (db *DB) DeleteShoppingItem(ctx context.Context, id int64) (string, error) {
	var name string
	err := db.conn.QueryRowContext(ctx, `DELETE FROM shopping_items WHERE id = ? RETURNING item`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to delete shopping item: %w", err)
	}
	return name, nil
}

// CompleteAllShoppingItems marks every open item completed
func (db *DB) CompleteAllShoppingItems(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `
		UPDATE shopping_items SET completed = 1, updated_at = ? WHERE completed = 0
	`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to complete shopping items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ClearCompletedShoppingItems deletes every completed item
func (db *DB) ClearCompletedShoppingItems(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM shopping_items WHERE completed = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed shopping items: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// CountShoppingItems returns the number of rows on the list
func (db *DB) CountShoppingItems(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM shopping_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count shopping items: %w", err)
	}
	return n, nil
}
