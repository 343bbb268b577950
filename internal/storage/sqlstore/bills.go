package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	billIDLength      = 16
	maxBillIDAttempts = 10
)

// CreateBill inserts a bill under a fresh short id, retrying on collision.
func (t *tx) CreateBill(ctx context.Context, title string, ownerID int64) (string, error) {
	for range maxBillIDAttempts {
		id := t.s.newID()
		res, err := t.exec(ctx, `
			INSERT INTO bills (id, title, owner_id, created_at)
			VALUES (?, ?, ?, {now})
			ON CONFLICT (id) DO NOTHING
		`, id, title, ownerID)
		if err != nil {
			return "", t.wrap("failed to insert bill", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return "", t.wrap("failed to insert bill", err)
		}
		if n == 1 {
			return id, nil
		}
		t.s.logger.Debug("bill id collision", "bill_id", id)
	}
	return "", fmt.Errorf("failed to create bill after %d attempts: %w", maxBillIDAttempts, storage.ErrCollisionExhausted)
}

// Bill retrieves a bill by ID.
func (t *tx) Bill(ctx context.Context, billID string) (*models.Bill, error) {
	var (
		bill        models.Bill
		completedAt sql.NullInt64
		closedAt    sql.NullInt64
	)
	err := t.queryRow(ctx,
		"SELECT id, title, owner_id, created_at, completed_at, closed_at FROM bills WHERE id = ?",
		billID,
	).Scan(&bill.ID, &bill.Title, &bill.OwnerID, &bill.CreatedAt, &completedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, t.wrap("failed to get bill", err)
	}
	bill.CompletedAt = nullTime(completedAt)
	bill.ClosedAt = nullTime(closedAt)
	return &bill, nil
}

// CompleteBill sets completed_at on the owner's open bill.
func (t *tx) CompleteBill(ctx context.Context, billID string, ownerID int64) error {
	return t.updateOwnedBill(ctx, "complete bill",
		`UPDATE bills SET completed_at = {now} WHERE id = ? AND owner_id = ? AND closed_at IS NULL`,
		billID, ownerID)
}

// ReopenBill clears completed_at on the owner's open bill.
func (t *tx) ReopenBill(ctx context.Context, billID string, ownerID int64) error {
	return t.updateOwnedBill(ctx, "reopen bill",
		`UPDATE bills SET completed_at = NULL WHERE id = ? AND owner_id = ? AND closed_at IS NULL`,
		billID, ownerID)
}

// CloseBill sets closed_at on the owner's bill.
func (t *tx) CloseBill(ctx context.Context, billID string, ownerID int64) error {
	return t.updateOwnedBill(ctx, "close bill",
		`UPDATE bills SET closed_at = {now} WHERE id = ? AND owner_id = ? AND closed_at IS NULL`,
		billID, ownerID)
}

func (t *tx) updateOwnedBill(ctx context.Context, op, q, billID string, ownerID int64) error {
	res, err := t.exec(ctx, q, billID, ownerID)
	if err != nil {
		return t.wrap("failed to "+op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.wrap("failed to "+op, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to %s: open bill %s owned by %d: %w", op, billID, ownerID, storage.ErrNotFound)
	}
	return nil
}

// AddItem appends an item to the bill.
func (t *tx) AddItem(ctx context.Context, billID, name string, price float64) (int64, error) {
	var id int64
	err := t.queryRow(ctx,
		"INSERT INTO items (bill_id, name, price, created_at) VALUES (?, ?, ?, {now}) RETURNING id",
		billID, name, price,
	).Scan(&id)
	if err != nil {
		return 0, t.wrap("failed to insert item", err)
	}
	return id, nil
}

// Items returns the bill's items in creation order.
func (t *tx) Items(ctx context.Context, billID string) ([]models.Item, error) {
	rows, err := t.queryRows(ctx,
		"SELECT id, bill_id, name, price FROM items WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, t.wrap("failed to get items", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.BillID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate items", err)
	}

	return items, nil
}

// AddTax appends a percentage tax to the bill.
func (t *tx) AddTax(ctx context.Context, billID, title string, rate float64) (int64, error) {
	var id int64
	err := t.queryRow(ctx,
		"INSERT INTO bill_taxes (bill_id, title, amount, created_at) VALUES (?, ?, ?, {now}) RETURNING id",
		billID, title, rate,
	).Scan(&id)
	if err != nil {
		return 0, t.wrap("failed to insert tax", err)
	}
	return id, nil
}

// Taxes returns the bill's taxes in the order they apply.
func (t *tx) Taxes(ctx context.Context, billID string) ([]models.Tax, error) {
	rows, err := t.queryRows(ctx,
		"SELECT id, bill_id, title, amount FROM bill_taxes WHERE bill_id = ? ORDER BY id",
		billID,
	)
	if err != nil {
		return nil, t.wrap("failed to get taxes", err)
	}
	defer rows.Close()

	var taxes []models.Tax
	for rows.Next() {
		var tax models.Tax
		if err := rows.Scan(&tax.ID, &tax.BillID, &tax.Title, &tax.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan tax: %w", err)
		}
		taxes = append(taxes, tax)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate taxes", err)
	}

	return taxes, nil
}

// ToggleShare flips the user's share of an item and returns whether it is now active.
func (t *tx) ToggleShare(ctx context.Context, billID string, itemID, userID int64) (bool, error) {
	var deleted bool
	err := t.queryRow(ctx, `
		INSERT INTO bill_shares (bill_id, item_id, user_id, is_deleted, created_at)
		VALUES (?, ?, ?, FALSE, {now})
		ON CONFLICT (user_id, bill_id, item_id) DO UPDATE SET is_deleted = NOT bill_shares.is_deleted
		RETURNING is_deleted
	`, billID, itemID, userID).Scan(&deleted)
	if err != nil {
		return false, t.wrap("failed to toggle share", err)
	}
	return !deleted, nil
}

// Shares returns the active shares on the bill.
func (t *tx) Shares(ctx context.Context, billID string) ([]models.Share, error) {
	rows, err := t.queryRows(ctx, `
		SELECT item_id, user_id
		FROM bill_shares
		WHERE bill_id = ? AND is_deleted = FALSE
		ORDER BY item_id, user_id
	`, billID)
	if err != nil {
		return nil, t.wrap("failed to get shares", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var s models.Share
		if err := rows.Scan(&s.ItemID, &s.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, s)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate shares", err)
	}

	return shares, nil
}
