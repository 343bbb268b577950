package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const paymentDetailColumns = `
		SELECT p.id, p.debt_id, p.type, p.amount, p.created_at, p.confirmed_at,
			p.is_deleted, p.is_forced,
			d.bill_id, d.creditor_id,
			u.id, u.first_name, u.last_name, u.username
		FROM payments p
		INNER JOIN debts d ON d.id = p.debt_id
		INNER JOIN users u ON u.id = d.debtor_id
`

const (
	openPaymentsQuery = paymentDetailColumns + `
		WHERE d.bill_id = ?
		AND d.creditor_id = ?
		AND d.is_deleted = FALSE
		AND p.is_deleted = ?
		AND p.confirmed_at IS NULL
		ORDER BY p.id{lock_payments}
	`

	paymentQuery = paymentDetailColumns + `
		WHERE p.id = ?
	`

	lockPaymentQuery = paymentDetailColumns + `
		WHERE p.id = ?{lock_payments}
	`

	insertPaymentQuery = `
		INSERT INTO payments (type, debt_id, amount, is_deleted, is_forced, created_at, confirmed_at)
		VALUES (?, ?, ?, FALSE, FALSE, {now}, NULL)
		RETURNING id
	`

	insertConfirmedPaymentQuery = `
		INSERT INTO payments (type, debt_id, amount, is_deleted, is_forced, created_at, confirmed_at)
		VALUES (?, ?, ?, FALSE, FALSE, {now}, {now})
		RETURNING id
	`

	reusePaymentQuery = `
		UPDATE payments SET type = ?, debt_id = ?, amount = ?, is_deleted = FALSE
		WHERE id = ?
	`

	reuseConfirmedPaymentQuery = `
		UPDATE payments SET type = ?, debt_id = ?, amount = ?, is_deleted = FALSE, confirmed_at = {now}
		WHERE id = ?
	`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaymentDetail(row rowScanner) (*models.PaymentDetail, error) {
	var (
		p           models.PaymentDetail
		payType     string
		confirmedAt sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &p.DebtID, &payType, &p.Amount, &p.CreatedAt, &confirmedAt,
		&p.IsDeleted, &p.IsForced,
		&p.BillID, &p.CreditorID,
		&p.Debtor.ID, &p.Debtor.FirstName, &p.Debtor.LastName, &p.Debtor.Username,
	)
	if err != nil {
		return nil, err
	}
	p.Type = models.PaymentType(payType)
	p.ConfirmedAt = nullTime(confirmedAt)
	return &p, nil
}

// PendingPayments locks and returns active unconfirmed payments to the creditor.
func (t *tx) PendingPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	return t.openPayments(ctx, billID, creditorID, false)
}

// UnpaidPayments locks and returns retracted unconfirmed payments to the creditor.
func (t *tx) UnpaidPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	return t.openPayments(ctx, billID, creditorID, true)
}

func (t *tx) openPayments(ctx context.Context, billID string, creditorID int64, retracted bool) ([]models.PaymentDetail, error) {
	rows, err := t.queryRows(ctx, openPaymentsQuery, billID, creditorID, retracted)
	if err != nil {
		return nil, t.wrap("failed to lock payments", err)
	}
	defer rows.Close()

	var result []models.PaymentDetail
	for rows.Next() {
		p, err := scanPaymentDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate payments", err)
	}

	return result, nil
}

// Payment retrieves one payment with its debtor.
func (t *tx) Payment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error) {
	return t.payment(ctx, paymentQuery, paymentID)
}

// LockPayment retrieves and locks one payment with its debt.
func (t *tx) LockPayment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error) {
	return t.payment(ctx, lockPaymentQuery, paymentID)
}

func (t *tx) payment(ctx context.Context, q string, paymentID int64) (*models.PaymentDetail, error) {
	p, err := scanPaymentDetail(t.queryRow(ctx, q, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %d: %w", paymentID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, t.wrap("failed to get payment", err)
	}
	return p, nil
}

// RetractPayment soft-cancels a payment.
func (t *tx) RetractPayment(ctx context.Context, paymentID int64) error {
	return t.execExactlyOne(ctx, "retract payment",
		`UPDATE payments SET is_deleted = TRUE WHERE id = ?`, paymentID)
}

// ReusePayment rewrites a retracted payment in place.
func (t *tx) ReusePayment(ctx context.Context, paymentID int64, w models.PaymentWrite) error {
	q := reusePaymentQuery
	if w.AutoConfirm {
		q = reuseConfirmedPaymentQuery
	}
	return t.execExactlyOne(ctx, "reuse payment", q, string(w.Type), w.DebtID, w.Amount, paymentID)
}

// InsertPayment creates a payment and returns its id.
func (t *tx) InsertPayment(ctx context.Context, w models.PaymentWrite) (int64, error) {
	q := insertPaymentQuery
	if w.AutoConfirm {
		q = insertConfirmedPaymentQuery
	}
	var id int64
	if err := t.queryRow(ctx, q, string(w.Type), w.DebtID, w.Amount).Scan(&id); err != nil {
		return 0, t.wrap("failed to insert payment", err)
	}
	return id, nil
}

// ConfirmPayment marks a payment as approved by its creditor.
func (t *tx) ConfirmPayment(ctx context.Context, paymentID int64) error {
	return t.execExactlyOne(ctx, "confirm payment",
		`UPDATE payments SET confirmed_at = {now} WHERE id = ?`, paymentID)
}

// ForceConfirmPayment confirms a payment regardless of its prior state.
func (t *tx) ForceConfirmPayment(ctx context.Context, paymentID int64) error {
	return t.execExactlyOne(ctx, "force confirm payment",
		`UPDATE payments SET is_deleted = FALSE, confirmed_at = {now}, is_forced = TRUE WHERE id = ?`, paymentID)
}
