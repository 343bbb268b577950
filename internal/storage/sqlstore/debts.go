package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	lockDebtsQuery = `
		SELECT d.id
		FROM debts d
		WHERE d.bill_id = ?
		AND d.debtor_id = ?
		AND d.creditor_id = ?
		AND d.is_deleted = FALSE
		ORDER BY d.id{lock_debts}
	`

	// debtPaymentsQuery must run after lockDebtsQuery as its own statement so
	// that it reads the payments committed while the lock was awaited.
	debtPaymentsQuery = `
		SELECT d.id, d.original_amt, p.id, p.amount, p.confirmed_at, p.is_deleted
		FROM debts d
		LEFT JOIN payments p ON p.debt_id = d.id
		WHERE d.bill_id = ?
		AND d.debtor_id = ?
		AND d.creditor_id = ?
		AND d.is_deleted = FALSE
		ORDER BY d.id, p.id
	`

	insertDebtQuery = `
		INSERT INTO debts (bill_id, debtor_id, creditor_id, original_amt, attempt)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (debtor_id, creditor_id, bill_id, attempt) DO NOTHING
		RETURNING id
	`

	existingDebtQuery = `
		SELECT id FROM debts
		WHERE bill_id = ? AND debtor_id = ? AND creditor_id = ? AND attempt = ?
	`

	debtsForBillQuery = `
		SELECT g.debtor_id, u1.first_name, u1.last_name, u1.username,
			g.creditor_id, u2.first_name, u2.last_name, u2.username,
			g.amount, g.open_debts,
			p.id, p.debt_id, p.type, p.amount, p.created_at, p.confirmed_at,
			p.is_deleted, p.is_forced
		FROM (
			SELECT d.debtor_id, d.creditor_id, SUM(d.original_amt) AS amount,
				(
					SELECT MAX(p2.id)
					FROM payments p2
					INNER JOIN debts d2 ON d2.id = p2.debt_id
					WHERE d2.bill_id = d.bill_id
					AND d2.debtor_id = d.debtor_id
					AND d2.creditor_id = d.creditor_id
					AND d2.is_deleted = FALSE
				) AS payment_id,
				(
					SELECT COUNT(*)
					FROM debts d3
					WHERE d3.bill_id = d.bill_id
					AND d3.debtor_id = d.debtor_id
					AND d3.creditor_id = d.creditor_id
					AND d3.is_deleted = FALSE
					AND ABS(d3.original_amt - (
						SELECT COALESCE(SUM(p3.amount), 0)
						FROM payments p3
						WHERE p3.debt_id = d3.id
						AND p3.is_deleted = FALSE
						AND p3.confirmed_at IS NOT NULL
					)) >= ?
				) AS open_debts
			FROM debts d
			WHERE d.bill_id = ?
			AND d.is_deleted = FALSE
			GROUP BY d.bill_id, d.debtor_id, d.creditor_id
		) g
		INNER JOIN users u1 ON u1.id = g.debtor_id
		INNER JOIN users u2 ON u2.id = g.creditor_id
		LEFT JOIN payments p ON p.id = g.payment_id
		ORDER BY g.creditor_id, g.debtor_id
	`
)

// LockDebtPayments locks the triple's debts and returns them joined with payments.
func (t *tx) LockDebtPayments(ctx context.Context, billID string, debtorID, creditorID int64) ([]models.DebtPaymentRow, error) {
	if err := t.lockDebts(ctx, billID, debtorID, creditorID); err != nil {
		return nil, err
	}

	rows, err := t.queryRows(ctx, debtPaymentsQuery, billID, debtorID, creditorID)
	if err != nil {
		return nil, t.wrap("failed to get debt payments", err)
	}
	defer rows.Close()

	var result []models.DebtPaymentRow
	for rows.Next() {
		var (
			r           models.DebtPaymentRow
			paymentID   sql.NullInt64
			amount      sql.NullFloat64
			confirmedAt sql.NullInt64
			deleted     sql.NullBool
		)
		if err := rows.Scan(&r.DebtID, &r.OriginalAmt, &paymentID, &amount, &confirmedAt, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		r.HasPayment = paymentID.Valid
		r.PaymentAmount = amount.Float64
		r.ConfirmedAt = nullTime(confirmedAt)
		r.PaymentDeleted = deleted.Bool
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate debts", err)
	}

	return result, nil
}

func (t *tx) lockDebts(ctx context.Context, billID string, debtorID, creditorID int64) error {
	rows, err := t.queryRows(ctx, lockDebtsQuery, billID, debtorID, creditorID)
	if err != nil {
		return t.wrap("failed to lock debts", err)
	}
	defer rows.Close()
	// Rows are locked as they are read.
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return t.wrap("failed to lock debts", err)
	}
	return nil
}

// RegisterDebts records attempt 1 of the bill's settlement.
func (t *tx) RegisterDebts(ctx context.Context, billID string, creditorID int64, amounts map[int64]float64) error {
	return t.RegisterDebtsAttempt(ctx, billID, creditorID, 1, amounts)
}

// RegisterDebtsAttempt inserts one debt per debtor through a single prepared
// statement. Conflicting rows are kept as they are, but every debtor must end
// up with a persisted row.
func (t *tx) RegisterDebtsAttempt(ctx context.Context, billID string, creditorID int64, attempt int, amounts map[int64]float64) error {
	if len(amounts) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx, t.s.query(insertDebtQuery))
	if err != nil {
		return t.wrap("failed to prepare debt insert", err)
	}
	defer stmt.Close()

	debtors := make([]int64, 0, len(amounts))
	for debtorID := range amounts {
		debtors = append(debtors, debtorID)
	}
	slices.Sort(debtors)

	for _, debtorID := range debtors {
		var id int64
		err := stmt.QueryRowContext(ctx, billID, debtorID, creditorID, amounts[debtorID], attempt).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			err = t.queryRow(ctx, existingDebtQuery, billID, debtorID, creditorID, attempt).Scan(&id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to register debt for debtor %d: %w: row not persisted", debtorID, storage.ErrInvariantViolation)
			}
		}
		if err != nil {
			return t.wrap("failed to register debt", err)
		}
	}

	return nil
}

// NextDebtAttempt returns one past the highest attempt registered for the bill.
func (t *tx) NextDebtAttempt(ctx context.Context, billID string) (int, error) {
	var next int
	err := t.queryRow(ctx, `SELECT COALESCE(MAX(attempt), 0) + 1 FROM debts WHERE bill_id = ?`, billID).Scan(&next)
	if err != nil {
		return 0, t.wrap("failed to get next debt attempt", err)
	}
	return next, nil
}

// DebtTotals sums the non-voided debts owed to the creditor per debtor.
func (t *tx) DebtTotals(ctx context.Context, billID string, creditorID int64) (map[int64]float64, error) {
	rows, err := t.queryRows(ctx, `
		SELECT debtor_id, SUM(original_amt)
		FROM debts
		WHERE bill_id = ? AND creditor_id = ? AND is_deleted = FALSE
		GROUP BY debtor_id
	`, billID, creditorID)
	if err != nil {
		return nil, t.wrap("failed to get debt totals", err)
	}
	defer rows.Close()

	totals := make(map[int64]float64)
	for rows.Next() {
		var (
			debtorID int64
			amount   float64
		)
		if err := rows.Scan(&debtorID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan debt total: %w", err)
		}
		totals[debtorID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate debt totals", err)
	}

	return totals, nil
}

// DebtsForBill returns the per-pair display aggregate of the bill's debts.
func (t *tx) DebtsForBill(ctx context.Context, billID string) ([]models.DebtRow, error) {
	rows, err := t.queryRows(ctx, debtsForBillQuery, models.Epsilon, billID)
	if err != nil {
		return nil, t.wrap("failed to get debts", err)
	}
	defer rows.Close()

	var result []models.DebtRow
	for rows.Next() {
		var (
			r           models.DebtRow
			paymentID   sql.NullInt64
			debtID      sql.NullInt64
			payType     sql.NullString
			amount      sql.NullFloat64
			createdAt   sql.NullInt64
			confirmedAt sql.NullInt64
			deleted     sql.NullBool
			forced      sql.NullBool
		)
		if err := rows.Scan(
			&r.Debtor.ID, &r.Debtor.FirstName, &r.Debtor.LastName, &r.Debtor.Username,
			&r.Creditor.ID, &r.Creditor.FirstName, &r.Creditor.LastName, &r.Creditor.Username,
			&r.Amount, &r.OpenDebts,
			&paymentID, &debtID, &payType, &amount, &createdAt, &confirmedAt,
			&deleted, &forced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan debt row: %w", err)
		}
		if paymentID.Valid {
			r.LatestPayment = &models.Payment{
				ID:          paymentID.Int64,
				DebtID:      debtID.Int64,
				Type:        models.PaymentType(payType.String),
				Amount:      amount.Float64,
				CreatedAt:   nullTime(createdAt),
				ConfirmedAt: nullTime(confirmedAt),
				IsDeleted:   deleted.Bool,
				IsForced:    forced.Bool,
			}
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, t.wrap("failed to iterate debt rows", err)
	}

	return result, nil
}
