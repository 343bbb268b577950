// Package storage provides abstractions for persistent ledger storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Store hands out transactional units of work.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the ledger or service layers.
type Store interface {
	// WithTx runs fn inside one database transaction. The transaction commits
	// only when fn returns nil; any error, panic or context cancellation rolls
	// it back. Row locks taken inside fn are held until then.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Ping reports whether the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Tx is the full read and write surface available inside a transaction.
type Tx interface {
	LedgerTx
	BillTx
	UserTx
}

// LedgerTx covers debts and payments.
type LedgerTx interface {
	// LockDebtPayments locks every non-voided debt of the triple and returns
	// it left-joined with its payments, ordered by debt id.
	LockDebtPayments(ctx context.Context, billID string, debtorID, creditorID int64) ([]models.DebtPaymentRow, error)

	// PendingPayments returns and locks active unconfirmed payments owed to
	// the creditor on the bill.
	PendingPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error)

	// UnpaidPayments returns and locks retracted unconfirmed payments owed to
	// the creditor on the bill.
	UnpaidPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error)

	// Payment returns a single payment. Returns ErrNotFound if it does not exist.
	Payment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error)

	// LockPayment is Payment with the payment and its debt locked until the
	// transaction ends.
	LockPayment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error)

	// DebtsForBill returns one display row per (debtor, creditor) pair.
	DebtsForBill(ctx context.Context, billID string) ([]models.DebtRow, error)

	// DebtTotals returns the summed non-voided debt per debtor owed to the creditor.
	DebtTotals(ctx context.Context, billID string, creditorID int64) (map[int64]float64, error)

	// RegisterDebts records the first settlement of a bill. Already
	// registered debtors are left untouched.
	RegisterDebts(ctx context.Context, billID string, creditorID int64, amounts map[int64]float64) error

	// RegisterDebtsAttempt records the debts of a given settlement attempt.
	RegisterDebtsAttempt(ctx context.Context, billID string, creditorID int64, attempt int, amounts map[int64]float64) error

	// NextDebtAttempt returns the attempt number a new settlement of the bill should use.
	NextDebtAttempt(ctx context.Context, billID string) (int, error)

	RetractPayment(ctx context.Context, paymentID int64) error
	ReusePayment(ctx context.Context, paymentID int64, w models.PaymentWrite) error
	InsertPayment(ctx context.Context, w models.PaymentWrite) (int64, error)
	ConfirmPayment(ctx context.Context, paymentID int64) error
	ForceConfirmPayment(ctx context.Context, paymentID int64) error
}

// BillTx covers bills and their content.
type BillTx interface {
	// CreateBill persists a new open bill and returns its generated ID.
	CreateBill(ctx context.Context, title string, ownerID int64) (string, error)

	// Bill retrieves a bill by ID. Returns ErrNotFound if it does not exist.
	Bill(ctx context.Context, billID string) (*models.Bill, error)

	// CompleteBill freezes the content of the owner's bill.
	CompleteBill(ctx context.Context, billID string, ownerID int64) error

	// ReopenBill clears the completion mark of the owner's bill.
	ReopenBill(ctx context.Context, billID string, ownerID int64) error

	// CloseBill stops the bill from accepting further changes.
	CloseBill(ctx context.Context, billID string, ownerID int64) error

	AddItem(ctx context.Context, billID, name string, price float64) (int64, error)
	Items(ctx context.Context, billID string) ([]models.Item, error)
	AddTax(ctx context.Context, billID, title string, rate float64) (int64, error)
	Taxes(ctx context.Context, billID string) ([]models.Tax, error)

	// ToggleShare flips whether the user shares the item and reports the new state.
	ToggleShare(ctx context.Context, billID string, itemID, userID int64) (bool, error)

	// Shares returns the active shares of every item on the bill.
	Shares(ctx context.Context, billID string) ([]models.Share, error)
}

// UserTx covers the local mirror of the user directory.
type UserTx interface {
	UpsertUser(ctx context.Context, user models.User) error

	// User retrieves a user by ID. Returns ErrNotFound if it does not exist.
	User(ctx context.Context, userID int64) (*models.User, error)
}
