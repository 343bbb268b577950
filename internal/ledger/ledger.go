package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Recorder receives ledger events for metrics.
type Recorder interface {
	ReconcileOutcome(outcome string)
	PaymentConfirmed(forced bool)
}

type nopRecorder struct{}

func (nopRecorder) ReconcileOutcome(string) {}
func (nopRecorder) PaymentConfirmed(bool)   {}

// Ledger implements debt aggregation, reconciliation and confirmation.
type Ledger struct {
	logger   *slog.Logger
	recorder Recorder
}

// New creates a Ledger. A nil logger falls back to slog.Default and a nil
// recorder discards events.
func New(logger *slog.Logger, recorder Recorder) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Ledger{logger: logger, recorder: recorder}
}

// RemainingDebt locks the triple's debts and returns what is still owed on
// each, ordered by debt id. Fully settled debts are omitted.
func (l *Ledger) RemainingDebt(ctx context.Context, tx storage.LedgerTx, billID string, debtorID, creditorID int64) ([]models.RemainingDebt, error) {
	if err := validateTriple(billID, debtorID, creditorID); err != nil {
		return nil, err
	}

	rows, err := tx.LockDebtPayments(ctx, billID, debtorID, creditorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get remaining debt: %w", err)
	}
	return FoldRemaining(rows), nil
}

// RegisterDebts records what each debtor owes the creditor on a completed
// bill. Registering the same debtors again leaves the existing rows as they
// are. An empty map is a no-op.
func (l *Ledger) RegisterDebts(ctx context.Context, tx storage.LedgerTx, billID string, creditorID int64, amounts map[int64]float64) error {
	if err := validateAmounts(billID, creditorID, amounts); err != nil {
		return err
	}
	if len(amounts) == 0 {
		return nil
	}

	if err := tx.RegisterDebts(ctx, billID, creditorID, amounts); err != nil {
		return fmt.Errorf("failed to register debts: %w", err)
	}
	l.logger.Debug("debts registered", "bill_id", billID, "creditor_id", creditorID, "debtors", len(amounts))
	return nil
}

// RegisterAdjustment records a later settlement attempt of the bill. Each
// amount is added on top of what the debtor already owes and may be negative.
// Returns the attempt number used, or zero when amounts is empty.
func (l *Ledger) RegisterAdjustment(ctx context.Context, tx storage.LedgerTx, billID string, creditorID int64, amounts map[int64]float64) (int, error) {
	if err := validateAmounts(billID, creditorID, amounts); err != nil {
		return 0, err
	}
	if len(amounts) == 0 {
		return 0, nil
	}

	attempt, err := tx.NextDebtAttempt(ctx, billID)
	if err != nil {
		return 0, fmt.Errorf("failed to register adjustment: %w", err)
	}
	if err := tx.RegisterDebtsAttempt(ctx, billID, creditorID, attempt, amounts); err != nil {
		return 0, fmt.Errorf("failed to register adjustment: %w", err)
	}
	l.logger.Debug("debt adjustment registered", "bill_id", billID, "creditor_id", creditorID, "attempt", attempt)
	return attempt, nil
}

// DebtsForBill returns the per-pair display rows of the bill.
func (l *Ledger) DebtsForBill(ctx context.Context, tx storage.LedgerTx, billID string) ([]models.DebtRow, error) {
	if billID == "" {
		return nil, fmt.Errorf("bill id is required: %w", ErrValidation)
	}
	return tx.DebtsForBill(ctx, billID)
}

// PendingPayments returns, locked, the payments awaiting the creditor's approval.
func (l *Ledger) PendingPayments(ctx context.Context, tx storage.LedgerTx, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	if billID == "" || creditorID == 0 {
		return nil, fmt.Errorf("bill and creditor are required: %w", ErrValidation)
	}
	return tx.PendingPayments(ctx, billID, creditorID)
}

// UnpaidPayments returns, locked, the retracted payments to the creditor.
func (l *Ledger) UnpaidPayments(ctx context.Context, tx storage.LedgerTx, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	if billID == "" || creditorID == 0 {
		return nil, fmt.Errorf("bill and creditor are required: %w", ErrValidation)
	}
	return tx.UnpaidPayments(ctx, billID, creditorID)
}

// Payment returns a single payment with its debtor.
func (l *Ledger) Payment(ctx context.Context, tx storage.LedgerTx, paymentID int64) (*models.PaymentDetail, error) {
	return tx.Payment(ctx, paymentID)
}

// LockPayment returns a single payment and holds its row lock until the
// transaction ends, so a state check on it stays valid for a later Confirm.
func (l *Ledger) LockPayment(ctx context.Context, tx storage.LedgerTx, paymentID int64) (*models.PaymentDetail, error) {
	return tx.LockPayment(ctx, paymentID)
}

func validateTriple(billID string, debtorID, creditorID int64) error {
	switch {
	case billID == "":
		return fmt.Errorf("bill id is required: %w", ErrValidation)
	case debtorID == 0 || creditorID == 0:
		return fmt.Errorf("debtor and creditor are required: %w", ErrValidation)
	case debtorID == creditorID:
		return fmt.Errorf("debtor %d cannot owe themselves: %w", debtorID, ErrValidation)
	}
	return nil
}

func validateAmounts(billID string, creditorID int64, amounts map[int64]float64) error {
	if billID == "" {
		return fmt.Errorf("bill id is required: %w", ErrValidation)
	}
	if creditorID == 0 {
		return fmt.Errorf("creditor is required: %w", ErrValidation)
	}
	for debtorID, amount := range amounts {
		if err := validateTriple(billID, debtorID, creditorID); err != nil {
			return err
		}
		if math.IsNaN(amount) || math.IsInf(amount, 0) {
			return fmt.Errorf("amount for debtor %d is not finite: %w", debtorID, ErrValidation)
		}
	}
	return nil
}
