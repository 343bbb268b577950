package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/storage"
)

// Confirm marks a pending payment as approved by the creditor.
func (l *Ledger) Confirm(ctx context.Context, tx storage.LedgerTx, paymentID int64) error {
	if err := tx.ConfirmPayment(ctx, paymentID); err != nil {
		return fmt.Errorf("failed to confirm: %w", err)
	}
	l.recorder.PaymentConfirmed(false)
	l.logger.Info("payment confirmed", "payment_id", paymentID)
	return nil
}

// ForceConfirm confirms a payment whatever its state, undoing a retraction.
// The payment is flagged as forced.
func (l *Ledger) ForceConfirm(ctx context.Context, tx storage.LedgerTx, paymentID int64) error {
	if err := tx.ForceConfirmPayment(ctx, paymentID); err != nil {
		return fmt.Errorf("failed to force confirm: %w", err)
	}
	l.recorder.PaymentConfirmed(true)
	l.logger.Info("payment force confirmed", "payment_id", paymentID)
	return nil
}
