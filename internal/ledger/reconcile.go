package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Outcome tells which branch a reconciliation took.
type Outcome int

const (
	// OutcomeSettled means nothing was owed; no rows changed.
	OutcomeSettled Outcome = iota
	// OutcomeCanceled means the debtor's pending payments were retracted.
	OutcomeCanceled
	// OutcomeSubmitted means payments now await the creditor's confirmation.
	OutcomeSubmitted
	// OutcomeConfirmed means payments were recorded as already confirmed.
	OutcomeConfirmed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSettled:
		return "settled"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ReconcileRequest is a debtor's intent to pay off what they owe on a bill.
type ReconcileRequest struct {
	BillID      string
	CreditorID  int64
	DebtorID    int64
	Type        models.PaymentType
	AutoConfirm bool
}

// ReconcileResult reports the branch taken and the payment rows it touched.
type ReconcileResult struct {
	Outcome    Outcome
	PaymentIDs []int64
}

// Reconcile matches a payment intent against the remaining debt of the triple.
//
// When nothing is owed it does nothing. When the debtor already has pending
// payments to the creditor on the bill, the call is a cancel: those payments
// are retracted and a repeat call submits them again. Otherwise every
// outstanding debt gets one active payment for its remaining amount, reusing
// a retracted row for that debt when there is one.
func (l *Ledger) Reconcile(ctx context.Context, tx storage.LedgerTx, req ReconcileRequest) (*ReconcileResult, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown payment type %q: %w", req.Type, ErrValidation)
	}

	remaining, err := l.RemainingDebt(ctx, tx, req.BillID, req.DebtorID, req.CreditorID)
	if err != nil {
		return nil, err
	}
	if len(remaining) == 0 {
		return l.done(req, &ReconcileResult{Outcome: OutcomeSettled}), nil
	}

	pending, err := tx.PendingPayments(ctx, req.BillID, req.CreditorID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile payment: %w", err)
	}
	var canceled []int64
	for _, p := range pending {
		if p.Debtor.ID != req.DebtorID {
			continue
		}
		if err := tx.RetractPayment(ctx, p.ID); err != nil {
			return nil, fmt.Errorf("failed to cancel payment: %w", err)
		}
		canceled = append(canceled, p.ID)
	}
	if len(canceled) > 0 {
		return l.done(req, &ReconcileResult{Outcome: OutcomeCanceled, PaymentIDs: canceled}), nil
	}

	retracted, err := tx.UnpaidPayments(ctx, req.BillID, req.CreditorID)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile payment: %w", err)
	}
	reusable := make(map[int64]int64, len(retracted))
	for _, p := range retracted {
		if _, ok := reusable[p.DebtID]; !ok {
			reusable[p.DebtID] = p.ID
		}
	}

	result := &ReconcileResult{Outcome: OutcomeSubmitted}
	if req.AutoConfirm {
		result.Outcome = OutcomeConfirmed
	}
	for _, debt := range remaining {
		w := models.PaymentWrite{
			DebtID:      debt.DebtID,
			Type:        req.Type,
			Amount:      debt.Amount,
			AutoConfirm: req.AutoConfirm,
		}
		if paymentID, ok := reusable[debt.DebtID]; ok {
			if err := tx.ReusePayment(ctx, paymentID, w); err != nil {
				return nil, fmt.Errorf("failed to reconcile payment: %w", err)
			}
			result.PaymentIDs = append(result.PaymentIDs, paymentID)
			continue
		}
		paymentID, err := tx.InsertPayment(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("failed to reconcile payment: %w", err)
		}
		result.PaymentIDs = append(result.PaymentIDs, paymentID)
	}

	return l.done(req, result), nil
}

func (l *Ledger) done(req ReconcileRequest, result *ReconcileResult) *ReconcileResult {
	l.recorder.ReconcileOutcome(result.Outcome.String())
	l.logger.Info("payment reconciled",
		"bill_id", req.BillID,
		"debtor_id", req.DebtorID,
		"creditor_id", req.CreditorID,
		"outcome", result.Outcome.String(),
		"payments", len(result.PaymentIDs),
	)
	return result
}
