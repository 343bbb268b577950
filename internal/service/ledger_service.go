package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService.
// Each RPC runs as one transaction; the ledger's row locks are held until it ends.
type LedgerService struct {
	store  storage.Store
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store, l *ledger.Ledger, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{store: store, ledger: l, logger: logger}
}

// RegisterDebts records the debts of a completed bill on behalf of its owner.
func (s *LedgerService) RegisterDebts(ctx context.Context, req *connect.Request[api.RegisterDebtsRequest]) (*connect.Response[api.RegisterDebtsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("RegisterDebts request received", "bill_id", req.Msg.BillID, "debtors", len(req.Msg.Debts))

	amounts := make(map[int64]float64, len(req.Msg.Debts))
	for _, d := range req.Msg.Debts {
		if _, dup := amounts[d.DebtorID]; dup {
			return nil, connect.NewError(connect.CodeInvalidArgument, errDuplicateDebtor(d.DebtorID))
		}
		amounts[d.DebtorID] = d.Amount
	}

	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		bill, err := tx.Bill(ctx, req.Msg.BillID)
		if err != nil {
			return err
		}
		if bill.OwnerID != userID || req.Msg.CreditorID != bill.OwnerID {
			return permissionDenied("only the bill owner can register debts owed to them")
		}
		if !bill.IsCompleted() || bill.IsClosed() {
			return failedPrecondition("bill %s must be completed and open", bill.ID)
		}
		return s.ledger.RegisterDebts(ctx, tx, bill.ID, bill.OwnerID, amounts)
	})
	if err != nil {
		return nil, toConnectError(s.logger, "RegisterDebts", err)
	}

	return connect.NewResponse(&api.RegisterDebtsResponse{}), nil
}

// GetRemainingDebt returns what the debtor still owes the creditor on a bill.
func (s *LedgerService) GetRemainingDebt(ctx context.Context, req *connect.Request[api.GetRemainingDebtRequest]) (*connect.Response[api.GetRemainingDebtResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if userID != req.Msg.DebtorID && userID != req.Msg.CreditorID {
		return nil, permissionDenied("only the debtor or creditor can view this debt")
	}

	var remaining []models.RemainingDebt
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		remaining, err = s.ledger.RemainingDebt(ctx, tx, req.Msg.BillID, req.Msg.DebtorID, req.Msg.CreditorID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "GetRemainingDebt", err)
	}

	return connect.NewResponse(&api.GetRemainingDebtResponse{
		Debts: toAPIRemaining(remaining),
		Total: ledger.Total(remaining),
	}), nil
}

// ReconcilePayment submits, cancels or auto-confirms the debtor's payment.
// The debtor or the creditor may call it; only the creditor may auto-confirm.
func (s *LedgerService) ReconcilePayment(ctx context.Context, req *connect.Request[api.ReconcilePaymentRequest]) (*connect.Response[api.ReconcilePaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if userID != req.Msg.DebtorID && userID != req.Msg.CreditorID {
		return nil, permissionDenied("only the debtor or creditor can settle this debt")
	}
	if req.Msg.AutoConfirm && userID != req.Msg.CreditorID {
		return nil, permissionDenied("only the creditor can record a confirmed payment")
	}
	s.logger.Info("ReconcilePayment request received",
		"bill_id", req.Msg.BillID,
		"debtor_id", req.Msg.DebtorID,
		"creditor_id", req.Msg.CreditorID,
		"auto_confirm", req.Msg.AutoConfirm,
	)

	var result *ledger.ReconcileResult
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		bill, err := tx.Bill(ctx, req.Msg.BillID)
		if err != nil {
			return err
		}
		if bill.IsClosed() {
			return failedPrecondition("bill %s is closed", bill.ID)
		}
		result, err = s.ledger.Reconcile(ctx, tx, ledger.ReconcileRequest{
			BillID:      bill.ID,
			CreditorID:  req.Msg.CreditorID,
			DebtorID:    req.Msg.DebtorID,
			Type:        models.PaymentType(req.Msg.Type),
			AutoConfirm: req.Msg.AutoConfirm,
		})
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ReconcilePayment", err)
	}

	return connect.NewResponse(&api.ReconcilePaymentResponse{
		Outcome:    result.Outcome.String(),
		PaymentIDs: result.PaymentIDs,
	}), nil
}

// ConfirmPayment approves a pending payment. Only the payment's creditor may call it.
func (s *LedgerService) ConfirmPayment(ctx context.Context, req *connect.Request[api.ConfirmPaymentRequest]) (*connect.Response[api.ConfirmPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var payment *models.PaymentDetail
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := s.creditorPayment(ctx, tx, req.Msg.PaymentID, userID)
		if err != nil {
			return err
		}
		switch p.State() {
		case models.PaymentConfirmed:
			return failedPrecondition("payment %d is already confirmed", p.ID)
		case models.PaymentRetracted:
			return failedPrecondition("payment %d was retracted by the debtor", p.ID)
		}
		if err := s.ledger.Confirm(ctx, tx, p.ID); err != nil {
			return err
		}
		payment, err = tx.Payment(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ConfirmPayment", err)
	}

	return connect.NewResponse(&api.ConfirmPaymentResponse{Payment: toAPIPaymentDetail(payment)}), nil
}

// ForceConfirmPayment confirms a payment whatever its state. Only the
// payment's creditor may call it.
func (s *LedgerService) ForceConfirmPayment(ctx context.Context, req *connect.Request[api.ForceConfirmPaymentRequest]) (*connect.Response[api.ForceConfirmPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var payment *models.PaymentDetail
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		p, err := s.creditorPayment(ctx, tx, req.Msg.PaymentID, userID)
		if err != nil {
			return err
		}
		if err := s.ledger.ForceConfirm(ctx, tx, p.ID); err != nil {
			return err
		}
		payment, err = tx.Payment(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ForceConfirmPayment", err)
	}

	return connect.NewResponse(&api.ForceConfirmPaymentResponse{Payment: toAPIPaymentDetail(payment)}), nil
}

// creditorPayment locks the payment so its state cannot change before the
// confirmation is written.
func (s *LedgerService) creditorPayment(ctx context.Context, tx storage.Tx, paymentID, userID int64) (*models.PaymentDetail, error) {
	p, err := s.ledger.LockPayment(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.CreditorID != userID {
		return nil, permissionDenied("only the creditor can confirm payment %d", paymentID)
	}
	return p, nil
}

// GetBillDebts returns every debt pair of a bill with member balances.
// Only the bill owner and the parties of its debts may read them.
func (s *LedgerService) GetBillDebts(ctx context.Context, req *connect.Request[api.GetBillDebtsRequest]) (*connect.Response[api.GetBillDebtsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var rows []models.DebtRow
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		bill, err := tx.Bill(ctx, req.Msg.BillID)
		if err != nil {
			return err
		}
		rows, err = s.ledger.DebtsForBill(ctx, tx, req.Msg.BillID)
		if err != nil {
			return err
		}
		if bill.OwnerID != userID && !hasParty(rows, userID) {
			return permissionDenied("user %d has no debts on bill %s", userID, bill.ID)
		}
		return nil
	})
	if err != nil {
		return nil, toConnectError(s.logger, "GetBillDebts", err)
	}

	return connect.NewResponse(&api.GetBillDebtsResponse{
		Debts:    toAPIBillDebts(rows),
		Balances: toAPIBalances(calculator.SummarizeDebts(rows)),
	}), nil
}

func hasParty(rows []models.DebtRow, userID int64) bool {
	for _, r := range rows {
		if r.Debtor.ID == userID || r.Creditor.ID == userID {
			return true
		}
	}
	return false
}

// ListPendingPayments returns the payments awaiting the caller's approval.
func (s *LedgerService) ListPendingPayments(ctx context.Context, req *connect.Request[api.ListPendingPaymentsRequest]) (*connect.Response[api.ListPendingPaymentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if userID != req.Msg.CreditorID {
		return nil, permissionDenied("only the creditor can list their payments")
	}

	var payments []models.PaymentDetail
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		payments, err = s.ledger.PendingPayments(ctx, tx, req.Msg.BillID, req.Msg.CreditorID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ListPendingPayments", err)
	}

	return connect.NewResponse(&api.ListPendingPaymentsResponse{Payments: toAPIPayments(payments)}), nil
}

// ListUnpaidPayments returns the payments debtors retracted from the caller.
func (s *LedgerService) ListUnpaidPayments(ctx context.Context, req *connect.Request[api.ListUnpaidPaymentsRequest]) (*connect.Response[api.ListUnpaidPaymentsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if userID != req.Msg.CreditorID {
		return nil, permissionDenied("only the creditor can list their payments")
	}

	var payments []models.PaymentDetail
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		payments, err = s.ledger.UnpaidPayments(ctx, tx, req.Msg.BillID, req.Msg.CreditorID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ListUnpaidPayments", err)
	}

	return connect.NewResponse(&api.ListUnpaidPaymentsResponse{Payments: toAPIPayments(payments)}), nil
}

// GetPayment returns a payment to its debtor or creditor.
func (s *LedgerService) GetPayment(ctx context.Context, req *connect.Request[api.GetPaymentRequest]) (*connect.Response[api.GetPaymentResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var payment *models.PaymentDetail
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		payment, err = s.ledger.Payment(ctx, tx, req.Msg.PaymentID)
		if err != nil {
			return err
		}
		if userID != payment.Debtor.ID && userID != payment.CreditorID {
			return permissionDenied("only the debtor or creditor can view payment %d", payment.ID)
		}
		return nil
	})
	if err != nil {
		return nil, toConnectError(s.logger, "GetPayment", err)
	}

	return connect.NewResponse(&api.GetPaymentResponse{Payment: toAPIPaymentDetail(payment)}), nil
}
