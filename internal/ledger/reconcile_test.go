package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

type mockTx struct {
	mock.Mock
}

func (m *mockTx) LockDebtPayments(ctx context.Context, billID string, debtorID, creditorID int64) ([]models.DebtPaymentRow, error) {
	args := m.Called(ctx, billID, debtorID, creditorID)
	rows, _ := args.Get(0).([]models.DebtPaymentRow)
	return rows, args.Error(1)
}

func (m *mockTx) PendingPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	args := m.Called(ctx, billID, creditorID)
	payments, _ := args.Get(0).([]models.PaymentDetail)
	return payments, args.Error(1)
}

func (m *mockTx) UnpaidPayments(ctx context.Context, billID string, creditorID int64) ([]models.PaymentDetail, error) {
	args := m.Called(ctx, billID, creditorID)
	payments, _ := args.Get(0).([]models.PaymentDetail)
	return payments, args.Error(1)
}

func (m *mockTx) Payment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*models.PaymentDetail)
	return p, args.Error(1)
}

func (m *mockTx) LockPayment(ctx context.Context, paymentID int64) (*models.PaymentDetail, error) {
	args := m.Called(ctx, paymentID)
	p, _ := args.Get(0).(*models.PaymentDetail)
	return p, args.Error(1)
}

func (m *mockTx) DebtsForBill(ctx context.Context, billID string) ([]models.DebtRow, error) {
	args := m.Called(ctx, billID)
	rows, _ := args.Get(0).([]models.DebtRow)
	return rows, args.Error(1)
}

func (m *mockTx) DebtTotals(ctx context.Context, billID string, creditorID int64) (map[int64]float64, error) {
	args := m.Called(ctx, billID, creditorID)
	totals, _ := args.Get(0).(map[int64]float64)
	return totals, args.Error(1)
}

func (m *mockTx) RegisterDebts(ctx context.Context, billID string, creditorID int64, amounts map[int64]float64) error {
	return m.Called(ctx, billID, creditorID, amounts).Error(0)
}

func (m *mockTx) RegisterDebtsAttempt(ctx context.Context, billID string, creditorID int64, attempt int, amounts map[int64]float64) error {
	return m.Called(ctx, billID, creditorID, attempt, amounts).Error(0)
}

func (m *mockTx) NextDebtAttempt(ctx context.Context, billID string) (int, error) {
	args := m.Called(ctx, billID)
	return args.Int(0), args.Error(1)
}

func (m *mockTx) RetractPayment(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}

func (m *mockTx) ReusePayment(ctx context.Context, paymentID int64, w models.PaymentWrite) error {
	return m.Called(ctx, paymentID, w).Error(0)
}

func (m *mockTx) InsertPayment(ctx context.Context, w models.PaymentWrite) (int64, error) {
	args := m.Called(ctx, w)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *mockTx) ConfirmPayment(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}

func (m *mockTx) ForceConfirmPayment(ctx context.Context, paymentID int64) error {
	return m.Called(ctx, paymentID).Error(0)
}

type recorder struct {
	outcomes []string
	forced   []bool
}

func (r *recorder) ReconcileOutcome(outcome string) { r.outcomes = append(r.outcomes, outcome) }
func (r *recorder) PaymentConfirmed(forced bool)    { r.forced = append(r.forced, forced) }

const billID = "0123456789abcdef"

func request(autoConfirm bool) ReconcileRequest {
	return ReconcileRequest{
		BillID:      billID,
		CreditorID:  1,
		DebtorID:    2,
		Type:        models.PaymentTypeEWallet,
		AutoConfirm: autoConfirm,
	}
}

func pendingFor(id, debtID, debtorID int64) models.PaymentDetail {
	return models.PaymentDetail{
		Payment:    models.Payment{ID: id, DebtID: debtID},
		BillID:     billID,
		CreditorID: 1,
		Debtor:     models.User{ID: debtorID},
	}
}

func TestReconcile_InvalidType(t *testing.T) {
	tx := new(mockTx)
	req := request(false)
	req.Type = "barter"

	_, err := New(nil, nil).Reconcile(context.Background(), tx, req)

	assert.ErrorIs(t, err, ErrValidation)
	tx.AssertNotCalled(t, "LockDebtPayments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_LockFailureIsRetryable(t *testing.T) {
	ctx := context.Background()
	tx := new(mockTx)
	tx.On("LockDebtPayments", ctx, billID, int64(2), int64(1)).
		Return(nil, fmt.Errorf("lock debts: %w", ErrRetryable))

	_, err := New(nil, nil).Reconcile(ctx, tx, request(false))

	assert.ErrorIs(t, err, ErrRetryable)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "PendingPayments", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_CancelRetractsOnlyDebtorPayments(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tx := new(mockTx)
	tx.On("LockDebtPayments", ctx, billID, int64(2), int64(1)).
		Return([]models.DebtPaymentRow{{DebtID: 7, OriginalAmt: 10}, {DebtID: 8, OriginalAmt: 20}}, nil)
	tx.On("PendingPayments", ctx, billID, int64(1)).
		Return([]models.PaymentDetail{pendingFor(30, 7, 2), pendingFor(31, 9, 3), pendingFor(32, 8, 2)}, nil)
	tx.On("RetractPayment", ctx, int64(30)).Return(nil)
	tx.On("RetractPayment", ctx, int64(32)).Return(nil)

	result, err := New(nil, rec).Reconcile(ctx, tx, request(false))

	require.NoError(t, err)
	assert.Equal(t, OutcomeCanceled, result.Outcome)
	assert.Equal(t, []int64{30, 32}, result.PaymentIDs)
	assert.Equal(t, []string{"canceled"}, rec.outcomes)
	tx.AssertExpectations(t)
	tx.AssertNotCalled(t, "RetractPayment", ctx, int64(31))
	tx.AssertNotCalled(t, "UnpaidPayments", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcile_SubmitReusesAndInserts(t *testing.T) {
	ctx := context.Background()
	tx := new(mockTx)
	tx.On("LockDebtPayments", ctx, billID, int64(2), int64(1)).
		Return([]models.DebtPaymentRow{{DebtID: 7, OriginalAmt: 10}, {DebtID: 8, OriginalAmt: 20}}, nil)
	tx.On("PendingPayments", ctx, billID, int64(1)).Return(nil, nil)
	tx.On("UnpaidPayments", ctx, billID, int64(1)).
		Return([]models.PaymentDetail{pendingFor(40, 7, 2), pendingFor(41, 7, 2)}, nil)
	tx.On("ReusePayment", ctx, int64(40), models.PaymentWrite{DebtID: 7, Type: models.PaymentTypeEWallet, Amount: 10, AutoConfirm: true}).
		Return(nil)
	tx.On("InsertPayment", ctx, models.PaymentWrite{DebtID: 8, Type: models.PaymentTypeEWallet, Amount: 20, AutoConfirm: true}).
		Return(int64(42), nil)

	result, err := New(nil, nil).Reconcile(ctx, tx, request(true))

	require.NoError(t, err)
	assert.Equal(t, OutcomeConfirmed, result.Outcome)
	assert.Equal(t, []int64{40, 42}, result.PaymentIDs)
	tx.AssertExpectations(t)
}

func TestReconcile_InvariantViolationStops(t *testing.T) {
	ctx := context.Background()
	tx := new(mockTx)
	tx.On("LockDebtPayments", ctx, billID, int64(2), int64(1)).
		Return([]models.DebtPaymentRow{{DebtID: 7, OriginalAmt: 10}, {DebtID: 8, OriginalAmt: 20}}, nil)
	tx.On("PendingPayments", ctx, billID, int64(1)).Return(nil, nil)
	tx.On("UnpaidPayments", ctx, billID, int64(1)).Return([]models.PaymentDetail{pendingFor(40, 7, 2)}, nil)
	tx.On("ReusePayment", ctx, int64(40), mock.Anything).
		Return(fmt.Errorf("reuse payment: %w", ErrInvariantViolation))

	_, err := New(nil, nil).Reconcile(ctx, tx, request(false))

	assert.ErrorIs(t, err, ErrInvariantViolation)
	tx.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything)
}

func TestConfirm_RecordsAndWraps(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	tx := new(mockTx)
	tx.On("ConfirmPayment", ctx, int64(5)).Return(nil)
	tx.On("ForceConfirmPayment", ctx, int64(6)).Return(nil)
	tx.On("ConfirmPayment", ctx, int64(7)).Return(fmt.Errorf("confirm payment: %w", ErrInvariantViolation))

	l := New(nil, rec)
	require.NoError(t, l.Confirm(ctx, tx, 5))
	require.NoError(t, l.ForceConfirm(ctx, tx, 6))
	err := l.Confirm(ctx, tx, 7)

	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, []bool{false, true}, rec.forced)
}

func TestRegisterAdjustment_PropagatesStorageError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	tx := new(mockTx)
	amounts := map[int64]float64{2: 3.5}
	tx.On("NextDebtAttempt", ctx, billID).Return(4, nil)
	tx.On("RegisterDebtsAttempt", ctx, billID, int64(1), 4, amounts).Return(boom)

	attempt, err := New(nil, nil).RegisterAdjustment(ctx, tx, billID, 1, amounts)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, attempt)
}

func TestRemainingDebt_ValidatesTriple(t *testing.T) {
	tx := new(mockTx)

	_, err := New(nil, nil).RemainingDebt(context.Background(), tx, billID, 3, 3)

	assert.ErrorIs(t, err, ErrValidation)
	tx.AssertNotCalled(t, "LockDebtPayments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
