package api

type RegisterDebtsRequest struct {
	BillID     string       `json:"bill_id" validate:"required,len=16,alphanum"`
	CreditorID int64        `json:"creditor_id" validate:"required,gt=0"`
	Debts      []DebtAmount `json:"debts" validate:"dive"`
}

type RegisterDebtsResponse struct{}

type GetRemainingDebtRequest struct {
	BillID     string `json:"bill_id" validate:"required,len=16,alphanum"`
	DebtorID   int64  `json:"debtor_id" validate:"required,gt=0"`
	CreditorID int64  `json:"creditor_id" validate:"required,gt=0,nefield=DebtorID"`
}

type GetRemainingDebtResponse struct {
	Debts []RemainingDebt `json:"debts"`
	Total float64         `json:"total"`
}

type ReconcilePaymentRequest struct {
	BillID      string `json:"bill_id" validate:"required,len=16,alphanum"`
	CreditorID  int64  `json:"creditor_id" validate:"required,gt=0"`
	DebtorID    int64  `json:"debtor_id" validate:"required,gt=0,nefield=CreditorID"`
	Type        string `json:"type" validate:"required,oneof=cash transfer e_wallet other"`
	AutoConfirm bool   `json:"auto_confirm"`
}

type ReconcilePaymentResponse struct {
	// Outcome is one of settled, canceled, submitted or confirmed.
	Outcome    string  `json:"outcome"`
	PaymentIDs []int64 `json:"payment_ids,omitempty"`
}

type ConfirmPaymentRequest struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
}

type ConfirmPaymentResponse struct {
	Payment Payment `json:"payment"`
}

type ForceConfirmPaymentRequest struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
}

type ForceConfirmPaymentResponse struct {
	Payment Payment `json:"payment"`
}

type GetBillDebtsRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
}

type GetBillDebtsResponse struct {
	Debts    []BillDebt `json:"debts"`
	Balances []Balance  `json:"balances"`
}

type ListPendingPaymentsRequest struct {
	BillID     string `json:"bill_id" validate:"required,len=16,alphanum"`
	CreditorID int64  `json:"creditor_id" validate:"required,gt=0"`
}

type ListPendingPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type ListUnpaidPaymentsRequest struct {
	BillID     string `json:"bill_id" validate:"required,len=16,alphanum"`
	CreditorID int64  `json:"creditor_id" validate:"required,gt=0"`
}

type ListUnpaidPaymentsResponse struct {
	Payments []Payment `json:"payments"`
}

type GetPaymentRequest struct {
	PaymentID int64 `json:"payment_id" validate:"required,gt=0"`
}

type GetPaymentResponse struct {
	Payment Payment `json:"payment"`
}
