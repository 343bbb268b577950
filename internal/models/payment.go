package models

import "fmt"

// PaymentType describes how a debtor settled a debt.
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "cash"
	PaymentTypeTransfer PaymentType = "transfer"
	PaymentTypeEWallet  PaymentType = "e_wallet"
	PaymentTypeOther    PaymentType = "other"
)

// Valid reports whether t is a known payment type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeTransfer, PaymentTypeEWallet, PaymentTypeOther:
		return true
	}
	return false
}

// PaymentState is derived from ConfirmedAt and IsDeleted.
type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentRetracted PaymentState = "retracted"
	PaymentConfirmed PaymentState = "confirmed"
)

// Payment is a settlement attempt against one Debt.
// Rows are never physically deleted; history is kept through IsDeleted and
// the timestamps.
type Payment struct {
	ID     int64
	DebtID int64
	Type   PaymentType
	Amount float64

	CreatedAt int64

	// ConfirmedAt is zero while the payment awaits confirmation or was retracted.
	ConfirmedAt int64

	IsDeleted bool

	// IsForced marks a confirmation made through the administrative override.
	IsForced bool
}

// State returns the lifecycle state encoded by ConfirmedAt and IsDeleted.
func (p *Payment) State() PaymentState {
	switch {
	case p.ConfirmedAt != 0:
		return PaymentConfirmed
	case p.IsDeleted:
		return PaymentRetracted
	default:
		return PaymentPending
	}
}

// PaymentDetail is a payment with the parties of its debt.
type PaymentDetail struct {
	Payment

	BillID     string
	CreditorID int64
	Debtor     User
}

// PaymentWrite carries the fields written when a payment is created or reused.
type PaymentWrite struct {
	DebtID      int64
	Type        PaymentType
	Amount      float64
	AutoConfirm bool
}

func (w PaymentWrite) String() string {
	return fmt.Sprintf("debt=%d type=%s amount=%.2f auto_confirm=%t", w.DebtID, w.Type, w.Amount, w.AutoConfirm)
}
