package models

// Epsilon is the absolute tolerance below which an outstanding amount counts as zero.
const Epsilon = 1e-9

// Debt is one obligation increment owed by a debtor to a creditor within a bill.
type Debt struct {
	ID          int64
	BillID      string
	DebtorID    int64
	CreditorID  int64
	OriginalAmt float64

	// Attempt is the settlement attempt that registered the debt. The first
	// settlement of a bill registers attempt 1.
	Attempt int

	// IsDeleted marks a debt voided after creation. Voided debts are excluded
	// from every aggregation.
	IsDeleted bool
}

// DebtPaymentRow is one row of a debt left-joined with its payments.
// A debt without payments yields a single row with HasPayment false.
type DebtPaymentRow struct {
	DebtID      int64
	OriginalAmt float64

	HasPayment     bool
	PaymentAmount  float64
	ConfirmedAt    int64
	PaymentDeleted bool
}

// SettlesDebt reports whether the joined payment counts against the debt.
func (r DebtPaymentRow) SettlesDebt() bool {
	return r.HasPayment && r.ConfirmedAt != 0 && !r.PaymentDeleted
}

// RemainingDebt is the still-outstanding amount of a single debt.
// Amount is signed: adjustments can leave a debt negative.
type RemainingDebt struct {
	DebtID int64
	Amount float64
}

// DebtRow is the display aggregate of all debts between two users on a bill.
type DebtRow struct {
	Debtor   User
	Creditor User

	// Amount is the summed original amount of the pair's non-voided debts.
	Amount float64

	// OpenDebts counts the pair's debts whose remaining amount is not zero.
	OpenDebts int

	// LatestPayment is the most recent payment against any of the pair's
	// debts, nil when none was ever made.
	LatestPayment *Payment
}
