package ledger

import (
	"cmp"
	"math"
	"slices"

	"github.com/mmynk/splitledger/internal/models"
)

// Epsilon is the absolute tolerance below which a remaining amount counts as zero.
const Epsilon = models.Epsilon

// FoldRemaining reduces debt/payment join rows to one entry per debt:
// the original amount minus every confirmed, non-deleted payment. Settled
// debts are dropped. The result is ordered by debt id.
func FoldRemaining(rows []models.DebtPaymentRow) []models.RemainingDebt {
	if len(rows) == 0 {
		return nil
	}

	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b models.DebtPaymentRow) int {
		return cmp.Compare(a.DebtID, b.DebtID)
	})

	var (
		result  []models.RemainingDebt
		current = sorted[0].DebtID
		acc     = sorted[0].OriginalAmt
	)
	flush := func() {
		if math.Abs(acc) >= Epsilon {
			result = append(result, models.RemainingDebt{DebtID: current, Amount: acc})
		}
	}

	for _, r := range sorted {
		if r.DebtID != current {
			flush()
			current = r.DebtID
			acc = r.OriginalAmt
		}
		if r.SettlesDebt() {
			acc -= r.PaymentAmount
		}
	}
	flush()

	return result
}

// Total sums the remaining amounts.
func Total(debts []models.RemainingDebt) float64 {
	var total float64
	for _, d := range debts {
		total += d.Amount
	}
	return total
}
