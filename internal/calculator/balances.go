package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one bill participant.
type MemberBalance struct {
	UserID     int64
	Name       string
	TotalOwed  float64 // Total this person owes others
	TotalLent  float64 // Total others owe this person
	NetBalance float64 // Positive = owed money, Negative = owes money

	// Settled is true when nothing remains outstanding on any debt the person owes.
	Settled bool
}

// SummarizeDebts aggregates a bill's debt rows into per-member balances,
// ordered by user id.
func SummarizeDebts(rows []models.DebtRow) []MemberBalance {
	type acc struct {
		name    string
		owed    decimal.Decimal
		lent    decimal.Decimal
		settled bool
	}
	balances := make(map[int64]*acc)
	get := func(u models.User) *acc {
		a, ok := balances[u.ID]
		if !ok {
			a = &acc{name: u.DisplayName(), settled: true}
			balances[u.ID] = a
		}
		return a
	}

	for _, r := range rows {
		amount := decimal.NewFromFloat(r.Amount)
		debtor := get(r.Debtor)
		debtor.owed = debtor.owed.Add(amount)
		if r.OpenDebts > 0 {
			debtor.settled = false
		}
		creditor := get(r.Creditor)
		creditor.lent = creditor.lent.Add(amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for userID, a := range balances {
		result = append(result, MemberBalance{
			UserID:     userID,
			Name:       a.name,
			TotalOwed:  a.owed.Round(2).InexactFloat64(),
			TotalLent:  a.lent.Round(2).InexactFloat64(),
			NetBalance: a.lent.Sub(a.owed).Round(2).InexactFloat64(),
			Settled:    a.settled,
		})
	}
	slices.SortFunc(result, func(a, b MemberBalance) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return result
}
