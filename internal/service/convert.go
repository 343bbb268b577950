package service

import (
	"cmp"
	"slices"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u models.User) api.User {
	return api.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

func fromAPIUser(u api.User) models.User {
	return models.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
	}
}

func toAPIBill(b *models.Bill) api.Bill {
	return api.Bill{
		ID:          b.ID,
		Title:       b.Title,
		OwnerID:     b.OwnerID,
		CreatedAt:   b.CreatedAt,
		CompletedAt: b.CompletedAt,
		ClosedAt:    b.ClosedAt,
	}
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:          p.ID,
		DebtID:      p.DebtID,
		Type:        string(p.Type),
		Amount:      p.Amount,
		State:       string(p.State()),
		CreatedAt:   p.CreatedAt,
		ConfirmedAt: p.ConfirmedAt,
		IsForced:    p.IsForced,
	}
}

func toAPIPaymentDetail(p *models.PaymentDetail) api.Payment {
	out := toAPIPayment(&p.Payment)
	out.BillID = p.BillID
	out.CreditorID = p.CreditorID
	debtor := toAPIUser(p.Debtor)
	out.Debtor = &debtor
	return *out
}

func toAPIPayments(payments []models.PaymentDetail) []api.Payment {
	out := make([]api.Payment, len(payments))
	for i := range payments {
		out[i] = toAPIPaymentDetail(&payments[i])
	}
	return out
}

func toAPIBillDebts(rows []models.DebtRow) []api.BillDebt {
	out := make([]api.BillDebt, len(rows))
	for i, r := range rows {
		out[i] = api.BillDebt{
			Debtor:   toAPIUser(r.Debtor),
			Creditor: toAPIUser(r.Creditor),
			Amount:   r.Amount,
		}
		if r.LatestPayment != nil {
			out[i].LatestPayment = toAPIPayment(r.LatestPayment)
		}
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance) []api.Balance {
	out := make([]api.Balance, len(balances))
	for i, b := range balances {
		out[i] = api.Balance{
			UserID:     b.UserID,
			Name:       b.Name,
			TotalOwed:  b.TotalOwed,
			TotalLent:  b.TotalLent,
			NetBalance: b.NetBalance,
			Settled:    b.Settled,
		}
	}
	return out
}

func toAPIRemaining(debts []models.RemainingDebt) []api.RemainingDebt {
	out := make([]api.RemainingDebt, len(debts))
	for i, d := range debts {
		out[i] = api.RemainingDebt{DebtID: d.DebtID, Amount: d.Amount}
	}
	return out
}

// toDebtAmounts flattens a debtor to amount map, ordered by debtor.
func toDebtAmounts(amounts map[int64]float64) []api.DebtAmount {
	out := make([]api.DebtAmount, 0, len(amounts))
	for debtorID, amount := range amounts {
		out = append(out, api.DebtAmount{DebtorID: debtorID, Amount: amount})
	}
	slices.SortFunc(out, func(a, b api.DebtAmount) int {
		return cmp.Compare(a.DebtorID, b.DebtorID)
	})
	return out
}

func toShareTotals(shares map[int64]*calculator.PersonShare) []api.ShareTotal {
	out := make([]api.ShareTotal, 0, len(shares))
	for userID, s := range shares {
		out = append(out, api.ShareTotal{
			UserID:   userID,
			Subtotal: s.Subtotal.InexactFloat64(),
			Tax:      s.Tax.InexactFloat64(),
			Total:    s.Total.InexactFloat64(),
		})
	}
	slices.SortFunc(out, func(a, b api.ShareTotal) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return out
}
