package calculator

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)
	// halfCent is the smallest difference that survives rounding to cents.
	halfCent = decimal.New(5, -3)
)

// PersonShare represents the calculated share of one participant.
type PersonShare struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// CalculateShares computes how much each participant owes for a bill.
// Each item's price is split equally among its sharers. Taxes are percentage
// rates applied in order, each on top of the previous ones:
// person_total = person_subtotal × Π(1 + rate/100)
// Totals are rounded to cents. Items nobody shares are ignored.
func CalculateShares(items []models.Item, taxes []models.Tax, shares []models.Share) (map[int64]*PersonShare, error) {
	sharers := make(map[int64][]int64, len(items))
	known := make(map[int64]bool, len(items))
	for _, item := range items {
		if item.Price < 0 {
			return nil, fmt.Errorf("item %q has a negative price", item.Name)
		}
		known[item.ID] = true
	}
	for _, s := range shares {
		if !known[s.ItemID] {
			return nil, fmt.Errorf("share references unknown item %d", s.ItemID)
		}
		if !slices.Contains(sharers[s.ItemID], s.UserID) {
			sharers[s.ItemID] = append(sharers[s.ItemID], s.UserID)
		}
	}

	multiplier := decimal.NewFromInt(1)
	for _, tax := range taxes {
		if tax.Rate < 0 {
			return nil, fmt.Errorf("tax %q has a negative rate", tax.Title)
		}
		multiplier = multiplier.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(tax.Rate).Div(hundred)))
	}

	splits := make(map[int64]*PersonShare)
	for _, item := range items {
		users := sharers[item.ID]
		if len(users) == 0 {
			continue
		}

		// Split item among sharers
		perPerson := decimal.NewFromFloat(item.Price).Div(decimal.NewFromInt(int64(len(users))))
		for _, userID := range users {
			split, ok := splits[userID]
			if !ok {
				split = &PersonShare{}
				splits[userID] = split
			}
			split.Subtotal = split.Subtotal.Add(perPerson)
		}
	}

	for _, split := range splits {
		split.Total = split.Subtotal.Mul(multiplier).Round(2)
		split.Subtotal = split.Subtotal.Round(2)
		split.Tax = split.Total.Sub(split.Subtotal)
	}

	return splits, nil
}

// DebtsFor turns the participants' shares into what each owes the owner.
// The owner and participants owing nothing are left out.
func DebtsFor(ownerID int64, shares map[int64]*PersonShare) map[int64]float64 {
	debts := make(map[int64]float64, len(shares))
	for userID, share := range shares {
		if userID == ownerID || share.Total.IsZero() {
			continue
		}
		debts[userID] = share.Total.InexactFloat64()
	}
	return debts
}

// Adjustments returns, per debtor, the amount to add to what is already owed
// so the total matches target. Debtors whose total is unchanged are left out;
// debtors missing from target are owed back in full.
func Adjustments(target, existing map[int64]float64) map[int64]float64 {
	deltas := make(map[int64]float64)
	for debtorID, amount := range target {
		delta := decimal.NewFromFloat(amount).Sub(decimal.NewFromFloat(existing[debtorID]))
		if delta.Abs().GreaterThanOrEqual(halfCent) {
			deltas[debtorID] = delta.Round(2).InexactFloat64()
		}
	}
	for debtorID, amount := range existing {
		if _, ok := target[debtorID]; ok {
			continue
		}
		delta := decimal.NewFromFloat(amount).Neg()
		if delta.Abs().GreaterThanOrEqual(halfCent) {
			deltas[debtorID] = delta.Round(2).InexactFloat64()
		}
	}
	return deltas
}
