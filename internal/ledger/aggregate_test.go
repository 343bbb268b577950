package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmynk/splitledger/internal/models"
)

func TestFoldRemaining(t *testing.T) {
	confirmed := func(debtID int64, original, paid float64) models.DebtPaymentRow {
		return models.DebtPaymentRow{DebtID: debtID, OriginalAmt: original, HasPayment: true, PaymentAmount: paid, ConfirmedAt: 1700000000}
	}

	tests := []struct {
		name string
		rows []models.DebtPaymentRow
		want []models.RemainingDebt
	}{
		{
			name: "no rows",
			rows: nil,
			want: nil,
		},
		{
			name: "debt without payments",
			rows: []models.DebtPaymentRow{{DebtID: 1, OriginalAmt: 25}},
			want: []models.RemainingDebt{{DebtID: 1, Amount: 25}},
		},
		{
			name: "pending payment does not count",
			rows: []models.DebtPaymentRow{{DebtID: 1, OriginalAmt: 25, HasPayment: true, PaymentAmount: 25}},
			want: []models.RemainingDebt{{DebtID: 1, Amount: 25}},
		},
		{
			name: "deleted confirmed payment does not count",
			rows: []models.DebtPaymentRow{{DebtID: 1, OriginalAmt: 25, HasPayment: true, PaymentAmount: 25, ConfirmedAt: 1, PaymentDeleted: true}},
			want: []models.RemainingDebt{{DebtID: 1, Amount: 25}},
		},
		{
			name: "fully paid debt is dropped",
			rows: []models.DebtPaymentRow{confirmed(1, 25, 25), {DebtID: 2, OriginalAmt: 5}},
			want: []models.RemainingDebt{{DebtID: 2, Amount: 5}},
		},
		{
			name: "several confirmed payments are summed",
			rows: []models.DebtPaymentRow{confirmed(1, 30, 10), confirmed(1, 30, 5)},
			want: []models.RemainingDebt{{DebtID: 1, Amount: 15}},
		},
		{
			name: "unsorted input is grouped per debt",
			rows: []models.DebtPaymentRow{confirmed(3, 10, 4), {DebtID: 1, OriginalAmt: 7}, confirmed(3, 10, 1)},
			want: []models.RemainingDebt{{DebtID: 1, Amount: 7}, {DebtID: 3, Amount: 5}},
		},
		{
			name: "drift below epsilon counts as settled",
			rows: []models.DebtPaymentRow{confirmed(1, 0.3, 0.1), confirmed(1, 0.3, 0.2)},
			want: nil,
		},
		{
			name: "negative adjustment is kept",
			rows: []models.DebtPaymentRow{{DebtID: 4, OriginalAmt: -5}},
			want: []models.RemainingDebt{{DebtID: 4, Amount: -5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoldRemaining(tt.rows)
			assert.Len(t, got, len(tt.want))
			for i := range tt.want {
				if i >= len(got) {
					break
				}
				assert.Equal(t, tt.want[i].DebtID, got[i].DebtID)
				assert.InDelta(t, tt.want[i].Amount, got[i].Amount, Epsilon)
			}
		})
	}
}

func TestFoldRemaining_DoesNotReorderInput(t *testing.T) {
	rows := []models.DebtPaymentRow{{DebtID: 2, OriginalAmt: 1}, {DebtID: 1, OriginalAmt: 2}}

	FoldRemaining(rows)

	assert.Equal(t, int64(2), rows[0].DebtID)
}

func TestTotal(t *testing.T) {
	assert.Zero(t, Total(nil))
	assert.InDelta(t, 12.5, Total([]models.RemainingDebt{{DebtID: 1, Amount: 20}, {DebtID: 2, Amount: -7.5}}), Epsilon)
}
