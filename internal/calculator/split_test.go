package calculator

import (
	"math"
	"testing"

	"github.com/mmynk/splitledger/internal/models"
)

func TestCalculateShares(t *testing.T) {
	tests := []struct {
		name         string
		items        []models.Item
		taxes        []models.Tax
		shares       []models.Share
		wantErr      bool
		validateFunc func(t *testing.T, splits map[int64]*PersonShare)
	}{
		{
			name: "simple two-person split with tax",
			items: []models.Item{
				{ID: 1, Name: "Pizza", Price: 20.0},
				{ID: 2, Name: "Salad", Price: 10.0},
			},
			taxes:  []models.Tax{{ID: 1, Title: "Service", Rate: 10}},
			shares: []models.Share{{ItemID: 1, UserID: 100}, {ItemID: 1, UserID: 200}, {ItemID: 2, UserID: 100}},
			validateFunc: func(t *testing.T, splits map[int64]*PersonShare) {
				// 100: subtotal = 10 + 10 = 20, tax = 2, total = 22
				// 200: subtotal = 10, tax = 1, total = 11
				assertShare(t, splits[100], 20, 2, 22)
				assertShare(t, splits[200], 10, 1, 11)
			},
		},
		{
			name:   "taxes compound in order",
			items:  []models.Item{{ID: 1, Name: "Steak", Price: 100.0}},
			taxes:  []models.Tax{{ID: 1, Title: "Service", Rate: 10}, {ID: 2, Title: "GST", Rate: 7}},
			shares: []models.Share{{ItemID: 1, UserID: 100}},
			validateFunc: func(t *testing.T, splits map[int64]*PersonShare) {
				// 100 × 1.10 × 1.07 = 117.70
				assertShare(t, splits[100], 100, 17.70, 117.70)
			},
		},
		{
			name:   "uneven split rounds to cents",
			items:  []models.Item{{ID: 1, Name: "Cake", Price: 10.0}},
			shares: []models.Share{{ItemID: 1, UserID: 1}, {ItemID: 1, UserID: 2}, {ItemID: 1, UserID: 3}},
			validateFunc: func(t *testing.T, splits map[int64]*PersonShare) {
				for _, userID := range []int64{1, 2, 3} {
					assertShare(t, splits[userID], 3.33, 0, 3.33)
				}
			},
		},
		{
			name: "unshared item is ignored",
			items: []models.Item{
				{ID: 1, Name: "Beer", Price: 8.0},
				{ID: 2, Name: "Chips", Price: 4.0},
			},
			shares: []models.Share{{ItemID: 1, UserID: 1}},
			validateFunc: func(t *testing.T, splits map[int64]*PersonShare) {
				if len(splits) != 1 {
					t.Fatalf("got %d splits, want 1", len(splits))
				}
				assertShare(t, splits[1], 8, 0, 8)
			},
		},
		{
			name:   "duplicate share counts once",
			items:  []models.Item{{ID: 1, Name: "Tea", Price: 6.0}},
			shares: []models.Share{{ItemID: 1, UserID: 1}, {ItemID: 1, UserID: 1}, {ItemID: 1, UserID: 2}},
			validateFunc: func(t *testing.T, splits map[int64]*PersonShare) {
				assertShare(t, splits[1], 3, 0, 3)
				assertShare(t, splits[2], 3, 0, 3)
			},
		},
		{
			name:    "share of unknown item should error",
			items:   []models.Item{{ID: 1, Name: "Tea", Price: 6.0}},
			shares:  []models.Share{{ItemID: 9, UserID: 1}},
			wantErr: true,
		},
		{
			name:    "negative price should error",
			items:   []models.Item{{ID: 1, Name: "Refund", Price: -6.0}},
			wantErr: true,
		},
		{
			name:    "negative tax rate should error",
			items:   []models.Item{{ID: 1, Name: "Tea", Price: 6.0}},
			taxes:   []models.Tax{{ID: 1, Title: "Discount", Rate: -5}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := CalculateShares(tt.items, tt.taxes, tt.shares)
			if (err != nil) != tt.wantErr {
				t.Errorf("CalculateShares() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}

func assertShare(t *testing.T, got *PersonShare, subtotal, tax, total float64) {
	t.Helper()
	if got == nil {
		t.Fatal("missing share")
	}
	if math.Abs(got.Subtotal.InexactFloat64()-subtotal) > 0.001 {
		t.Errorf("subtotal = %v, want %v", got.Subtotal, subtotal)
	}
	if math.Abs(got.Tax.InexactFloat64()-tax) > 0.001 {
		t.Errorf("tax = %v, want %v", got.Tax, tax)
	}
	if math.Abs(got.Total.InexactFloat64()-total) > 0.001 {
		t.Errorf("total = %v, want %v", got.Total, total)
	}
}

func TestDebtsFor(t *testing.T) {
	splits, err := CalculateShares(
		[]models.Item{{ID: 1, Name: "Pizza", Price: 30.0}, {ID: 2, Name: "Water", Price: 0}},
		nil,
		[]models.Share{{ItemID: 1, UserID: 1}, {ItemID: 1, UserID: 2}, {ItemID: 1, UserID: 3}, {ItemID: 2, UserID: 4}},
	)
	if err != nil {
		t.Fatalf("CalculateShares failed: %v", err)
	}

	debts := DebtsFor(1, splits)

	if _, ok := debts[1]; ok {
		t.Error("owner should not owe themselves")
	}
	if _, ok := debts[4]; ok {
		t.Error("participant owing nothing should be left out")
	}
	if len(debts) != 2 || debts[2] != 10 || debts[3] != 10 {
		t.Errorf("debts = %v, want map[2:10 3:10]", debts)
	}
}

func TestAdjustments(t *testing.T) {
	t.Run("differences only", func(t *testing.T) {
		got := Adjustments(
			map[int64]float64{2: 11, 3: 5, 5: 7.5},
			map[int64]float64{2: 10, 4: 3, 5: 7.5},
		)
		want := map[int64]float64{2: 1, 3: 5, 4: -3}
		if len(got) != len(want) {
			t.Fatalf("Adjustments() = %v, want %v", got, want)
		}
		for debtorID, amount := range want {
			if math.Abs(got[debtorID]-amount) > 0.001 {
				t.Errorf("debtor %d: got %v, want %v", debtorID, got[debtorID], amount)
			}
		}
	})

	t.Run("float drift below a cent is ignored", func(t *testing.T) {
		got := Adjustments(map[int64]float64{2: 0.1 + 0.2}, map[int64]float64{2: 0.3})
		if len(got) != 0 {
			t.Errorf("Adjustments() = %v, want empty", got)
		}
	})
}
