package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateBill_And_GetBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	registerUsers(t, env, alice, bob)

	created, err := env.bills.CreateBill(ctx, as(t, env, alice, &api.CreateBillRequest{Title: "Groceries"}))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	billID := created.Msg.Bill.ID
	if len(billID) != 16 {
		t.Errorf("expected 16 character bill id, got %q", billID)
	}
	if created.Msg.Bill.CreatedAt == 0 {
		t.Error("expected created_at to be set")
	}

	item, err := env.bills.AddItem(ctx, as(t, env, alice, &api.AddItemRequest{BillID: billID, Name: "Cheese", Price: 100}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	for _, rate := range []float64{10, 5} {
		if _, err := env.bills.AddTax(ctx, as(t, env, alice, &api.AddTaxRequest{BillID: billID, Title: "tax", Rate: rate})); err != nil {
			t.Fatalf("AddTax failed: %v", err)
		}
	}
	if _, err := env.bills.ToggleShare(ctx, as(t, env, bob, &api.ToggleShareRequest{BillID: billID, ItemID: item.Msg.Item.ID})); err != nil {
		t.Fatalf("ToggleShare failed: %v", err)
	}

	got, err := env.bills.GetBill(ctx, as(t, env, bob, &api.GetBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.Title != "Groceries" {
		t.Errorf("expected title Groceries, got %q", got.Msg.Bill.Title)
	}
	if len(got.Msg.Items) != 1 || len(got.Msg.Taxes) != 2 || len(got.Msg.Shares) != 1 {
		t.Fatalf("unexpected bill content: %+v", got.Msg)
	}
	if len(got.Msg.Totals) != 1 {
		t.Fatalf("expected 1 share total, got %d", len(got.Msg.Totals))
	}
	total := got.Msg.Totals[0]
	if total.UserID != bob || total.Subtotal != 100 || total.Total != 115.5 {
		t.Errorf("expected bob to owe 100 + compounded tax = 115.5, got %+v", total)
	}
}

func TestGetBill_NotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.bills.GetBill(context.Background(), as(t, env, alice, &api.GetBillRequest{BillID: "0000000000000000"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetBill_InvalidID(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.bills.GetBill(context.Background(), as(t, env, alice, &api.GetBillRequest{BillID: "short"}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestCreateBill_UnregisteredUser(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.bills.CreateBill(context.Background(), as(t, env, alice, &api.CreateBillRequest{Title: "Lunch"}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}

func TestUpsertUser_OnlySelf(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.bills.UpsertUser(context.Background(), as(t, env, alice, &api.UpsertUserRequest{
		User: api.User{ID: bob, FirstName: "Mallory"},
	}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestAddItem_NotOwner(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	registerUsers(t, env, alice, bob)

	bill, err := env.bills.CreateBill(ctx, as(t, env, alice, &api.CreateBillRequest{Title: "Lunch"}))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	_, err = env.bills.AddItem(ctx, as(t, env, bob, &api.AddItemRequest{BillID: bill.Msg.Bill.ID, Name: "Soup", Price: 5}))
	assertCode(t, err, connect.CodePermissionDenied)
}

func TestToggleShare(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	registerUsers(t, env, alice, bob, carol)

	bill, err := env.bills.CreateBill(ctx, as(t, env, alice, &api.CreateBillRequest{Title: "Lunch"}))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	billID := bill.Msg.Bill.ID
	item, err := env.bills.AddItem(ctx, as(t, env, alice, &api.AddItemRequest{BillID: billID, Name: "Soup", Price: 5}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	itemID := item.Msg.Item.ID

	for i, want := range []bool{true, false, true} {
		resp, err := env.bills.ToggleShare(ctx, as(t, env, bob, &api.ToggleShareRequest{BillID: billID, ItemID: itemID}))
		if err != nil {
			t.Fatalf("toggle %d failed: %v", i, err)
		}
		if resp.Msg.Active != want {
			t.Errorf("toggle %d: expected active=%v, got %v", i, want, resp.Msg.Active)
		}
	}

	// Only the owner may toggle for someone else.
	_, err = env.bills.ToggleShare(ctx, as(t, env, bob, &api.ToggleShareRequest{BillID: billID, ItemID: itemID, UserID: carol}))
	assertCode(t, err, connect.CodePermissionDenied)

	resp, err := env.bills.ToggleShare(ctx, as(t, env, alice, &api.ToggleShareRequest{BillID: billID, ItemID: itemID, UserID: carol}))
	if err != nil {
		t.Fatalf("owner toggle failed: %v", err)
	}
	if !resp.Msg.Active {
		t.Error("expected carol's share to be active")
	}

	_, err = env.bills.ToggleShare(ctx, as(t, env, bob, &api.ToggleShareRequest{BillID: billID, ItemID: itemID + 100}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestSettleBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID := createSettledBill(t, env)

	got, err := env.bills.GetBill(ctx, as(t, env, alice, &api.GetBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if got.Msg.Bill.CompletedAt == 0 {
		t.Error("expected settled bill to be completed")
	}

	// Completed bills are frozen.
	_, err = env.bills.AddItem(ctx, as(t, env, alice, &api.AddItemRequest{BillID: billID, Name: "Late", Price: 1}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	for debtor, want := range map[int64]float64{bob: 30, carol: 20} {
		resp, err := env.ledger.GetRemainingDebt(ctx, as(t, env, debtor, &api.GetRemainingDebtRequest{
			BillID: billID, DebtorID: debtor, CreditorID: alice,
		}))
		if err != nil {
			t.Fatalf("GetRemainingDebt(%d) failed: %v", debtor, err)
		}
		if resp.Msg.Total != want {
			t.Errorf("debtor %d: expected %v remaining, got %v", debtor, want, resp.Msg.Total)
		}
	}

	// Settling an unchanged bill registers nothing.
	again, err := env.bills.SettleBill(ctx, as(t, env, alice, &api.SettleBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("second SettleBill failed: %v", err)
	}
	if again.Msg.Attempt != 0 {
		t.Errorf("expected no new attempt, got %d", again.Msg.Attempt)
	}
}

func TestSettleBill_AfterReopen(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID := createSettledBill(t, env)

	if _, err := env.bills.ReopenBill(ctx, as(t, env, alice, &api.ReopenBillRequest{BillID: billID})); err != nil {
		t.Fatalf("ReopenBill failed: %v", err)
	}
	item, err := env.bills.AddItem(ctx, as(t, env, alice, &api.AddItemRequest{BillID: billID, Name: "Dessert", Price: 10}))
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := env.bills.ToggleShare(ctx, as(t, env, bob, &api.ToggleShareRequest{BillID: billID, ItemID: item.Msg.Item.ID})); err != nil {
		t.Fatalf("ToggleShare failed: %v", err)
	}

	settled, err := env.bills.SettleBill(ctx, as(t, env, alice, &api.SettleBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("SettleBill failed: %v", err)
	}
	if settled.Msg.Attempt != 2 {
		t.Errorf("expected attempt 2, got %d", settled.Msg.Attempt)
	}
	if len(settled.Msg.Debts) != 2 || settled.Msg.Debts[0].DebtorID != bob || settled.Msg.Debts[0].Amount != 40 {
		t.Errorf("expected bob to owe 40 in total, got %+v", settled.Msg.Debts)
	}

	remaining, err := env.ledger.GetRemainingDebt(ctx, as(t, env, bob, &api.GetRemainingDebtRequest{
		BillID: billID, DebtorID: bob, CreditorID: alice,
	}))
	if err != nil {
		t.Fatalf("GetRemainingDebt failed: %v", err)
	}
	if len(remaining.Msg.Debts) != 2 || remaining.Msg.Total != 40 {
		t.Errorf("expected two debts totalling 40, got %+v", remaining.Msg)
	}
}

func TestCloseBill(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	billID := createSettledBill(t, env)

	_, err := env.bills.CloseBill(ctx, as(t, env, bob, &api.CloseBillRequest{BillID: billID}))
	assertCode(t, err, connect.CodePermissionDenied)

	closed, err := env.bills.CloseBill(ctx, as(t, env, alice, &api.CloseBillRequest{BillID: billID}))
	if err != nil {
		t.Fatalf("CloseBill failed: %v", err)
	}
	if closed.Msg.Bill.ClosedAt == 0 {
		t.Error("expected closed_at to be set")
	}
	if _, err := env.bills.CloseBill(ctx, as(t, env, alice, &api.CloseBillRequest{BillID: billID})); err != nil {
		t.Errorf("closing twice should succeed: %v", err)
	}

	_, err = env.ledger.ReconcilePayment(ctx, as(t, env, bob, &api.ReconcilePaymentRequest{
		BillID: billID, CreditorID: alice, DebtorID: bob, Type: "cash",
	}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = env.bills.ReopenBill(ctx, as(t, env, alice, &api.ReopenBillRequest{BillID: billID}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}
