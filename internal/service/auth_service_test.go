package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestIssueToken(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	resp, err := env.auth.IssueToken(ctx, connect.NewRequest(&api.IssueTokenRequest{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
		User:         api.User{ID: alice, FirstName: "Alice"},
	}))
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if resp.Msg.Token == "" {
		t.Fatal("expected a token")
	}
	if resp.Msg.ExpiresAt <= time.Now().Unix() {
		t.Errorf("expected expiry in the future, got %d", resp.Msg.ExpiresAt)
	}

	claims, err := env.jwt.Validate(resp.Msg.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if userID, _ := claims.UserID(); userID != alice {
		t.Errorf("expected subject %d, got %d", alice, userID)
	}
	if claims.ClientID != testClientID {
		t.Errorf("expected client %q, got %q", testClientID, claims.ClientID)
	}

	// The token works against authenticated procedures and the user was recorded.
	req := connect.NewRequest(&api.CreateBillRequest{Title: "Lunch"})
	req.Header().Set("Authorization", "Bearer "+resp.Msg.Token)
	bill, err := env.bills.CreateBill(ctx, req)
	if err != nil {
		t.Fatalf("CreateBill with issued token failed: %v", err)
	}
	if bill.Msg.Bill.OwnerID != alice {
		t.Errorf("expected owner %d, got %d", alice, bill.Msg.Bill.OwnerID)
	}
}

func TestIssueToken_BadSecret(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.auth.IssueToken(context.Background(), connect.NewRequest(&api.IssueTokenRequest{
		ClientID:     testClientID,
		ClientSecret: "wrong-secret-value",
		User:         api.User{ID: alice},
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestIssueToken_UnknownClient(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.auth.IssueToken(context.Background(), connect.NewRequest(&api.IssueTokenRequest{
		ClientID:     "mobile",
		ClientSecret: testClientSecret,
		User:         api.User{ID: alice},
	}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestIssueToken_InvalidUser(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.auth.IssueToken(context.Background(), connect.NewRequest(&api.IssueTokenRequest{
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}))
	assertCode(t, err, connect.CodeInvalidArgument)
}
