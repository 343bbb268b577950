package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService: the bill registry and the
// settlement that turns a completed bill into ledger debts.
type BillService struct {
	store  storage.Store
	ledger *ledger.Ledger
	logger *slog.Logger
}

// NewBillService creates a new BillService with the given storage backend.
func NewBillService(store storage.Store, l *ledger.Ledger, logger *slog.Logger) *BillService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillService{store: store, ledger: l, logger: logger}
}

// UpsertUser creates or refreshes the caller's directory entry.
func (s *BillService) UpsertUser(ctx context.Context, req *connect.Request[api.UpsertUserRequest]) (*connect.Response[api.UpsertUserResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if req.Msg.User.ID != userID {
		return nil, permissionDenied("users can only update themselves")
	}

	var user *models.User
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.UpsertUser(ctx, fromAPIUser(req.Msg.User)); err != nil {
			return err
		}
		var err error
		user, err = tx.User(ctx, userID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "UpsertUser", err)
	}

	return connect.NewResponse(&api.UpsertUserResponse{User: toAPIUser(*user)}), nil
}

// CreateBill opens a new bill owned by the caller.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("CreateBill request received", "title", req.Msg.Title, "owner_id", userID)

	var bill *models.Bill
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.User(ctx, userID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return failedPrecondition("user %d must be registered before creating bills", userID)
			}
			return err
		}
		billID, err := tx.CreateBill(ctx, req.Msg.Title, userID)
		if err != nil {
			return err
		}
		bill, err = tx.Bill(ctx, billID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "CreateBill", err)
	}

	s.logger.Info("bill created", "bill_id", bill.ID)
	return connect.NewResponse(&api.CreateBillResponse{Bill: toAPIBill(bill)}), nil
}

// AddItem appends a line item to an open bill.
func (s *BillService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var itemID int64
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := editableBill(ctx, tx, req.Msg.BillID, userID); err != nil {
			return err
		}
		var err error
		itemID, err = tx.AddItem(ctx, req.Msg.BillID, req.Msg.Name, req.Msg.Price)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "AddItem", err)
	}

	return connect.NewResponse(&api.AddItemResponse{
		Item: api.Item{ID: itemID, Name: req.Msg.Name, Price: req.Msg.Price},
	}), nil
}

// AddTax appends a percentage charge to an open bill.
func (s *BillService) AddTax(ctx context.Context, req *connect.Request[api.AddTaxRequest]) (*connect.Response[api.AddTaxResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var taxID int64
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		if _, err := editableBill(ctx, tx, req.Msg.BillID, userID); err != nil {
			return err
		}
		var err error
		taxID, err = tx.AddTax(ctx, req.Msg.BillID, req.Msg.Title, req.Msg.Rate)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "AddTax", err)
	}

	return connect.NewResponse(&api.AddTaxResponse{
		Tax: api.Tax{ID: taxID, Title: req.Msg.Title, Rate: req.Msg.Rate},
	}), nil
}

// editableBill returns the bill when userID owns it and its content is not frozen.
func editableBill(ctx context.Context, tx storage.Tx, billID string, userID int64) (*models.Bill, error) {
	bill, err := tx.Bill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.OwnerID != userID {
		return nil, permissionDenied("only the bill owner can edit it")
	}
	if bill.IsCompleted() || bill.IsClosed() {
		return nil, failedPrecondition("bill %s is no longer editable", bill.ID)
	}
	return bill, nil
}

// ToggleShare flips a participant's share of an item. Participants toggle
// their own shares; the owner may toggle anyone's.
func (s *BillService) ToggleShare(ctx context.Context, req *connect.Request[api.ToggleShareRequest]) (*connect.Response[api.ToggleShareResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	target := req.Msg.UserID
	if target == 0 {
		target = userID
	}

	var active bool
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		bill, err := tx.Bill(ctx, req.Msg.BillID)
		if err != nil {
			return err
		}
		if target != userID && bill.OwnerID != userID {
			return permissionDenied("only the bill owner can change other participants' shares")
		}
		if bill.IsCompleted() || bill.IsClosed() {
			return failedPrecondition("bill %s is no longer editable", bill.ID)
		}
		items, err := tx.Items(ctx, bill.ID)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(items, func(it models.Item) bool { return it.ID == req.Msg.ItemID }) {
			return connect.NewError(connect.CodeNotFound, errItemNotOnBill(req.Msg.ItemID, bill.ID))
		}
		if _, err := tx.User(ctx, target); err != nil {
			return err
		}
		active, err = tx.ToggleShare(ctx, bill.ID, req.Msg.ItemID, target)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "ToggleShare", err)
	}

	return connect.NewResponse(&api.ToggleShareResponse{Active: active}), nil
}

// SettleBill completes the bill and registers what each participant owes the
// owner. Settling a bill again registers only the difference from what the
// ledger already holds, as a new attempt.
func (s *BillService) SettleBill(ctx context.Context, req *connect.Request[api.SettleBillRequest]) (*connect.Response[api.SettleBillResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	s.logger.Info("SettleBill request received", "bill_id", req.Msg.BillID)

	var (
		bill    *models.Bill
		attempt int
		debts   map[int64]float64
	)
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		bill, err = tx.Bill(ctx, req.Msg.BillID)
		if err != nil {
			return err
		}
		if bill.OwnerID != userID {
			return permissionDenied("only the bill owner can settle it")
		}
		if bill.IsClosed() {
			return failedPrecondition("bill %s is closed", bill.ID)
		}
		if !bill.IsCompleted() {
			if err := tx.CompleteBill(ctx, bill.ID, userID); err != nil {
				return err
			}
			if bill, err = tx.Bill(ctx, bill.ID); err != nil {
				return err
			}
		}

		items, err := tx.Items(ctx, bill.ID)
		if err != nil {
			return err
		}
		taxes, err := tx.Taxes(ctx, bill.ID)
		if err != nil {
			return err
		}
		shares, err := tx.Shares(ctx, bill.ID)
		if err != nil {
			return err
		}
		split, err := calculator.CalculateShares(items, taxes, shares)
		if err != nil {
			return connect.NewError(connect.CodeFailedPrecondition, err)
		}
		debts = calculator.DebtsFor(bill.OwnerID, split)

		existing, err := tx.DebtTotals(ctx, bill.ID, bill.OwnerID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			if err := s.ledger.RegisterDebts(ctx, tx, bill.ID, bill.OwnerID, debts); err != nil {
				return err
			}
			if len(debts) > 0 {
				attempt = 1
			}
			return nil
		}
		attempt, err = s.ledger.RegisterAdjustment(ctx, tx, bill.ID, bill.OwnerID, calculator.Adjustments(debts, existing))
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "SettleBill", err)
	}

	s.logger.Info("bill settled", "bill_id", bill.ID, "attempt", attempt, "debtors", len(debts))
	return connect.NewResponse(&api.SettleBillResponse{
		Bill:    toAPIBill(bill),
		Attempt: attempt,
		Debts:   toDebtAmounts(debts),
	}), nil
}

// ReopenBill lets the owner edit a completed bill again. Registered debts
// stay; the next settlement adjusts them.
func (s *BillService) ReopenBill(ctx context.Context, req *connect.Request[api.ReopenBillRequest]) (*connect.Response[api.ReopenBillResponse], error) {
	return ownerTransition(ctx, s, req.Msg.BillID, req.Msg, "ReopenBill", func(ctx context.Context, tx storage.Tx, bill *models.Bill) error {
		if bill.IsClosed() {
			return failedPrecondition("bill %s is closed", bill.ID)
		}
		return tx.ReopenBill(ctx, bill.ID, bill.OwnerID)
	}, func(b api.Bill) *api.ReopenBillResponse {
		return &api.ReopenBillResponse{Bill: b}
	})
}

// CloseBill stops the bill from accepting payments.
func (s *BillService) CloseBill(ctx context.Context, req *connect.Request[api.CloseBillRequest]) (*connect.Response[api.CloseBillResponse], error) {
	return ownerTransition(ctx, s, req.Msg.BillID, req.Msg, "CloseBill", func(ctx context.Context, tx storage.Tx, bill *models.Bill) error {
		if bill.IsClosed() {
			return nil
		}
		return tx.CloseBill(ctx, bill.ID, bill.OwnerID)
	}, func(b api.Bill) *api.CloseBillResponse {
		return &api.CloseBillResponse{Bill: b}
	})
}

// ownerTransition runs an owner-only state change and returns the updated bill.
func ownerTransition[Res any](
	ctx context.Context,
	s *BillService,
	billID string,
	msg any,
	op string,
	apply func(context.Context, storage.Tx, *models.Bill) error,
	respond func(api.Bill) *Res,
) (*connect.Response[Res], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(msg); err != nil {
		return nil, err
	}

	var bill *models.Bill
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		bill, err = tx.Bill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.OwnerID != userID {
			return permissionDenied("only the bill owner can change its state")
		}
		if err := apply(ctx, tx, bill); err != nil {
			return err
		}
		bill, err = tx.Bill(ctx, billID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, op, err)
	}

	s.logger.Info(op+" done", "bill_id", billID)
	return connect.NewResponse(respond(toAPIBill(bill))), nil
}

// GetBill returns a bill with its content and computed shares.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var (
		bill   *models.Bill
		items  []models.Item
		taxes  []models.Tax
		shares []models.Share
	)
	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		if bill, err = tx.Bill(ctx, req.Msg.BillID); err != nil {
			return err
		}
		if items, err = tx.Items(ctx, bill.ID); err != nil {
			return err
		}
		if taxes, err = tx.Taxes(ctx, bill.ID); err != nil {
			return err
		}
		shares, err = tx.Shares(ctx, bill.ID)
		return err
	})
	if err != nil {
		return nil, toConnectError(s.logger, "GetBill", err)
	}

	split, err := calculator.CalculateShares(items, taxes, shares)
	if err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}

	resp := &api.GetBillResponse{
		Bill:   toAPIBill(bill),
		Items:  make([]api.Item, len(items)),
		Taxes:  make([]api.Tax, len(taxes)),
		Shares: make([]api.Share, len(shares)),
		Totals: toShareTotals(split),
	}
	for i, it := range items {
		resp.Items[i] = api.Item{ID: it.ID, Name: it.Name, Price: it.Price}
	}
	for i, t := range taxes {
		resp.Taxes[i] = api.Tax{ID: t.ID, Title: t.Title, Rate: t.Rate}
	}
	for i, sh := range shares {
		resp.Shares[i] = api.Share{ItemID: sh.ItemID, UserID: sh.UserID}
	}
	return connect.NewResponse(resp), nil
}
