package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

const (
	LedgerServiceName = "splitledger.v1.LedgerService"
	BillServiceName   = "splitledger.v1.BillService"
	AuthServiceName   = "splitledger.v1.AuthService"
)

// Fully-qualified procedure names, in the form "/package.Service/Method".
const (
	LedgerServiceRegisterDebtsProcedure       = "/" + LedgerServiceName + "/RegisterDebts"
	LedgerServiceGetRemainingDebtProcedure    = "/" + LedgerServiceName + "/GetRemainingDebt"
	LedgerServiceReconcilePaymentProcedure    = "/" + LedgerServiceName + "/ReconcilePayment"
	LedgerServiceConfirmPaymentProcedure      = "/" + LedgerServiceName + "/ConfirmPayment"
	LedgerServiceForceConfirmPaymentProcedure = "/" + LedgerServiceName + "/ForceConfirmPayment"
	LedgerServiceGetBillDebtsProcedure        = "/" + LedgerServiceName + "/GetBillDebts"
	LedgerServiceListPendingPaymentsProcedure = "/" + LedgerServiceName + "/ListPendingPayments"
	LedgerServiceListUnpaidPaymentsProcedure  = "/" + LedgerServiceName + "/ListUnpaidPayments"
	LedgerServiceGetPaymentProcedure          = "/" + LedgerServiceName + "/GetPayment"
	BillServiceUpsertUserProcedure            = "/" + BillServiceName + "/UpsertUser"
	BillServiceCreateBillProcedure            = "/" + BillServiceName + "/CreateBill"
	BillServiceAddItemProcedure               = "/" + BillServiceName + "/AddItem"
	BillServiceAddTaxProcedure                = "/" + BillServiceName + "/AddTax"
	BillServiceToggleShareProcedure           = "/" + BillServiceName + "/ToggleShare"
	BillServiceSettleBillProcedure            = "/" + BillServiceName + "/SettleBill"
	BillServiceReopenBillProcedure            = "/" + BillServiceName + "/ReopenBill"
	BillServiceCloseBillProcedure             = "/" + BillServiceName + "/CloseBill"
	BillServiceGetBillProcedure               = "/" + BillServiceName + "/GetBill"
	AuthServiceIssueTokenProcedure            = "/" + AuthServiceName + "/IssueToken"
)

// LedgerServiceHandler serves debts and payment reconciliation.
type LedgerServiceHandler interface {
	RegisterDebts(context.Context, *connect.Request[RegisterDebtsRequest]) (*connect.Response[RegisterDebtsResponse], error)
	GetRemainingDebt(context.Context, *connect.Request[GetRemainingDebtRequest]) (*connect.Response[GetRemainingDebtResponse], error)
	ReconcilePayment(context.Context, *connect.Request[ReconcilePaymentRequest]) (*connect.Response[ReconcilePaymentResponse], error)
	ConfirmPayment(context.Context, *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error)
	ForceConfirmPayment(context.Context, *connect.Request[ForceConfirmPaymentRequest]) (*connect.Response[ForceConfirmPaymentResponse], error)
	GetBillDebts(context.Context, *connect.Request[GetBillDebtsRequest]) (*connect.Response[GetBillDebtsResponse], error)
	ListPendingPayments(context.Context, *connect.Request[ListPendingPaymentsRequest]) (*connect.Response[ListPendingPaymentsResponse], error)
	ListUnpaidPayments(context.Context, *connect.Request[ListUnpaidPaymentsRequest]) (*connect.Response[ListUnpaidPaymentsResponse], error)
	GetPayment(context.Context, *connect.Request[GetPaymentRequest]) (*connect.Response[GetPaymentResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceRegisterDebtsProcedure, connect.NewUnaryHandler(LedgerServiceRegisterDebtsProcedure, svc.RegisterDebts, opts...))
	mux.Handle(LedgerServiceGetRemainingDebtProcedure, connect.NewUnaryHandler(LedgerServiceGetRemainingDebtProcedure, svc.GetRemainingDebt, opts...))
	mux.Handle(LedgerServiceReconcilePaymentProcedure, connect.NewUnaryHandler(LedgerServiceReconcilePaymentProcedure, svc.ReconcilePayment, opts...))
	mux.Handle(LedgerServiceConfirmPaymentProcedure, connect.NewUnaryHandler(LedgerServiceConfirmPaymentProcedure, svc.ConfirmPayment, opts...))
	mux.Handle(LedgerServiceForceConfirmPaymentProcedure, connect.NewUnaryHandler(LedgerServiceForceConfirmPaymentProcedure, svc.ForceConfirmPayment, opts...))
	mux.Handle(LedgerServiceGetBillDebtsProcedure, connect.NewUnaryHandler(LedgerServiceGetBillDebtsProcedure, svc.GetBillDebts, opts...))
	mux.Handle(LedgerServiceListPendingPaymentsProcedure, connect.NewUnaryHandler(LedgerServiceListPendingPaymentsProcedure, svc.ListPendingPayments, opts...))
	mux.Handle(LedgerServiceListUnpaidPaymentsProcedure, connect.NewUnaryHandler(LedgerServiceListUnpaidPaymentsProcedure, svc.ListUnpaidPayments, opts...))
	mux.Handle(LedgerServiceGetPaymentProcedure, connect.NewUnaryHandler(LedgerServiceGetPaymentProcedure, svc.GetPayment, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient struct {
	registerDebts       *connect.Client[RegisterDebtsRequest, RegisterDebtsResponse]
	getRemainingDebt    *connect.Client[GetRemainingDebtRequest, GetRemainingDebtResponse]
	reconcilePayment    *connect.Client[ReconcilePaymentRequest, ReconcilePaymentResponse]
	confirmPayment      *connect.Client[ConfirmPaymentRequest, ConfirmPaymentResponse]
	forceConfirmPayment *connect.Client[ForceConfirmPaymentRequest, ForceConfirmPaymentResponse]
	getBillDebts        *connect.Client[GetBillDebtsRequest, GetBillDebtsResponse]
	listPendingPayments *connect.Client[ListPendingPaymentsRequest, ListPendingPaymentsResponse]
	listUnpaidPayments  *connect.Client[ListUnpaidPaymentsRequest, ListUnpaidPaymentsResponse]
	getPayment          *connect.Client[GetPaymentRequest, GetPaymentResponse]
}

// NewLedgerServiceClient constructs a client for the splitledger.v1.LedgerService service. The baseURL
// is the scheme and host of the server, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &LedgerServiceClient{
		registerDebts:       connect.NewClient[RegisterDebtsRequest, RegisterDebtsResponse](httpClient, baseURL+LedgerServiceRegisterDebtsProcedure, opts...),
		getRemainingDebt:    connect.NewClient[GetRemainingDebtRequest, GetRemainingDebtResponse](httpClient, baseURL+LedgerServiceGetRemainingDebtProcedure, opts...),
		reconcilePayment:    connect.NewClient[ReconcilePaymentRequest, ReconcilePaymentResponse](httpClient, baseURL+LedgerServiceReconcilePaymentProcedure, opts...),
		confirmPayment:      connect.NewClient[ConfirmPaymentRequest, ConfirmPaymentResponse](httpClient, baseURL+LedgerServiceConfirmPaymentProcedure, opts...),
		forceConfirmPayment: connect.NewClient[ForceConfirmPaymentRequest, ForceConfirmPaymentResponse](httpClient, baseURL+LedgerServiceForceConfirmPaymentProcedure, opts...),
		getBillDebts:        connect.NewClient[GetBillDebtsRequest, GetBillDebtsResponse](httpClient, baseURL+LedgerServiceGetBillDebtsProcedure, opts...),
		listPendingPayments: connect.NewClient[ListPendingPaymentsRequest, ListPendingPaymentsResponse](httpClient, baseURL+LedgerServiceListPendingPaymentsProcedure, opts...),
		listUnpaidPayments:  connect.NewClient[ListUnpaidPaymentsRequest, ListUnpaidPaymentsResponse](httpClient, baseURL+LedgerServiceListUnpaidPaymentsProcedure, opts...),
		getPayment:          connect.NewClient[GetPaymentRequest, GetPaymentResponse](httpClient, baseURL+LedgerServiceGetPaymentProcedure, opts...),
	}
}

// RegisterDebts calls splitledger.v1.LedgerService.RegisterDebts.
func (c *LedgerServiceClient) RegisterDebts(ctx context.Context, req *connect.Request[RegisterDebtsRequest]) (*connect.Response[RegisterDebtsResponse], error) {
	return c.registerDebts.CallUnary(ctx, req)
}

// GetRemainingDebt calls splitledger.v1.LedgerService.GetRemainingDebt.
func (c *LedgerServiceClient) GetRemainingDebt(ctx context.Context, req *connect.Request[GetRemainingDebtRequest]) (*connect.Response[GetRemainingDebtResponse], error) {
	return c.getRemainingDebt.CallUnary(ctx, req)
}

// ReconcilePayment calls splitledger.v1.LedgerService.ReconcilePayment.
func (c *LedgerServiceClient) ReconcilePayment(ctx context.Context, req *connect.Request[ReconcilePaymentRequest]) (*connect.Response[ReconcilePaymentResponse], error) {
	return c.reconcilePayment.CallUnary(ctx, req)
}

// ConfirmPayment calls splitledger.v1.LedgerService.ConfirmPayment.
func (c *LedgerServiceClient) ConfirmPayment(ctx context.Context, req *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error) {
	return c.confirmPayment.CallUnary(ctx, req)
}

// ForceConfirmPayment calls splitledger.v1.LedgerService.ForceConfirmPayment.
func (c *LedgerServiceClient) ForceConfirmPayment(ctx context.Context, req *connect.Request[ForceConfirmPaymentRequest]) (*connect.Response[ForceConfirmPaymentResponse], error) {
	return c.forceConfirmPayment.CallUnary(ctx, req)
}

// GetBillDebts calls splitledger.v1.LedgerService.GetBillDebts.
func (c *LedgerServiceClient) GetBillDebts(ctx context.Context, req *connect.Request[GetBillDebtsRequest]) (*connect.Response[GetBillDebtsResponse], error) {
	return c.getBillDebts.CallUnary(ctx, req)
}

// ListPendingPayments calls splitledger.v1.LedgerService.ListPendingPayments.
func (c *LedgerServiceClient) ListPendingPayments(ctx context.Context, req *connect.Request[ListPendingPaymentsRequest]) (*connect.Response[ListPendingPaymentsResponse], error) {
	return c.listPendingPayments.CallUnary(ctx, req)
}

// ListUnpaidPayments calls splitledger.v1.LedgerService.ListUnpaidPayments.
func (c *LedgerServiceClient) ListUnpaidPayments(ctx context.Context, req *connect.Request[ListUnpaidPaymentsRequest]) (*connect.Response[ListUnpaidPaymentsResponse], error) {
	return c.listUnpaidPayments.CallUnary(ctx, req)
}

// GetPayment calls splitledger.v1.LedgerService.GetPayment.
func (c *LedgerServiceClient) GetPayment(ctx context.Context, req *connect.Request[GetPaymentRequest]) (*connect.Response[GetPaymentResponse], error) {
	return c.getPayment.CallUnary(ctx, req)
}

// BillServiceHandler serves bills, their content and participants.
type BillServiceHandler interface {
	UpsertUser(context.Context, *connect.Request[UpsertUserRequest]) (*connect.Response[UpsertUserResponse], error)
	CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error)
	AddTax(context.Context, *connect.Request[AddTaxRequest]) (*connect.Response[AddTaxResponse], error)
	ToggleShare(context.Context, *connect.Request[ToggleShareRequest]) (*connect.Response[ToggleShareResponse], error)
	SettleBill(context.Context, *connect.Request[SettleBillRequest]) (*connect.Response[SettleBillResponse], error)
	ReopenBill(context.Context, *connect.Request[ReopenBillRequest]) (*connect.Response[ReopenBillResponse], error)
	CloseBill(context.Context, *connect.Request[CloseBillRequest]) (*connect.Response[CloseBillResponse], error)
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(BillServiceUpsertUserProcedure, connect.NewUnaryHandler(BillServiceUpsertUserProcedure, svc.UpsertUser, opts...))
	mux.Handle(BillServiceCreateBillProcedure, connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...))
	mux.Handle(BillServiceAddItemProcedure, connect.NewUnaryHandler(BillServiceAddItemProcedure, svc.AddItem, opts...))
	mux.Handle(BillServiceAddTaxProcedure, connect.NewUnaryHandler(BillServiceAddTaxProcedure, svc.AddTax, opts...))
	mux.Handle(BillServiceToggleShareProcedure, connect.NewUnaryHandler(BillServiceToggleShareProcedure, svc.ToggleShare, opts...))
	mux.Handle(BillServiceSettleBillProcedure, connect.NewUnaryHandler(BillServiceSettleBillProcedure, svc.SettleBill, opts...))
	mux.Handle(BillServiceReopenBillProcedure, connect.NewUnaryHandler(BillServiceReopenBillProcedure, svc.ReopenBill, opts...))
	mux.Handle(BillServiceCloseBillProcedure, connect.NewUnaryHandler(BillServiceCloseBillProcedure, svc.CloseBill, opts...))
	mux.Handle(BillServiceGetBillProcedure, connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...))
	return "/" + BillServiceName + "/", mux
}

// BillServiceClient is a client for the splitledger.v1.BillService service.
type BillServiceClient struct {
	upsertUser  *connect.Client[UpsertUserRequest, UpsertUserResponse]
	createBill  *connect.Client[CreateBillRequest, CreateBillResponse]
	addItem     *connect.Client[AddItemRequest, AddItemResponse]
	addTax      *connect.Client[AddTaxRequest, AddTaxResponse]
	toggleShare *connect.Client[ToggleShareRequest, ToggleShareResponse]
	settleBill  *connect.Client[SettleBillRequest, SettleBillResponse]
	reopenBill  *connect.Client[ReopenBillRequest, ReopenBillResponse]
	closeBill   *connect.Client[CloseBillRequest, CloseBillResponse]
	getBill     *connect.Client[GetBillRequest, GetBillResponse]
}

// NewBillServiceClient constructs a client for the splitledger.v1.BillService service. The baseURL
// is the scheme and host of the server, e.g. http://localhost:8080.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &BillServiceClient{
		upsertUser:  connect.NewClient[UpsertUserRequest, UpsertUserResponse](httpClient, baseURL+BillServiceUpsertUserProcedure, opts...),
		createBill:  connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		addItem:     connect.NewClient[AddItemRequest, AddItemResponse](httpClient, baseURL+BillServiceAddItemProcedure, opts...),
		addTax:      connect.NewClient[AddTaxRequest, AddTaxResponse](httpClient, baseURL+BillServiceAddTaxProcedure, opts...),
		toggleShare: connect.NewClient[ToggleShareRequest, ToggleShareResponse](httpClient, baseURL+BillServiceToggleShareProcedure, opts...),
		settleBill:  connect.NewClient[SettleBillRequest, SettleBillResponse](httpClient, baseURL+BillServiceSettleBillProcedure, opts...),
		reopenBill:  connect.NewClient[ReopenBillRequest, ReopenBillResponse](httpClient, baseURL+BillServiceReopenBillProcedure, opts...),
		closeBill:   connect.NewClient[CloseBillRequest, CloseBillResponse](httpClient, baseURL+BillServiceCloseBillProcedure, opts...),
		getBill:     connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
	}
}

// UpsertUser calls splitledger.v1.BillService.UpsertUser.
func (c *BillServiceClient) UpsertUser(ctx context.Context, req *connect.Request[UpsertUserRequest]) (*connect.Response[UpsertUserResponse], error) {
	return c.upsertUser.CallUnary(ctx, req)
}

// CreateBill calls splitledger.v1.BillService.CreateBill.
func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

// AddItem calls splitledger.v1.BillService.AddItem.
func (c *BillServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

// AddTax calls splitledger.v1.BillService.AddTax.
func (c *BillServiceClient) AddTax(ctx context.Context, req *connect.Request[AddTaxRequest]) (*connect.Response[AddTaxResponse], error) {
	return c.addTax.CallUnary(ctx, req)
}

// ToggleShare calls splitledger.v1.BillService.ToggleShare.
func (c *BillServiceClient) ToggleShare(ctx context.Context, req *connect.Request[ToggleShareRequest]) (*connect.Response[ToggleShareResponse], error) {
	return c.toggleShare.CallUnary(ctx, req)
}

// SettleBill calls splitledger.v1.BillService.SettleBill.
func (c *BillServiceClient) SettleBill(ctx context.Context, req *connect.Request[SettleBillRequest]) (*connect.Response[SettleBillResponse], error) {
	return c.settleBill.CallUnary(ctx, req)
}

// ReopenBill calls splitledger.v1.BillService.ReopenBill.
func (c *BillServiceClient) ReopenBill(ctx context.Context, req *connect.Request[ReopenBillRequest]) (*connect.Response[ReopenBillResponse], error) {
	return c.reopenBill.CallUnary(ctx, req)
}

// CloseBill calls splitledger.v1.BillService.CloseBill.
func (c *BillServiceClient) CloseBill(ctx context.Context, req *connect.Request[CloseBillRequest]) (*connect.Response[CloseBillResponse], error) {
	return c.closeBill.CallUnary(ctx, req)
}

// GetBill calls splitledger.v1.BillService.GetBill.
func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

// AuthServiceHandler exchanges a trusted client's sign-in for a ledger token.
type AuthServiceHandler interface {
	IssueToken(context.Context, *connect.Request[IssueTokenRequest]) (*connect.Response[IssueTokenResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceIssueTokenProcedure, connect.NewUnaryHandler(AuthServiceIssueTokenProcedure, svc.IssueToken, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AuthServiceClient is a client for the splitledger.v1.AuthService service.
type AuthServiceClient struct {
	issueToken *connect.Client[IssueTokenRequest, IssueTokenResponse]
}

// NewAuthServiceClient constructs a client for the splitledger.v1.AuthService service. The baseURL
// is the scheme and host of the server, e.g. http://localhost:8080.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &AuthServiceClient{
		issueToken: connect.NewClient[IssueTokenRequest, IssueTokenResponse](httpClient, baseURL+AuthServiceIssueTokenProcedure, opts...),
	}
}

// IssueToken calls splitledger.v1.AuthService.IssueToken.
func (c *AuthServiceClient) IssueToken(ctx context.Context, req *connect.Request[IssueTokenRequest]) (*connect.Response[IssueTokenResponse], error) {
	return c.issueToken.CallUnary(ctx, req)
}
