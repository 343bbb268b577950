package api

type UpsertUserRequest struct {
	User User `json:"user"`
}

type UpsertUserResponse struct {
	User User `json:"user"`
}

type CreateBillRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type CreateBillResponse struct {
	Bill Bill `json:"bill"`
}

type AddItemRequest struct {
	BillID string  `json:"bill_id" validate:"required,len=16,alphanum"`
	Name   string  `json:"name" validate:"required,max=100"`
	Price  float64 `json:"price" validate:"gte=0"`
}

type AddItemResponse struct {
	Item Item `json:"item"`
}

type AddTaxRequest struct {
	BillID string  `json:"bill_id" validate:"required,len=16,alphanum"`
	Title  string  `json:"title" validate:"required,max=100"`
	Rate   float64 `json:"rate" validate:"gte=0,lte=100"`
}

type AddTaxResponse struct {
	Tax Tax `json:"tax"`
}

type ToggleShareRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
	ItemID int64  `json:"item_id" validate:"required,gt=0"`
	// UserID defaults to the caller.
	UserID int64 `json:"user_id,omitempty" validate:"gte=0"`
}

type ToggleShareResponse struct {
	Active bool `json:"active"`
}

type SettleBillRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
}

type SettleBillResponse struct {
	Bill Bill `json:"bill"`
	// Attempt is the settlement attempt the debts were registered under,
	// zero when nothing changed.
	Attempt int          `json:"attempt"`
	Debts   []DebtAmount `json:"debts"`
}

type ReopenBillRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
}

type ReopenBillResponse struct {
	Bill Bill `json:"bill"`
}

type CloseBillRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
}

type CloseBillResponse struct {
	Bill Bill `json:"bill"`
}

type GetBillRequest struct {
	BillID string `json:"bill_id" validate:"required,len=16,alphanum"`
}

type GetBillResponse struct {
	Bill   Bill         `json:"bill"`
	Items  []Item       `json:"items"`
	Taxes  []Tax        `json:"taxes"`
	Shares []Share      `json:"shares"`
	Totals []ShareTotal `json:"totals"`
}
