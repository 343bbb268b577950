package api

// User is a bill participant.
type User struct {
	ID        int64  `json:"id" validate:"required,gt=0"`
	FirstName string `json:"first_name" validate:"max=64"`
	LastName  string `json:"last_name" validate:"max=64"`
	Username  string `json:"username,omitempty" validate:"max=64"`
}

// Bill is a shared expense paid by its owner. Timestamps are unix seconds,
// zero when unset.
type Bill struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	OwnerID     int64  `json:"owner_id"`
	CreatedAt   int64  `json:"created_at"`
	CompletedAt int64  `json:"completed_at,omitempty"`
	ClosedAt    int64  `json:"closed_at,omitempty"`
}

type Item struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Tax struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Rate  float64 `json:"rate"`
}

type Share struct {
	ItemID int64 `json:"item_id"`
	UserID int64 `json:"user_id"`
}

// ShareTotal is one participant's computed share of a bill.
type ShareTotal struct {
	UserID   int64   `json:"user_id"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// DebtAmount is what one debtor owes.
type DebtAmount struct {
	DebtorID int64   `json:"debtor_id" validate:"required,gt=0"`
	Amount   float64 `json:"amount"`
}

// RemainingDebt is the outstanding amount of one debt.
type RemainingDebt struct {
	DebtID int64   `json:"debt_id"`
	Amount float64 `json:"amount"`
}

// Payment is a settlement attempt against one debt.
type Payment struct {
	ID          int64   `json:"id"`
	DebtID      int64   `json:"debt_id"`
	BillID      string  `json:"bill_id,omitempty"`
	CreditorID  int64   `json:"creditor_id,omitempty"`
	Debtor      *User   `json:"debtor,omitempty"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	State       string  `json:"state"`
	CreatedAt   int64   `json:"created_at"`
	ConfirmedAt int64   `json:"confirmed_at,omitempty"`
	IsForced    bool    `json:"is_forced,omitempty"`
}

// BillDebt is the aggregate of every debt between two users on a bill.
type BillDebt struct {
	Debtor        User     `json:"debtor"`
	Creditor      User     `json:"creditor"`
	Amount        float64  `json:"amount"`
	LatestPayment *Payment `json:"latest_payment,omitempty"`
}

// Balance is one member's position on a bill.
type Balance struct {
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	TotalOwed  float64 `json:"total_owed"`
	TotalLent  float64 `json:"total_lent"`
	NetBalance float64 `json:"net_balance"`
	Settled    bool    `json:"settled"`
}
