package models

// Bill is a shared expense paid by its owner.
type Bill struct {
	// ID is a 16 character identifier derived from a UUID.
	ID string

	// Title is the human-readable name for the bill.
	Title string

	// OwnerID is the user who paid the bill and becomes the creditor of every debt.
	OwnerID int64

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64

	// CompletedAt is set once the owner finalizes the bill content. Zero while open.
	CompletedAt int64

	// ClosedAt is set once the bill no longer accepts payments. Zero while active.
	ClosedAt int64
}

// IsCompleted reports whether the bill content is frozen.
func (b *Bill) IsCompleted() bool {
	return b.CompletedAt != 0
}

// IsClosed reports whether the bill has been closed.
func (b *Bill) IsClosed() bool {
	return b.ClosedAt != 0
}

// Item is a single line item on a bill.
type Item struct {
	ID     int64
	BillID string
	Name   string

	// Price is the pre-tax price of the item.
	Price float64
}

// Tax is a percentage charge applied on top of item prices (e.g. service
// charge 10, GST 7). Taxes apply in creation order and compound.
type Tax struct {
	ID     int64
	BillID string
	Title  string
	Rate   float64
}

// Share marks a user as one of the people splitting an item.
type Share struct {
	ItemID int64
	UserID int64
}
