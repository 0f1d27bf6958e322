package models

import "time"

// DebtStatus is the debt lifecycle: active -> pending -> paid/settled.
type DebtStatus string

const (
	StatusActive  DebtStatus = "ACTIVE"
	StatusPending DebtStatus = "PENDING"
	StatusPaid    DebtStatus = "PAID"
	StatusSettled DebtStatus = "SETTLED"
)

// Valid reports whether s is one of the known statuses.
func (s DebtStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusPaid, StatusSettled:
		return true
	}
	return false
}

// Closed reports whether the debt no longer counts as outstanding.
func (s DebtStatus) Closed() bool {
	return s == StatusPaid || s == StatusSettled
}

// DebtItem is one line of a fiado purchase. Name and price are
// snapshots taken at creation; later product edits do not touch them.
type DebtItem struct {
	ProductID   uint   `json:"product_id"`
	ProductUUID string `json:"product_uuid"`
	Name        string `json:"name"`
	PriceCent   int64  `json:"price_cent"`
	Quantity    int    `json:"quantity"`
}

// Debt is a fiado purchase charged to exactly one guarantor.
type Debt struct {
	ID         uint       `json:"id"`
	UUID       string     `json:"uuid"`
	UserID     uint       `json:"user_id"`
	AmountCent int64      `json:"amount_cent"`
	Status     DebtStatus `json:"status"`
	DueDate    time.Time  `json:"due_date"`
	Items      []DebtItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
