package models

// Guarantor is the derived per-fiador aggregate: historical debt total
// plus the status of the most recently created debt. It is recomputed
// wholesale from the debt list and never mutated directly.
type Guarantor struct {
	UserID    uint       `json:"user_id"`
	Name      string     `json:"name"`
	TotalCent int64      `json:"total_cent"`
	Status    DebtStatus `json:"status"`
}
