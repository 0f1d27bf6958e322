package store

import (
	"fmt"

	"github.com/jeffersontgc/anastore/internal/models"
)

// Recompute projects the full debt list into one aggregate per
// guarantor that has at least one debt. The total sums every debt
// regardless of status (paid debts stay in the historical total) and
// the current status is taken from the last debt in insertion order,
// not the one with the latest due date. Output order follows the first
// appearance of each guarantor id in the debt list, so the same input
// always yields the same output.
func Recompute(debts []models.Debt, users []models.User) []models.Guarantor {
	names := make(map[uint]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}

	byUser := make(map[uint]*models.Guarantor, len(debts))
	order := make([]uint, 0, len(debts))

	for i := range debts {
		d := &debts[i]

		g, ok := byUser[d.UserID]
		if !ok {
			name, found := names[d.UserID]
			if !found {
				// deleted user, keep the row with a placeholder
				name = fmt.Sprintf("Guarantor %d", d.UserID)
			}
			g = &models.Guarantor{UserID: d.UserID, Name: name}
			byUser[d.UserID] = g
			order = append(order, d.UserID)
		}

		g.TotalCent += d.AmountCent
		g.Status = d.Status
	}

	out := make([]models.Guarantor, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	return out
}
