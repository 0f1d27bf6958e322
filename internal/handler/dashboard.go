package handler

import (
	"fmt"
	"sort"

	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
)

// DashboardHandler aggregates the figures for the panel's home page.
type DashboardHandler struct {
	Store *store.Store
}

func NewDashboardHandler(st *store.Store) *DashboardHandler {
	return &DashboardHandler{Store: st}
}

// GetDashboard returns counts by status, the total owed, the products
// running low and the next due debts.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	users := h.Store.Users()
	products := h.Store.Products()
	debts := h.Store.Debts()

	var pending, paid, active int
	var totalOwedCent int64
	for _, d := range debts {
		switch {
		case d.Status == "PENDING":
			pending++
		case d.Status.Closed():
			paid++
		case d.Status == "ACTIVE":
			active++
		}
		totalOwedCent += d.AmountCent
	}

	// lowest stock first
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Stock < products[j].Stock
	})
	lowStock := make([]gin.H, 0, 4)
	for i := 0; i < len(products) && i < 4; i++ {
		lowStock = append(lowStock, gin.H{
			"uuid":  products[i].UUID,
			"name":  products[i].Name,
			"stock": products[i].Stock,
			"price": formatCent(products[i].PriceCent),
		})
	}

	// open debts with the closest due dates
	names := make(map[uint]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}
	open := debts[:0]
	for _, d := range debts {
		if !d.Status.Closed() {
			open = append(open, d)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].DueDate.Before(open[j].DueDate)
	})
	upcoming := make([]gin.H, 0, 5)
	for i := 0; i < len(open) && i < 5; i++ {
		d := open[i]
		name, ok := names[d.UserID]
		if !ok {
			name = fmt.Sprintf("Guarantor %d", d.UserID)
		}
		upcoming = append(upcoming, gin.H{
			"uuid":           d.UUID,
			"guarantor_name": name,
			"date_pay":       d.DueDate.Format("2006-01-02"),
			"amount":         formatCent(d.AmountCent),
			"status":         d.Status,
		})
	}

	util.Success(c, util.Response{
		"total_guarantors": len(users),
		"debts_pending":    pending,
		"debts_paid":       paid,
		"debts_active":     active,
		"total_owed":       formatCent(totalOwedCent),
		"total_owed_cent":  totalOwedCent,
		"low_stock":        lowStock,
		"upcoming_debts":   upcoming,
	})
}
