package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
)

// DebtHandler serves fiado debts and the derived guarantor aggregates.
type DebtHandler struct {
	Store    *store.Store
	PageSize int
}

func NewDebtHandler(st *store.Store, pageSize int) *DebtHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &DebtHandler{Store: st, PageSize: pageSize}
}

type debtLineReq struct {
	ProductUUID string `json:"product_uuid" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=1"`
}

type createDebtReq struct {
	UserID   uint          `json:"user_id" binding:"required"`
	DueDate  string        `json:"dueDate" binding:"required"`
	Products []debtLineReq `json:"products" binding:"required,min=1,dive"`
}

type updateDebtStatusReq struct {
	Status string `json:"status" binding:"required"`
}

type updateDebtReq struct {
	Status  string `json:"status" binding:"required"`
	DueDate string `json:"dueDate" binding:"required"`
}

func parseDueDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

func (h *DebtHandler) guarantorName(userID uint) string {
	if u, ok := h.Store.UserByID(userID); ok {
		return u.FullName()
	}
	return fmt.Sprintf("Guarantor %d", userID)
}

func (h *DebtHandler) debtResp(d *models.Debt) gin.H {
	items := make([]gin.H, 0, len(d.Items))
	count := 0
	for _, it := range d.Items {
		count += it.Quantity
		items = append(items, gin.H{
			"product_id":   it.ProductID,
			"product_uuid": it.ProductUUID,
			"name":         it.Name,
			"price":        formatCent(it.PriceCent),
			"price_cent":   it.PriceCent,
			"quantity":     it.Quantity,
		})
	}

	return gin.H{
		"id":             d.ID,
		"uuid":           d.UUID,
		"user_id":        d.UserID,
		"guarantor_name": h.guarantorName(d.UserID),
		"amount":         formatCent(d.AmountCent),
		"amount_cent":    d.AmountCent,
		"status":         d.Status,
		"date_pay":       d.DueDate.Format("2006-01-02"),
		"products":       items,
		"products_count": count,
		"created_at":     d.CreatedAt,
	}
}

// CreateDebt registers a fiado purchase. Stock decrements happen inside
// the store, clamped at zero.
func (h *DebtHandler) CreateDebt(c *gin.Context) {
	var req createDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de pago inválida")
		return
	}

	lines := make([]store.DebtLine, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, store.DebtLine{ProductUUID: p.ProductUUID, Quantity: p.Quantity})
	}

	debt, err := h.Store.CreateDebt(store.CreateDebtInput{
		UserID:  req.UserID,
		DueDate: dueDate,
		Lines:   lines,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Fiador no existe")
		case errors.Is(err, store.ErrUnknownProduct):
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Producto no existe")
		case errors.Is(err, store.ErrNoItems), errors.Is(err, store.ErrInvalidQuantity):
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Productos inválidos")
		default:
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear la deuda")
		}
		return
	}

	util.Success(c, util.Response{
		"debt": h.debtResp(&debt),
	})
}

// ListDebts filters by status, guarantor name and due date, newest
// first, and reports the outstanding amount of the filtered set.
func (h *DebtHandler) ListDebts(c *gin.Context) {
	page, limit := pageParams(c, h.PageSize)

	status := c.Query("status")
	if status != "" && util.ValidateDebtStatus(status) != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Estado desconocido")
		return
	}
	nameFilter := strings.ToLower(strings.TrimSpace(c.Query("name")))
	dateFilter := c.Query("date")
	if dateFilter != "" {
		if err := util.ValidateDate(dateFilter); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha debe ser YYYY-MM-DD")
			return
		}
	}

	debts := h.Store.Debts()

	filtered := make([]models.Debt, 0, len(debts))
	var totalAmountCent int64
	for _, d := range debts {
		if status != "" && d.Status != models.DebtStatus(status) {
			continue
		}
		if nameFilter != "" &&
			!strings.Contains(strings.ToLower(h.guarantorName(d.UserID)), nameFilter) {
			continue
		}
		if dateFilter != "" && d.DueDate.Format("2006-01-02") != dateFilter {
			continue
		}
		filtered = append(filtered, d)
		totalAmountCent += d.AmountCent
	}

	// newest first
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]gin.H, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, h.debtResp(&filtered[i]))
	}

	util.Success(c, util.Response{
		"data":            items,
		"total":           total,
		"totalAmount":     formatCent(totalAmountCent),
		"page":            page,
		"limit":           limit,
		"totalPages":      totalPages,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	})
}

// UpdateDebt edits status and due date. Items and amount stay frozen;
// they were snapshotted at creation.
func (h *DebtHandler) UpdateDebt(c *gin.Context) {
	uuidStr := c.Param("uuid")

	var req updateDebtReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}
	if err := util.ValidateDebtStatus(req.Status); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Estado desconocido")
		return
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de pago inválida")
		return
	}

	existing, ok := h.Store.DebtByUUID(uuidStr)
	if !ok {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Deuda no existe")
		return
	}

	existing.Status = models.DebtStatus(req.Status)
	existing.DueDate = dueDate

	debt, err := h.Store.UpdateDebt(existing)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Deuda no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo actualizar la deuda")
		return
	}

	util.Success(c, util.Response{
		"debt": h.debtResp(&debt),
	})
}

// UpdateDebtStatus moves a debt along its lifecycle.
func (h *DebtHandler) UpdateDebtStatus(c *gin.Context) {
	uuidStr := c.Param("uuid")

	var req updateDebtStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}
	if err := util.ValidateDebtStatus(req.Status); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Estado desconocido")
		return
	}

	debt, err := h.Store.UpdateDebtStatus(uuidStr, models.DebtStatus(req.Status))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Deuda no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo actualizar la deuda")
		return
	}

	util.Success(c, util.Response{
		"debt": h.debtResp(&debt),
	})
}

func (h *DebtHandler) DeleteDebt(c *gin.Context) {
	uuidStr := c.Param("uuid")

	if err := h.Store.DeleteDebt(uuidStr); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Deuda no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo eliminar la deuda")
		return
	}

	util.Success(c, util.Response{
		"message": "Deuda eliminada",
	})
}

// ListGuarantors returns the derived aggregates: per-guarantor debt
// total plus the status of the latest debt. Read-only by construction.
func (h *DebtHandler) ListGuarantors(c *gin.Context) {
	guarantors := h.Store.Guarantors()

	items := make([]gin.H, 0, len(guarantors))
	for _, g := range guarantors {
		items = append(items, gin.H{
			"user_id":    g.UserID,
			"name":       g.Name,
			"total":      formatCent(g.TotalCent),
			"total_cent": g.TotalCent,
			"status":     g.Status,
		})
	}

	util.Success(c, util.Response{
		"guarantors": items,
		"total":      len(items),
	})
}
