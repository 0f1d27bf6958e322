package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
)

// ProductHandler serves the inventory.
type ProductHandler struct {
	Store    *store.Store
	PageSize int
}

func NewProductHandler(st *store.Store, pageSize int) *ProductHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ProductHandler{Store: st, PageSize: pageSize}
}

type createProductReq struct {
	Name  string `json:"name" binding:"required,max=128"`
	Price string `json:"price" binding:"required"`
	Stock int    `json:"stock" binding:"min=0"`
	Type  string `json:"type" binding:"required"`
}

func productResp(p *models.Product) gin.H {
	return gin.H{
		"id":         p.ID,
		"uuid":       p.UUID,
		"name":       p.Name,
		"price":      formatCent(p.PriceCent),
		"price_cent": p.PriceCent,
		"stock":      p.Stock,
		"type":       p.Type,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
	}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	if err := util.ValidateProductType(req.Type); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Categoría de producto desconocida")
		return
	}

	priceCent, err := parseCent(req.Price)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Precio inválido")
		return
	}
	if err := util.ValidateAmountCent(priceCent); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Precio inválido")
		return
	}

	product, err := h.Store.CreateProduct(models.Product{
		Name:      strings.TrimSpace(req.Name),
		PriceCent: priceCent,
		Stock:     req.Stock,
		Type:      models.ProductType(req.Type),
	})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear el producto")
		return
	}

	util.Success(c, util.Response{
		"product": productResp(&product),
	})
}

// ListProducts returns a paginated window over the inventory, same
// envelope the panel's products page consumes.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, limit := pageParams(c, h.PageSize)

	products := h.Store.Products()
	total := len(products)
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
		items = append(items, productResp(&products[i]))
	}

	util.Success(c, util.Response{
		"data":            items,
		"total":           total,
		"page":            page,
		"limit":           limit,
		"totalPages":      totalPages,
		"hasNextPage":     page < totalPages,
		"hasPreviousPage": page > 1,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	uuidStr := c.Param("uuid")

	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	if err := util.ValidateProductType(req.Type); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Categoría de producto desconocida")
		return
	}

	priceCent, err := parseCent(req.Price)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Precio inválido")
		return
	}
	if err := util.ValidateAmountCent(priceCent); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Precio inválido")
		return
	}

	if req.Stock < 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Stock no puede ser negativo")
		return
	}

	product, err := h.Store.UpdateProduct(models.Product{
		UUID:      uuidStr,
		Name:      strings.TrimSpace(req.Name),
		PriceCent: priceCent,
		Stock:     req.Stock,
		Type:      models.ProductType(req.Type),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Producto no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo actualizar el producto")
		return
	}

	util.Success(c, util.Response{
		"product": productResp(&product),
	})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	uuidStr := c.Param("uuid")

	if err := h.Store.DeleteProduct(uuidStr); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Producto no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo eliminar el producto")
		return
	}

	util.Success(c, util.Response{
		"message": "Producto eliminado",
	})
}
