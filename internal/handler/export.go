package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler writes the debt ledger as CSV or XLSX downloads.
type ExportHandler struct {
	Store *store.Store
}

func NewExportHandler(st *store.Store) *ExportHandler {
	return &ExportHandler{Store: st}
}

var exportHeaders = []string{"Fiador", "Monto", "Estado", "Fecha de pago", "Productos", "Creada"}

func (h *ExportHandler) rows() [][]string {
	debts := h.Store.Debts()
	users := h.Store.Users()

	names := make(map[uint]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].FullName()
	}

	out := make([][]string, 0, len(debts))
	for _, d := range debts {
		name, ok := names[d.UserID]
		if !ok {
			name = fmt.Sprintf("Guarantor %d", d.UserID)
		}
		count := 0
		for _, it := range d.Items {
			count += it.Quantity
		}
		out = append(out, []string{
			name,
			formatCent(d.AmountCent),
			string(d.Status),
			d.DueDate.Format("2006-01-02"),
			fmt.Sprintf("%d", count),
			d.CreatedAt.Format("2006-01-02"),
		})
	}
	return out
}

// ExportCSV streams the debts as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"deudas_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM so Excel picks the right encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for _, row := range h.rows() {
		writer.Write(row)
	}
}

// ExportXLSX writes the debts as a spreadsheet.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	f := excelize.NewFile()
	sheetName := "Deudas"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear la hoja")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, row := range h.rows() {
		for col, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+col, idx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"deudas_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo exportar")
	}
}
