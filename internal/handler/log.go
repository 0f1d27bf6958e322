package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the operation history page. Encrypted path/action
// columns are decrypted on the way out; rows written without a key (or
// with a different one) fall back to whatever was stored.
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{DB: db, EncryptKey: encryptKey}
}

func (h *LogHandler) decryptField(enc string) (string, bool) {
	if enc == "" || h.EncryptKey == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", false
	}
	plain, err := util.DecryptAES(h.EncryptKey, raw)
	if err != nil {
		return "", false
	}
	return string(plain), true
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs lists audited operations with pagination and date range.
func (h *LogHandler) ListLogs(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("page_size", "20")
	page, _ := strconv.Atoi(pageStr)
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(sizeStr)
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.AuditLog{})

	if startStr := c.Query("start"); startStr != "" {
		startTime, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de inicio debe ser YYYY-MM-DD")
			return
		}
		base = base.Where("created_at >= ?", startTime)
	}
	if endStr := c.Query("end"); endStr != "" {
		endTime, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Fecha de fin debe ser YYYY-MM-DD")
			return
		}
		base = base.Where("created_at < ?", endTime.Add(24*time.Hour))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo consultar")
		return
	}

	var logs []models.AuditLog
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo consultar")
		return
	}

	items := make([]logResp, 0, len(logs))
	for _, l := range logs {
		action := l.Action
		if plain, ok := h.decryptField(l.ActionEnc); ok {
			action = plain
		}
		path := l.Path
		if plain, ok := h.decryptField(l.PathEnc); ok {
			path = plain
		}
		items = append(items, logResp{
			ID:        l.ID,
			Action:    action,
			Path:      path,
			Method:    l.Method,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
