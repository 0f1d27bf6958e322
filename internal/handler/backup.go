package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler saves and restores whole-store snapshots as files.
type BackupHandler struct {
	DB        *gorm.DB
	Store     *store.Store
	BackupDir string
}

func NewBackupHandler(db *gorm.DB, st *store.Store, backupDir string) *BackupHandler {
	return &BackupHandler{DB: db, Store: st, BackupDir: backupDir}
}

// CreateBackup writes the current state to a JSON file in the backup dir.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	raw, err := h.Store.ExportState()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo serializar")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear el directorio de respaldos")
		return
	}

	fileName := fmt.Sprintf("backup-%s.json", uuid.New().String())
	filePath := filepath.Join(h.BackupDir, fileName)

	if err := os.WriteFile(filePath, raw, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo escribir el respaldo")
		return
	}

	info, _ := os.Stat(filePath)

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     info.Size(),
	}
	if err := h.DB.Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo guardar el registro de respaldo")
		return
	}

	util.Success(c, util.Response{
		"backup": gin.H{
			"id":         backup.ID,
			"file_name":  backup.FileName,
			"size":       backup.Size,
			"created_at": backup.CreatedAt,
		},
	})
}

// ListBackups lists the saved snapshots, newest first.
func (h *BackupHandler) ListBackups(c *gin.Context) {
	var list []models.Backup
	if err := h.DB.Order("created_at DESC").Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudieron listar los respaldos")
		return
	}

	items := make([]gin.H, 0, len(list))
	for _, b := range list {
		items = append(items, gin.H{
			"id":         b.ID,
			"file_name":  b.FileName,
			"size":       b.Size,
			"created_at": b.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"backups": items,
	})
}

// RestoreBackup replaces the whole store state with a saved snapshot.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return
	}

	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Respaldo no existe")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo consultar el respaldo")
		}
		return
	}

	raw, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo leer el respaldo")
		return
	}

	if err := h.Store.RestoreState(raw); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Respaldo corrupto")
		return
	}

	util.Success(c, util.Response{
		"message": "Respaldo restaurado",
	})
}

// DeleteBackup removes the snapshot file and its record.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return
	}

	var backup models.Backup
	if err := h.DB.First(&backup, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Respaldo no existe")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo consultar el respaldo")
		}
		return
	}

	_ = os.Remove(backup.FilePath)
	if err := h.DB.Delete(&backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo eliminar el respaldo")
		return
	}

	util.Success(c, util.Response{
		"message": "Respaldo eliminado",
	})
}
