package middleware

import (
	"bytes"
	"encoding/base64"
	"io"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func encryptField(encryptKey, plain string) (string, error) {
	if plain == "" || encryptKey == "" {
		return plain, nil
	}
	b, err := util.EncryptAES(encryptKey, []byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// AuditMiddleware records mutating operations of logged-in users into
// the audit_logs table for the history page. With an encryption key
// configured, path and action (which includes the request body and may
// carry credentials) are stored encrypted only.
func AuditMiddleware(db *gorm.DB, encryptKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		// only operations of authenticated users
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}
		if userID == 0 {
			return
		}

		// reads are not audited
		switch c.Request.Method {
		case "GET", "HEAD", "OPTIONS":
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		if encryptKey != "" {
			encPath, err := encryptField(encryptKey, path)
			if err != nil {
				return
			}
			encAction, err := encryptField(encryptKey, action)
			if err != nil {
				return
			}
			entry.PathEnc = encPath
			entry.ActionEnc = encAction
		} else {
			entry.Path = path
			entry.Action = action
		}

		_ = db.Create(&entry).Error
	}
}
