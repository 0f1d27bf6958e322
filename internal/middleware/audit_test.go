package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuditDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func runAudited(t *testing.T, db *gorm.DB, encryptKey, method, path, body string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, strings.NewReader(body))
	c.Set("currentUser", &models.User{ID: 1})

	AuditMiddleware(db, encryptKey)(c)
}

func TestAuditMiddleware_NoPlaintextCredentialsWithKey(t *testing.T) {
	db := newAuditDB(t)
	const key = "audit-test-key"
	body := `{"firstname":"Ana","lastname":"García","email":"ana@example.com","password":"s3cretPass!"}`

	runAudited(t, db, key, http.MethodPost, "/api/users", body)

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}

	if entry.Action != "" || entry.Path != "" {
		t.Errorf("plaintext columns populated with key set: path=%q action=%q", entry.Path, entry.Action)
	}
	if strings.Contains(entry.ActionEnc, "s3cretPass!") {
		t.Error("encrypted action column contains the plaintext password")
	}
	if entry.ActionEnc == "" || entry.PathEnc == "" {
		t.Fatal("encrypted columns empty")
	}

	raw, err := base64.StdEncoding.DecodeString(entry.ActionEnc)
	if err != nil {
		t.Fatalf("decode action: %v", err)
	}
	plain, err := util.DecryptAES(key, raw)
	if err != nil {
		t.Fatalf("decrypt action: %v", err)
	}
	if !strings.Contains(string(plain), "s3cretPass!") {
		t.Errorf("decrypted action = %q, want the original body back", plain)
	}
	if !strings.HasPrefix(string(plain), "POST /api/users") {
		t.Errorf("decrypted action = %q, want method+path prefix", plain)
	}
}

func TestAuditMiddleware_PlaintextFallbackWithoutKey(t *testing.T) {
	db := newAuditDB(t)

	runAudited(t, db, "", http.MethodDelete, "/api/products/abc", "")

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load audit row: %v", err)
	}
	if entry.Path != "/api/products/abc" || entry.Action != "DELETE /api/products/abc" {
		t.Errorf("row = path %q action %q, want plaintext without key", entry.Path, entry.Action)
	}
	if entry.PathEnc != "" || entry.ActionEnc != "" {
		t.Errorf("encrypted columns populated without key: %q %q", entry.PathEnc, entry.ActionEnc)
	}
}

func TestAuditMiddleware_SkipsReadsAndAnonymous(t *testing.T) {
	db := newAuditDB(t)

	runAudited(t, db, "k", http.MethodGet, "/api/debts", "")

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/debts", strings.NewReader("{}"))
	AuditMiddleware(db, "k")(c) // no currentUser

	var count int64
	if err := db.Model(&models.AuditLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("audit rows = %d, want 0 for reads and anonymous requests", count)
	}
}
