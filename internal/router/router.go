package router

import (
	"net/http"
	"time"

	"github.com/jeffersontgc/anastore/internal/auth"
	"github.com/jeffersontgc/anastore/internal/config"
	"github.com/jeffersontgc/anastore/internal/handler"
	"github.com/jeffersontgc/anastore/internal/middleware"
	"github.com/jeffersontgc/anastore/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the API the admin panel consumes.
func SetupRouter(cfg *config.Config, db *gorm.DB, st *store.Store) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	origins := cfg.CORS.Origins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"ready":      st.Ready(),
			"last_error": st.LastError(),
		})
	})

	gate := auth.NewGate(cfg.Auth.Secret, cfg.Auth.Strict)

	// sign-in and logout stay outside the gate
	authHandler := handler.NewAuthHandler(db, st, cfg.Auth.Secret,
		cfg.Auth.AccessExpireHours, cfg.Auth.RefreshExpireDays)
	api.POST("/auth/signin", authHandler.SignIn)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(gate, st, db),
		middleware.AuditMiddleware(db, cfg.Security.EncryptKey),
	)

	protected.GET("/me", authHandler.GetMe)

	userHandler := handler.NewUserHandler(st, cfg.Security.BcryptCost)
	protected.POST("/users", userHandler.CreateUser)
	protected.GET("/users", userHandler.ListUsers)
	protected.PUT("/users/:id", userHandler.UpdateUser)
	protected.DELETE("/users/:id", userHandler.DeleteUser)

	productHandler := handler.NewProductHandler(st, cfg.App.PageSize)
	protected.POST("/products", productHandler.CreateProduct)
	protected.GET("/products", productHandler.ListProducts)
	protected.PUT("/products/:uuid", productHandler.UpdateProduct)
	protected.DELETE("/products/:uuid", productHandler.DeleteProduct)

	debtHandler := handler.NewDebtHandler(st, cfg.App.PageSize)
	protected.POST("/debts", debtHandler.CreateDebt)
	protected.GET("/debts", debtHandler.ListDebts)
	protected.PUT("/debts/:uuid", debtHandler.UpdateDebt)
	protected.PATCH("/debts/:uuid/status", debtHandler.UpdateDebtStatus)
	protected.DELETE("/debts/:uuid", debtHandler.DeleteDebt)
	protected.GET("/guarantors", debtHandler.ListGuarantors)

	dashboardHandler := handler.NewDashboardHandler(st)
	protected.GET("/dashboard", dashboardHandler.GetDashboard)

	exportHandler := handler.NewExportHandler(st)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	backupHandler := handler.NewBackupHandler(db, st, cfg.Backup.Dir)
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptKey)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}
