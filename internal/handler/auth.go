package handler

import (
	"net/http"
	"time"

	"github.com/jeffersontgc/anastore/internal/auth"
	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves sign-in, logout and the current-user endpoint.
type AuthHandler struct {
	DB         *gorm.DB
	Store      *store.Store
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, st *store.Store, secret string, accessHours, refreshDays int) *AuthHandler {
	if accessHours <= 0 {
		accessHours = 24
	}
	if refreshDays <= 0 {
		refreshDays = 7
	}
	return &AuthHandler{
		DB:         db,
		Store:      st,
		Secret:     secret,
		AccessTTL:  time.Duration(accessHours) * time.Hour,
		RefreshTTL: time.Duration(refreshDays) * 24 * time.Hour,
	}
}

type signInReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn checks credentials against the guarantor registry, opens a
// session row and sets the token cookies the middleware reads back.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	user, ok := h.Store.UserByEmail(req.Email)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Correo o contraseña incorrectos")
		return
	}

	now := time.Now()

	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Cuenta bloqueada, intenta más tarde")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// five failures in a row lock the account for ten minutes
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= 5 {
			lockUntil := now.Add(10 * time.Minute)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_, _ = h.Store.UpdateUser(user)
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Correo o contraseña incorrectos")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	if _, err := h.Store.UpdateUser(user); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo actualizar el usuario")
		return
	}

	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(h.RefreshTTL),
	}
	if err := h.DB.Create(&session).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear la sesión")
		return
	}

	accessToken, err := auth.GenerateToken(h.Secret, user.ID, session.ID, h.AccessTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo generar el token")
		return
	}
	refreshToken, err := auth.GenerateToken(h.Secret, user.ID, session.ID, h.RefreshTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo generar el token")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", accessToken, int(h.AccessTTL.Seconds()), "/", "", false, true)
	c.SetCookie("refresh_token", refreshToken, int(h.RefreshTTL.Seconds()), "/", "", false, true)

	util.Success(c, util.Response{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"session_uuid":  session.ID,
		"user": gin.H{
			"id":        user.ID,
			"uuid":      user.UUID,
			"firstname": user.Firstname,
			"lastname":  user.Lastname,
			"email":     user.Email,
			"picture":   user.Picture,
		},
	})
}

// Logout revokes the session server-side, best effort, and clears the
// cookies. It succeeds even with an expired or absent token so stale
// tabs can always sign out.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenStr, _ := c.Cookie("access_token")
	if tokenStr == "" {
		tokenStr, _ = c.Cookie("refresh_token")
	}

	if tokenStr != "" && h.Secret != "" {
		if claims, err := auth.ParseToken(h.Secret, tokenStr); err == nil && claims.SessionID != "" {
			_ = h.DB.Model(&models.Session{}).
				Where("id = ?", claims.SessionID).
				Update("revoked", true).Error
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)

	c.Status(http.StatusNoContent)
}

// GetMe returns the authenticated user (needs AuthMiddleware).
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":            user.ID,
			"uuid":          user.UUID,
			"firstname":     user.Firstname,
			"lastname":      user.Lastname,
			"email":         user.Email,
			"picture":       user.Picture,
			"isDelinquent":  h.Store.IsDelinquent(user.ID, time.Now()),
			"created_at":    user.CreatedAt,
			"last_login_at": user.LastLoginAt,
		},
	})
}
