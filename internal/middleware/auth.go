package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/jeffersontgc/anastore/internal/auth"
	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware runs the token gate and puts the current user into the
// context. An expired session answers with its own business code so the
// frontend can route to the session-expired page instead of login.
func AuthMiddleware(gate *auth.Gate, st *store.Store, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Cookie access_token (how the panel sends it)
		if cookie, err := c.Cookie("access_token"); err == nil {
			tokenStr = cookie
		}

		// 2) Header: Authorization: Bearer xxx
		if tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenStr = parts[1]
				}
			}
		}

		// 3) URL query ?token=xxx (downloads cannot set headers)
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		decision := gate.Authenticate(tokenStr)
		if !decision.CanContinue {
			if decision.Status == auth.StatusExpired {
				util.Error(c, http.StatusUnauthorized, util.CodeAuthExpired, "Sesión expirada, inicia sesión de nuevo")
			} else {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "No autenticado")
			}
			c.Abort()
			return
		}

		// permissive mode without a verifiable token: no identity to load
		if decision.Claims == nil {
			c.Next()
			return
		}

		claims := decision.Claims

		// logout revokes sessions server-side; a revoked session id is
		// rejected even while its token is still unexpired
		if claims.SessionID != "" {
			var sess models.Session
			if err := db.First(&sess, "id = ?", claims.SessionID).Error; err == nil {
				if sess.Revoked {
					util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Sesión cerrada")
					c.Abort()
					return
				}
				if sess.ExpiresAt.Before(time.Now()) {
					util.Error(c, http.StatusUnauthorized, util.CodeAuthExpired, "Sesión expirada, inicia sesión de nuevo")
					c.Abort()
					return
				}
			}
		}

		user, ok := st.UserByID(claims.UserID)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Usuario no existe")
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Next()
	}
}
