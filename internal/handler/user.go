package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jeffersontgc/anastore/internal/models"
	"github.com/jeffersontgc/anastore/internal/store"
	"github.com/jeffersontgc/anastore/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler serves the guarantor registry.
type UserHandler struct {
	Store      *store.Store
	BcryptCost int
}

func NewUserHandler(st *store.Store, bcryptCost int) *UserHandler {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = 12
	}
	return &UserHandler{Store: st, BcryptCost: bcryptCost}
}

type createUserReq struct {
	Firstname string `json:"firstname" binding:"required,max=64"`
	Lastname  string `json:"lastname" binding:"max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=64"`
	Picture   string `json:"profilePicture"`
}

type updateUserReq struct {
	Firstname string `json:"firstname" binding:"required,max=64"`
	Lastname  string `json:"lastname" binding:"max=64"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"omitempty,min=8,max=64"`
	Picture   string `json:"profilePicture"`
}

func (h *UserHandler) userResp(u *models.User, now time.Time) gin.H {
	return gin.H{
		"id":           u.ID,
		"uuid":         u.UUID,
		"firstname":    u.Firstname,
		"lastname":     u.Lastname,
		"email":        u.Email,
		"picture":      u.Picture,
		"isDelinquent": h.Store.IsDelinquent(u.ID, now),
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo cifrar la contraseña")
		return
	}

	user, err := h.Store.CreateUser(models.User{
		Firstname:    strings.TrimSpace(req.Firstname),
		Lastname:     strings.TrimSpace(req.Lastname),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Picture:      req.Picture,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "El correo ya está registrado")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo crear el usuario")
		return
	}

	util.Success(c, util.Response{
		"user": h.userResp(&user, time.Now()),
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users := h.Store.Users()
	now := time.Now()

	items := make([]gin.H, 0, len(users))
	for i := range users {
		items = append(items, h.userResp(&users[i], now))
	}

	util.Success(c, util.Response{
		"users": items,
		"total": len(items),
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Parámetros inválidos")
		return
	}

	user, ok := h.Store.UserByID(uint(id))
	if !ok {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Usuario no existe")
		return
	}

	user.Firstname = strings.TrimSpace(req.Firstname)
	user.Lastname = strings.TrimSpace(req.Lastname)
	user.Email = strings.TrimSpace(req.Email)
	user.Picture = req.Picture
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo cifrar la contraseña")
			return
		}
		user.PasswordHash = string(hash)
	}

	updated, err := h.Store.UpdateUser(user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "El correo ya está registrado")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo actualizar el usuario")
		return
	}

	util.Success(c, util.Response{
		"user": h.userResp(&updated, time.Now()),
	})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID inválido")
		return
	}

	if err := h.Store.DeleteUser(uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "Usuario no existe")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "No se pudo eliminar el usuario")
		return
	}

	util.Success(c, util.Response{
		"message": "Usuario eliminado",
	})
}
