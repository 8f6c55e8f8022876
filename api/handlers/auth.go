package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shared-canvas/backend/internal/model"
	"github.com/shared-canvas/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles login requests. The first login for a username
// creates the account; subsequent logins verify the stored bcrypt hash.
type AuthHandler struct {
	users *repository.UserRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "username and password are required")
		return
	}

	user, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		h.createAccount(c, req.Username, req.Password)
		return
	}
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up user: "+err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		sendError(c, http.StatusUnauthorized, "WRONG_PASSWORD", "Wrong password")
		return
	}

	c.Redirect(http.StatusFound, "/home")
}

// createAccount stores a new credential record and logs the user in.
func (h *AuthHandler) createAccount(c *gin.Context, username, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to hash password")
		return
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		// Concurrent first logins can race; treat the loser as a normal
		// login attempt next time around.
		if errors.Is(err, model.ErrUserExists) {
			sendError(c, http.StatusConflict, "USER_EXISTS", "Account already exists, retry login")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account: "+err.Error())
		return
	}

	log.Printf("Created account for %s", username)
	c.Redirect(http.StatusFound, "/home")
}

// RegisterRoutes registers the auth routes on a Gin router group.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}
