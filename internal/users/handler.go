package users

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches /auth routes. requireAuth guards /auth/me.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/logout", h.logout)
	rg.GET("/auth/me", requireAuth, h.me)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func userResponse(u User) gin.H {
	return gin.H{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"provider":  u.Provider,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

func sessionResponse(s Session) gin.H {
	body := userResponse(s.User)
	body["token"] = s.Token
	return body
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "All fields are required", nil)
		return
	}

	session, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "All fields are required", nil)
		case errors.Is(err, ErrPasswordTooLong):
			respond.Error(c, http.StatusBadRequest, "validation_error", fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes), nil)
		case errors.Is(err, ErrEmailTaken):
			respond.Error(c, http.StatusBadRequest, "user_exists", "User already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to register user", nil)
		}
		return
	}
	c.Set("userId", session.User.ID)

	respond.Created(c, sessionResponse(session))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Email and password are required", nil)
		return
	}

	session, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Email and password are required", nil)
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to log in", nil)
		}
		return
	}
	c.Set("userId", session.User.ID)

	respond.OK(c, sessionResponse(session))
}

// Tokens are stateless; the client discards its copy.
func (h *Handler) logout(c *gin.Context) {
	respond.OK(c, gin.H{"message": "Logged out"})
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.Svc.GetByID(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "User not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to load user", nil)
		return
	}
	respond.OK(c, userResponse(user))
}
