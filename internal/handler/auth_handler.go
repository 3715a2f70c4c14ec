package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
	"github.com/saleswise/backend-go/internal/middleware"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(service service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Request/Response DTOs
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	UserEmail   string `json:"user_email" binding:"required,email"`
	NewPassword string `json:"new_password" binding:"required"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type UserSummary struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

type LoginResponse struct {
	Success bool        `json:"success"`
	User    UserSummary `json:"user"`
	Token   string      `json:"token"`
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid registration request", "error", err)
		respondBadRequest(c, "Invalid request. Email and password required.")
		return
	}

	_, token, err := h.service.Register(req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
	})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid login request", "error", err)
		respondBadRequest(c, "Invalid request. Email and password required.")
		return
	}

	user, token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		User:    UserSummary{ID: user.ID, Email: user.Email},
		Token:   token,
	})
}

// ChangePassword lets a staff user reset another user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("❌ [Handler] Invalid change password request", "error", err)
		respondBadRequest(c, "Invalid request. user_email and new_password required.")
		return
	}

	if err := h.service.ChangePassword(caller.ID, req.UserEmail, req.NewPassword); err != nil {
		h.handleServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, true, "Password changed successfully")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, false, "Authentication required")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"is_staff": user.IsStaff,
	})
}

// Hello is a public liveness greeting
func (h *AuthHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello from SalesWise!"})
}

// handleServiceError maps service errors to HTTP responses.
// Domain failures are reported in the body with success=false, not as HTTP errors.
func (h *AuthHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailAlreadyExists):
		respondMessage(c, http.StatusOK, false, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(c, http.StatusOK, false, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		respondMessage(c, http.StatusOK, false, "Only admins can change passwords")
	case errors.Is(err, repository.ErrUserNotFound):
		respondMessage(c, http.StatusOK, false, "User not found")
	case errors.Is(err, service.ErrPasswordTooLong):
		respondBadRequest(c, "Password must be at most 72 bytes")
	default:
		h.logger.Error("❌ [Handler] Internal server error", "error", err)
		respondInternalError(c)
	}
}
