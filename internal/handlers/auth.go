package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/smartfarm/auth-api/internal/models"
	"github.com/smartfarm/auth-api/internal/services"
	pkgauth "github.com/smartfarm/auth-api/pkg/auth"
	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, name, ip string) (*models.User, error)
	Login(ctx context.Context, email, password, ip string) (*services.LoginResult, error)
}

// PasswordResetServiceInterface defines the interface for password reset flows
type PasswordResetServiceInterface interface {
	Request(ctx context.Context, email string)
	Reset(ctx context.Context, token, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth     AuthServiceInterface
	resets   PasswordResetServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthServiceInterface, resets PasswordResetServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		resets:   resets,
		ipConfig: ipConfig,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest represents the request body for a reset request.
// Only absence of the email is a 400; a malformed address gets the same
// generic acknowledgement as any other.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest represents the request body for consuming a reset token
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Response DTOs

// RegisterResponse is the public view of a newly created account
type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse carries either a session token or a 2FA challenge
type LoginResponse struct {
	Token             string `json:"token,omitempty"`
	TwoFactorRequired bool   `json:"two_factor_required,omitempty"`
	UserID            string `json:"user_id,omitempty"`
}

// MessageResponse is a generic acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles account creation
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	// A name of only whitespace must fail the required check
	req.Name = strings.TrimSpace(req.Name)

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, ip)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, RegisterResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	})
}

// Login handles the credentials leg of login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	result, err := h.auth.Login(r.Context(), req.Email, req.Password, ip)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	if result.TwoFactorRequired {
		pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
			TwoFactorRequired: true,
			UserID:            result.UserID,
		})
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{Token: result.Token})
}

// ForgotPassword accepts a reset request. The response is identical whether
// or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	h.resets.Request(r.Context(), req.Email)

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "If the email is registered, a password reset link has been sent",
	})
}

// ResetPassword consumes a reset token and sets the new password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.resets.Reset(r.Context(), req.Token, req.Password); err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// writeAuthError maps service errors onto HTTP responses without leaking
// which check failed.
func writeAuthError(w http.ResponseWriter, err error) {
	var pve *pkgauth.PasswordValidationError
	switch {
	case errors.As(err, &pve):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Email is already registered")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, models.ErrInvalidOrExpiredCode):
		pkghttp.WriteBadRequest(w, "Invalid or expired code")
	case errors.Is(err, models.ErrInvalidOrExpiredToken):
		pkghttp.WriteBadRequest(w, "Invalid or expired reset token")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Not found")
	default:
		pkghttp.WriteInternalError(w, "An internal error occurred")
	}
}
