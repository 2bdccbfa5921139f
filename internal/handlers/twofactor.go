package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/smartfarm/auth-api/internal/auth"
	pkghttp "github.com/smartfarm/auth-api/pkg/http"
)

// TwoFactorVerifier completes pending 2FA logins
type TwoFactorVerifier interface {
	VerifyTwoFactor(ctx context.Context, userID, code, ip string) (string, error)
}

// TwoFactorToggler flips the 2FA flag for an authenticated user
type TwoFactorToggler interface {
	Toggle(ctx context.Context, userID, ip string) (bool, error)
}

// TwoFactorHandler handles 2FA-related HTTP requests
type TwoFactorHandler struct {
	verifier TwoFactorVerifier
	toggler  TwoFactorToggler
	ipConfig *pkghttp.IPConfig
}

// NewTwoFactorHandler creates a new TwoFactorHandler
func NewTwoFactorHandler(verifier TwoFactorVerifier, toggler TwoFactorToggler, ipConfig *pkghttp.IPConfig) *TwoFactorHandler {
	return &TwoFactorHandler{
		verifier: verifier,
		toggler:  toggler,
		ipConfig: ipConfig,
	}
}

// VerifyLoginRequest represents the request body for completing a 2FA login
type VerifyLoginRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Code   string `json:"code" validate:"required,len=6,numeric"`
}

// TokenResponse carries a session token
type TokenResponse struct {
	Token string `json:"token"`
}

// TwoFactorStateResponse reports the current 2FA setting
type TwoFactorStateResponse struct {
	TwoFactorEnabled bool `json:"two_factor_enabled"`
}

// VerifyLogin completes a pending 2FA login with the emailed code. Wrong
// code, expired code, consumed code and unknown user all yield the same
// response.
func (h *TwoFactorHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	var req VerifyLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	token, err := h.verifier.VerifyTwoFactor(r.Context(), req.UserID, req.Code, ip)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Toggle flips the 2FA setting for the authenticated user
func (h *TwoFactorHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r)
	if userID == "" {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	ip := pkghttp.ExtractClientIP(r, h.ipConfig)
	enabled, err := h.toggler.Toggle(r.Context(), userID, ip)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, TwoFactorStateResponse{TwoFactorEnabled: enabled})
}
