package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MichaelEbbert/ebaysales/internal/auth"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*Deps
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		jsonError(w, http.StatusBadRequest, "password required")
		return
	}

	if err := auth.CheckPassword(r.Context(), h.DB, req.Password); err != nil {
		if errors.Is(err, auth.ErrBadPassword) {
			slog.Warn("login failed", "remote", r.RemoteAddr)
			jsonError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		storeError(w, err, "internal error")
		return
	}

	token, _, err := auth.GenerateToken(h.JWTSecret, h.Now())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("operator logged in", "remote", r.RemoteAddr)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	now := h.Now()
	expires := now.Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires, now); err != nil {
		storeError(w, err, "failed to revoke token")
		return
	}

	slog.Info("operator logged out")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, "current and new password required")
		return
	}
	if len(req.NewPassword) < auth.MinPasswordLength {
		jsonError(w, http.StatusBadRequest, "new password too short")
		return
	}

	if err := auth.CheckPassword(r.Context(), h.DB, req.CurrentPassword); err != nil {
		if errors.Is(err, auth.ErrBadPassword) {
			jsonError(w, http.StatusUnauthorized, "current password is incorrect")
			return
		}
		storeError(w, err, "internal error")
		return
	}

	if err := auth.SetPassword(r.Context(), h.DB, req.NewPassword); err != nil {
		storeError(w, err, "failed to update password")
		return
	}

	slog.Info("operator changed password")
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}
