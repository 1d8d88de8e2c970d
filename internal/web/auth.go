package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MichaelEbbert/ebaysales/internal/auth"
	"github.com/MichaelEbbert/ebaysales/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Log in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")
	if password == "" {
		s.Templates.Render(w, "login.html", &PageData{Title: "Log in", Error: "Enter the password."})
		return
	}

	if err := auth.CheckPassword(r.Context(), s.DB, password); err != nil {
		if !errors.Is(err, auth.ErrBadPassword) {
			slog.Error("failed to check password", "error", err)
		}
		slog.Warn("web login failed", "remote", r.RemoteAddr)
		s.Templates.Render(w, "login.html", &PageData{Title: "Log in", Error: "Wrong password."})
		return
	}

	token, _, err := auth.GenerateToken(s.JWTSecret, s.Now())
	if err != nil {
		s.Templates.Render(w, "login.html", &PageData{Title: "Log in", Error: "Login failed."})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry.Seconds()),
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout. A valid session token is revoked before the
// cookie is cleared.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			now := s.Now()
			expires := now.Add(auth.TokenExpiry)
			if claims.ExpiresAt != nil {
				expires = claims.ExpiresAt.Time
			}
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, expires, now); err != nil {
				slog.Error("failed to revoke token", "error", err)
			}
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
