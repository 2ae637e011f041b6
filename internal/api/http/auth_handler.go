package http

import (
	"net/http"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/security"
)

// AuthHandler trades a verified Google sign-in for an admin session cookie.
type AuthHandler struct {
	verifier     security.IDTokenVerifier
	tokens       security.TokenManager
	domain       string
	secureCookie bool
}

func NewAuthHandler(verifier security.IDTokenVerifier, tokens security.TokenManager, allowedDomain string, secureCookie bool) *AuthHandler {
	return &AuthHandler{verifier: verifier, tokens: tokens, domain: allowedDomain, secureCookie: secureCookie}
}

type sessionRequest struct {
	IDToken string `json:"idToken"`
}

type sessionResponse struct {
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	ExpiresAt string `json:"expiresAt"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil || h.tokens == nil {
		writeError(w, r, apperr.Upstream(http.StatusServiceUnavailable, "Authentication unavailable",
			"Administrator sign-in is not configured"), "sign-in")
		return
	}
	var req sessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "sign-in")
		return
	}
	if strings.TrimSpace(req.IDToken) == "" {
		writeError(w, r, apperr.Validation("idToken", "idToken is required"), "sign-in")
		return
	}

	identity, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		logger.WarnContext(r.Context(), "ID token rejected", "error", err)
		writeError(w, r, apperr.Unauthorized("Google sign-in could not be verified"), "sign-in")
		return
	}
	if !identity.EmailVerified || !security.EmailInDomain(identity.Email, h.domain) {
		logger.WarnContext(r.Context(), "Sign-in denied", "email", identity.Email)
		writeError(w, r, apperr.Forbidden("Your account is not permitted to access this page"), "sign-in")
		return
	}

	token, expires, err := h.tokens.GenerateSessionToken(identity.Email, identity.Name)
	if err != nil {
		writeError(w, r, err, "sign-in")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	logger.InfoContext(r.Context(), "Admin signed in", "email", identity.Email)
	writeSuccess(w, http.StatusOK, sessionResponse{
		Email:     strings.ToLower(identity.Email),
		Name:      identity.Name,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     security.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeSuccess(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// Error is the landing page for rejected sign-ins.
func (h *AuthHandler) Error(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("error")
	message := "Authentication failed"
	if code == "AccessDenied" {
		message = "Access is limited to @" + strings.TrimPrefix(h.domain, "@") + " accounts"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}
