package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ShHaWkK/SpootifyCLI/core/auth"
	"github.com/ShHaWkK/SpootifyCLI/core/spotifyx"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

// loginTTL bounds how long a consent redirect may take before the
// stored verifier expires.
const loginTTL = 10 * time.Minute

// LoginHandler starts the authorization-code flow. The PKCE verifier is
// parked in the store under the state value until the callback returns.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	verifier := spotifyx.NewVerifier()
	if err := h.store.Set(r.Context(), loginKeyPrefix+state, []byte(verifier), loginTTL); err != nil {
		logger.Error("failed to persist login state", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to start login", "")
		return
	}
	http.Redirect(w, r, h.auth.AuthURL(state, verifier), http.StatusTemporaryRedirect)
}

// CallbackHandler completes the flow: redeem the code, mint a session,
// and hand the browser a signed session cookie.
func (h *APIHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		respondError(w, http.StatusBadRequest, "Missing state parameter", "")
		return
	}
	verifier, err := h.store.Get(r.Context(), loginKeyPrefix+state)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Unknown or expired login attempt", "")
		return
	}
	_ = h.store.Delete(r.Context(), loginKeyPrefix+state)

	tok, err := h.auth.Exchange(r.Context(), state, string(verifier), r)
	if err != nil {
		logger.Error("token exchange failed", logger.ErrorField(err))
		respondError(w, http.StatusBadGateway, "Authorization failed", "")
		return
	}

	raw, err := json.Marshal(tok)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store credentials", "")
		return
	}
	sid := uuid.NewString()
	if err := h.store.Set(r.Context(), sessionKeyPrefix+sid, raw, h.cfg.SessionTTL); err != nil {
		logger.Error("failed to persist session", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store credentials", "")
		return
	}

	cookieToken, err := auth.NewSessionToken(h.cfg.SessionSecret, sid, h.cfg.SessionTTL)
	if err != nil {
		logger.Error("failed to sign session cookie", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create session", "")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieToken,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Info("session created", logger.String("sid", sid))
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// LogoutHandler drops the stored token and clears the cookie.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if sid, _, ok := h.sessionToken(r); ok {
		_ = h.store.Delete(r.Context(), sessionKeyPrefix+sid)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// SessionHandler tells the dashboard whether it is logged in and as
// whom. It never fails with 401 so the UI can render either state.
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	_, tok, ok := h.sessionToken(r)
	if !ok {
		respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	client := h.auth.ClientFor(r.Context(), tok)
	name, err := client.CurrentUserName(r.Context())
	if err != nil {
		logger.Warn("session lookup against remote failed", logger.ErrorField(err))
		respondJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"user":          name,
	})
}
