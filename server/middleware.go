package server

import (
	"encoding/json"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/ShHaWkK/SpootifyCLI/core/auth"
	"github.com/ShHaWkK/SpootifyCLI/logger"
)

const (
	sessionCookieName = "spootify_session"
	sessionKeyPrefix  = "session:"
	loginKeyPrefix    = "login:"
)

// corsMiddleware allows the dashboard to call the API from another
// origin during development. Range headers are exposed so the audio
// element can seek within streamed files.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sessionToken loads the oauth token behind the request's session
// cookie. A missing or expired session yields ok=false.
func (h *APIHandler) sessionToken(r *http.Request) (string, *oauth2.Token, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", nil, false
	}
	sid, err := auth.ParseSessionToken(h.cfg.SessionSecret, cookie.Value)
	if err != nil {
		logger.Debug("rejecting session cookie", logger.ErrorField(err))
		return "", nil, false
	}
	raw, err := h.store.Get(r.Context(), sessionKeyPrefix+sid)
	if err != nil {
		return "", nil, false
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		logger.Warn("corrupt session token in store", logger.String("sid", sid), logger.ErrorField(err))
		return "", nil, false
	}
	return sid, &tok, true
}

// AuthMiddleware resolves the session cookie into an authenticated
// gateway client and installs it in the request context. Requests
// without a valid session are rejected with 401.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, tok, ok := h.sessionToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "Not authenticated", "UNAUTHORIZED")
			return
		}
		client := h.auth.ClientFor(r.Context(), tok)
		next.ServeHTTP(w, r.WithContext(NewContextWithClient(r.Context(), client)))
	}
}
