package main

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// handleSession exchanges the dashboard password for a short-lived access
// token. When no password is configured the whole API is open and this
// endpoint says so instead of minting tokens.
func handleSession(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.authEnabled() {
			writeJSON(w, http.StatusOK, map[string]any{"authRequired": false})
			return
		}

		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if subtle.ConstantTimeCompare([]byte(body.Password), []byte(cfg.DashboardPassword)) != 1 {
			writeError(w, http.StatusUnauthorized, "wrong password")
			return
		}

		token, err := issueSessionToken(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "could not issue a session token")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authRequired": true,
			"accessToken":  token,
		})
	}
}

func issueSessionToken(secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "dashboard",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
