/*
auth.go - Bearer token authentication

PURPOSE:
  Verifies the JWT on every request, resolves the email in its subject
  claim against the directory, and hands the resulting principal to the
  handlers through the request context. Handlers never read ambient
  session state; they receive the principal explicitly.

TOKEN SHAPE:
  HS256, subject = principal email, standard exp/iat claims. Tokens are
  minted out of band (SignToken exists for tooling and tests).
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/opsdesk/staffcentre/staffdir"
)

type contextKey string

const principalKey contextKey = "principal"

// SignToken mints a bearer token for the given email.
func SignToken(secret, email string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}

// Authenticator returns middleware that requires a valid bearer token and
// an active directory record behind it.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		const prefix = "Bearer "
		if !strings.HasPrefix(raw, prefix) {
			writeFailure(w, http.StatusUnauthorized, fmt.Errorf("missing bearer token"))
			return
		}

		email, err := h.verifyToken(strings.TrimPrefix(raw, prefix))
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, err)
			return
		}

		principal, err := h.Directory.ByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, staffdir.ErrUserNotFound) {
				writeFailure(w, http.StatusUnauthorized, fmt.Errorf("unknown account %s", email))
				return
			}
			writeFailure(w, http.StatusInternalServerError, err)
			return
		}
		if principal.Status != staffdir.AccountActive {
			writeFailure(w, http.StatusForbidden, fmt.Errorf("account disabled"))
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) verifyToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(h.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	email, err := token.Claims.GetSubject()
	if err != nil || email == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return email, nil
}

// principalFrom returns the authenticated user placed by Authenticator.
func principalFrom(ctx context.Context) *staffdir.User {
	p, _ := ctx.Value(principalKey).(*staffdir.User)
	return p
}
