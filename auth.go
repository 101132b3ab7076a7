package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/CodedInternet/gotrifan/comms"
	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/render"
)

var (
	JWT_LIFESPAN time.Duration = 12 * time.Hour
)

type jwtKey struct{}

var (
	JWTEmpty   = errors.New("Bearer token not provided")
	JWTInvalid = errors.New("Invalid token")
	JWTExpired = errors.New("Token has expired")
)

// Produce a standard format JWT token
func newJWT(secret []byte, issuer, sub string) (ts string, err error) {
	now := time.Now().UTC()
	claims := jwt.StandardClaims{
		Issuer:    issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(JWT_LIFESPAN).Unix(),
		Subject:   sub,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(secret)
}

// tokenString looks in the query, then the authorization header, then the
// jwt cookie. Browsers cannot set headers on a websocket upgrade.
func tokenString(r *http.Request) string {
	if ts := r.URL.Query().Get("jwt"); ts != "" {
		return ts
	}

	bearer := r.Header.Get("Authorization")
	if len(bearer) > 7 && strings.ToUpper(bearer[0:6]) == "BEARER" {
		return bearer[7:]
	}

	if cookie, err := r.Cookie("jwt"); err == nil {
		return cookie.Value
	}
	return ""
}

// ValidateJWT rejects requests that do not carry a token signed with secret.
// The parsed token is stored on the request context.
func ValidateJWT(secret []byte) func(http.Handler) http.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ts := tokenString(r)
			if ts == "" {
				render.Render(w, r, comms.ErrUnauthorized(JWTEmpty))
				return
			}

			token, err := jwt.ParseWithClaims(ts, &jwt.StandardClaims{}, keyFunc)
			if err != nil {
				var verr *jwt.ValidationError
				if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
					err = JWTExpired
				} else {
					err = JWTInvalid
				}
				render.Render(w, r, comms.ErrUnauthorized(err))
				return
			}

			if !token.Valid {
				render.Render(w, r, comms.ErrUnauthorized(JWTInvalid))
				return
			}

			ctx := context.WithValue(r.Context(), jwtKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
