package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
)

// SessionDuration is how long an issued admin session token stays valid
const SessionDuration = 24 * time.Hour

var authenticator auth.Authenticator
var cache store.Cache
var jwtSecret []byte

// Middleware adds bearer token authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// SetupGoGuardian sets up the go-guardian middleware with a bearer strategy
// backed by signed session tokens
func SetupGoGuardian(secret string) {
	jwtSecret = []byte(secret)
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), SessionDuration)
	tokenStrategy := bearer.New(validateSessionToken, cache)

	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// validateSessionToken verifies a signed session token on cache miss
func validateSessionToken(ctx context.Context, r *http.Request, tokenString string) (auth.Info, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session claims")
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		subject = "admin"
	}
	id, _ := claims["jti"].(string)

	return auth.NewDefaultUser(subject, id, nil, nil), nil
}
