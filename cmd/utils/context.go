package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/findash/findash-server/cmd/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const UserKey contextKey = "user"

// TokenTTL is the fixed validity window for issued tokens. There is no
// refresh mechanism; expiry is the only termination.
const TokenTTL = 7 * 24 * time.Hour

// TokenClaims carries the identity encoded in a bearer token.
type TokenClaims struct {
	UserID uint   `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateToken issues a signed bearer token for the given user.
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// VerifyToken parses and validates a bearer token string.
func VerifyToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetUserFromContext returns the claims placed by AuthMiddleware.
func GetUserFromContext(r *http.Request) (*TokenClaims, error) {
	claims, ok := r.Context().Value(UserKey).(*TokenClaims)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	return claims, nil
}

// AuthMiddleware gates a handler behind bearer-token verification. A missing
// token yields 401, an invalid or expired one 403; domain logic never runs on
// either path.
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, http.StatusUnauthorized, "Access token required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			WriteError(w, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := VerifyToken(tokenString)
		if err != nil {
			WriteError(w, http.StatusForbidden, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, claims)
		next(w, r.WithContext(ctx))
	}
}
