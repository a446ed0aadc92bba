package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nephsir/jobfinder/internal/user"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

const tokenExpiry = 7 * 24 * time.Hour

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
		logger.Info().
			Str("Host", r.Host).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Str("x-forwarded-for", r.Header.Get("x-forwarded-for")).
			Msg("req")
		next.ServeHTTP(w, r)
	})
}

func HeadersMiddleware(next http.Handler, env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env != "dev" {
			w.Header().Set("X-Frame-Options", "deny")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			w.Header().Set("Referrer-Policy", "origin")
		}
		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware turns panics into the 500 JSON envelope. The client
// only ever sees the message, the value itself goes to the server log.
func RecoveryMiddleware(next http.Handler, logFn func(err error, msg string)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err, ok := rec.(error)
				if !ok {
					err = &panicError{rec}
				}
				logFn(err, "recovered from panic while serving "+r.Method+" "+r.URL.Path)
				writeJSONError(w, http.StatusInternalServerError, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type panicError struct {
	value interface{}
}

func (p *panicError) Error() string {
	b, err := json.Marshal(p.value)
	if err != nil {
		return "unknown panic"
	}
	return string(b)
}

type UserJWT struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

// NewUserToken issues the 7-day bearer token bound to the user id.
func NewUserToken(userID string, signingKey []byte) (string, error) {
	claims := UserJWT{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenExpiry).UTC().Unix(),
			IssuedAt:  time.Now().UTC().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

type userGetter interface {
	GetUser(id string) (user.User, error)
}

// UserAuthenticatedMiddleware resolves the Authorization bearer token to a
// user and attaches it to the request context. A missing or malformed
// header is rejected before any token parsing happens.
func UserAuthenticatedMiddleware(userRepo userGetter, jwtKey []byte, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeJSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		tk := strings.TrimPrefix(header, "Bearer ")
		claims := &UserJWT{}
		token, err := jwt.ParseWithClaims(tk, claims, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		u, err := userRepo.GetUser(claims.UserID)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "User not found")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userContextKey, u)))
	}
}

// GetUserFromContext returns the identity attached by
// UserAuthenticatedMiddleware.
func GetUserFromContext(r *http.Request) (user.User, bool) {
	u, ok := r.Context().Value(userContextKey).(user.User)
	return u, ok
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"message":    message,
	})
}
