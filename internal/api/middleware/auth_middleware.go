package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	jwtKey []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(jwtKey []byte) *AuthMiddleware {

	return &AuthMiddleware{
		jwtKey: jwtKey,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}

}

// Authenticate resolves the bearer token into an access.Principal stored in
// the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")

		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		// Token is of format : "Bearer <token>"
		tokenParts := strings.Split(authHeader, " ")

		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			logger.Warn("Invalid authorization header format")
			response.Error(w, errors.UnauthorizedError("Invalid authorization format"))
			return
		}

		claims := &models.Claims{}

		token, err := m.parser.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
			return m.jwtKey, nil
		})

		if err != nil || !token.Valid {
			logger.Warn("JWT parsing failed", slog.Any("error", err))
			response.Error(w, errors.UnauthorizedError("Invalid or expired token"))
			return
		}

		principal := claims.Principal()

		if principal == nil {
			logger.Warn("Unknown role in token", slog.String("userId", claims.UserID.String()), slog.String("role", claims.Role))
			response.Error(w, errors.ForbiddenError("Role is not permitted"))
			return
		}

		if !claims.Active {
			logger.Warn("Inactive account", slog.String("userId", claims.UserID.String()))
			response.Error(w, errors.ForbiddenError("Account is inactive"))
			return
		}

		ctx := access.WithPrincipal(r.Context(), principal)

		requestScopedLogger := logger.With(slog.String("userId", claims.UserID.String()), slog.String("role", claims.Role))
		ctx = context.WithValue(ctx, LoggerKey, requestScopedLogger)

		requestScopedLogger.Info("User authenticated")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require passes the request on when the principal holds at least one of the
// given scopes.
func Require(scopes ...access.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			principal, ok := access.PrincipalFromContext(r.Context())
			if !ok {
				response.Error(w, errors.UnauthorizedError("Authentication required"))
				return
			}

			for _, scope := range scopes {
				if principal.Has(scope) {
					next.ServeHTTP(w, r)
					return
				}
			}

			LoggerFromContext(r.Context()).Warn("Missing scope", slog.Any("required", scopes), slog.String("role", string(principal.Role)))
			response.Error(w, errors.ForbiddenError("You do not have permission to perform this action"))
		})
	}
}

// Protect chains authentication and scope checks in front of a handler.
func (m *AuthMiddleware) Protect(h http.HandlerFunc, scopes ...access.Scope) http.Handler {
	return m.Authenticate(Require(scopes...)(h))
}
