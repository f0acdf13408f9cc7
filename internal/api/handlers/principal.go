package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/utils/response"
)

// principalOrUnauthorized writes a 401 and returns false when the request
// carries no authenticated principal.
func principalOrUnauthorized(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*access.Principal, bool) {
	principal, ok := access.PrincipalFromContext(r.Context())
	if !ok {
		logger.Warn("Request without authenticated principal", slog.String("path", r.URL.Path))
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return principal, true
}
