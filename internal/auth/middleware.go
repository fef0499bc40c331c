package auth

import (
	"context"
	"net/http"
	"strings"

	httperrors "lexiquest/pkg/http/errors"
)

type claimsKey struct{}

// RequireSession validates the Bearer token and stores its claims in the
// request context. The token may also arrive via the "token" query parameter
// for WebSocket upgrades, which cannot set headers.
func (m *Manager) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Missing token")
			return
		}

		claims, err := m.Validate(raw)
		if err != nil {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	}
}

// ClaimsFromContext retrieves claims stored by RequireSession.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
