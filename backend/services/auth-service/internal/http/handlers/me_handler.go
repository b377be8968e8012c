package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"greenvolt/backend/services/auth-service/internal/service"
)

// UserIDHeader is set by the gateway after it verifies the token.
const UserIDHeader = "X-User-ID"

// NewMeHandler handles GET /auth/me. The caller comes from the gateway header,
// or from a bearer token when called directly.
func NewMeHandler(authService *service.AuthService, tokens *service.TokenService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := caller(r, tokens)
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		user, err := authService.Me(r.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "user not found")
				return
			}
			logger.Error("profile lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func caller(r *http.Request, tokens *service.TokenService) (int64, bool) {
	if raw := strings.TrimSpace(r.Header.Get(UserIDHeader)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		return id, err == nil && id > 0
	}
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || tokens == nil {
		return 0, false
	}
	claims, err := tokens.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
