package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-api/internal/api/shared"
	"github.com/phrazzld/vocab-api/internal/platform/logger"
)

// UserIDHeader names the header in which the gateway passes the
// authenticated user's ID.
const UserIDHeader = "X-User-ID"

// RequireUser rejects requests without a valid user ID header and stores the
// ID in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID header required")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user ID")
			return
		}

		ctx := shared.WithUserID(r.Context(), userID)
		log := logger.FromContextOrDefault(ctx, slog.Default()).With(slog.String("user_id", userID.String()))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}
