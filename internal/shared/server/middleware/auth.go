package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/shared/telemetry"
)

const userIDKey = "userId"

// ErrPrincipalNotFound is returned by a PrincipalLookup when the token subject no longer exists.
var ErrPrincipalNotFound = errors.New("principal not found")

// Principal is the resolved identity behind a bearer token.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// PrincipalLookup resolves a token subject to a principal.
type PrincipalLookup func(ctx context.Context, subject string) (Principal, error)

// Auth requires a valid bearer token and stores the resolved identity in context.
// When lookup is nil the token claims are trusted as-is.
func Auth(lookup PrincipalLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token provided", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authorized, invalid token", nil)
			return
		}

		principal := Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name}
		if lookup != nil {
			resolved, err := lookup(c.Request.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, ErrPrincipalNotFound) {
					respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authorized, user not found", nil)
					return
				}
				telemetry.Error("auth.lookup_failed", map[string]any{"user_id": claims.Subject, "err": err})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Server error in authentication", nil)
				return
			}
			principal = resolved
		}

		c.Set(userIDKey, principal.ID)
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
