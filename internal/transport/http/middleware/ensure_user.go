package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nbazarov/teamforge/internal/domain"
)

type userResolver interface {
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// EnsureUser runs after Auth. A token may outlive its account, so the
// verified user ID is resolved against the store; if the user is gone the
// request is rejected before any domain logic runs. The loaded user is
// stored under "authUser".
func EnsureUser(users userResolver, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		user, err := users.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
				return
			}
			logger.ErrorContext(c.Request.Context(), "ensure user lookup", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				gin.H{"error": "Internal server error"})
			return
		}

		c.Set("authUser", user)
		c.Next()
	}
}

// AuthUser extracts the user loaded by EnsureUser. The bool is false on
// routes that skipped the auth chain.
func AuthUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get("authUser")
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}
