package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/logger"
	"github.com/dataportfolio/portfolio-api/internal/users"
)

// UserSyncer mirrors verified identities into the users table.
type UserSyncer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) error
}

// Require rejects unauthenticated requests and stores the caller's id under
// CtxUserID. sync may be nil.
func Require(v Verifier, sync UserSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, err := v.Verify(ctx, c.Request)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, ErrMissingToken) {
				msg = "missing authorization token"
			}
			logger.FromContext(ctx).Debug("auth rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
			return
		}

		if sync != nil {
			err := sync.EnsureUser(ctx, users.UpsertUser{
				UID:         id.UID,
				Email:       id.Email,
				DisplayName: id.DisplayName,
				PhotoURL:    id.PhotoURL,
			})
			if err != nil {
				logger.FromContext(ctx).Error("ensure user failed", zap.String("uid", id.UID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user failed"})
				return
			}
		}

		c.Set(CtxUserID, id.UID)
		if id.Email != "" {
			c.Set(CtxEmail, id.Email)
		}
		c.Request = c.Request.WithContext(logger.With(ctx, zap.String("user_id", id.UID)))

		c.Next()
	}
}
