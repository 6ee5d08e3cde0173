package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
)

// SessionResolver maps a session token onto its active user.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthRequired rejects requests without a live session. The token is read from
// the session cookie or an Authorization bearer header.
func AuthRequired(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := sessions.Resolve(ctx.Request.Context(), SessionToken(ctx, cookieName))
		if err != nil {
			utils.Fail(ctx, err)
			ctx.Abort()
			return
		}
		setUser(ctx, user)
		ctx.Next()
	}
}

// OptionalAuth attaches the session user when there is one and never rejects.
func OptionalAuth(sessions SessionResolver, cookieName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := SessionToken(ctx, cookieName); token != "" {
			if user, err := sessions.Resolve(ctx.Request.Context(), token); err == nil {
				setUser(ctx, user)
			}
		}
		ctx.Next()
	}
}

// SessionToken returns the bearer token when the request carries one and the
// session cookie otherwise. An explicit header beats a cookie the browser kept.
func SessionToken(ctx *gin.Context, cookieName string) string {
	parts := strings.SplitN(ctx.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}
	if v, err := ctx.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}

// CurrentUser returns the user attached by AuthRequired or OptionalAuth.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	v, ok := ctx.Get(utils.ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// CurrentUserID is 0 for anonymous requests.
func CurrentUserID(ctx *gin.Context) uint {
	return ctx.GetUint(utils.ContextUserIDKey)
}

func setUser(ctx *gin.Context, user *models.User) {
	ctx.Set(utils.ContextUserKey, user)
	ctx.Set(utils.ContextUserIDKey, user.ID)
}
