package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/serenity-app/serenity/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextGuestKey marks requests served by the guest profile.
	ContextGuestKey = "guest"
)

// Identity resolves who the request acts for. A valid bearer token selects
// the token subject; no Authorization header selects the guest profile when
// allowGuest is set. A present but invalid header is always rejected.
// EventSource clients cannot set headers, so an access_token query parameter
// is accepted in place of the header.
func Identity(secret string, allowGuest bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			if tok := ctx.Query("access_token"); tok != "" {
				authHeader = "Bearer " + tok
			}
		}
		if authHeader == "" {
			if !allowGuest {
				utils.Error(ctx, http.StatusUnauthorized, utils.CodeAuthMissing, "authorization header missing")
				ctx.Abort()
				return
			}
			ctx.Set(ContextGuestKey, true)
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.Error(ctx, http.StatusUnauthorized, utils.CodeAuthFormat, "invalid authorization header format")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, utils.CodeAuthInvalid, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.Subject)
		ctx.Next()
	}
}

// Principal returns the user id set by Identity, or guest=true for guest requests.
func Principal(ctx *gin.Context) (userID string, guest bool) {
	if ctx.GetBool(ContextGuestKey) {
		return "", true
	}
	return ctx.GetString(ContextUserIDKey), false
}
