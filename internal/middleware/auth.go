package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jobvision/api/internal/httperr"
	"jobvision/api/internal/service"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	CurrentUserKey = "current_user"
)

// Auth resolves the access_token cookie to a user and stores it under
// CurrentUserKey. Token failures abort with 401, a vanished user with 404.
func Auth(auth *service.AuthService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(AccessTokenCookie)

		user, err := auth.CurrentUser(c.Request.Context(), tokenStr)
		if err != nil {
			httperr.Abort(c, log, err)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}
