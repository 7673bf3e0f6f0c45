package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobvision/api/internal/httperr"
	"jobvision/api/internal/middleware"
	"jobvision/api/internal/models"
	"jobvision/api/internal/security"
	"jobvision/api/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Message string         `json:"message"`
	User    models.Profile `json:"user"`
}

func (h HandlerSet) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Verification code sent to your email"})
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	h.setTokenCookie(c, middleware.AccessTokenCookie, result.AccessToken)
	h.setTokenCookie(c, middleware.RefreshTokenCookie, result.RefreshToken)

	c.JSON(http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    result.User.Profile(),
	})
}

func (h HandlerSet) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	result, err := h.authService.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	message := "Email verified successfully"
	if result.AlreadyVerified {
		message = "User already verified"
	}
	c.JSON(http.StatusOK, messageResponse{Message: message})
}

func (h HandlerSet) ResendCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	result, err := h.authService.ResendCode(c.Request.Context(), req.Email)
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	message := "Verification code resent!"
	if result.AlreadyVerified {
		message = "User already verified"
	}
	c.JSON(http.StatusOK, messageResponse{Message: message})
}

func (h HandlerSet) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)

	access, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		httperr.Abort(c, h.log, err)
		return
	}

	h.setTokenCookie(c, middleware.AccessTokenCookie, access)
	c.JSON(http.StatusOK, messageResponse{Message: "Access token refreshed"})
}

// Logout always clears both cookies, even when the tokens are already
// invalid or the revocation list is unreachable.
func (h HandlerSet) Logout(c *gin.Context) {
	accessToken, _ := c.Cookie(middleware.AccessTokenCookie)
	refreshToken, _ := c.Cookie(middleware.RefreshTokenCookie)

	h.authService.Logout(c.Request.Context(), accessToken, refreshToken)

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)
	c.JSON(http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h HandlerSet) Me(c *gin.Context) {
	userVal, exists := c.Get(middleware.CurrentUserKey)
	if !exists {
		httperr.Abort(c, h.log, &service.TokenError{Kind: security.TokenTypeAccess, Err: service.ErrMissingToken})
		return
	}
	user, ok := userVal.(models.User)
	if !ok {
		httperr.Abort(c, h.log, &service.TokenError{Kind: security.TokenTypeAccess, Err: service.ErrTokenInvalid})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user.Profile()})
}

func (h HandlerSet) setTokenCookie(c *gin.Context, name string, token security.Token) {
	maxAge := int(token.TTL / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token.Value, maxAge, "/", h.cfg.Security.CookieDomain, h.cfg.Security.CookieSecure, true)
}

func (h HandlerSet) clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", h.cfg.Security.CookieDomain, h.cfg.Security.CookieSecure, true)
}
