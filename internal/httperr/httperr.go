// Package httperr turns service errors into status codes and client-safe
// messages.
package httperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"jobvision/api/internal/repository"
	"jobvision/api/internal/security"
	"jobvision/api/internal/service"
)

const internalMessage = "Internal server error"

// Status returns the HTTP status and message for err.
func Status(err error) (int, string) {
	var tokenErr *service.TokenError
	switch {
	case errors.As(err, &tokenErr):
		return http.StatusUnauthorized, tokenMessage(tokenErr)
	case errors.Is(err, service.ErrAlreadyExists), errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusBadRequest, "User already exists"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid credentials"
	case errors.Is(err, service.ErrInvalidCode):
		return http.StatusBadRequest, "Invalid verification code"
	case errors.Is(err, security.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes"
	case errors.Is(err, service.ErrNotVerified):
		return http.StatusForbidden, "Email not verified"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrDelivery):
		return http.StatusBadGateway, "Failed to send verification email"
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

func tokenMessage(err *service.TokenError) string {
	kind, title := "access", "Access"
	if err.Kind == security.TokenTypeRefresh {
		kind, title = "refresh", "Refresh"
	}

	switch {
	case errors.Is(err.Err, service.ErrMissingToken):
		return "Missing " + kind + " token"
	case errors.Is(err.Err, service.ErrTokenExpired):
		return title + " token expired"
	default:
		return "Invalid " + kind + " token"
	}
}

// Abort writes {"error": message} and stops the handler chain. Server-side
// failures are logged with the request id; their cause never reaches the
// client.
func Abort(c *gin.Context, log zerolog.Logger, err error) {
	status, message := Status(err)

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.Writer.Header().Get("X-Request-Id")).
			Msg("request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// BadRequest reports a request that failed binding or validation.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
}

// bindingMessage names the first offending field without exposing Go
// struct or validator details.
func bindingMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request body"
	}

	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return "Missing " + field
	case "email":
		return "Invalid email"
	default:
		return "Invalid " + field
	}
}
