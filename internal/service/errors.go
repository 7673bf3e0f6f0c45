package service

import (
	"errors"
	"fmt"

	"jobvision/api/internal/security"
)

var (
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrNotVerified        = errors.New("email not verified")
	ErrDelivery           = errors.New("verification email delivery failed")

	ErrMissingToken = errors.New("missing token")
	ErrTokenExpired = security.ErrTokenExpired
	ErrTokenInvalid = security.ErrTokenInvalid
)

// TokenError tells which token failed and why.
type TokenError struct {
	Kind security.TokenType
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s token: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func tokenError(kind security.TokenType, err error) error {
	switch {
	case errors.Is(err, ErrMissingToken):
		err = ErrMissingToken
	case errors.Is(err, ErrTokenExpired):
		err = ErrTokenExpired
	default:
		err = ErrTokenInvalid
	}
	return &TokenError{Kind: kind, Err: err}
}
