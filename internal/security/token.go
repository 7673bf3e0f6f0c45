package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/segmentio/ksuid"

	"jobvision/api/internal/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

type Claims struct {
	Email string    `json:"email"`
	Type  TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Token is a signed JWT together with the fields callers need without
// parsing it again.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
	TTL       time.Duration
}

type TokenIssuer struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(cfg config.SecurityConfig) (*TokenIssuer, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is empty")
	}

	var method jwt.SigningMethod
	switch cfg.JWTAlgorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.JWTAlgorithm)
	}

	return &TokenIssuer{
		secret:     []byte(cfg.JWTSecret),
		method:     method,
		accessTTL:  cfg.JWTAccessTTL,
		refreshTTL: cfg.JWTRefreshTTL,
	}, nil
}

func (i *TokenIssuer) IssueAccess(email string) (Token, error) {
	return i.issue(email, TokenTypeAccess, i.accessTTL)
}

func (i *TokenIssuer) IssueRefresh(email string) (Token, error) {
	return i.issue(email, TokenTypeRefresh, i.refreshTTL)
}

func (i *TokenIssuer) issue(email string, typ TokenType, ttl time.Duration) (Token, error) {
	now := time.Now()
	id := ksuid.New().String()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   email,
			ID:        id,
		},
	}

	token := jwt.NewWithClaims(i.method, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign jwt: %w", err)
	}

	return Token{
		Value:     signed,
		ID:        id,
		ExpiresAt: claims.ExpiresAt.Time,
		TTL:       ttl,
	}, nil
}

// Verify checks signature, algorithm, expiry and token type. Expired tokens
// yield ErrTokenExpired; every other failure yields ErrTokenInvalid.
func (i *TokenIssuer) Verify(tokenStr string, typ TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.Type != typ || claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
