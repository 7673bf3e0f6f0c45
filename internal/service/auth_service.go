package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jobvision/api/internal/config"
	"jobvision/api/internal/models"
	"jobvision/api/internal/repository"
	"jobvision/api/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	MarkVerified(ctx context.Context, id int64, code string) (models.User, error)
	UpdateVerificationCode(ctx context.Context, id int64, code string) error
	RestoreVerificationCode(ctx context.Context, id int64, expected string, previous string) error
	Delete(ctx context.Context, id int64) error
}

type Notifier interface {
	SendVerification(ctx context.Context, email string, code string) error
}

type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	users       UserStore
	notifier    Notifier
	revocations RevocationStore
	hasher      *security.PasswordHasher
	tokens      *security.TokenIssuer
	cfg         config.SecurityConfig
	log         zerolog.Logger
}

// NewAuthService wires the orchestrator. revocations may be nil, in which
// case logout only clears cookies and tokens live until they expire.
func NewAuthService(
	users UserStore,
	notifier Notifier,
	revocations RevocationStore,
	hasher *security.PasswordHasher,
	tokens *security.TokenIssuer,
	cfg config.SecurityConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		notifier:    notifier,
		revocations: revocations,
		hasher:      hasher,
		tokens:      tokens,
		cfg:         cfg,
		log:         log,
	}
}

func (s *AuthService) Tokens() *security.TokenIssuer {
	return s.tokens
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	email := repository.NormalizeEmail(input.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return err
	}

	code, err := security.GenerateVerificationCode()
	if err != nil {
		return err
	}

	user, err := s.users.Create(ctx, models.User{
		Email:            email,
		Name:             input.Name,
		PasswordHash:     passwordHash,
		VerificationCode: code,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
		return err
	}

	if err := s.notifier.SendVerification(ctx, user.Email, code); err != nil {
		// No account may outlive a verification email that never left.
		if delErr := s.users.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			s.log.Error().Err(delErr).Int64("user_id", user.ID).Msg("rollback of unnotified registration failed")
		}
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user registered, verification pending")
	return nil
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken  security.Token
	RefreshToken security.Token
	User         models.User
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, repository.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.hasher.VerifyAbsent(input.Password)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	if s.cfg.RequireVerified && !user.IsVerified {
		return AuthResult{}, ErrNotVerified
	}

	access, err := s.tokens.IssueAccess(user.Email)
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.tokens.IssueRefresh(user.Email)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")

	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}

type VerifyResult struct {
	AlreadyVerified bool
}

func (s *AuthService) Verify(ctx context.Context, email string, code string) (VerifyResult, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return VerifyResult{}, err
	}

	if user.IsVerified {
		return VerifyResult{AlreadyVerified: true}, nil
	}
	if !security.CodesEqual(user.VerificationCode, code) {
		return VerifyResult{}, ErrInvalidCode
	}

	if _, err := s.users.MarkVerified(ctx, user.ID, user.VerificationCode); err != nil {
		if !errors.Is(err, repository.ErrVerificationConflict) {
			return VerifyResult{}, err
		}
		// Raced with another verify or a resend; report what won.
		current, err := s.findUser(ctx, email)
		if err != nil {
			return VerifyResult{}, err
		}
		if current.IsVerified {
			return VerifyResult{AlreadyVerified: true}, nil
		}
		return VerifyResult{}, ErrInvalidCode
	}

	s.log.Info().Int64("user_id", user.ID).Msg("email verified")
	return VerifyResult{}, nil
}

// ResendCode rotates the pending code and mails it again. On delivery
// failure the previous code is put back unless the code has changed since.
func (s *AuthService) ResendCode(ctx context.Context, email string) (VerifyResult, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		return VerifyResult{}, err
	}
	if user.IsVerified {
		return VerifyResult{AlreadyVerified: true}, nil
	}

	code, err := security.GenerateVerificationCode()
	if err != nil {
		return VerifyResult{}, err
	}

	if err := s.users.UpdateVerificationCode(ctx, user.ID, code); err != nil {
		if errors.Is(err, repository.ErrVerificationConflict) {
			return VerifyResult{AlreadyVerified: true}, nil
		}
		return VerifyResult{}, err
	}

	if err := s.notifier.SendVerification(ctx, user.Email, code); err != nil {
		// A concurrent verify or resend may have moved on; leave its code alone.
		restoreErr := s.users.RestoreVerificationCode(context.WithoutCancel(ctx), user.ID, code, user.VerificationCode)
		if restoreErr != nil && !errors.Is(restoreErr, repository.ErrVerificationConflict) {
			s.log.Error().Err(restoreErr).Int64("user_id", user.ID).Msg("restore of previous verification code failed")
		}
		return VerifyResult{}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.log.Info().Int64("user_id", user.ID).Msg("verification code resent")
	return VerifyResult{}, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (security.Token, error) {
	claims, err := s.authenticate(ctx, refreshToken, security.TokenTypeRefresh)
	if err != nil {
		return security.Token{}, err
	}
	return s.tokens.IssueAccess(claims.Email)
}

func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (models.User, error) {
	claims, err := s.authenticate(ctx, accessToken, security.TokenTypeAccess)
	if err != nil {
		return models.User{}, err
	}
	return s.findUser(ctx, claims.Email)
}

// Logout revokes whichever of the two tokens still verify. Revocation is
// best effort: failures are logged and the caller clears cookies anyway.
func (s *AuthService) Logout(ctx context.Context, accessToken string, refreshToken string) {
	if s.revocations == nil {
		return
	}

	for _, t := range []struct {
		raw  string
		kind security.TokenType
	}{
		{accessToken, security.TokenTypeAccess},
		{refreshToken, security.TokenTypeRefresh},
	} {
		if t.raw == "" {
			continue
		}
		claims, err := s.tokens.Verify(t.raw, t.kind)
		if err != nil {
			continue
		}
		if err := s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			s.log.Warn().Err(err).Str("kind", string(t.kind)).Msg("token revocation failed")
		}
	}
}

func (s *AuthService) FetchByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, email)
}

func (s *AuthService) FetchByID(ctx context.Context, id int64) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) authenticate(ctx context.Context, raw string, kind security.TokenType) (*security.Claims, error) {
	if raw == "" {
		return nil, tokenError(kind, ErrMissingToken)
	}

	claims, err := s.tokens.Verify(raw, kind)
	if err != nil {
		return nil, tokenError(kind, err)
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, tokenError(kind, ErrTokenInvalid)
		}
	}
	return claims, nil
}

func (s *AuthService) findUser(ctx context.Context, email string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
