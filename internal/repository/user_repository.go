package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"jobvision/api/internal/models"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrVerificationConflict is returned when a conditional verification
	// update matched no pending row.
	ErrVerificationConflict = errors.New("verification state changed")
)

const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, password_hash, is_verified, verification_code, created_at, verified_at`

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (
			email, name, password_hash, is_verified, verification_code, created_at
		) VALUES (
			$1, $2, $3, FALSE, $4, NOW()
		)
		RETURNING ` + userColumns

	row := r.db.QueryRow(ctx, query,
		NormalizeEmail(user.Email),
		user.Name,
		user.PasswordHash,
		user.VerificationCode,
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// MarkVerified moves a pending user to verified if code still matches. The
// single conditional UPDATE keeps verified_at write-once.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64, code string) (models.User, error) {
	query := `
		UPDATE users
		SET is_verified = TRUE,
		    verified_at = NOW(),
		    verification_code = NULL
		WHERE id = $1 AND is_verified = FALSE AND verification_code = $2
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrVerificationConflict
		}
		return models.User{}, fmt.Errorf("mark verified: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UpdateVerificationCode(ctx context.Context, id int64, code string) error {
	const query = `
		UPDATE users SET verification_code = $2 WHERE id = $1 AND is_verified = FALSE
	`
	cmd, err := r.db.Exec(ctx, query, id, code)
	if err != nil {
		return fmt.Errorf("update verification code: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrVerificationConflict
	}
	return nil
}

// RestoreVerificationCode puts previous back only while the pending code is
// still expected, so a newer rotation is never overwritten.
func (r *UserRepository) RestoreVerificationCode(ctx context.Context, id int64, expected string, previous string) error {
	const query = `
		UPDATE users SET verification_code = $3
		WHERE id = $1 AND is_verified = FALSE AND verification_code = $2
	`
	cmd, err := r.db.Exec(ctx, query, id, expected, previous)
	if err != nil {
		return fmt.Errorf("restore verification code: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrVerificationConflict
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user models.User
		code pgtype.Text
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.IsVerified,
		&code,
		&user.CreatedAt,
		&user.VerifiedAt,
	); err != nil {
		return models.User{}, err
	}
	user.VerificationCode = code.String
	return user, nil
}
