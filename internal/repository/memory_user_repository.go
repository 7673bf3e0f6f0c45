package repository

import (
	"context"
	"sync"
	"time"

	"jobvision/api/internal/models"
)

// MemoryUserRepository keeps users in process memory with the same
// uniqueness and verification rules as the users table. It backs local
// runs without Postgres and the package tests.
type MemoryUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]models.User
	byEmail map[string]int64
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, ok := r.byEmail[email]; ok {
		return models.User{}, ErrDuplicateEmail
	}

	r.nextID++
	user.ID = r.nextID
	user.Email = email
	user.IsVerified = false
	user.VerifiedAt = nil
	user.CreatedAt = r.now()

	r.byID[user.ID] = user
	r.byEmail[email] = user.ID
	return user, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[NormalizeEmail(email)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) MarkVerified(_ context.Context, id int64, code string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok || user.IsVerified || user.VerificationCode != code {
		return models.User{}, ErrVerificationConflict
	}

	now := r.now()
	user.IsVerified = true
	user.VerifiedAt = &now
	user.VerificationCode = ""
	r.byID[id] = user
	return user, nil
}

func (r *MemoryUserRepository) UpdateVerificationCode(_ context.Context, id int64, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok || user.IsVerified {
		return ErrVerificationConflict
	}
	user.VerificationCode = code
	r.byID[id] = user
	return nil
}

func (r *MemoryUserRepository) RestoreVerificationCode(_ context.Context, id int64, expected string, previous string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok || user.IsVerified || user.VerificationCode != expected {
		return ErrVerificationConflict
	}
	user.VerificationCode = previous
	r.byID[id] = user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byEmail, user.Email)
	return nil
}

func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
