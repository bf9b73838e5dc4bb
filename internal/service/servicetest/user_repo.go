// Package servicetest provides an in-memory UserRepository for tests. It
// mirrors the error conventions of the Postgres implementation: absent rows
// surface as pgx.ErrNoRows and duplicate identities as repository.ErrDuplicate.
package servicetest

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// UserRepo is an in-memory repository.UserRepository.
type UserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	nextID  int64
	failErr error
}

// NewUserRepo returns an empty repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{users: map[string]*domain.User{}, nextID: 1}
}

// FailWith makes every subsequent call return err, simulating an
// unavailable store. Pass nil to restore normal behavior.
func (f *UserRepo) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

// Seed inserts a user record directly, bypassing hashing.
func (f *UserRepo) Seed(user *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	}
	f.users[user.Username] = user
}

func (f *UserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	user := &domain.User{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.nextID++
	f.users[username] = user
	return user, nil
}

func (f *UserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *UserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return nil, f.failErr
	}
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}
