package repository

import (
	"log/slog"
	"sync"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
)

type userRepository struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	logger *slog.Logger
}

func NewUserRepository(logger *slog.Logger) domain.UserRepository {
	return &userRepository{
		users:  make(map[string]*domain.User),
		logger: logger,
	}
}

func (r *userRepository) CreateUser(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.ID()]; exists {
		r.logger.Warn("Duplicate user registration attempt", "user_id", user.ID())
		return errors.ErrDuplicateUser
	}
	r.users[user.ID()] = user

	r.logger.Debug("User stored", "user_id", user.ID())
	return nil
}

func (r *userRepository) GetUser(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	return user, nil
}

func (r *userRepository) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[id]
	return ok
}
