package repository

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
	logger   *slog.Logger
}

func NewAccountRepository(logger *slog.Logger) domain.AccountRepository {
	return &accountRepository{
		accounts: make(map[uuid.UUID]*domain.Account),
		logger:   logger,
	}
}

func (r *accountRepository) CreateAccount(account *domain.Account) error {
	if account == nil {
		return errors.NewAppError(errors.InvalidInput, "account is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID()]; exists {
		r.logger.Warn("Duplicate account creation attempt", "account_id", account.ID())
		return errors.NewAppError(errors.InternalError, "account already exists").
			WithDetails(account.ID().String())
	}
	r.accounts[account.ID()] = account

	r.logger.Debug("Account stored", "account_id", account.ID())
	return nil
}

func (r *accountRepository) GetAccount(id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	account, ok := r.accounts[id]
	r.mu.RUnlock()

	if !ok {
		r.logger.Warn("Account not found", "account_id", id)
		return nil, errors.ErrAccountNotFound
	}
	return account, nil
}

func (r *accountRepository) DeleteAccount(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return errors.ErrAccountNotFound
	}
	delete(r.accounts, id)

	r.logger.Debug("Account removed", "account_id", id)
	return nil
}
