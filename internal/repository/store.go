package repository

import (
	"log/slog"

	"atm-ledger/internal/domain"
)

// Store owns the in-memory repositories shared by the services.
type Store struct {
	accounts     domain.AccountRepository
	users        domain.UserRepository
	transactions domain.TransactionRepository
}

// NewStore creates a Store with empty repositories.
func NewStore(logger *slog.Logger) *Store {
	return NewStoreWith(
		NewAccountRepository(logger),
		NewUserRepository(logger),
		NewTransactionRepository(logger),
	)
}

// NewStoreWith creates a Store over the given repositories.
func NewStoreWith(accounts domain.AccountRepository, users domain.UserRepository, transactions domain.TransactionRepository) *Store {
	return &Store{
		accounts:     accounts,
		users:        users,
		transactions: transactions,
	}
}

func (s *Store) Account() domain.AccountRepository {
	return s.accounts
}

func (s *Store) User() domain.UserRepository {
	return s.users
}

func (s *Store) Transaction() domain.TransactionRepository {
	return s.transactions
}
