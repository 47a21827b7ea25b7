package repository

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
)

// keyScope is an idempotency key as claimed by one source account.
type keyScope struct {
	source uuid.UUID
	key    uuid.UUID
}

type transactionRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Transaction
	byKey  map[keyScope]uuid.UUID
	logger *slog.Logger
}

func NewTransactionRepository(logger *slog.Logger) domain.TransactionRepository {
	return &transactionRepository{
		byID:   make(map[uuid.UUID]*domain.Transaction),
		byKey:  make(map[keyScope]uuid.UUID),
		logger: logger,
	}
}

func (r *transactionRepository) CreateTransaction(tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.IdempotencyKey != nil {
		if _, claimed := r.byKey[keyScope{tx.SourceAccountID, *tx.IdempotencyKey}]; claimed {
			r.logger.Warn("Duplicate idempotency key",
				"source_account_id", tx.SourceAccountID,
				"idempotency_key", *tx.IdempotencyKey)
			return errors.ErrDuplicateTransaction
		}
	}

	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	stored := *tx
	r.byID[tx.ID] = &stored
	if tx.IdempotencyKey != nil {
		r.byKey[keyScope{tx.SourceAccountID, *tx.IdempotencyKey}] = tx.ID
	}

	r.logger.Info("Transaction created successfully", "transaction_id", tx.ID)
	return nil
}

func (r *transactionRepository) GetTransactionByID(id uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *transactionRepository) GetTransactionByIdempotencyKey(sourceAccountID, key uuid.UUID) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byKey[keyScope{sourceAccountID, key}]
	if !ok {
		return nil, nil
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *transactionRepository) UpdateTransactionStatus(id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, ok := r.byID[id]
	if !ok {
		r.logger.Error("Failed to update transaction status", "transaction_id", id, "status", status)
		return errors.ErrTransactionNotFound
	}

	tx.Status = status
	tx.UpdatedAt = time.Now()

	// A failed attempt must not block a retry under the same key.
	if (status == domain.StatusFailed || status == domain.StatusReversed) && tx.IdempotencyKey != nil {
		delete(r.byKey, keyScope{tx.SourceAccountID, *tx.IdempotencyKey})
	}

	r.logger.Info("Transaction status updated", "transaction_id", id, "status", status)
	return nil
}
