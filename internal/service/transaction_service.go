package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
	"atm-ledger/internal/events"
	"atm-ledger/internal/repository"
)

type TransactionService struct {
	store     *repository.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewTransactionService(store *repository.Store, publisher events.Publisher, logger *slog.Logger) *TransactionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type TransferRequest struct {
	SourceAccountID      uuid.UUID
	DestinationAccountID uuid.UUID
	Amount               decimal.Decimal
	IdempotencyKey       *uuid.UUID
}

// Transfer moves funds between two accounts and returns the receipt.
//
// Idempotency keys are scoped to the source account. Repeating a completed
// request with the same key returns the stored receipt without moving funds
// again; reusing the key for a different destination or amount fails with
// ErrDuplicateTransaction.
func (s *TransactionService) Transfer(ctx context.Context, req *TransferRequest) (*domain.Transaction, error) {
	s.logger.Info("Processing transfer",
		"source_account_id", req.SourceAccountID,
		"destination_account_id", req.DestinationAccountID,
		"amount", req.Amount,
		"idempotency_key", req.IdempotencyKey)

	if req.IdempotencyKey != nil {
		existingTx, err := s.store.Transaction().GetTransactionByIdempotencyKey(req.SourceAccountID, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existingTx != nil {
			return s.replay(existingTx, req)
		}
	}

	if err := s.validateTransfer(req.SourceAccountID, req.DestinationAccountID, req.Amount); err != nil {
		return nil, err
	}

	source, err := s.store.Account().GetAccount(req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	destination, err := s.store.Account().GetAccount(req.DestinationAccountID)
	if err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		ID:                   uuid.New(),
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		IdempotencyKey:       req.IdempotencyKey,
		Status:               domain.StatusPending,
	}

	// Claiming the key and recording the attempt is one step; a concurrent
	// duplicate loses here.
	if err := s.store.Transaction().CreateTransaction(transaction); err != nil {
		if req.IdempotencyKey != nil {
			if existingTx, lookupErr := s.store.Transaction().GetTransactionByIdempotencyKey(req.SourceAccountID, *req.IdempotencyKey); lookupErr == nil && existingTx != nil {
				return s.replay(existingTx, req)
			}
		}
		return nil, err
	}

	if err := domain.Transfer(source, destination, req.Amount); err != nil {
		status := domain.StatusFailed
		if errors.Is(err, errors.ErrTransferFailed) {
			status = domain.StatusReversed
		}
		s.logger.Error("Transfer failed", "transaction_id", transaction.ID, "status", status, "error", err)
		if updateErr := s.store.Transaction().UpdateTransactionStatus(transaction.ID, status); updateErr != nil {
			s.logger.Error("Failed to record failed transaction", "transaction_id", transaction.ID, "error", updateErr)
		}
		return nil, err
	}

	if err := s.store.Transaction().UpdateTransactionStatus(transaction.ID, domain.StatusCompleted); err != nil {
		s.logger.Error("Failed to mark transaction completed", "transaction_id", transaction.ID, "error", err)
		return nil, err
	}

	completed, err := s.store.Transaction().GetTransactionByID(transaction.ID)
	if err != nil {
		return nil, err
	}

	s.publishCompleted(ctx, completed)

	s.logger.Info("Transfer completed successfully", "transaction_id", completed.ID)
	return completed, nil
}

func (s *TransactionService) GetTransaction(id uuid.UUID) (*domain.Transaction, error) {
	return s.store.Transaction().GetTransactionByID(id)
}

func (s *TransactionService) replay(existingTx *domain.Transaction, req *TransferRequest) (*domain.Transaction, error) {
	if existingTx.DestinationAccountID != req.DestinationAccountID || !existingTx.Amount.Equal(req.Amount) {
		s.logger.Warn("Idempotency key reused for a different transfer",
			"idempotency_key", existingTx.IdempotencyKey,
			"transaction_id", existingTx.ID)
		return nil, errors.ErrDuplicateTransaction.WithDetails("idempotency key was used for a different transfer")
	}

	if existingTx.Status != domain.StatusCompleted {
		s.logger.Warn("Transfer with same idempotency key still in progress",
			"idempotency_key", existingTx.IdempotencyKey,
			"transaction_id", existingTx.ID)
		return nil, errors.ErrDuplicateTransaction
	}

	s.logger.Info("Returning existing transaction for idempotency key",
		"idempotency_key", existingTx.IdempotencyKey,
		"transaction_id", existingTx.ID)
	return existingTx, nil
}

// publishCompleted runs after the accounts are unlocked. Funds have already
// moved, so a publish failure is logged and not returned.
func (s *TransactionService) publishCompleted(ctx context.Context, tx *domain.Transaction) {
	event := events.TransferCompleted{
		TransactionID:        tx.ID.String(),
		SourceAccountID:      tx.SourceAccountID.String(),
		DestinationAccountID: tx.DestinationAccountID.String(),
		Amount:               tx.Amount,
		OccurredAt:           tx.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, tx.SourceAccountID.String(), event); err != nil {
		s.logger.Error("Failed to publish transfer event", "transaction_id", tx.ID, "error", err)
	}
}

func (s *TransactionService) validateTransfer(sourceID, destID uuid.UUID, amount decimal.Decimal) error {
	if sourceID == uuid.Nil || destID == uuid.Nil {
		return errors.ErrInvalidAccountID
	}

	if sourceID == destID {
		return errors.ErrSelfTransfer
	}

	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	return nil
}
