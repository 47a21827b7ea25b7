package service

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
	"atm-ledger/internal/repository"
)

type AccountService struct {
	store  *repository.Store
	logger *slog.Logger
}

func NewAccountService(store *repository.Store, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:  store,
		logger: logger,
	}
}

func (s *AccountService) GetAccount(accountID uuid.UUID) (*domain.Account, error) {
	s.logger.Info("Getting account", "account_id", accountID)

	if accountID == uuid.Nil {
		return nil, errors.ErrInvalidAccountID
	}

	return s.store.Account().GetAccount(accountID)
}

func (s *AccountService) Deposit(accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	s.logger.Info("Processing deposit", "account_id", accountID, "amount", amount)

	account, err := s.store.Account().GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := account.Deposit(amount)
	if err != nil {
		s.logger.Warn("Deposit rejected", "account_id", accountID, "amount", amount, "error", err)
		return decimal.Zero, err
	}

	s.logger.Info("Deposit completed", "account_id", accountID, "new_balance", balance)
	return balance, nil
}

func (s *AccountService) Withdraw(accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	s.logger.Info("Processing withdrawal", "account_id", accountID, "amount", amount)

	account, err := s.store.Account().GetAccount(accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := account.Withdraw(amount)
	if err != nil {
		s.logger.Warn("Withdrawal rejected", "account_id", accountID, "amount", amount, "error", err)
		return decimal.Zero, err
	}

	s.logger.Info("Withdrawal completed", "account_id", accountID, "new_balance", balance)
	return balance, nil
}

func (s *AccountService) History(accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	account, err := s.store.Account().GetAccount(accountID)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LedgerEntry, 0)
	for e := range account.History() {
		entries = append(entries, e)
	}
	return entries, nil
}
