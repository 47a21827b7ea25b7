package service

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/config"
	"atm-ledger/internal/domain"
	"atm-ledger/internal/errors"
	"atm-ledger/internal/repository"
)

// dummyCredential is compared against when the user is unknown so that both
// failure paths do the same work.
const dummyCredential = "\x00directory-unknown-user\x00"

// Directory registers users, each with one account, and authenticates them.
//
// Credentials are kept as given and compared in constant time; they are not
// hashed at rest.
type Directory struct {
	store  *repository.Store
	limits config.LedgerConfig
	logger *slog.Logger
}

func NewDirectory(store *repository.Store, limits config.LedgerConfig, logger *slog.Logger) *Directory {
	return &Directory{
		store:  store,
		limits: limits,
		logger: logger,
	}
}

// Register creates a user and its account and returns the account ID.
func (d *Directory) Register(userID, credential string, initialBalance decimal.Decimal) (uuid.UUID, error) {
	d.logger.Info("Registering user", "user_id", userID, "initial_balance", initialBalance)

	if strings.TrimSpace(userID) == "" {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "user id is required")
	}
	if d.store.User().Exists(userID) {
		d.logger.Warn("User already registered", "user_id", userID)
		return uuid.Nil, errors.ErrDuplicateUser
	}
	if credential == "" {
		return uuid.Nil, errors.NewAppError(errors.InvalidInput, "credential is required")
	}
	if initialBalance.IsNegative() {
		return uuid.Nil, errors.ErrInvalidAmount.WithDetails("initial balance must not be negative")
	}
	if limit := d.limits.MaxInitialBalance; !limit.IsZero() && initialBalance.GreaterThan(limit) {
		return uuid.Nil, errors.NewAppErrorf(errors.InvalidAmount, "initial balance exceeds maximum of %s", limit.StringFixed(2))
	}

	account, err := domain.NewAccount(uuid.New(), initialBalance, domain.WithEntryLimit(d.limits.MaxEntries))
	if err != nil {
		return uuid.Nil, err
	}

	// The account is indexed before the user becomes visible, so an
	// authenticated user always resolves to a stored account.
	if err := d.store.Account().CreateAccount(account); err != nil {
		d.logger.Error("Failed to index account", "user_id", userID, "account_id", account.ID(), "error", err)
		return uuid.Nil, err
	}
	if err := d.store.User().CreateUser(domain.NewUser(userID, credential, account)); err != nil {
		if delErr := d.store.Account().DeleteAccount(account.ID()); delErr != nil {
			d.logger.Error("Failed to remove orphaned account", "account_id", account.ID(), "error", delErr)
		}
		return uuid.Nil, err
	}

	d.logger.Info("User registered successfully", "user_id", userID, "account_id", account.ID())
	return account.ID(), nil
}

// Authenticate returns the user on an exact credential match. Unknown users
// and wrong credentials fail identically.
func (d *Directory) Authenticate(userID, credential string) (*domain.User, error) {
	user, err := d.store.User().GetUser(userID)
	if err != nil {
		domain.CredentialsEqual(dummyCredential, credential)
		d.logger.Warn("Authentication failed", "user_id", userID)
		return nil, errors.ErrAuthenticationFailed
	}
	if !user.CredentialMatches(credential) {
		d.logger.Warn("Authentication failed", "user_id", userID)
		return nil, errors.ErrAuthenticationFailed
	}
	return user, nil
}

func (d *Directory) Exists(userID string) bool {
	return d.store.User().Exists(userID)
}

// Lookup resolves a user without authenticating, e.g. a transfer recipient.
func (d *Directory) Lookup(userID string) (*domain.User, error) {
	user, err := d.store.User().GetUser(userID)
	if err != nil {
		return nil, errors.ErrAccountNotFound.WithDetails("no account for user " + userID)
	}
	return user, nil
}
