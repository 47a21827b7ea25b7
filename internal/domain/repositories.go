package domain

import "github.com/google/uuid"

type AccountRepository interface {
	CreateAccount(account *Account) error
	GetAccount(id uuid.UUID) (*Account, error)
	DeleteAccount(id uuid.UUID) error
}

type UserRepository interface {
	// CreateUser stores user unless its ID is taken; the check and the
	// insert are one step.
	CreateUser(user *User) error
	GetUser(id string) (*User, error)
	Exists(id string) bool
}

type TransactionRepository interface {
	// CreateTransaction fails with ErrDuplicateTransaction when the source
	// account has already claimed the idempotency key.
	CreateTransaction(tx *Transaction) error
	GetTransactionByID(id uuid.UUID) (*Transaction, error)
	// GetTransactionByIdempotencyKey looks the key up among transfers sent
	// from sourceAccountID and returns nil, nil when it is unknown there.
	GetTransactionByIdempotencyKey(sourceAccountID, key uuid.UUID) (*Transaction, error)
	// UpdateTransactionStatus releases the idempotency key of transactions
	// that end in StatusFailed or StatusReversed.
	UpdateTransactionStatus(id uuid.UUID, status TransactionStatus) error
}
