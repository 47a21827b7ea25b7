package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusReversed  TransactionStatus = "reversed"
)

// Transaction is the receipt of one transfer request.
type Transaction struct {
	ID                   uuid.UUID         `json:"id"`
	SourceAccountID      uuid.UUID         `json:"source_account_id"`
	DestinationAccountID uuid.UUID         `json:"destination_account_id"`
	Amount               decimal.Decimal   `json:"amount"`
	IdempotencyKey       *uuid.UUID        `json:"idempotency_key,omitempty"`
	Status               TransactionStatus `json:"status"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Involves reports whether accountID is a party to the transaction.
func (t *Transaction) Involves(accountID uuid.UUID) bool {
	return t.SourceAccountID == accountID || t.DestinationAccountID == accountID
}
