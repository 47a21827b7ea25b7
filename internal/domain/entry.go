package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryDeposit     EntryKind = "deposit"
	EntryWithdrawal  EntryKind = "withdrawal"
	EntryTransferOut EntryKind = "transfer_out"
	EntryTransferIn  EntryKind = "transfer_in"
)

// LedgerEntry is the immutable record of one completed balance-affecting
// operation. Entries are only ever appended to an account's log.
type LedgerEntry struct {
	Kind         EntryKind       `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Timestamp    time.Time       `json:"timestamp"`
	Counterparty uuid.NullUUID   `json:"counterparty"` // set for transfer kinds only
}

// IsTransfer reports whether the entry is a transfer-tagged audit record.
func (e LedgerEntry) IsTransfer() bool {
	return e.Kind == EntryTransferOut || e.Kind == EntryTransferIn
}
