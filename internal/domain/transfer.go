package domain

import (
	"bytes"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/errors"
)

// transferRoom is the number of log slots a transfer uses on each account:
// one generic entry plus one transfer-tagged entry.
const transferRoom = 2

// Transfer moves amount from source to destination as one operation.
//
// Both accounts stay locked for the whole protocol. If the withdrawal fails
// nothing is recorded on either side. If the deposit fails after the
// withdrawal succeeded, source is credited back and ErrTransferFailed is
// returned wrapping the cause; both balances then equal their starting values.
func Transfer(source, destination *Account, amount decimal.Decimal) error {
	if source == nil || destination == nil {
		return errors.ErrAccountNotFound
	}
	if source.id == destination.id {
		return errors.ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}

	unlock := lockPair(source, destination)
	defer unlock()

	if err := source.withdrawLocked(amount, transferRoom); err != nil {
		return err
	}
	if err := destination.depositLocked(amount, transferRoom); err != nil {
		source.refundLocked(amount)
		return errors.ErrTransferFailed.Wrap(err)
	}

	source.appendLocked(EntryTransferOut, amount, uuid.NullUUID{UUID: destination.id, Valid: true})
	destination.appendLocked(EntryTransferIn, amount, uuid.NullUUID{UUID: source.id, Valid: true})
	return nil
}

// lockPair locks both accounts in ID order and returns the matching unlock.
func lockPair(a, b *Account) func() {
	first, second := a, b
	if bytes.Compare(a.id[:], b.id[:]) > 0 {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
