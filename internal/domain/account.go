package domain

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"atm-ledger/internal/errors"
)

// Account holds a balance and the ordered log of entries that produced it.
// The balance and log change only through the account's own methods, each of
// which performs its check and mutation under the account mutex.
type Account struct {
	mu sync.Mutex

	id         uuid.UUID
	opening    decimal.Decimal
	balance    decimal.Decimal
	entries    []LedgerEntry
	entryLimit int
	now        func() time.Time
	createdAt  time.Time
}

type AccountOption func(*Account)

// WithEntryLimit caps the number of entries the account log may hold.
// Zero means unlimited.
func WithEntryLimit(n int) AccountOption {
	return func(a *Account) {
		if n > 0 {
			a.entryLimit = n
		}
	}
}

// WithClock overrides the source of entry timestamps.
func WithClock(now func() time.Time) AccountOption {
	return func(a *Account) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAccount creates an account with the given opening balance and an empty log.
func NewAccount(id uuid.UUID, openingBalance decimal.Decimal, opts ...AccountOption) (*Account, error) {
	if id == uuid.Nil {
		return nil, errors.ErrInvalidAccountID
	}
	if openingBalance.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}

	a := &Account{
		id:      id,
		opening: openingBalance,
		balance: openingBalance,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.createdAt = a.now()
	return a, nil
}

func (a *Account) ID() uuid.UUID {
	return a.id
}

func (a *Account) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Account) OpeningBalance() decimal.Decimal {
	return a.opening
}

func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit credits amount and returns the new balance.
func (a *Account) Deposit(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.depositLocked(amount, 1); err != nil {
		return decimal.Zero, err
	}
	return a.balance, nil
}

// Withdraw debits amount and returns the new balance. It fails without
// mutating when amount exceeds the balance.
func (a *Account) Withdraw(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.withdrawLocked(amount, 1); err != nil {
		return decimal.Zero, err
	}
	return a.balance, nil
}

// Entries returns a copy of the log in insertion order.
func (a *Account) Entries() []LedgerEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

// History returns a lazy sequence over the log. Every range over it reads a
// consistent copy taken when that iteration starts, so it can be restarted.
func (a *Account) History() iter.Seq[LedgerEntry] {
	return func(yield func(LedgerEntry) bool) {
		for _, e := range a.Entries() {
			if !yield(e) {
				return
			}
		}
	}
}

// The *Locked helpers require a.mu to be held by the caller. room is the
// number of log slots the calling operation will consume in total.

func (a *Account) ensureRoomLocked(room int) error {
	if a.entryLimit > 0 && len(a.entries)+room > a.entryLimit {
		return errors.ErrLedgerFull.WithDetails(
			fmt.Sprintf("account %s holds %d of %d entries", a.id, len(a.entries), a.entryLimit))
	}
	return nil
}

func (a *Account) depositLocked(amount decimal.Decimal, room int) error {
	if err := a.ensureRoomLocked(room); err != nil {
		return err
	}
	a.balance = a.balance.Add(amount)
	a.appendLocked(EntryDeposit, amount, uuid.NullUUID{})
	return nil
}

func (a *Account) withdrawLocked(amount decimal.Decimal, room int) error {
	if amount.GreaterThan(a.balance) {
		return errors.ErrInsufficientFunds.WithDetails(
			fmt.Sprintf("balance %s, requested %s", a.balance.StringFixed(2), amount.StringFixed(2)))
	}
	if err := a.ensureRoomLocked(room); err != nil {
		return err
	}
	a.balance = a.balance.Sub(amount)
	a.appendLocked(EntryWithdrawal, amount, uuid.NullUUID{})
	return nil
}

// refundLocked credits amount back regardless of the entry limit.
func (a *Account) refundLocked(amount decimal.Decimal) {
	a.balance = a.balance.Add(amount)
	a.appendLocked(EntryDeposit, amount, uuid.NullUUID{})
}

func (a *Account) appendLocked(kind EntryKind, amount decimal.Decimal, counterparty uuid.NullUUID) {
	a.entries = append(a.entries, LedgerEntry{
		Kind:         kind,
		Amount:       amount,
		Timestamp:    a.now(),
		Counterparty: counterparty,
	})
}
