package events

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is published once a transfer has moved funds.
type TransferCompleted struct {
	TransactionID        string          `json:"transaction_id"`
	SourceAccountID      string          `json:"source_account_id"`
	DestinationAccountID string          `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"`
	OccurredAt           time.Time       `json:"occurred_at"`
}

// Publisher delivers domain events to an external sink.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
func (NopPublisher) Close() error                               { return nil }

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []any
	Err    error // returned from Publish when set
}

func (p *RecordingPublisher) Publish(_ context.Context, _ string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (p *RecordingPublisher) Events() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]any, len(p.events))
	copy(out, p.events)
	return out
}
