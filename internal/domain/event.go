package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventBuyInRecorded   EventType = "club.ledger.buyin.recorded"
	EventCashOutRecorded EventType = "club.ledger.cashout.recorded"
	EventCreditGranted   EventType = "club.credit.granted"
	EventPaymentReceived EventType = "club.credit.payment.received"
	EventTipRecorded     EventType = "club.dealer.tip.recorded"
	EventPayoutRecorded  EventType = "club.dealer.payout.recorded"
	EventRakeRecorded    EventType = "club.ledger.rake.recorded"
	EventRecordCancelled EventType = "club.ledger.record.cancelled"
	EventRecordRestored  EventType = "club.ledger.record.restored"
	EventSessionOpened   EventType = "club.session.opened"
	EventSessionClosed   EventType = "club.session.closed"
	EventSessionReopened EventType = "club.session.reopened"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateLedger  AggregateType = "ledger"
	AggregateCredit  AggregateType = "credit"
	AggregateDealer  AggregateType = "dealer"
	AggregateSession AggregateType = "session"
)

// OutboxDraft is the payload written to the event_outbox table in the same
// transaction as the ledger mutation it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is a stored outbox event plus its sequence id, as read back by
// the poller.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}
