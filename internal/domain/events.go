package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newDraft(agg AggregateType, aggID string, evt EventType, payload interface{}) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: agg,
		AggregateID:   aggID,
		EventType:     evt,
		PartitionKey:  aggID,
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewBuyInRecordedEvent announces a committed buy-in. Partitioned by player
// so one terminal's receipt printer sees a player's movements in order.
func NewBuyInRecordedEvent(b *BuyIn) OutboxDraft {
	return newDraft(AggregateLedger, b.PlayerID.String(), EventBuyInRecorded, b)
}

// NewCashOutRecordedEvent announces a committed cash-out.
func NewCashOutRecordedEvent(c *CashOut) OutboxDraft {
	return newDraft(AggregateLedger, c.PlayerID.String(), EventCashOutRecorded, c)
}

// NewCreditGrantedEvent announces a new fiado record.
func NewCreditGrantedEvent(r *CreditRecord) OutboxDraft {
	return newDraft(AggregateCredit, r.PlayerID.String(), EventCreditGranted, r)
}

// NewPaymentReceivedEvent announces a receipt against a credit record.
func NewPaymentReceivedEvent(rcpt *PaymentReceipt) OutboxDraft {
	return newDraft(AggregateCredit, rcpt.PlayerID.String(), EventPaymentReceived, rcpt)
}

// NewTipRecordedEvent announces a dealer tip.
func NewTipRecordedEvent(t *DealerTip) OutboxDraft {
	return newDraft(AggregateDealer, t.DealerID.String(), EventTipRecorded, t)
}

// NewPayoutRecordedEvent announces a dealer payout.
func NewPayoutRecordedEvent(p *DealerPayout) OutboxDraft {
	return newDraft(AggregateDealer, p.DealerID.String(), EventPayoutRecorded, p)
}

// NewRakeRecordedEvent announces a rake entry.
func NewRakeRecordedEvent(r *RakeEntry) OutboxDraft {
	return newDraft(AggregateLedger, r.TableID.String(), EventRakeRecorded, r)
}

// NewRecordCancelledEvent announces a reversal, carrying the audit entry so
// downstream consumers see the full snapshot of what was removed.
func NewRecordCancelledEvent(entry *AuditEntry, aggregateID string) OutboxDraft {
	return newDraft(AggregateLedger, aggregateID, EventRecordCancelled, entry)
}

// NewRecordRestoredEvent announces an undo re-insertion.
func NewRecordRestoredEvent(action AuditAction, aggregateID string) OutboxDraft {
	return newDraft(AggregateLedger, aggregateID, EventRecordRestored, map[string]string{
		"action": string(action),
	})
}

// NewSessionEvent announces a session lifecycle change.
func NewSessionEvent(evt EventType, s *CashSession) OutboxDraft {
	return newDraft(AggregateSession, s.ID.String(), evt, s)
}
