package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreditRecord represents a club_credit_records row: one fiado debt.
//
// State machine: Unpaid (remaining > 0) -> Paid (remaining == 0, PaidAt
// stamped). Paid is terminal except through the audit-log undo path.
// BuyInID is nullable: a record recreated by an undo has no live buy-in.
type CreditRecord struct {
	ID        uuid.UUID  `json:"id"`
	PlayerID  uuid.UUID  `json:"player_id"`
	BuyInID   *uuid.UUID `json:"buy_in_id,omitempty"`
	Amount    Cents      `json:"amount"`
	IsPaid    bool       `json:"is_paid"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Remaining returns the unpaid portion given the sum of receipts already
// applied against the record.
func (r *CreditRecord) Remaining(paid Cents) Cents {
	if r.IsPaid {
		return 0
	}
	return r.Amount - paid
}

// PaymentReceipt is an append-only log entry for one (possibly partial)
// payment applied against a credit record. Multiple receipts may target the
// same record; the record becomes paid only when cumulative receipts cover
// its amount.
type PaymentReceipt struct {
	ID             uuid.UUID     `json:"id"`
	ReceiptNumber  string        `json:"receipt_number"`
	CreditRecordID uuid.UUID     `json:"credit_record_id"`
	PlayerID       uuid.UUID     `json:"player_id"`
	Amount         Cents         `json:"amount"`
	Method         PaymentMethod `json:"method"`
	SessionID      *uuid.UUID    `json:"session_id,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}
