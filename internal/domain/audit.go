package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates the destructive actions recorded in the audit log.
type AuditAction string

const (
	ActionBuyInCancelled   AuditAction = "buy_in_cancelled"
	ActionCashOutCancelled AuditAction = "cash_out_cancelled"
	ActionTipCancelled     AuditAction = "dealer_tip_cancelled"
	ActionRakeCancelled    AuditAction = "rake_entry_cancelled"
	ActionSessionDeleted   AuditAction = "session_deleted"
	ActionTableDeleted     AuditAction = "table_deleted"
)

// UndoableActions is the subset of actions that can be reversed by
// re-inserting the snapshotted record. Undo consumes the entry.
var UndoableActions = map[AuditAction]bool{
	ActionBuyInCancelled:   true,
	ActionCashOutCancelled: true,
	ActionTipCancelled:     true,
	ActionRakeCancelled:    true,
}

// AuditEntry is an append-only record of a destructive action, carrying a
// full metadata snapshot of the deleted row.
type AuditEntry struct {
	ID        uuid.UUID       `json:"id"`
	Action    AuditAction     `json:"action"`
	Operator  string          `json:"operator,omitempty"`
	Snapshot  json.RawMessage `json:"snapshot"`
	CreatedAt time.Time       `json:"created_at"`
}

// BuyInSnapshot is the audit payload for a cancelled buy-in.
type BuyInSnapshot struct {
	TableID   uuid.UUID     `json:"table_id"`
	PlayerID  uuid.UUID     `json:"player_id"`
	SessionID *uuid.UUID    `json:"session_id,omitempty"`
	Amount    Cents         `json:"amount"`
	Method    PaymentMethod `json:"method"`
	IsBonus   bool          `json:"is_bonus"`
	CreatedAt time.Time     `json:"created_at"`
}

// Validate returns the name of the first missing required field, or "".
// Old-format entries predate the full snapshot and cannot be undone.
func (s BuyInSnapshot) Validate() string {
	switch {
	case s.TableID == uuid.Nil:
		return "table_id"
	case s.PlayerID == uuid.Nil:
		return "player_id"
	case s.Amount == 0:
		return "amount"
	case s.Method == "":
		return "method"
	}
	return ""
}

// CashOutSnapshot is the audit payload for a cancelled cash-out.
type CashOutSnapshot struct {
	TableID    uuid.UUID     `json:"table_id"`
	PlayerID   uuid.UUID     `json:"player_id"`
	SessionID  *uuid.UUID    `json:"session_id,omitempty"`
	ChipValue  Cents         `json:"chip_value"`
	TotalBuyIn Cents         `json:"total_buy_in"`
	Profit     Cents         `json:"profit"`
	Method     PaymentMethod `json:"method"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (s CashOutSnapshot) Validate() string {
	switch {
	case s.TableID == uuid.Nil:
		return "table_id"
	case s.PlayerID == uuid.Nil:
		return "player_id"
	case s.Method == "":
		return "method"
	}
	return ""
}

// TipSnapshot is the audit payload for a cancelled dealer tip.
type TipSnapshot struct {
	DealerID  uuid.UUID  `json:"dealer_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Amount    Cents      `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s TipSnapshot) Validate() string {
	switch {
	case s.DealerID == uuid.Nil:
		return "dealer_id"
	case s.Amount == 0:
		return "amount"
	}
	return ""
}

// RakeSnapshot is the audit payload for a cancelled rake entry.
type RakeSnapshot struct {
	TableID   uuid.UUID  `json:"table_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Amount    Cents      `json:"amount"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (s RakeSnapshot) Validate() string {
	switch {
	case s.TableID == uuid.Nil:
		return "table_id"
	case s.Amount == 0:
		return "amount"
	}
	return ""
}
