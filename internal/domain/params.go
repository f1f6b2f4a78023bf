package domain

import (
	"time"

	"github.com/google/uuid"
)

// Command inputs for the ledger engine. Each command executes as one atomic
// unit within a store transaction; a validation failure leaves no effects.

// BuyInParams holds the input for ExecuteBuyIn. PlayerID may be zero when
// PlayerName is set: the cashier creates the player inline during the
// buy-in flow.
type BuyInParams struct {
	SessionID  uuid.UUID
	TableID    uuid.UUID
	PlayerID   uuid.UUID
	PlayerName string
	Amount     Cents
	Method     PaymentMethod
	IsBonus    bool
}

// CashOutParams holds the input for ExecuteCashOut. DebtPayment, when
// positive, settles that much of the player's fiado debt oldest-first out of
// the cash-out in the same transaction.
type CashOutParams struct {
	SessionID   uuid.UUID
	TableID     uuid.UUID
	PlayerID    uuid.UUID
	ChipValue   Cents
	Method      PaymentMethod
	DebtPayment Cents
}

// GrantCreditParams holds the input for ExecuteGrantCredit.
type GrantCreditParams struct {
	PlayerID uuid.UUID
	Amount   Cents
	BuyInID  *uuid.UUID
}

// ReceivePaymentParams holds the input for ExecuteReceivePayment.
type ReceivePaymentParams struct {
	CreditRecordID uuid.UUID
	Amount         Cents
	Method         PaymentMethod
	SessionID      *uuid.UUID
}

// PayAcrossRecordsParams holds the input for ExecutePayAcrossRecords.
type PayAcrossRecordsParams struct {
	PlayerID  uuid.UUID
	Amount    Cents
	Method    PaymentMethod
	SessionID *uuid.UUID
}

// DeleteRecordParams identifies a record to cancel, with the operator name
// captured for the audit trail.
type DeleteRecordParams struct {
	ID       uuid.UUID
	Operator string
}

// RecordTipParams holds the input for ExecuteRecordDealerTip.
type RecordTipParams struct {
	DealerID  uuid.UUID
	SessionID uuid.UUID
	Amount    Cents
}

// RecordPayoutParams holds the input for ExecuteRecordDealerPayout.
type RecordPayoutParams struct {
	DealerID  uuid.UUID
	SessionID uuid.UUID
	Amount    Cents
}

// RecordRakeParams holds the input for ExecuteRecordRake.
type RecordRakeParams struct {
	TableID   uuid.UUID
	SessionID uuid.UUID
	Amount    Cents
	Notes     string
}

// OpenSessionParams holds the input for ExecuteOpenSession.
type OpenSessionParams struct {
	Name             string
	Responsible      string
	Date             time.Time
	InitialInventory ChipInventory
}

// CloseSessionParams holds the input for ExecuteCloseSession.
type CloseSessionParams struct {
	SessionID      uuid.UUID
	FinalInventory ChipInventory
	Notes          string
}

// Command results. Each carries the outbox drafts appended by the command so
// callers can assert event parity.

// BuyInResult is returned by ExecuteBuyIn. Credit is non-nil only for
// credit_fiado buy-ins.
type BuyInResult struct {
	BuyIn  *BuyIn
	Player *Player
	Credit *CreditRecord
	Events []OutboxDraft
}

// CashOutResult is returned by ExecuteCashOut. Receipts is non-empty only
// when a debt payment was settled out of the cash-out.
type CashOutResult struct {
	CashOut  *CashOut
	Player   *Player
	Receipts []PaymentReceipt
	Events   []OutboxDraft
}

// PaymentResult is returned by the credit payment commands.
type PaymentResult struct {
	Receipts []PaymentReceipt
	Player   *Player
	Events   []OutboxDraft
}

// ReversalResult is returned by the delete commands.
type ReversalResult struct {
	AuditEntry *AuditEntry
	Player     *Player
	Events     []OutboxDraft
}

// UndoResult is returned by ExecuteUndo.
type UndoResult struct {
	Action AuditAction
	Player *Player
	Events []OutboxDraft
}

// SessionResult is returned by the session lifecycle commands.
type SessionResult struct {
	Session *CashSession
	Events  []OutboxDraft
}
