// Package repository defines the storage contract for the club ledger.
//
// There is exactly one authoritative interface and two adapters: the pgx
// adapter in repository/postgres and the in-memory adapter in
// repository/memory. Business logic lives above this package, never inside
// an adapter.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
)

// Store opens transactions. WithinTx is the single transactional boundary
// every ledger command runs inside: fn's effects commit only if it returns
// nil, and a non-nil error rolls back everything.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is a transactional view of the store.
type Tx interface {
	Players() PlayerRepository
	Tables() TableRepository
	Sessions() SessionRepository
	BuyIns() BuyInRepository
	CashOuts() CashOutRepository
	Credits() CreditRepository
	Receipts() ReceiptRepository
	Dealers() DealerRepository
	Tips() TipRepository
	Payouts() PayoutRepository
	Rake() RakeRepository
	Audit() AuditRepository
	Outbox() OutboxRepository
	ChipTypes() ChipTypeRepository
}

// PlayerRepository provides access to club_players.
//
// Lookups return (nil, nil) when the row does not exist.
type PlayerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)

	// FindByName matches the display name exactly, active players only.
	FindByName(ctx context.Context, name string) (*domain.Player, error)

	// LockForUpdate acquires a row-level lock on the player. Two terminals
	// recording fiado for the same player serialize here, so the limit
	// check always sees the post-commit balance of the other terminal.
	LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error)

	Create(ctx context.Context, player *domain.Player) error

	// AdjustCreditBalance applies a delta with server-side arithmetic and
	// returns the updated row.
	AdjustCreditBalance(ctx context.Context, id uuid.UUID, delta domain.Cents) (*domain.Player, error)

	// SetCreditBalance overwrites the materialized balance (repair path).
	SetCreditBalance(ctx context.Context, id uuid.UUID, balance domain.Cents) (*domain.Player, error)

	// Deactivate soft-deletes the player.
	Deactivate(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]domain.Player, error)
}

// TableRepository provides access to club_tables.
type TableRepository interface {
	Create(ctx context.Context, table *domain.PokerTable) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.PokerTable, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PokerTable, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// DeactivateBySession deactivates every table owned by the session.
	DeactivateBySession(ctx context.Context, sessionID uuid.UUID) error

	// Delete removes the table and cascades to its buy-ins, cash-outs and
	// rake entries.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionRepository provides access to club_cash_sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CashSession, error)
	ListByDate(ctx context.Context, day time.Time) ([]domain.CashSession, error)
	List(ctx context.Context) ([]domain.CashSession, error)

	// Close freezes the session: is_open=false, final balance, inventory,
	// notes and closed_at in one update.
	Close(ctx context.Context, id uuid.UUID, finalBalance domain.Cents, inventory domain.ChipInventory, notes string, closedAt time.Time) (*domain.CashSession, error)

	// Reopen clears closed_at and sets is_open=true. The frozen final
	// balance is kept.
	Reopen(ctx context.Context, id uuid.UUID) (*domain.CashSession, error)

	// Delete removes the session and cascades to everything it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BuyInRepository provides access to club_buy_ins.
type BuyInRepository interface {
	Insert(ctx context.Context, b *domain.BuyIn) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.BuyIn, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]domain.BuyIn, error)
	ListByTablePlayer(ctx context.Context, tableID, playerID uuid.UUID) ([]domain.BuyIn, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.BuyIn, error)

	// AdoptOrphans attaches session-less rows created on the given day to
	// the session. Returns the number of rows adopted.
	AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error)
}

// CashOutRepository provides access to club_cash_outs.
type CashOutRepository interface {
	Insert(ctx context.Context, c *domain.CashOut) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CashOut, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTable(ctx context.Context, tableID uuid.UUID) ([]domain.CashOut, error)
	ListByTablePlayer(ctx context.Context, tableID, playerID uuid.UUID) ([]domain.CashOut, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CashOut, error)
	AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error)
}

// CreditRepository provides access to club_credit_records.
type CreditRepository interface {
	Insert(ctx context.Context, r *domain.CreditRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CreditRecord, error)

	// FindByBuyIn returns the record linked to the originating buy-in.
	FindByBuyIn(ctx context.Context, buyInID uuid.UUID) (*domain.CreditRecord, error)

	// ListUnpaidByPlayer returns unpaid records ordered by created_at
	// ascending — the FIFO settlement order.
	ListUnpaidByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.CreditRecord, error)

	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error

	// DetachBuyIn nulls buy_in_id on records linked to the buy-in, so that
	// deleting the buy-in does not cascade into a settled debt.
	DetachBuyIn(ctx context.Context, buyInID uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error
}

// ReceiptRepository provides access to club_payment_receipts.
type ReceiptRepository interface {
	Insert(ctx context.Context, r *domain.PaymentReceipt) error
	ListByRecord(ctx context.Context, creditRecordID uuid.UUID) ([]domain.PaymentReceipt, error)

	// SumByRecord totals receipts already applied against a record.
	SumByRecord(ctx context.Context, creditRecordID uuid.UUID) (domain.Cents, error)
}

// DealerRepository provides access to club_dealers.
type DealerRepository interface {
	Create(ctx context.Context, d *domain.Dealer) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error)
	List(ctx context.Context) ([]domain.Dealer, error)

	// AdjustTotalTips applies a delta to the cumulative tips counter.
	AdjustTotalTips(ctx context.Context, id uuid.UUID, delta domain.Cents) (*domain.Dealer, error)
}

// TipRepository provides access to club_dealer_tips.
type TipRepository interface {
	Insert(ctx context.Context, t *domain.DealerTip) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DealerTip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.DealerTip, error)
	SumByDealer(ctx context.Context, dealerID uuid.UUID) (domain.Cents, error)
	AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error)
}

// PayoutRepository provides access to club_dealer_payouts.
type PayoutRepository interface {
	Insert(ctx context.Context, p *domain.DealerPayout) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.DealerPayout, error)
	SumByDealer(ctx context.Context, dealerID uuid.UUID) (domain.Cents, error)
	AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error)
}

// RakeRepository provides access to club_rake_entries.
type RakeRepository interface {
	Insert(ctx context.Context, r *domain.RakeEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.RakeEntry, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.RakeEntry, error)
	AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error)
}

// AuditRepository provides access to club_audit_log.
type AuditRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, error)

	// Delete consumes an entry after a successful undo (single-use).
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// OutboxRepository provides access to event_outbox.
type OutboxRepository interface {
	Insert(ctx context.Context, draft domain.OutboxDraft) error
	FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// ChipTypeRepository provides access to club_chip_types.
type ChipTypeRepository interface {
	Create(ctx context.Context, ct *domain.ChipType) error
	List(ctx context.Context) ([]domain.ChipType, error)
}
