// Package ledger implements the club's money-movement commands. Each
// Execute* method is one atomic operation over a repository.Tx: it validates,
// locks what it will mutate, applies the mutation together with its derived
// balance change, and appends an outbox event — all inside the caller's
// transaction. A returned error means nothing was committed.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// Engine executes ledger commands. It holds no state: everything flows
// through the transaction handed to each command, so two terminals issuing
// commands concurrently are serialized only by the store.
type Engine struct{}

// NewEngine creates a ledger engine.
func NewEngine() *Engine {
	return &Engine{}
}

// requireOpenSession loads a session and rejects mutations against a closed
// one.
func (e *Engine) requireOpenSession(ctx context.Context, tx repository.Tx, sessionID uuid.UUID) (*domain.CashSession, error) {
	session, err := tx.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound("cash session", sessionID.String())
	}
	if !session.IsOpen {
		return nil, domain.ErrSessionClosed(sessionID.String())
	}
	return session, nil
}

func (e *Engine) requireTable(ctx context.Context, tx repository.Tx, tableID uuid.UUID) (*domain.PokerTable, error) {
	table, err := tx.Tables().FindByID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	if table == nil {
		return nil, domain.ErrNotFound("table", tableID.String())
	}
	return table, nil
}

// lockPlayer acquires the row-level lock on a player. Every command that
// touches credit_balance goes through here first, so the balance it reads is
// the balance it mutates.
func (e *Engine) lockPlayer(ctx context.Context, tx repository.Tx, playerID uuid.UUID) (*domain.Player, error) {
	player, err := tx.Players().LockForUpdate(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("lock player: %w", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}
	return player, nil
}

// remainingDebt computes the unpaid portion of a credit record from its
// receipt history.
func (e *Engine) remainingDebt(ctx context.Context, tx repository.Tx, record *domain.CreditRecord) (domain.Cents, error) {
	paid, err := tx.Receipts().SumByRecord(ctx, record.ID)
	if err != nil {
		return 0, fmt.Errorf("sum receipts: %w", err)
	}
	return record.Remaining(paid), nil
}

func emit(ctx context.Context, tx repository.Tx, events ...domain.OutboxDraft) error {
	for _, evt := range events {
		if err := tx.Outbox().Insert(ctx, evt); err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

func now() time.Time { return time.Now().UTC() }
