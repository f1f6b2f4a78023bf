// Package postgres is the pgx-backed store adapter. Repositories hold the
// transaction they run in and speak raw SQL; money columns are
// numeric(15,0) centavos converted through infra.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// Store opens transactions against a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a postgres-backed store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithinTx runs fn inside a database transaction. fn's error rolls back;
// commit errors surface to the caller.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Players() repository.PlayerRepository     { return &playerRepo{tx: t.tx} }
func (t *pgTx) Tables() repository.TableRepository       { return &tableRepo{tx: t.tx} }
func (t *pgTx) Sessions() repository.SessionRepository   { return &sessionRepo{tx: t.tx} }
func (t *pgTx) BuyIns() repository.BuyInRepository       { return &buyInRepo{tx: t.tx} }
func (t *pgTx) CashOuts() repository.CashOutRepository   { return &cashOutRepo{tx: t.tx} }
func (t *pgTx) Credits() repository.CreditRepository     { return &creditRepo{tx: t.tx} }
func (t *pgTx) Receipts() repository.ReceiptRepository   { return &receiptRepo{tx: t.tx} }
func (t *pgTx) Dealers() repository.DealerRepository     { return &dealerRepo{tx: t.tx} }
func (t *pgTx) Tips() repository.TipRepository           { return &tipRepo{tx: t.tx} }
func (t *pgTx) Payouts() repository.PayoutRepository     { return &payoutRepo{tx: t.tx} }
func (t *pgTx) Rake() repository.RakeRepository          { return &rakeRepo{tx: t.tx} }
func (t *pgTx) Audit() repository.AuditRepository        { return &auditRepo{tx: t.tx} }
func (t *pgTx) Outbox() repository.OutboxRepository      { return &outboxRepo{tx: t.tx} }
func (t *pgTx) ChipTypes() repository.ChipTypeRepository { return &chipTypeRepo{tx: t.tx} }

// marshalInventory encodes a chip inventory for a jsonb column. Nil maps
// store as SQL NULL.
func marshalInventory(inv domain.ChipInventory) ([]byte, error) {
	if inv == nil {
		return nil, nil
	}
	body, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("marshal inventory: %w", err)
	}
	return body, nil
}

func unmarshalInventory(raw []byte) (domain.ChipInventory, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var inv domain.ChipInventory
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("unmarshal inventory: %w", err)
	}
	return inv, nil
}
