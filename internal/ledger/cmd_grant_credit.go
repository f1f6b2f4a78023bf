package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteGrantCredit extends fiado to a player: creates an unpaid credit
// record and increments the materialized credit balance in the same
// transaction. A grant that would breach the player's limit is rejected
// outright and leaves the balance untouched.
func (e *Engine) ExecuteGrantCredit(ctx context.Context, tx repository.Tx, params domain.GrantCreditParams) (*domain.CreditRecord, *domain.Player, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, nil, err
	}

	player, err := e.lockPlayer(ctx, tx, params.PlayerID)
	if err != nil {
		return nil, nil, fmt.Errorf("grant credit: %w", err)
	}

	record, updated, err := e.grantCredit(ctx, tx, player, params.Amount, params.BuyInID)
	if err != nil {
		return nil, nil, err
	}

	if err := emit(ctx, tx, domain.NewCreditGrantedEvent(record)); err != nil {
		return nil, nil, err
	}
	return record, updated, nil
}

// grantCredit is the core fiado primitive, shared with the buy-in command so
// a credit_fiado buy-in and its credit record commit or fail together. The
// caller must already hold the player lock.
func (e *Engine) grantCredit(ctx context.Context, tx repository.Tx, player *domain.Player, amount domain.Cents, buyInID *uuid.UUID) (*domain.CreditRecord, *domain.Player, error) {
	if player.CreditBalance+amount > player.CreditLimit {
		return nil, nil, domain.ErrLimitExceeded(player.CreditBalance, player.CreditLimit, amount)
	}

	record := &domain.CreditRecord{
		ID:        uuid.New(),
		PlayerID:  player.ID,
		BuyInID:   buyInID,
		Amount:    amount,
		CreatedAt: now(),
	}
	if err := tx.Credits().Insert(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("insert credit record: %w", err)
	}

	updated, err := tx.Players().AdjustCreditBalance(ctx, player.ID, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("adjust credit balance: %w", err)
	}
	return record, updated, nil
}

// reverseCreditFromDeletedBuyIn undoes the balance effect of the credit
// record linked to a buy-in that is about to be deleted. It is the single
// owner of this compensation; no other call site duplicates it.
//
// The asymmetry is deliberate: an unpaid record's remaining amount comes off
// the balance and the record is deleted, but an already-paid record is left
// alone — the debt was settled and deleting the originating buy-in must not
// un-settle it. The paid record is detached from the buy-in instead so the
// cascade cannot reach it.
func (e *Engine) reverseCreditFromDeletedBuyIn(ctx context.Context, tx repository.Tx, buyInID uuid.UUID) (*domain.Player, error) {
	record, err := tx.Credits().FindByBuyIn(ctx, buyInID)
	if err != nil {
		return nil, fmt.Errorf("find credit record: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	if record.IsPaid {
		if err := tx.Credits().DetachBuyIn(ctx, buyInID); err != nil {
			return nil, fmt.Errorf("detach credit record: %w", err)
		}
		return nil, nil
	}

	remaining, err := e.remainingDebt(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	player, err := tx.Players().AdjustCreditBalance(ctx, record.PlayerID, -remaining)
	if err != nil {
		return nil, fmt.Errorf("reverse credit balance: %w", err)
	}
	if err := tx.Credits().Delete(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("delete credit record: %w", err)
	}
	return player, nil
}

// ExecuteRecomputeCreditBalance repairs the materialized balance from the
// credit records: balance = sum of remaining amounts across unpaid records.
func (e *Engine) ExecuteRecomputeCreditBalance(ctx context.Context, tx repository.Tx, playerID uuid.UUID) (*domain.Player, error) {
	if _, err := e.lockPlayer(ctx, tx, playerID); err != nil {
		return nil, fmt.Errorf("recompute: %w", err)
	}

	records, err := tx.Credits().ListUnpaidByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid records: %w", err)
	}

	var balance domain.Cents
	for i := range records {
		remaining, err := e.remainingDebt(ctx, tx, &records[i])
		if err != nil {
			return nil, err
		}
		balance += remaining
	}

	player, err := tx.Players().SetCreditBalance(ctx, playerID, balance)
	if err != nil {
		return nil, fmt.Errorf("set credit balance: %w", err)
	}
	return player, nil
}
