package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteDeleteBuyIn cancels a buy-in: snapshot to the audit trail first,
// reverse the linked fiado's balance effect if there is one, then hard
// delete the row. Not a true accounting reversal — there is no offsetting
// negative entry — so the whole sequence runs inside one transaction and
// callers must serialize per player.
func (e *Engine) ExecuteDeleteBuyIn(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	buyIn, err := tx.BuyIns().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find buy-in: %w", err)
	}
	if buyIn == nil {
		return nil, domain.ErrNotFound("buy-in", params.ID.String())
	}

	snapshot, _ := json.Marshal(domain.BuyInSnapshot{
		TableID:   buyIn.TableID,
		PlayerID:  buyIn.PlayerID,
		SessionID: buyIn.SessionID,
		Amount:    buyIn.Amount,
		Method:    buyIn.Method,
		IsBonus:   buyIn.IsBonus,
		CreatedAt: buyIn.CreatedAt,
	})
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionBuyInCancelled,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	result := &domain.ReversalResult{AuditEntry: entry}

	if buyIn.Method == domain.MethodCreditFiado {
		if _, err := e.lockPlayer(ctx, tx, buyIn.PlayerID); err != nil {
			return nil, fmt.Errorf("delete buy-in: %w", err)
		}
		player, err := e.reverseCreditFromDeletedBuyIn(ctx, tx, buyIn.ID)
		if err != nil {
			return nil, err
		}
		result.Player = player
	}

	if err := tx.BuyIns().Delete(ctx, buyIn.ID); err != nil {
		return nil, fmt.Errorf("delete buy-in: %w", err)
	}

	result.Events = []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, buyIn.PlayerID.String())}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteDeleteCashOut cancels a cash-out. Cash-outs carry no derived side
// effects, so this is a snapshot plus a hard delete.
func (e *Engine) ExecuteDeleteCashOut(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	cashOut, err := tx.CashOuts().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find cash-out: %w", err)
	}
	if cashOut == nil {
		return nil, domain.ErrNotFound("cash-out", params.ID.String())
	}

	snapshot, _ := json.Marshal(domain.CashOutSnapshot{
		TableID:    cashOut.TableID,
		PlayerID:   cashOut.PlayerID,
		SessionID:  cashOut.SessionID,
		ChipValue:  cashOut.ChipValue,
		TotalBuyIn: cashOut.TotalBuyIn,
		Profit:     cashOut.Profit,
		Method:     cashOut.Method,
		CreatedAt:  cashOut.CreatedAt,
	})
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionCashOutCancelled,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	if err := tx.CashOuts().Delete(ctx, cashOut.ID); err != nil {
		return nil, fmt.Errorf("delete cash-out: %w", err)
	}

	result := &domain.ReversalResult{
		AuditEntry: entry,
		Events:     []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, cashOut.PlayerID.String())},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteDeleteDealerTip cancels a tip and backs it out of the dealer's
// cumulative counter.
func (e *Engine) ExecuteDeleteDealerTip(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	tip, err := tx.Tips().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find tip: %w", err)
	}
	if tip == nil {
		return nil, domain.ErrNotFound("dealer tip", params.ID.String())
	}

	snapshot, _ := json.Marshal(domain.TipSnapshot{
		DealerID:  tip.DealerID,
		SessionID: tip.SessionID,
		Amount:    tip.Amount,
		CreatedAt: tip.CreatedAt,
	})
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionTipCancelled,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	if _, err := tx.Dealers().AdjustTotalTips(ctx, tip.DealerID, -tip.Amount); err != nil {
		return nil, fmt.Errorf("adjust total tips: %w", err)
	}
	if err := tx.Tips().Delete(ctx, tip.ID); err != nil {
		return nil, fmt.Errorf("delete tip: %w", err)
	}

	result := &domain.ReversalResult{
		AuditEntry: entry,
		Events:     []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, tip.DealerID.String())},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteDeleteRakeEntry cancels a rake entry.
func (e *Engine) ExecuteDeleteRakeEntry(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	rake, err := tx.Rake().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find rake entry: %w", err)
	}
	if rake == nil {
		return nil, domain.ErrNotFound("rake entry", params.ID.String())
	}

	snapshot, _ := json.Marshal(domain.RakeSnapshot{
		TableID:   rake.TableID,
		SessionID: rake.SessionID,
		Amount:    rake.Amount,
		Notes:     rake.Notes,
		CreatedAt: rake.CreatedAt,
	})
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionRakeCancelled,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	if err := tx.Rake().Delete(ctx, rake.ID); err != nil {
		return nil, fmt.Errorf("delete rake entry: %w", err)
	}

	result := &domain.ReversalResult{
		AuditEntry: entry,
		Events:     []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, rake.TableID.String())},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}
