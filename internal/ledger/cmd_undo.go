package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteUndo reverses a cancellation by re-inserting the record from its
// audit snapshot. The restored row gets a fresh ID but keeps the original
// timestamp, so summaries land in the same session window. Undo is
// single-use: the audit entry is consumed on success, and a second undo of
// the same ID fails with not-found.
func (e *Engine) ExecuteUndo(ctx context.Context, tx repository.Tx, auditID uuid.UUID) (*domain.UndoResult, error) {
	entry, err := tx.Audit().FindByID(ctx, auditID)
	if err != nil {
		return nil, fmt.Errorf("find audit entry: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrNotFound("audit entry", auditID.String())
	}
	if !domain.UndoableActions[entry.Action] {
		return nil, domain.ErrNotUndoable(string(entry.Action))
	}

	result := &domain.UndoResult{Action: entry.Action}
	var aggregateID string

	switch entry.Action {
	case domain.ActionBuyInCancelled:
		player, aggID, err := e.undoBuyIn(ctx, tx, entry.Snapshot)
		if err != nil {
			return nil, err
		}
		result.Player = player
		aggregateID = aggID

	case domain.ActionCashOutCancelled:
		aggregateID, err = e.undoCashOut(ctx, tx, entry.Snapshot)
		if err != nil {
			return nil, err
		}

	case domain.ActionTipCancelled:
		aggregateID, err = e.undoTip(ctx, tx, entry.Snapshot)
		if err != nil {
			return nil, err
		}

	case domain.ActionRakeCancelled:
		aggregateID, err = e.undoRake(ctx, tx, entry.Snapshot)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Audit().Delete(ctx, entry.ID); err != nil {
		return nil, fmt.Errorf("consume audit entry: %w", err)
	}

	result.Events = []domain.OutboxDraft{domain.NewRecordRestoredEvent(entry.Action, aggregateID)}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// undoBuyIn re-inserts a cancelled buy-in. A restored credit_fiado buy-in
// re-grants the fiado in full: a fresh unpaid credit record linked to the new
// row, balance re-incremented, limit re-checked. Receipts applied against the
// original record are gone with it, so the restored debt is the face amount.
func (e *Engine) undoBuyIn(ctx context.Context, tx repository.Tx, raw json.RawMessage) (*domain.Player, string, error) {
	var snap domain.BuyInSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, "", domain.ErrIncompleteSnapshot("snapshot")
	}
	if field := snap.Validate(); field != "" {
		return nil, "", domain.ErrIncompleteSnapshot(field)
	}

	buyIn := &domain.BuyIn{
		ID:        uuid.New(),
		TableID:   snap.TableID,
		PlayerID:  snap.PlayerID,
		SessionID: snap.SessionID,
		Amount:    snap.Amount,
		Method:    snap.Method,
		IsBonus:   snap.IsBonus,
		CreatedAt: snap.CreatedAt,
	}

	if err := tx.BuyIns().Insert(ctx, buyIn); err != nil {
		return nil, "", fmt.Errorf("restore buy-in: %w", err)
	}

	var restored *domain.Player
	if buyIn.Method == domain.MethodCreditFiado {
		player, err := e.lockPlayer(ctx, tx, buyIn.PlayerID)
		if err != nil {
			return nil, "", fmt.Errorf("undo buy-in: %w", err)
		}
		_, restored, err = e.grantCredit(ctx, tx, player, buyIn.Amount, &buyIn.ID)
		if err != nil {
			return nil, "", err
		}
	}
	return restored, buyIn.PlayerID.String(), nil
}

func (e *Engine) undoCashOut(ctx context.Context, tx repository.Tx, raw json.RawMessage) (string, error) {
	var snap domain.CashOutSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return "", domain.ErrIncompleteSnapshot("snapshot")
	}
	if field := snap.Validate(); field != "" {
		return "", domain.ErrIncompleteSnapshot(field)
	}

	cashOut := &domain.CashOut{
		ID:         uuid.New(),
		TableID:    snap.TableID,
		PlayerID:   snap.PlayerID,
		SessionID:  snap.SessionID,
		ChipValue:  snap.ChipValue,
		TotalBuyIn: snap.TotalBuyIn,
		Profit:     snap.Profit,
		Method:     snap.Method,
		CreatedAt:  snap.CreatedAt,
	}
	if err := tx.CashOuts().Insert(ctx, cashOut); err != nil {
		return "", fmt.Errorf("restore cash-out: %w", err)
	}
	return cashOut.PlayerID.String(), nil
}

func (e *Engine) undoTip(ctx context.Context, tx repository.Tx, raw json.RawMessage) (string, error) {
	var snap domain.TipSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return "", domain.ErrIncompleteSnapshot("snapshot")
	}
	if field := snap.Validate(); field != "" {
		return "", domain.ErrIncompleteSnapshot(field)
	}

	tip := &domain.DealerTip{
		ID:        uuid.New(),
		DealerID:  snap.DealerID,
		SessionID: snap.SessionID,
		Amount:    snap.Amount,
		CreatedAt: snap.CreatedAt,
	}
	if err := tx.Tips().Insert(ctx, tip); err != nil {
		return "", fmt.Errorf("restore tip: %w", err)
	}
	if _, err := tx.Dealers().AdjustTotalTips(ctx, tip.DealerID, tip.Amount); err != nil {
		return "", fmt.Errorf("adjust total tips: %w", err)
	}
	return tip.DealerID.String(), nil
}

func (e *Engine) undoRake(ctx context.Context, tx repository.Tx, raw json.RawMessage) (string, error) {
	var snap domain.RakeSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return "", domain.ErrIncompleteSnapshot("snapshot")
	}
	if field := snap.Validate(); field != "" {
		return "", domain.ErrIncompleteSnapshot(field)
	}

	rake := &domain.RakeEntry{
		ID:        uuid.New(),
		TableID:   snap.TableID,
		SessionID: snap.SessionID,
		Amount:    snap.Amount,
		Notes:     snap.Notes,
		CreatedAt: snap.CreatedAt,
	}
	if err := tx.Rake().Insert(ctx, rake); err != nil {
		return "", fmt.Errorf("restore rake entry: %w", err)
	}
	return rake.TableID.String(), nil
}
