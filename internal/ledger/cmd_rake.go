package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteRecordRake records house commission collected from a table. Rake is
// house money: it never touches any player balance and only shows up in the
// session's final balance.
func (e *Engine) ExecuteRecordRake(ctx context.Context, tx repository.Tx, params domain.RecordRakeParams) (*domain.RakeEntry, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("record rake: %w", err)
	}
	table, err := e.requireTable(ctx, tx, params.TableID)
	if err != nil {
		return nil, fmt.Errorf("record rake: %w", err)
	}

	rake := &domain.RakeEntry{
		ID:        uuid.New(),
		TableID:   table.ID,
		SessionID: &session.ID,
		Amount:    params.Amount,
		Notes:     params.Notes,
		CreatedAt: now(),
	}
	if err := tx.Rake().Insert(ctx, rake); err != nil {
		return nil, fmt.Errorf("insert rake entry: %w", err)
	}

	if err := emit(ctx, tx, domain.NewRakeRecordedEvent(rake)); err != nil {
		return nil, err
	}
	return rake, nil
}
