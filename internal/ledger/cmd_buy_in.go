package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteBuyIn records a buy-in at a table. The session must be open and the
// table active. For a credit_fiado buy-in the linked credit record, the
// balance increment and the buy-in row commit as one unit: a limit breach
// rejects the whole thing.
func (e *Engine) ExecuteBuyIn(ctx context.Context, tx repository.Tx, params domain.BuyInParams) (*domain.BuyInResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateBuyInMethod(params.Method); err != nil {
		return nil, err
	}

	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("buy-in: %w", err)
	}
	table, err := e.requireTable(ctx, tx, params.TableID)
	if err != nil {
		return nil, fmt.Errorf("buy-in: %w", err)
	}
	if !table.IsActive {
		return nil, domain.ErrConflict(fmt.Sprintf("table %s is not active", table.ID))
	}

	player, err := e.resolvePlayer(ctx, tx, params.PlayerID, params.PlayerName)
	if err != nil {
		return nil, fmt.Errorf("buy-in: %w", err)
	}

	buyIn := &domain.BuyIn{
		ID:        uuid.New(),
		TableID:   table.ID,
		PlayerID:  player.ID,
		SessionID: &session.ID,
		Amount:    params.Amount,
		Method:    params.Method,
		IsBonus:   params.IsBonus || params.Method == domain.MethodBonus,
		CreatedAt: now(),
	}

	result := &domain.BuyInResult{BuyIn: buyIn, Player: player}

	if err := tx.BuyIns().Insert(ctx, buyIn); err != nil {
		return nil, fmt.Errorf("insert buy-in: %w", err)
	}

	if params.Method == domain.MethodCreditFiado {
		// Limit check runs against the locked row, so a concurrent fiado
		// from another terminal is already reflected in the balance.
		record, updated, err := e.grantCredit(ctx, tx, player, params.Amount, &buyIn.ID)
		if err != nil {
			return nil, err
		}
		result.Credit = record
		result.Player = updated
		result.Events = append(result.Events, domain.NewCreditGrantedEvent(record))
	}

	result.Events = append(result.Events, domain.NewBuyInRecordedEvent(buyIn))
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// resolvePlayer locks an existing player, or creates one inline when the
// cashier typed a new name during the buy-in flow.
func (e *Engine) resolvePlayer(ctx context.Context, tx repository.Tx, playerID uuid.UUID, playerName string) (*domain.Player, error) {
	if playerID != uuid.Nil {
		return e.lockPlayer(ctx, tx, playerID)
	}
	if playerName == "" {
		return nil, domain.ErrValidation("player id or player name is required")
	}

	existing, err := tx.Players().FindByName(ctx, playerName)
	if err != nil {
		return nil, fmt.Errorf("find player by name: %w", err)
	}
	if existing != nil {
		return e.lockPlayer(ctx, tx, existing.ID)
	}

	player := &domain.Player{
		ID:        uuid.New(),
		Name:      playerName,
		IsActive:  true,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	if err := tx.Players().Create(ctx, player); err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}
	return player, nil
}
