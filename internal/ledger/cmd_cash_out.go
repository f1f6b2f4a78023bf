package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/reconcile"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteCashOut settles a player's table session: the chips come back, the
// player's full outstanding net at the table is attributed as total_buy_in,
// and profit is chips minus that. A positive DebtPayment additionally
// settles that much fiado oldest-first out of the proceeds, in the same
// transaction.
func (e *Engine) ExecuteCashOut(ctx context.Context, tx repository.Tx, params domain.CashOutParams) (*domain.CashOutResult, error) {
	if params.ChipValue < 0 {
		return nil, domain.ErrValidation("chip value must not be negative")
	}
	if err := domain.ValidatePayoutMethod(params.Method); err != nil {
		return nil, err
	}

	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("cash-out: %w", err)
	}
	table, err := e.requireTable(ctx, tx, params.TableID)
	if err != nil {
		return nil, fmt.Errorf("cash-out: %w", err)
	}

	player, err := e.lockPlayer(ctx, tx, params.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("cash-out: %w", err)
	}

	buyIns, err := tx.BuyIns().ListByTablePlayer(ctx, table.ID, player.ID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	cashOuts, err := tx.CashOuts().ListByTablePlayer(ctx, table.ID, player.ID)
	if err != nil {
		return nil, fmt.Errorf("list cash-outs: %w", err)
	}

	totalBuyIn := reconcile.OutstandingAtTable(buyIns, cashOuts, player.ID)
	if totalBuyIn <= 0 {
		return nil, domain.ErrConflict(fmt.Sprintf("player %s has no active session at table %s", player.ID, table.ID))
	}

	cashOut := &domain.CashOut{
		ID:         uuid.New(),
		TableID:    table.ID,
		PlayerID:   player.ID,
		SessionID:  &session.ID,
		ChipValue:  params.ChipValue,
		TotalBuyIn: totalBuyIn,
		Profit:     params.ChipValue - totalBuyIn,
		Method:     params.Method,
		CreatedAt:  now(),
	}
	if err := tx.CashOuts().Insert(ctx, cashOut); err != nil {
		return nil, fmt.Errorf("insert cash-out: %w", err)
	}

	result := &domain.CashOutResult{CashOut: cashOut, Player: player}
	result.Events = append(result.Events, domain.NewCashOutRecordedEvent(cashOut))

	if params.DebtPayment > 0 {
		if params.DebtPayment > params.ChipValue {
			return nil, domain.ErrValidation("debt payment cannot exceed the chip value paid out")
		}
		receipts, updated, err := e.payAcross(ctx, tx, player, params.DebtPayment, params.Method, &session.ID)
		if err != nil {
			return nil, err
		}
		result.Receipts = receipts
		result.Player = updated
		for i := range receipts {
			result.Events = append(result.Events, domain.NewPaymentReceivedEvent(&receipts[i]))
		}
	}

	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}
