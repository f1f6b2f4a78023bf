package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteRecordDealerTip records a caixinha tip and bumps the dealer's
// cumulative counter in the same transaction.
func (e *Engine) ExecuteRecordDealerTip(ctx context.Context, tx repository.Tx, params domain.RecordTipParams) (*domain.DealerTip, *domain.Dealer, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, nil, err
	}
	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("record tip: %w", err)
	}
	dealer, err := e.requireDealer(ctx, tx, params.DealerID)
	if err != nil {
		return nil, nil, fmt.Errorf("record tip: %w", err)
	}

	tip := &domain.DealerTip{
		ID:        uuid.New(),
		DealerID:  dealer.ID,
		SessionID: &session.ID,
		Amount:    params.Amount,
		CreatedAt: now(),
	}
	if err := tx.Tips().Insert(ctx, tip); err != nil {
		return nil, nil, fmt.Errorf("insert tip: %w", err)
	}
	updated, err := tx.Dealers().AdjustTotalTips(ctx, dealer.ID, params.Amount)
	if err != nil {
		return nil, nil, fmt.Errorf("adjust total tips: %w", err)
	}

	if err := emit(ctx, tx, domain.NewTipRecordedEvent(tip)); err != nil {
		return nil, nil, err
	}
	return tip, updated, nil
}

// ExecuteRecordDealerPayout pays tips out to the dealer. The payout is
// capped at what the dealer is currently owed (tips received minus payouts
// already made); the cumulative TotalTips counter never decreases.
func (e *Engine) ExecuteRecordDealerPayout(ctx context.Context, tx repository.Tx, params domain.RecordPayoutParams) (*domain.DealerPayout, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, fmt.Errorf("record payout: %w", err)
	}
	dealer, err := e.requireDealer(ctx, tx, params.DealerID)
	if err != nil {
		return nil, fmt.Errorf("record payout: %w", err)
	}

	owed, err := e.dealerOwed(ctx, tx, dealer.ID)
	if err != nil {
		return nil, err
	}
	if params.Amount > owed {
		return nil, domain.ErrValidation(fmt.Sprintf("payout of %s exceeds owed tips %s", params.Amount, owed))
	}

	payout := &domain.DealerPayout{
		ID:        uuid.New(),
		DealerID:  dealer.ID,
		SessionID: &session.ID,
		Amount:    params.Amount,
		CreatedAt: now(),
	}
	if err := tx.Payouts().Insert(ctx, payout); err != nil {
		return nil, fmt.Errorf("insert payout: %w", err)
	}

	if err := emit(ctx, tx, domain.NewPayoutRecordedEvent(payout)); err != nil {
		return nil, err
	}
	return payout, nil
}

// DealerOwed returns what the dealer can still be paid out: the sum of tips
// received minus the sum of payouts already made.
func (e *Engine) DealerOwed(ctx context.Context, tx repository.Tx, dealerID uuid.UUID) (domain.Cents, error) {
	if _, err := e.requireDealer(ctx, tx, dealerID); err != nil {
		return 0, err
	}
	return e.dealerOwed(ctx, tx, dealerID)
}

func (e *Engine) dealerOwed(ctx context.Context, tx repository.Tx, dealerID uuid.UUID) (domain.Cents, error) {
	tips, err := tx.Tips().SumByDealer(ctx, dealerID)
	if err != nil {
		return 0, fmt.Errorf("sum tips: %w", err)
	}
	paid, err := tx.Payouts().SumByDealer(ctx, dealerID)
	if err != nil {
		return 0, fmt.Errorf("sum payouts: %w", err)
	}
	return tips - paid, nil
}

func (e *Engine) requireDealer(ctx context.Context, tx repository.Tx, dealerID uuid.UUID) (*domain.Dealer, error) {
	dealer, err := tx.Dealers().FindByID(ctx, dealerID)
	if err != nil {
		return nil, fmt.Errorf("find dealer: %w", err)
	}
	if dealer == nil {
		return nil, domain.ErrNotFound("dealer", dealerID.String())
	}
	return dealer, nil
}
