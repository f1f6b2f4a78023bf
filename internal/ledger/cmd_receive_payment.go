package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteReceivePayment applies one payment against one credit record. The
// amount must be positive and no more than the record's remaining debt; the
// record flips to paid only when cumulative receipts cover its amount.
func (e *Engine) ExecuteReceivePayment(ctx context.Context, tx repository.Tx, params domain.ReceivePaymentParams) (*domain.PaymentResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidatePayoutMethod(params.Method); err != nil {
		return nil, err
	}

	record, err := tx.Credits().FindByID(ctx, params.CreditRecordID)
	if err != nil {
		return nil, fmt.Errorf("find credit record: %w", err)
	}
	if record == nil {
		return nil, domain.ErrNotFound("credit record", params.CreditRecordID.String())
	}

	player, err := e.lockPlayer(ctx, tx, record.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("receive payment: %w", err)
	}

	receipt, updated, err := e.applyPayment(ctx, tx, player, record, params.Amount, params.Method, params.SessionID)
	if err != nil {
		return nil, err
	}

	result := &domain.PaymentResult{
		Receipts: []domain.PaymentReceipt{*receipt},
		Player:   updated,
		Events:   []domain.OutboxDraft{domain.NewPaymentReceivedEvent(receipt)},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecutePayAcrossRecords settles a total amount against the player's unpaid
// records oldest-first, splitting across records as needed. A total beyond
// the outstanding debt is rejected; the remainder is never banked.
func (e *Engine) ExecutePayAcrossRecords(ctx context.Context, tx repository.Tx, params domain.PayAcrossRecordsParams) (*domain.PaymentResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidatePayoutMethod(params.Method); err != nil {
		return nil, err
	}

	player, err := e.lockPlayer(ctx, tx, params.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("pay across records: %w", err)
	}

	receipts, updated, err := e.payAcross(ctx, tx, player, params.Amount, params.Method, params.SessionID)
	if err != nil {
		return nil, err
	}

	result := &domain.PaymentResult{Receipts: receipts, Player: updated}
	for i := range receipts {
		result.Events = append(result.Events, domain.NewPaymentReceivedEvent(&receipts[i]))
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// payAcross pre-splits a total into per-record sub-amounts in FIFO order and
// applies each through the single-record primitive. Only the last record
// touched can receive a partial amount. Caller holds the player lock.
func (e *Engine) payAcross(ctx context.Context, tx repository.Tx, player *domain.Player, total domain.Cents, method domain.PaymentMethod, sessionID *uuid.UUID) ([]domain.PaymentReceipt, *domain.Player, error) {
	records, err := tx.Credits().ListUnpaidByPlayer(ctx, player.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list unpaid records: %w", err)
	}

	remaining := make([]domain.Cents, len(records))
	var outstanding domain.Cents
	for i := range records {
		r, err := e.remainingDebt(ctx, tx, &records[i])
		if err != nil {
			return nil, nil, err
		}
		remaining[i] = r
		outstanding += r
	}
	if total > outstanding {
		return nil, nil, domain.ErrExcessPayment(total, outstanding)
	}

	var receipts []domain.PaymentReceipt
	updated := player
	left := total
	for i := range records {
		if left == 0 {
			break
		}
		slice := remaining[i]
		if slice > left {
			slice = left
		}
		if slice == 0 {
			continue
		}
		receipt, p, err := e.applyPayment(ctx, tx, updated, &records[i], slice, method, sessionID)
		if err != nil {
			return nil, nil, err
		}
		receipts = append(receipts, *receipt)
		updated = p
		left -= slice
	}
	return receipts, updated, nil
}

// applyPayment is the single-record payment primitive: append a receipt,
// decrement the materialized balance, and mark the record paid when its
// remaining debt reaches zero.
func (e *Engine) applyPayment(ctx context.Context, tx repository.Tx, player *domain.Player, record *domain.CreditRecord, amount domain.Cents, method domain.PaymentMethod, sessionID *uuid.UUID) (*domain.PaymentReceipt, *domain.Player, error) {
	if record.IsPaid {
		return nil, nil, domain.ErrConflict(fmt.Sprintf("credit record %s is already paid", record.ID))
	}

	remaining, err := e.remainingDebt(ctx, tx, record)
	if err != nil {
		return nil, nil, err
	}
	if amount > remaining {
		return nil, nil, domain.ErrOverpaymentRejected(amount, remaining)
	}

	receipt := &domain.PaymentReceipt{
		ID:             uuid.New(),
		ReceiptNumber:  domain.NewReceiptNumber(),
		CreditRecordID: record.ID,
		PlayerID:       player.ID,
		Amount:         amount,
		Method:         method,
		SessionID:      sessionID,
		CreatedAt:      now(),
	}
	if err := tx.Receipts().Insert(ctx, receipt); err != nil {
		return nil, nil, fmt.Errorf("insert receipt: %w", err)
	}

	updated, err := tx.Players().AdjustCreditBalance(ctx, player.ID, -amount)
	if err != nil {
		return nil, nil, fmt.Errorf("adjust credit balance: %w", err)
	}

	if remaining-amount == 0 {
		if err := tx.Credits().MarkPaid(ctx, record.ID, now()); err != nil {
			return nil, nil, fmt.Errorf("mark record paid: %w", err)
		}
	}
	return receipt, updated, nil
}
