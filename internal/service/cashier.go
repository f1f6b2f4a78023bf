// Package service wires the ledger engine to the store: each method opens
// one transaction, runs the command, invalidates the affected read-side
// cache entries and logs the outcome.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/ledger"
	"github.com/greenfelt/cardroom/internal/projection"
	"github.com/greenfelt/cardroom/internal/reconcile"
	"github.com/greenfelt/cardroom/internal/repository"
)

// CashierService handles the table-side money flows: buy-ins, cash-outs,
// rake, dealer tips and payouts, and the reversal/undo paths.
type CashierService struct {
	store  repository.Store
	engine *ledger.Engine
	cache  projection.Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewCashierService creates a CashierService.
func NewCashierService(store repository.Store, engine *ledger.Engine, cache projection.Store, logger *slog.Logger, ttl time.Duration) *CashierService {
	return &CashierService{store: store, engine: engine, cache: cache, logger: logger, ttl: ttl}
}

// RecordBuyIn records a buy-in and returns the committed result.
func (s *CashierService) RecordBuyIn(ctx context.Context, params domain.BuyInParams) (*domain.BuyInResult, error) {
	var result *domain.BuyInResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteBuyIn(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTable(ctx, params.TableID, params.SessionID)
	s.logger.Info("buy-in recorded",
		"buy_in_id", result.BuyIn.ID,
		"player_id", result.BuyIn.PlayerID,
		"amount", result.BuyIn.Amount,
		"method", result.BuyIn.Method)
	return result, nil
}

// RecordCashOut records a cash-out, optionally settling fiado debt in the
// same transaction.
func (s *CashierService) RecordCashOut(ctx context.Context, params domain.CashOutParams) (*domain.CashOutResult, error) {
	var result *domain.CashOutResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteCashOut(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTable(ctx, params.TableID, params.SessionID)
	s.logger.Info("cash-out recorded",
		"cash_out_id", result.CashOut.ID,
		"player_id", result.CashOut.PlayerID,
		"chip_value", result.CashOut.ChipValue,
		"profit", result.CashOut.Profit)
	return result, nil
}

// RecordRake records a rake entry.
func (s *CashierService) RecordRake(ctx context.Context, params domain.RecordRakeParams) (*domain.RakeEntry, error) {
	var rake *domain.RakeEntry
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		rake, err = s.engine.ExecuteRecordRake(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	projection.InvalidateSummary(ctx, s.cache, params.SessionID.String())
	s.logger.Info("rake recorded", "rake_id", rake.ID, "table_id", rake.TableID, "amount", rake.Amount)
	return rake, nil
}

// RecordDealerTip records a tip for a dealer.
func (s *CashierService) RecordDealerTip(ctx context.Context, params domain.RecordTipParams) (*domain.DealerTip, *domain.Dealer, error) {
	var tip *domain.DealerTip
	var dealer *domain.Dealer
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		tip, dealer, err = s.engine.ExecuteRecordDealerTip(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	projection.InvalidateSummary(ctx, s.cache, params.SessionID.String())
	s.logger.Info("dealer tip recorded", "tip_id", tip.ID, "dealer_id", tip.DealerID, "amount", tip.Amount)
	return tip, dealer, nil
}

// RecordDealerPayout pays accumulated tips out to a dealer.
func (s *CashierService) RecordDealerPayout(ctx context.Context, params domain.RecordPayoutParams) (*domain.DealerPayout, error) {
	var payout *domain.DealerPayout
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		payout, err = s.engine.ExecuteRecordDealerPayout(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	projection.InvalidateSummary(ctx, s.cache, params.SessionID.String())
	s.logger.Info("dealer payout recorded", "payout_id", payout.ID, "dealer_id", payout.DealerID, "amount", payout.Amount)
	return payout, nil
}

// DeleteBuyIn cancels a buy-in with audit.
func (s *CashierService) DeleteBuyIn(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	return s.deleteRecord(ctx, "buy-in", params, s.engine.ExecuteDeleteBuyIn)
}

// DeleteCashOut cancels a cash-out with audit.
func (s *CashierService) DeleteCashOut(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	return s.deleteRecord(ctx, "cash-out", params, s.engine.ExecuteDeleteCashOut)
}

// DeleteDealerTip cancels a dealer tip with audit.
func (s *CashierService) DeleteDealerTip(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	return s.deleteRecord(ctx, "dealer tip", params, s.engine.ExecuteDeleteDealerTip)
}

// DeleteRakeEntry cancels a rake entry with audit.
func (s *CashierService) DeleteRakeEntry(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	return s.deleteRecord(ctx, "rake entry", params, s.engine.ExecuteDeleteRakeEntry)
}

func (s *CashierService) deleteRecord(ctx context.Context, kind string, params domain.DeleteRecordParams,
	exec func(context.Context, repository.Tx, domain.DeleteRecordParams) (*domain.ReversalResult, error),
) (*domain.ReversalResult, error) {
	var result *domain.ReversalResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = exec(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("record cancelled",
		"kind", kind,
		"record_id", params.ID,
		"audit_id", result.AuditEntry.ID,
		"operator", params.Operator)
	return result, nil
}

// Undo restores a cancelled record from its audit snapshot.
func (s *CashierService) Undo(ctx context.Context, auditID uuid.UUID) (*domain.UndoResult, error) {
	var result *domain.UndoResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteUndo(ctx, tx, auditID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("record restored", "audit_id", auditID, "action", result.Action)
	return result, nil
}

// AuditLog lists the most recent audit entries.
func (s *CashierService) AuditLog(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []domain.AuditEntry
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		entries, err = tx.Audit().List(ctx, limit)
		return err
	})
	return entries, err
}

// ActiveSessions returns the players currently sitting at a table with their
// net contribution, served from cache when fresh.
func (s *CashierService) ActiveSessions(ctx context.Context, tableID uuid.UUID) ([]reconcile.ActiveSession, error) {
	if cached, err := projection.GetActiveSessions(ctx, s.cache, tableID.String()); err == nil {
		return cached, nil
	}

	var sessions []reconcile.ActiveSession
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		buyIns, err := tx.BuyIns().ListByTable(ctx, tableID)
		if err != nil {
			return err
		}
		cashOuts, err := tx.CashOuts().ListByTable(ctx, tableID)
		if err != nil {
			return err
		}
		sessions = reconcile.ActiveSessions(buyIns, cashOuts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	projection.UpdateActiveSessions(ctx, s.cache, tableID.String(), sessions, s.ttl)
	return sessions, nil
}

// DealerOwed returns what a dealer can still be paid out.
func (s *CashierService) DealerOwed(ctx context.Context, dealerID uuid.UUID) (domain.Cents, error) {
	var owed domain.Cents
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		owed, err = s.engine.DealerOwed(ctx, tx, dealerID)
		return err
	})
	return owed, err
}

func (s *CashierService) invalidateTable(ctx context.Context, tableID, sessionID uuid.UUID) {
	projection.InvalidateActiveSessions(ctx, s.cache, tableID.String())
	projection.InvalidateSummary(ctx, s.cache, sessionID.String())
}
