package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/ledger"
	"github.com/greenfelt/cardroom/internal/repository"
)

// CreditService handles the fiado ledger: grants, payments and the balance
// repair path.
type CreditService struct {
	store  repository.Store
	engine *ledger.Engine
	logger *slog.Logger
}

// NewCreditService creates a CreditService.
func NewCreditService(store repository.Store, engine *ledger.Engine, logger *slog.Logger) *CreditService {
	return &CreditService{store: store, engine: engine, logger: logger}
}

// GrantCredit extends standalone fiado to a player (no buy-in attached).
func (s *CreditService) GrantCredit(ctx context.Context, params domain.GrantCreditParams) (*domain.CreditRecord, *domain.Player, error) {
	var record *domain.CreditRecord
	var player *domain.Player
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		record, player, err = s.engine.ExecuteGrantCredit(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("credit granted",
		"record_id", record.ID,
		"player_id", record.PlayerID,
		"amount", record.Amount,
		"balance", player.CreditBalance)
	return record, player, nil
}

// ReceivePayment applies a payment against one credit record.
func (s *CreditService) ReceivePayment(ctx context.Context, params domain.ReceivePaymentParams) (*domain.PaymentResult, error) {
	var result *domain.PaymentResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteReceivePayment(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment received",
		"record_id", params.CreditRecordID,
		"amount", params.Amount,
		"balance", result.Player.CreditBalance)
	return result, nil
}

// PayAcrossRecords settles a lump payment against a player's debts
// oldest-first.
func (s *CreditService) PayAcrossRecords(ctx context.Context, params domain.PayAcrossRecordsParams) (*domain.PaymentResult, error) {
	var result *domain.PaymentResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecutePayAcrossRecords(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment settled across records",
		"player_id", params.PlayerID,
		"amount", params.Amount,
		"receipts", len(result.Receipts),
		"balance", result.Player.CreditBalance)
	return result, nil
}

// PlayerDebt is one unpaid record with its remaining amount.
type PlayerDebt struct {
	Record    domain.CreditRecord `json:"record"`
	Remaining domain.Cents        `json:"remaining"`
}

// ListDebts returns a player's unpaid records oldest-first with remaining
// amounts, plus the receipts already applied against each.
func (s *CreditService) ListDebts(ctx context.Context, playerID uuid.UUID) ([]PlayerDebt, error) {
	var debts []PlayerDebt
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		records, err := tx.Credits().ListUnpaidByPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		for i := range records {
			paid, err := tx.Receipts().SumByRecord(ctx, records[i].ID)
			if err != nil {
				return err
			}
			debts = append(debts, PlayerDebt{
				Record:    records[i],
				Remaining: records[i].Remaining(paid),
			})
		}
		return nil
	})
	return debts, err
}

// ListReceipts returns the payment history of one credit record.
func (s *CreditService) ListReceipts(ctx context.Context, creditRecordID uuid.UUID) ([]domain.PaymentReceipt, error) {
	var receipts []domain.PaymentReceipt
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		receipts, err = tx.Receipts().ListByRecord(ctx, creditRecordID)
		return err
	})
	return receipts, err
}

// RecomputeBalance repairs a player's materialized credit balance from the
// credit records.
func (s *CreditService) RecomputeBalance(ctx context.Context, playerID uuid.UUID) (*domain.Player, error) {
	var player *domain.Player
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		player, err = s.engine.ExecuteRecomputeCreditBalance(ctx, tx, playerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credit balance recomputed", "player_id", playerID, "balance", player.CreditBalance)
	return player, nil
}
