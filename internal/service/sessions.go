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

// SessionsService handles the cash-session lifecycle, tables and the
// reconciliation reads.
type SessionsService struct {
	store  repository.Store
	engine *ledger.Engine
	cache  projection.Store
	logger *slog.Logger
	ttl    time.Duration
}

// NewSessionsService creates a SessionsService.
func NewSessionsService(store repository.Store, engine *ledger.Engine, cache projection.Store, logger *slog.Logger, ttl time.Duration) *SessionsService {
	return &SessionsService{store: store, engine: engine, cache: cache, logger: logger, ttl: ttl}
}

// OpenSession opens a cash session and adopts same-day orphan records.
func (s *SessionsService) OpenSession(ctx context.Context, params domain.OpenSessionParams) (*domain.SessionResult, error) {
	var result *domain.SessionResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteOpenSession(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session opened", "session_id", result.Session.ID, "name", result.Session.Name)
	return result, nil
}

// CloseSession reconciles and freezes a session, returning the summary that
// produced the frozen final balance.
func (s *SessionsService) CloseSession(ctx context.Context, params domain.CloseSessionParams) (*domain.SessionResult, reconcile.Summary, error) {
	var result *domain.SessionResult
	var summary reconcile.Summary
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, summary, err = s.engine.ExecuteCloseSession(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, reconcile.Summary{}, err
	}

	projection.InvalidateSummary(ctx, s.cache, params.SessionID.String())
	s.logger.Info("session closed",
		"session_id", result.Session.ID,
		"final_balance", summary.FinalBalance())
	return result, summary, nil
}

// ReopenSession reopens a closed session for corrections.
func (s *SessionsService) ReopenSession(ctx context.Context, sessionID uuid.UUID) (*domain.SessionResult, error) {
	var result *domain.SessionResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteReopenSession(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("session reopened", "session_id", sessionID)
	return result, nil
}

// DeleteSession removes a session and everything it owns.
func (s *SessionsService) DeleteSession(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	var result *domain.ReversalResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteDeleteSession(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	projection.InvalidateSummary(ctx, s.cache, params.ID.String())
	s.logger.Info("session deleted", "session_id", params.ID, "operator", params.Operator)
	return result, nil
}

// GetSession returns one session by id.
func (s *SessionsService) GetSession(ctx context.Context, sessionID uuid.UUID) (*domain.CashSession, error) {
	var session *domain.CashSession
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		session, err = tx.Sessions().FindByID(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound("cash session", sessionID.String())
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionsService) ListSessions(ctx context.Context) ([]domain.CashSession, error) {
	var sessions []domain.CashSession
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		sessions, err = tx.Sessions().List(ctx)
		return err
	})
	return sessions, err
}

// Summary returns a session's live reconciliation summary, cached under a
// short TTL.
func (s *SessionsService) Summary(ctx context.Context, sessionID uuid.UUID) (reconcile.Summary, error) {
	if cached, err := projection.GetSummary(ctx, s.cache, sessionID.String()); err == nil {
		return *cached, nil
	}

	var summary reconcile.Summary
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		session, err := tx.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound("cash session", sessionID.String())
		}
		summary, err = s.engine.SessionSummary(ctx, tx, sessionID)
		return err
	})
	if err != nil {
		return reconcile.Summary{}, err
	}

	projection.UpdateSummary(ctx, s.cache, sessionID.String(), summary, s.ttl)
	return summary, nil
}

// RangeSummary merges the summaries of every session dated within [from, to]
// inclusive, walking day by day.
func (s *SessionsService) RangeSummary(ctx context.Context, from, to time.Time) (reconcile.Summary, error) {
	var merged reconcile.Summary
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			sessions, err := tx.Sessions().ListByDate(ctx, day)
			if err != nil {
				return err
			}
			for i := range sessions {
				summary, err := s.engine.SessionSummary(ctx, tx, sessions[i].ID)
				if err != nil {
					return err
				}
				merged = merged.Merge(summary)
			}
		}
		return nil
	})
	return merged, err
}

// CreateTable adds a table to an open session.
func (s *SessionsService) CreateTable(ctx context.Context, sessionID uuid.UUID, name string) (*domain.PokerTable, error) {
	if name == "" {
		return nil, domain.ErrValidation("table name is required")
	}

	table := &domain.PokerTable{
		ID:        uuid.New(),
		SessionID: sessionID,
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		session, err := tx.Sessions().FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return domain.ErrNotFound("cash session", sessionID.String())
		}
		if !session.IsOpen {
			return domain.ErrSessionClosed(sessionID.String())
		}
		return tx.Tables().Create(ctx, table)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("table created", "table_id", table.ID, "session_id", sessionID, "name", name)
	return table, nil
}

// ListTables returns a session's tables.
func (s *SessionsService) ListTables(ctx context.Context, sessionID uuid.UUID) ([]domain.PokerTable, error) {
	var tables []domain.PokerTable
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		tables, err = tx.Tables().ListBySession(ctx, sessionID)
		return err
	})
	return tables, err
}

// DeleteTable removes a table and its records.
func (s *SessionsService) DeleteTable(ctx context.Context, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	var result *domain.ReversalResult
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		result, err = s.engine.ExecuteDeleteTable(ctx, tx, params)
		return err
	})
	if err != nil {
		return nil, err
	}

	projection.InvalidateActiveSessions(ctx, s.cache, params.ID.String())
	s.logger.Info("table deleted", "table_id", params.ID, "operator", params.Operator)
	return result, nil
}

// InventoryValue prices a chip inventory using the current chip types.
func (s *SessionsService) InventoryValue(ctx context.Context, inv domain.ChipInventory) (domain.Cents, error) {
	var value domain.Cents
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		chipTypes, err := tx.ChipTypes().List(ctx)
		if err != nil {
			return err
		}
		value = inv.Value(chipTypes)
		return nil
	})
	return value, err
}
