package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/reconcile"
	"github.com/greenfelt/cardroom/internal/repository"
)

// ExecuteOpenSession opens a cash session and adopts any session-less
// records created on the same day. Orphans happen when a terminal records
// movements before the cashier opens the drawer; adoption attaches them so
// the close-out summary does not miss money.
func (e *Engine) ExecuteOpenSession(ctx context.Context, tx repository.Tx, params domain.OpenSessionParams) (*domain.SessionResult, error) {
	if params.Name == "" {
		return nil, domain.ErrValidation("session name is required")
	}
	date := params.Date
	if date.IsZero() {
		date = now()
	}

	session := &domain.CashSession{
		ID:               uuid.New(),
		Name:             params.Name,
		Responsible:      params.Responsible,
		SessionDate:      date,
		IsOpen:           true,
		InitialInventory: params.InitialInventory,
		CreatedAt:        now(),
	}
	if err := tx.Sessions().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := e.adoptOrphans(ctx, tx, date, session.ID); err != nil {
		return nil, err
	}

	events := []domain.OutboxDraft{domain.NewSessionEvent(domain.EventSessionOpened, session)}
	if err := emit(ctx, tx, events...); err != nil {
		return nil, err
	}
	return &domain.SessionResult{Session: session, Events: events}, nil
}

func (e *Engine) adoptOrphans(ctx context.Context, tx repository.Tx, day time.Time, sessionID uuid.UUID) error {
	adopters := []func(context.Context, time.Time, uuid.UUID) (int64, error){
		tx.BuyIns().AdoptOrphans,
		tx.CashOuts().AdoptOrphans,
		tx.Tips().AdoptOrphans,
		tx.Payouts().AdoptOrphans,
		tx.Rake().AdoptOrphans,
	}
	for _, adopt := range adopters {
		if _, err := adopt(ctx, day, sessionID); err != nil {
			return fmt.Errorf("adopt orphans: %w", err)
		}
	}
	return nil
}

// ExecuteCloseSession reconciles and freezes a session. The summary is built
// inside the same transaction that flips is_open, so no movement can slip in
// between the count and the freeze. Tables are deactivated first; the frozen
// final balance is RealBalance + rake - dealer payouts.
func (e *Engine) ExecuteCloseSession(ctx context.Context, tx repository.Tx, params domain.CloseSessionParams) (*domain.SessionResult, reconcile.Summary, error) {
	session, err := e.requireOpenSession(ctx, tx, params.SessionID)
	if err != nil {
		return nil, reconcile.Summary{}, fmt.Errorf("close session: %w", err)
	}

	summary, err := e.SessionSummary(ctx, tx, session.ID)
	if err != nil {
		return nil, reconcile.Summary{}, err
	}

	if err := tx.Tables().DeactivateBySession(ctx, session.ID); err != nil {
		return nil, reconcile.Summary{}, fmt.Errorf("deactivate tables: %w", err)
	}

	closed, err := tx.Sessions().Close(ctx, session.ID, summary.FinalBalance(), params.FinalInventory, params.Notes, now())
	if err != nil {
		return nil, reconcile.Summary{}, fmt.Errorf("close session: %w", err)
	}

	events := []domain.OutboxDraft{domain.NewSessionEvent(domain.EventSessionClosed, closed)}
	if err := emit(ctx, tx, events...); err != nil {
		return nil, reconcile.Summary{}, err
	}
	return &domain.SessionResult{Session: closed, Events: events}, summary, nil
}

// ExecuteReopenSession reopens a closed session for corrections. The frozen
// final balance is kept until the session is closed again; the tables stay
// inactive.
func (e *Engine) ExecuteReopenSession(ctx context.Context, tx repository.Tx, sessionID uuid.UUID) (*domain.SessionResult, error) {
	session, err := tx.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound("cash session", sessionID.String())
	}
	if session.IsOpen {
		return nil, domain.ErrConflict(fmt.Sprintf("cash session %s is already open", sessionID))
	}

	reopened, err := tx.Sessions().Reopen(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("reopen session: %w", err)
	}

	events := []domain.OutboxDraft{domain.NewSessionEvent(domain.EventSessionReopened, reopened)}
	if err := emit(ctx, tx, events...); err != nil {
		return nil, err
	}
	return &domain.SessionResult{Session: reopened, Events: events}, nil
}

// ExecuteDeleteSession removes a session and everything it owns: tables,
// buy-ins, cash-outs, rake, tips and payouts. Unpaid fiado records linked to
// cascaded buy-ins are reversed player by player before the cascade, so no
// balance is left pointing at a deleted debt. The deletion is audited but
// not undoable.
func (e *Engine) ExecuteDeleteSession(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	session, err := tx.Sessions().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound("cash session", params.ID.String())
	}

	snapshot, _ := json.Marshal(session)
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionSessionDeleted,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	buyIns, err := tx.BuyIns().ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	if err := e.reverseCreditsForBuyIns(ctx, tx, buyIns); err != nil {
		return nil, err
	}

	if err := tx.Sessions().Delete(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}

	result := &domain.ReversalResult{
		AuditEntry: entry,
		Events:     []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, session.ID.String())},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// ExecuteDeleteTable removes a table and its buy-ins, cash-outs and rake
// entries, reversing linked fiado first. Audited, not undoable.
func (e *Engine) ExecuteDeleteTable(ctx context.Context, tx repository.Tx, params domain.DeleteRecordParams) (*domain.ReversalResult, error) {
	table, err := tx.Tables().FindByID(ctx, params.ID)
	if err != nil {
		return nil, fmt.Errorf("find table: %w", err)
	}
	if table == nil {
		return nil, domain.ErrNotFound("table", params.ID.String())
	}

	snapshot, _ := json.Marshal(table)
	entry := &domain.AuditEntry{
		ID:        uuid.New(),
		Action:    domain.ActionTableDeleted,
		Operator:  params.Operator,
		Snapshot:  snapshot,
		CreatedAt: now(),
	}
	if err := tx.Audit().Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}

	buyIns, err := tx.BuyIns().ListByTable(ctx, table.ID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	if err := e.reverseCreditsForBuyIns(ctx, tx, buyIns); err != nil {
		return nil, err
	}

	if err := tx.Tables().Delete(ctx, table.ID); err != nil {
		return nil, fmt.Errorf("delete table: %w", err)
	}

	result := &domain.ReversalResult{
		AuditEntry: entry,
		Events:     []domain.OutboxDraft{domain.NewRecordCancelledEvent(entry, table.ID.String())},
	}
	if err := emit(ctx, tx, result.Events...); err != nil {
		return nil, err
	}
	return result, nil
}

// reverseCreditsForBuyIns applies the fiado compensation for every
// credit_fiado buy-in in a cascade set, locking each affected player once.
func (e *Engine) reverseCreditsForBuyIns(ctx context.Context, tx repository.Tx, buyIns []domain.BuyIn) error {
	locked := make(map[uuid.UUID]bool)
	for i := range buyIns {
		if buyIns[i].Method != domain.MethodCreditFiado {
			continue
		}
		if !locked[buyIns[i].PlayerID] {
			if _, err := e.lockPlayer(ctx, tx, buyIns[i].PlayerID); err != nil {
				return fmt.Errorf("reverse credits: %w", err)
			}
			locked[buyIns[i].PlayerID] = true
		}
		if _, err := e.reverseCreditFromDeletedBuyIn(ctx, tx, buyIns[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// SessionSummary builds the live reconciliation summary for a session.
func (e *Engine) SessionSummary(ctx context.Context, tx repository.Tx, sessionID uuid.UUID) (reconcile.Summary, error) {
	buyIns, err := tx.BuyIns().ListBySession(ctx, sessionID)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("list buy-ins: %w", err)
	}
	cashOuts, err := tx.CashOuts().ListBySession(ctx, sessionID)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("list cash-outs: %w", err)
	}
	tips, err := tx.Tips().ListBySession(ctx, sessionID)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("list tips: %w", err)
	}
	payouts, err := tx.Payouts().ListBySession(ctx, sessionID)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("list payouts: %w", err)
	}
	rake, err := tx.Rake().ListBySession(ctx, sessionID)
	if err != nil {
		return reconcile.Summary{}, fmt.Errorf("list rake: %w", err)
	}
	return reconcile.BuildSummary(buyIns, cashOuts, tips, payouts, rake), nil
}
