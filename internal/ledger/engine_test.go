package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
	"github.com/greenfelt/cardroom/internal/repository/memory"
)

// fixture wires the engine to the in-memory store. Every command runs
// through a real WithinTx, so a failing command is also a rollback test.
type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memory.New(),
		engine: NewEngine(),
	}
}

func (f *fixture) tx(fn func(tx repository.Tx) error) error {
	return f.store.WithinTx(f.ctx, fn)
}

func (f *fixture) mustTx(fn func(tx repository.Tx) error) {
	f.t.Helper()
	require.NoError(f.t, f.tx(fn))
}

// --- seed helpers ---

func (f *fixture) seedPlayer(name string, limit domain.Cents) *domain.Player {
	f.t.Helper()
	player := &domain.Player{
		ID:          uuid.New(),
		Name:        name,
		CreditLimit: limit,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	f.mustTx(func(tx repository.Tx) error {
		return tx.Players().Create(f.ctx, player)
	})
	return player
}

func (f *fixture) seedSession() *domain.CashSession {
	f.t.Helper()
	session := &domain.CashSession{
		ID:          uuid.New(),
		Name:        "caixa 1",
		Responsible: "maria",
		SessionDate: time.Now().UTC(),
		IsOpen:      true,
		CreatedAt:   time.Now().UTC(),
	}
	f.mustTx(func(tx repository.Tx) error {
		return tx.Sessions().Create(f.ctx, session)
	})
	return session
}

func (f *fixture) seedClosedSession() *domain.CashSession {
	f.t.Helper()
	session := f.seedSession()
	f.mustTx(func(tx repository.Tx) error {
		closed, err := tx.Sessions().Close(f.ctx, session.ID, 0, nil, "", time.Now().UTC())
		if err == nil {
			*session = *closed
		}
		return err
	})
	return session
}

func (f *fixture) seedTable(sessionID uuid.UUID) *domain.PokerTable {
	f.t.Helper()
	table := &domain.PokerTable{
		ID:        uuid.New(),
		SessionID: sessionID,
		Name:      "mesa 1",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.mustTx(func(tx repository.Tx) error {
		return tx.Tables().Create(f.ctx, table)
	})
	return table
}

func (f *fixture) seedDealer(name string) *domain.Dealer {
	f.t.Helper()
	dealer := &domain.Dealer{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	f.mustTx(func(tx repository.Tx) error {
		return tx.Dealers().Create(f.ctx, dealer)
	})
	return dealer
}

// --- command wrappers ---

func (f *fixture) execBuyIn(params domain.BuyInParams) (*domain.BuyInResult, error) {
	var res *domain.BuyInResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteBuyIn(f.ctx, tx, params)
		return err
	})
	return res, err
}

func (f *fixture) execCashOut(params domain.CashOutParams) (*domain.CashOutResult, error) {
	var res *domain.CashOutResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteCashOut(f.ctx, tx, params)
		return err
	})
	return res, err
}

func (f *fixture) execGrantCredit(params domain.GrantCreditParams) (*domain.CreditRecord, *domain.Player, error) {
	var (
		record *domain.CreditRecord
		player *domain.Player
	)
	err := f.tx(func(tx repository.Tx) error {
		var err error
		record, player, err = f.engine.ExecuteGrantCredit(f.ctx, tx, params)
		return err
	})
	return record, player, err
}

func (f *fixture) execReceivePayment(params domain.ReceivePaymentParams) (*domain.PaymentResult, error) {
	var res *domain.PaymentResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteReceivePayment(f.ctx, tx, params)
		return err
	})
	return res, err
}

func (f *fixture) execPayAcross(params domain.PayAcrossRecordsParams) (*domain.PaymentResult, error) {
	var res *domain.PaymentResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecutePayAcrossRecords(f.ctx, tx, params)
		return err
	})
	return res, err
}

func (f *fixture) execDelete(exec func(context.Context, repository.Tx, domain.DeleteRecordParams) (*domain.ReversalResult, error), id uuid.UUID) (*domain.ReversalResult, error) {
	var res *domain.ReversalResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = exec(f.ctx, tx, domain.DeleteRecordParams{ID: id, Operator: "maria"})
		return err
	})
	return res, err
}

func (f *fixture) execUndo(auditID uuid.UUID) (*domain.UndoResult, error) {
	var res *domain.UndoResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteUndo(f.ctx, tx, auditID)
		return err
	})
	return res, err
}

// --- state readers ---

func (f *fixture) player(id uuid.UUID) *domain.Player {
	f.t.Helper()
	var player *domain.Player
	f.mustTx(func(tx repository.Tx) error {
		var err error
		player, err = tx.Players().FindByID(f.ctx, id)
		return err
	})
	require.NotNil(f.t, player)
	return player
}

func (f *fixture) dealer(id uuid.UUID) *domain.Dealer {
	f.t.Helper()
	var dealer *domain.Dealer
	f.mustTx(func(tx repository.Tx) error {
		var err error
		dealer, err = tx.Dealers().FindByID(f.ctx, id)
		return err
	})
	require.NotNil(f.t, dealer)
	return dealer
}

func (f *fixture) unpaidRecords(playerID uuid.UUID) []domain.CreditRecord {
	f.t.Helper()
	var records []domain.CreditRecord
	f.mustTx(func(tx repository.Tx) error {
		var err error
		records, err = tx.Credits().ListUnpaidByPlayer(f.ctx, playerID)
		return err
	})
	return records
}

func (f *fixture) buyInsAtTable(tableID uuid.UUID) []domain.BuyIn {
	f.t.Helper()
	var buyIns []domain.BuyIn
	f.mustTx(func(tx repository.Tx) error {
		var err error
		buyIns, err = tx.BuyIns().ListByTable(f.ctx, tableID)
		return err
	})
	return buyIns
}

func (f *fixture) outboxEvents() []domain.OutboxRow {
	f.t.Helper()
	var rows []domain.OutboxRow
	f.mustTx(func(tx repository.Tx) error {
		var err error
		rows, err = tx.Outbox().FetchUnpublished(f.ctx, 0)
		return err
	})
	return rows
}

// requireCode asserts that err unwraps to an AppError with the given code.
func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
