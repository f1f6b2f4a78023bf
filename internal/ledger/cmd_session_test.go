package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/reconcile"
	"github.com/greenfelt/cardroom/internal/repository"
)

func (f *fixture) execOpenSession(params domain.OpenSessionParams) (*domain.SessionResult, error) {
	var res *domain.SessionResult
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteOpenSession(f.ctx, tx, params)
		return err
	})
	return res, err
}

func (f *fixture) execCloseSession(params domain.CloseSessionParams) (*domain.SessionResult, reconcile.Summary, error) {
	var (
		res     *domain.SessionResult
		summary reconcile.Summary
	)
	err := f.tx(func(tx repository.Tx) error {
		var err error
		res, summary, err = f.engine.ExecuteCloseSession(f.ctx, tx, params)
		return err
	})
	return res, summary, err
}

func TestExecuteOpenSession(t *testing.T) {
	f := newFixture(t)

	res, err := f.execOpenSession(domain.OpenSessionParams{
		Name:        "caixa 1",
		Responsible: "maria",
	})
	require.NoError(t, err)

	assert.True(t, res.Session.IsOpen)
	assert.Nil(t, res.Session.ClosedAt)
	assert.Nil(t, res.Session.FinalBalance)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventSessionOpened, res.Events[0].EventType)
}

func TestExecuteOpenSession_NameRequired(t *testing.T) {
	f := newFixture(t)
	_, err := f.execOpenSession(domain.OpenSessionParams{})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestExecuteOpenSession_AdoptsSameDayOrphans(t *testing.T) {
	f := newFixture(t)
	player := f.seedPlayer("joao", 0)
	tableID := uuid.New()
	now := time.Now().UTC()

	// A terminal recorded movements before the cashier opened the drawer.
	orphan := &domain.BuyIn{
		ID:        uuid.New(),
		TableID:   tableID,
		PlayerID:  player.ID,
		Amount:    10000,
		Method:    domain.MethodCash,
		CreatedAt: now,
	}
	yesterday := &domain.BuyIn{
		ID:        uuid.New(),
		TableID:   tableID,
		PlayerID:  player.ID,
		Amount:    5000,
		Method:    domain.MethodCash,
		CreatedAt: now.AddDate(0, 0, -1),
	}
	f.mustTx(func(tx repository.Tx) error {
		if err := tx.BuyIns().Insert(f.ctx, orphan); err != nil {
			return err
		}
		return tx.BuyIns().Insert(f.ctx, yesterday)
	})

	res, err := f.execOpenSession(domain.OpenSessionParams{Name: "caixa 1", Date: now})
	require.NoError(t, err)

	var adopted []domain.BuyIn
	f.mustTx(func(tx repository.Tx) error {
		var err error
		adopted, err = tx.BuyIns().ListBySession(f.ctx, res.Session.ID)
		return err
	})
	require.Len(t, adopted, 1)
	assert.Equal(t, orphan.ID, adopted[0].ID)
}

func TestExecuteCloseSession(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)
	dealer := f.seedDealer("carlos")

	seedBuyIn := func(amount domain.Cents, method domain.PaymentMethod) {
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
			Amount: amount, Method: method,
		})
		require.NoError(t, err)
	}
	seedBuyIn(50000, domain.MethodCash)
	seedBuyIn(10000, domain.MethodBonus)
	seedBuyIn(20000, domain.MethodCreditFiado)

	_, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		ChipValue: 30000, Method: domain.MethodCash,
	})
	require.NoError(t, err)

	f.mustTx(func(tx repository.Tx) error {
		_, err := f.engine.ExecuteRecordRake(f.ctx, tx, domain.RecordRakeParams{
			TableID: table.ID, SessionID: session.ID, Amount: 5000,
		})
		return err
	})
	f.mustTx(func(tx repository.Tx) error {
		_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 2000,
		})
		return err
	})
	f.mustTx(func(tx repository.Tx) error {
		_, err := f.engine.ExecuteRecordDealerPayout(f.ctx, tx, domain.RecordPayoutParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 1000,
		})
		return err
	})

	res, summary, err := f.execCloseSession(domain.CloseSessionParams{
		SessionID: session.ID,
		Notes:     "fechamento sem sobras",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(80000), summary.TotalBuyIns)
	assert.Equal(t, domain.Cents(50000), summary.Balance)
	assert.Equal(t, domain.Cents(20000), summary.RealBalance)
	assert.Equal(t, domain.Cents(24000), summary.FinalBalance())

	assert.False(t, res.Session.IsOpen)
	require.NotNil(t, res.Session.FinalBalance)
	assert.Equal(t, domain.Cents(24000), *res.Session.FinalBalance)
	assert.NotNil(t, res.Session.ClosedAt)
	assert.Equal(t, "fechamento sem sobras", res.Session.Notes)

	// Closing deactivates the session's tables.
	var tables []domain.PokerTable
	f.mustTx(func(tx repository.Tx) error {
		var err error
		tables, err = tx.Tables().ListBySession(f.ctx, session.ID)
		return err
	})
	require.Len(t, tables, 1)
	assert.False(t, tables[0].IsActive)

	// And mutations against the closed session are rejected.
	_, err = f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 1000, Method: domain.MethodCash,
	})
	requireCode(t, err, "SESSION_CLOSED")
}

func TestExecuteCloseSession_AlreadyClosed(t *testing.T) {
	f := newFixture(t)
	session := f.seedClosedSession()

	_, _, err := f.execCloseSession(domain.CloseSessionParams{SessionID: session.ID})
	requireCode(t, err, "SESSION_CLOSED")
}

func TestExecuteReopenSession(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	f.seedTable(session.ID)

	_, _, err := f.execCloseSession(domain.CloseSessionParams{SessionID: session.ID})
	require.NoError(t, err)

	var res *domain.SessionResult
	f.mustTx(func(tx repository.Tx) error {
		var err error
		res, err = f.engine.ExecuteReopenSession(f.ctx, tx, session.ID)
		return err
	})

	assert.True(t, res.Session.IsOpen)
	assert.Nil(t, res.Session.ClosedAt)
	// The frozen final balance survives the reopen.
	require.NotNil(t, res.Session.FinalBalance)

	// Tables do not come back on reopen.
	var tables []domain.PokerTable
	f.mustTx(func(tx repository.Tx) error {
		var err error
		tables, err = tx.Tables().ListBySession(f.ctx, session.ID)
		return err
	})
	require.Len(t, tables, 1)
	assert.False(t, tables[0].IsActive)
}

func TestExecuteReopenSession_AlreadyOpen(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()

	err := f.tx(func(tx repository.Tx) error {
		_, err := f.engine.ExecuteReopenSession(f.ctx, tx, session.ID)
		return err
	})
	requireCode(t, err, "CONFLICT")
}

func TestExecuteDeleteSession_ReversesFiado(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 20000, Method: domain.MethodCreditFiado,
	})
	require.NoError(t, err)
	require.Equal(t, domain.Cents(20000), f.player(player.ID).CreditBalance)

	rev, err := f.execDelete(f.engine.ExecuteDeleteSession, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSessionDeleted, rev.AuditEntry.Action)

	// The cascade took the buy-in and its unpaid record; the balance was
	// compensated first.
	assert.Equal(t, domain.Cents(0), f.player(player.ID).CreditBalance)
	assert.Empty(t, f.unpaidRecords(player.ID))

	f.mustTx(func(tx repository.Tx) error {
		session, err := tx.Sessions().FindByID(f.ctx, session.ID)
		require.Nil(t, session)
		return err
	})
}

func TestExecuteDeleteTable_ReversesFiado(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	other := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 20000, Method: domain.MethodCreditFiado,
	})
	require.NoError(t, err)
	_, err = f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: other.ID, PlayerID: player.ID,
		Amount: 5000, Method: domain.MethodCash,
	})
	require.NoError(t, err)

	rev, err := f.execDelete(f.engine.ExecuteDeleteTable, table.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTableDeleted, rev.AuditEntry.Action)

	assert.Equal(t, domain.Cents(0), f.player(player.ID).CreditBalance)
	assert.Empty(t, f.buyInsAtTable(table.ID))
	// The other table is untouched.
	assert.Len(t, f.buyInsAtTable(other.ID), 1)
}
