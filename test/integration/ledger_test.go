//go:build integration

package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/ledger"
	"github.com/greenfelt/cardroom/internal/repository"
	"github.com/greenfelt/cardroom/test/integration/testutil"
)

// ─── Buy-In Tests ───────────────────────────────────────────────────────────

func TestBuyIn_CashPersists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	engine := ledger.NewEngine()
	ctx := context.Background()

	session, table := env.SeedSession()
	player := env.SeedPlayer("joao", 50000)

	var result *domain.BuyInResult
	env.WithinTx(func(tx repository.Tx) error {
		var err error
		result, err = engine.ExecuteBuyIn(ctx, tx, domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    10000,
			Method:    domain.MethodCash,
		})
		return err
	})

	// Re-read through a fresh transaction: the row must be durable.
	env.WithinTx(func(tx repository.Tx) error {
		got, err := tx.BuyIns().FindByID(ctx, result.BuyIn.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(10000), got.Amount)
		assert.Equal(t, domain.MethodCash, got.Method)
		return nil
	})
}

func TestBuyIn_FiadoRollsBackOnLimitBreach(t *testing.T) {
	env := testutil.NewTestEnv(t)
	engine := ledger.NewEngine()
	ctx := context.Background()

	session, table := env.SeedSession()
	player := env.SeedPlayer("maria", 50000)

	err := env.Store.WithinTx(ctx, func(tx repository.Tx) error {
		_, err := engine.ExecuteBuyIn(ctx, tx, domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    60000,
			Method:    domain.MethodCreditFiado,
		})
		return err
	})

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "LIMIT_EXCEEDED", appErr.Code)

	env.WithinTx(func(tx repository.Tx) error {
		got, err := tx.Players().FindByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(0), got.CreditBalance)

		records, err := tx.Credits().ListUnpaidByPlayer(ctx, player.ID)
		require.NoError(t, err)
		assert.Empty(t, records)

		buyIns, err := tx.BuyIns().ListByTable(ctx, table.ID)
		require.NoError(t, err)
		assert.Empty(t, buyIns)
		return nil
	})
}

// ─── Fiado Settlement Tests ─────────────────────────────────────────────────

func TestFiado_PaymentAllocatesOldestFirst(t *testing.T) {
	env := testutil.NewTestEnv(t)
	engine := ledger.NewEngine()
	ctx := context.Background()

	session, table := env.SeedSession()
	player := env.SeedPlayer("pedro", 100000)

	for _, amount := range []domain.Cents{5000, 3000} {
		env.WithinTx(func(tx repository.Tx) error {
			_, err := engine.ExecuteBuyIn(ctx, tx, domain.BuyInParams{
				SessionID: session.ID,
				TableID:   table.ID,
				PlayerID:  player.ID,
				Amount:    amount,
				Method:    domain.MethodCreditFiado,
			})
			return err
		})
	}

	var result *domain.PaymentResult
	env.WithinTx(func(tx repository.Tx) error {
		var err error
		result, err = engine.ExecutePayAcrossRecords(ctx, tx, domain.PayAcrossRecordsParams{
			PlayerID: player.ID,
			Amount:   6000,
			Method:   domain.MethodPix,
		})
		return err
	})

	require.Len(t, result.Receipts, 2)
	assert.Equal(t, domain.Cents(5000), result.Receipts[0].Amount)
	assert.Equal(t, domain.Cents(1000), result.Receipts[1].Amount)

	env.WithinTx(func(tx repository.Tx) error {
		got, err := tx.Players().FindByID(ctx, player.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(2000), got.CreditBalance)

		unpaid, err := tx.Credits().ListUnpaidByPlayer(ctx, player.ID)
		require.NoError(t, err)
		require.Len(t, unpaid, 1)
		assert.Equal(t, domain.Cents(3000), unpaid[0].Amount)
		return nil
	})
}

// ─── Undo Tests ─────────────────────────────────────────────────────────────

func TestUndo_RestoresDeletedBuyIn(t *testing.T) {
	env := testutil.NewTestEnv(t)
	engine := ledger.NewEngine()
	ctx := context.Background()

	session, table := env.SeedSession()
	player := env.SeedPlayer("ana", 50000)

	var buyIn *domain.BuyInResult
	env.WithinTx(func(tx repository.Tx) error {
		var err error
		buyIn, err = engine.ExecuteBuyIn(ctx, tx, domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    10000,
			Method:    domain.MethodCash,
		})
		return err
	})

	var rev *domain.ReversalResult
	env.WithinTx(func(tx repository.Tx) error {
		var err error
		rev, err = engine.ExecuteDeleteBuyIn(ctx, tx, domain.DeleteRecordParams{
			ID:       buyIn.BuyIn.ID,
			Operator: "carlos",
		})
		return err
	})
	assert.Equal(t, "carlos", rev.AuditEntry.Operator)

	env.WithinTx(func(tx repository.Tx) error {
		_, err := engine.ExecuteUndo(ctx, tx, rev.AuditEntry.ID)
		return err
	})

	env.WithinTx(func(tx repository.Tx) error {
		buyIns, err := tx.BuyIns().ListByTable(ctx, table.ID)
		require.NoError(t, err)
		require.Len(t, buyIns, 1)
		assert.Equal(t, domain.Cents(10000), buyIns[0].Amount)
		return nil
	})

	// The audit entry was consumed.
	err := env.Store.WithinTx(ctx, func(tx repository.Tx) error {
		_, err := engine.ExecuteUndo(ctx, tx, rev.AuditEntry.ID)
		return err
	})
	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

// ─── Outbox Tests ───────────────────────────────────────────────────────────

func TestOutbox_EventsPublishedOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	engine := ledger.NewEngine()
	ctx := context.Background()

	session, table := env.SeedSession()
	player := env.SeedPlayer("rui", 50000)

	env.WithinTx(func(tx repository.Tx) error {
		_, err := engine.ExecuteBuyIn(ctx, tx, domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    10000,
			Method:    domain.MethodCash,
		})
		return err
	})

	env.WithinTx(func(tx repository.Tx) error {
		rows, err := tx.Outbox().FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		seqs := make([]int64, 0, len(rows))
		for _, row := range rows {
			seqs = append(seqs, row.SeqID)
		}
		return tx.Outbox().MarkPublished(ctx, seqs)
	})

	env.WithinTx(func(tx repository.Tx) error {
		rows, err := tx.Outbox().FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, rows)
		return nil
	})
}
