package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

func TestWithinTx_CommitOnNil(t *testing.T) {
	store := New()
	ctx := context.Background()
	player := &domain.Player{ID: uuid.New(), Name: "joao", IsActive: true}

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Players().Create(ctx, player)
	}))

	var found *domain.Player
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		found, err = tx.Players().FindByID(ctx, player.ID)
		return err
	}))
	require.NotNil(t, found)
	assert.Equal(t, "joao", found.Name)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	player := &domain.Player{ID: uuid.New(), Name: "joao", IsActive: true}
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(tx repository.Tx) error {
		if err := tx.Players().Create(ctx, player); err != nil {
			return err
		}
		if _, err := tx.Players().AdjustCreditBalance(ctx, player.ID, 5000); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// Everything inside the failed transaction is gone.
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Players().FindByID(ctx, player.ID)
		require.Nil(t, found)
		return err
	}))
}

func TestWithinTx_RollbackRestoresPriorState(t *testing.T) {
	store := New()
	ctx := context.Background()
	player := &domain.Player{ID: uuid.New(), Name: "joao", CreditLimit: 10000, IsActive: true}

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Players().Create(ctx, player)
	}))

	_ = store.WithinTx(ctx, func(tx repository.Tx) error {
		_, err := tx.Players().AdjustCreditBalance(ctx, player.ID, 5000)
		require.NoError(t, err)
		return errors.New("abort")
	})

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		found, err := tx.Players().FindByID(ctx, player.ID)
		require.NotNil(t, found)
		assert.Equal(t, domain.Cents(0), found.CreditBalance)
		return err
	}))
}

func TestWithinTx_CancelledContext(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.WithinTx(ctx, func(tx repository.Tx) error {
		t.Fatal("fn must not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutbox_MarkPublishedDeletes(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		for i := 0; i < 3; i++ {
			draft := domain.OutboxDraft{
				EventID:    uuid.New(),
				EventType:  domain.EventBuyInRecorded,
				OccurredAt: time.Now(),
			}
			if err := tx.Outbox().Insert(ctx, draft); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		rows, err := tx.Outbox().FetchUnpublished(ctx, 2)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Less(t, rows[0].SeqID, rows[1].SeqID)
		return tx.Outbox().MarkPublished(ctx, []int64{rows[0].SeqID, rows[1].SeqID})
	}))

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		rows, err := tx.Outbox().FetchUnpublished(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		return err
	}))
}

func TestCreditFIFOOrdering(t *testing.T) {
	store := New()
	ctx := context.Background()
	playerID := uuid.New()
	base := time.Now().UTC()

	// Insert out of chronological order; the listing must come back FIFO.
	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		newer := &domain.CreditRecord{ID: uuid.New(), PlayerID: playerID, Amount: 3000, CreatedAt: base.Add(time.Minute)}
		older := &domain.CreditRecord{ID: uuid.New(), PlayerID: playerID, Amount: 5000, CreatedAt: base}
		if err := tx.Credits().Insert(ctx, newer); err != nil {
			return err
		}
		return tx.Credits().Insert(ctx, older)
	}))

	require.NoError(t, store.WithinTx(ctx, func(tx repository.Tx) error {
		records, err := tx.Credits().ListUnpaidByPlayer(ctx, playerID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, domain.Cents(5000), records[0].Amount)
		assert.Equal(t, domain.Cents(3000), records[1].Amount)
		return err
	}))
}
