package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

func TestExecuteRecordDealerTip(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	dealer := f.seedDealer("carlos")

	var (
		tip     *domain.DealerTip
		updated *domain.Dealer
	)
	f.mustTx(func(tx repository.Tx) error {
		var err error
		tip, updated, err = f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 2000,
		})
		return err
	})

	assert.Equal(t, domain.Cents(2000), tip.Amount)
	assert.Equal(t, domain.Cents(2000), updated.TotalTips)

	f.mustTx(func(tx repository.Tx) error {
		var err error
		_, updated, err = f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 3000,
		})
		return err
	})
	assert.Equal(t, domain.Cents(5000), updated.TotalTips)
}

func TestExecuteRecordDealerPayout(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	dealer := f.seedDealer("carlos")

	for _, amount := range []domain.Cents{2000, 3000} {
		f.mustTx(func(tx repository.Tx) error {
			_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
				DealerID: dealer.ID, SessionID: session.ID, Amount: amount,
			})
			return err
		})
	}

	f.mustTx(func(tx repository.Tx) error {
		payout, err := f.engine.ExecuteRecordDealerPayout(f.ctx, tx, domain.RecordPayoutParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 5000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Cents(5000), payout.Amount)
		return nil
	})

	// Owed went to zero; the cumulative counter did not move.
	var owed domain.Cents
	f.mustTx(func(tx repository.Tx) error {
		var err error
		owed, err = f.engine.DealerOwed(f.ctx, tx, dealer.ID)
		return err
	})
	assert.Equal(t, domain.Cents(0), owed)
	assert.Equal(t, domain.Cents(5000), f.dealer(dealer.ID).TotalTips)
}

func TestExecuteRecordDealerPayout_ExceedsOwed(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	dealer := f.seedDealer("carlos")

	f.mustTx(func(tx repository.Tx) error {
		_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 2000,
		})
		return err
	})

	err := f.tx(func(tx repository.Tx) error {
		_, err := f.engine.ExecuteRecordDealerPayout(f.ctx, tx, domain.RecordPayoutParams{
			DealerID: dealer.ID, SessionID: session.ID, Amount: 2001,
		})
		return err
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestExecuteRecordDealerTip_Rejections(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	dealer := f.seedDealer("carlos")

	t.Run("closed session", func(t *testing.T) {
		closed := f.seedClosedSession()
		err := f.tx(func(tx repository.Tx) error {
			_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
				DealerID: dealer.ID, SessionID: closed.ID, Amount: 1000,
			})
			return err
		})
		requireCode(t, err, "SESSION_CLOSED")
	})

	t.Run("unknown dealer", func(t *testing.T) {
		err := f.tx(func(tx repository.Tx) error {
			_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
				DealerID: session.ID, SessionID: session.ID, Amount: 1000,
			})
			return err
		})
		requireCode(t, err, "NOT_FOUND")
	})

	t.Run("zero amount", func(t *testing.T) {
		err := f.tx(func(tx repository.Tx) error {
			_, _, err := f.engine.ExecuteRecordDealerTip(f.ctx, tx, domain.RecordTipParams{
				DealerID: dealer.ID, SessionID: session.ID, Amount: 0,
			})
			return err
		})
		requireCode(t, err, "VALIDATION_ERROR")
	})
}

func TestDealerOwed_UnknownDealer(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	err := f.tx(func(tx repository.Tx) error {
		_, err := f.engine.DealerOwed(f.ctx, tx, session.ID)
		return err
	})
	requireCode(t, err, "NOT_FOUND")
}
