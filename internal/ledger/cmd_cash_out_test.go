package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
)

func TestExecuteCashOut(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	for _, amount := range []domain.Cents{10000, 5000} {
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    amount,
			Method:    domain.MethodCash,
		})
		require.NoError(t, err)
	}

	res, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 20000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)

	// The cash-out attributes the full outstanding net as total_buy_in.
	assert.Equal(t, domain.Cents(15000), res.CashOut.TotalBuyIn)
	assert.Equal(t, domain.Cents(5000), res.CashOut.Profit)
	assert.Empty(t, res.Receipts)
}

func TestExecuteCashOut_NotSeated(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	_, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 5000,
		Method:    domain.MethodCash,
	})
	requireCode(t, err, "CONFLICT")
}

func TestExecuteCashOut_SecondCashOutRejected(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    10000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)

	_, err = f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 12000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)

	// Net is now zero — the player is not seated anymore.
	_, err = f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 1000,
		Method:    domain.MethodCash,
	})
	requireCode(t, err, "CONFLICT")
}

// A player buys in R$ 100,00 cash plus R$ 100,00 fiado and leaves with
// R$ 150,00 in chips: the cash-out settles the table session at a R$ 50,00
// loss, and the fiado debt survives untouched.
func TestExecuteCashOut_MixedBuyIns(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 10000, Method: domain.MethodCash,
	})
	require.NoError(t, err)
	_, err = f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 10000, Method: domain.MethodCreditFiado,
	})
	require.NoError(t, err)

	res, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 15000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(20000), res.CashOut.TotalBuyIn)
	assert.Equal(t, domain.Cents(-5000), res.CashOut.Profit)
	assert.Equal(t, domain.Cents(10000), f.player(player.ID).CreditBalance)
	assert.Len(t, f.unpaidRecords(player.ID), 1)
}

func TestExecuteCashOut_WithDebtPayment(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 10000, Method: domain.MethodCreditFiado,
	})
	require.NoError(t, err)

	res, err := f.execCashOut(domain.CashOutParams{
		SessionID:   session.ID,
		TableID:     table.ID,
		PlayerID:    player.ID,
		ChipValue:   15000,
		Method:      domain.MethodCash,
		DebtPayment: 10000,
	})
	require.NoError(t, err)

	require.Len(t, res.Receipts, 1)
	assert.Equal(t, domain.Cents(10000), res.Receipts[0].Amount)
	assert.Equal(t, domain.Cents(0), f.player(player.ID).CreditBalance)
	assert.Empty(t, f.unpaidRecords(player.ID))
}

func TestExecuteCashOut_DebtPaymentExceedsChips(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 10000, Method: domain.MethodCreditFiado,
	})
	require.NoError(t, err)

	_, err = f.execCashOut(domain.CashOutParams{
		SessionID:   session.ID,
		TableID:     table.ID,
		PlayerID:    player.ID,
		ChipValue:   5000,
		Method:      domain.MethodCash,
		DebtPayment: 8000,
	})
	requireCode(t, err, "VALIDATION_ERROR")

	// Rolled back: the cash-out itself was not kept either.
	assert.Equal(t, domain.Cents(10000), f.player(player.ID).CreditBalance)
	_, err = f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 5000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)
}

func TestExecuteCashOut_NegativeChipValue(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	_, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: -1,
		Method:    domain.MethodCash,
	})
	requireCode(t, err, "VALIDATION_ERROR")
}

func TestExecuteCashOut_ZeroChipsBustedPlayer(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID, TableID: table.ID, PlayerID: player.ID,
		Amount: 10000, Method: domain.MethodCash,
	})
	require.NoError(t, err)

	res, err := f.execCashOut(domain.CashOutParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		ChipValue: 0,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(-10000), res.CashOut.Profit)
}
