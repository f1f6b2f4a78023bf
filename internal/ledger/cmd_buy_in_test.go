package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

func TestExecuteBuyIn_Cash(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	res, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    10000,
		Method:    domain.MethodCash,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Cents(10000), res.BuyIn.Amount)
	assert.Equal(t, &session.ID, res.BuyIn.SessionID)
	assert.False(t, res.BuyIn.IsBonus)
	assert.Nil(t, res.Credit)

	require.Len(t, f.buyInsAtTable(table.ID), 1)

	events := f.outboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventBuyInRecorded, events[0].EventType)
	assert.Equal(t, player.ID.String(), events[0].PartitionKey)
}

func TestExecuteBuyIn_InlinePlayerCreation(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)

	res, err := f.execBuyIn(domain.BuyInParams{
		SessionID:  session.ID,
		TableID:    table.ID,
		PlayerName: "visitante",
		Amount:     5000,
		Method:     domain.MethodPix,
	})
	require.NoError(t, err)
	assert.Equal(t, "visitante", res.Player.Name)
	assert.True(t, res.Player.IsActive)

	// A second buy-in under the same name reuses the player.
	res2, err := f.execBuyIn(domain.BuyInParams{
		SessionID:  session.ID,
		TableID:    table.ID,
		PlayerName: "visitante",
		Amount:     3000,
		Method:     domain.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, res.Player.ID, res2.Player.ID)
}

func TestExecuteBuyIn_Fiado(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	res, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    20000,
		Method:    domain.MethodCreditFiado,
	})
	require.NoError(t, err)

	require.NotNil(t, res.Credit)
	assert.Equal(t, domain.Cents(20000), res.Credit.Amount)
	assert.False(t, res.Credit.IsPaid)
	require.NotNil(t, res.Credit.BuyInID)
	assert.Equal(t, res.BuyIn.ID, *res.Credit.BuyInID)

	assert.Equal(t, domain.Cents(20000), f.player(player.ID).CreditBalance)

	events := f.outboxEvents()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventCreditGranted, events[0].EventType)
	assert.Equal(t, domain.EventBuyInRecorded, events[1].EventType)
}

func TestExecuteBuyIn_FiadoLimitExceeded(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    48000,
		Method:    domain.MethodCreditFiado,
	})
	require.NoError(t, err)

	// 48000 + 5000 > 50000: the grant is rejected outright, never clamped.
	_, err = f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    5000,
		Method:    domain.MethodCreditFiado,
	})
	requireCode(t, err, "LIMIT_EXCEEDED")

	// The whole transaction rolled back: no second buy-in, no second
	// record, balance untouched.
	assert.Len(t, f.buyInsAtTable(table.ID), 1)
	assert.Len(t, f.unpaidRecords(player.ID), 1)
	assert.Equal(t, domain.Cents(48000), f.player(player.ID).CreditBalance)
}

func TestExecuteBuyIn_FiadoExactlyAtLimit(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 50000)

	_, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    50000,
		Method:    domain.MethodCreditFiado,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Cents(50000), f.player(player.ID).CreditBalance)
	assert.Equal(t, domain.Cents(0), f.player(player.ID).AvailableCredit())
}

func TestExecuteBuyIn_BonusMethodSetsFlag(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	res, err := f.execBuyIn(domain.BuyInParams{
		SessionID: session.ID,
		TableID:   table.ID,
		PlayerID:  player.ID,
		Amount:    10000,
		Method:    domain.MethodBonus,
	})
	require.NoError(t, err)
	assert.True(t, res.BuyIn.IsBonus)
	assert.Nil(t, res.Credit)
	assert.Equal(t, domain.Cents(0), f.player(player.ID).CreditBalance)
}

func TestExecuteBuyIn_Rejections(t *testing.T) {
	f := newFixture(t)
	session := f.seedSession()
	table := f.seedTable(session.ID)
	player := f.seedPlayer("joao", 0)

	t.Run("closed session", func(t *testing.T) {
		closed := f.seedClosedSession()
		closedTable := f.seedTable(closed.ID)
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: closed.ID,
			TableID:   closedTable.ID,
			PlayerID:  player.ID,
			Amount:    1000,
			Method:    domain.MethodCash,
		})
		requireCode(t, err, "SESSION_CLOSED")
	})

	t.Run("inactive table", func(t *testing.T) {
		inactive := f.seedTable(session.ID)
		f.mustTx(func(tx repository.Tx) error {
			return tx.Tables().SetActive(f.ctx, inactive.ID, false)
		})
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID,
			TableID:   inactive.ID,
			PlayerID:  player.ID,
			Amount:    1000,
			Method:    domain.MethodCash,
		})
		requireCode(t, err, "CONFLICT")
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    0,
			Method:    domain.MethodCash,
		})
		requireCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("payout-only method", func(t *testing.T) {
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			PlayerID:  player.ID,
			Amount:    1000,
			Method:    domain.MethodFichas,
		})
		requireCode(t, err, "VALIDATION_ERROR")
	})

	t.Run("no player reference", func(t *testing.T) {
		_, err := f.execBuyIn(domain.BuyInParams{
			SessionID: session.ID,
			TableID:   table.ID,
			Amount:    1000,
			Method:    domain.MethodCash,
		})
		requireCode(t, err, "VALIDATION_ERROR")
	})
}
