//go:build integration

package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// WithinTx runs fn in a store transaction and fails the test on error.
func (env *TestEnv) WithinTx(fn func(tx repository.Tx) error) {
	env.t.Helper()
	require.NoError(env.t, env.Store.WithinTx(context.Background(), fn))
}

// SeedPlayer inserts an active player with the given fiado limit.
func (env *TestEnv) SeedPlayer(name string, limit domain.Cents) *domain.Player {
	env.t.Helper()
	player := &domain.Player{
		ID:          uuid.New(),
		Name:        name,
		CreditLimit: limit,
		IsActive:    true,
	}
	env.WithinTx(func(tx repository.Tx) error {
		return tx.Players().Create(context.Background(), player)
	})
	return player
}

// SeedSession inserts an open cash session with one active table.
func (env *TestEnv) SeedSession() (*domain.CashSession, *domain.PokerTable) {
	env.t.Helper()
	session := &domain.CashSession{
		ID:          uuid.New(),
		Name:        "caixa integração",
		SessionDate: time.Now().UTC(),
		IsOpen:      true,
	}
	table := &domain.PokerTable{
		ID:        uuid.New(),
		SessionID: session.ID,
		Name:      "mesa 1",
		IsActive:  true,
	}
	env.WithinTx(func(tx repository.Tx) error {
		ctx := context.Background()
		if err := tx.Sessions().Create(ctx, session); err != nil {
			return err
		}
		return tx.Tables().Create(ctx, table)
	})
	return session, table
}
