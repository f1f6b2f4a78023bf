//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates all tables in reverse-dependency order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"club_audit_log",
		"club_payment_receipts",
		"club_credit_records",
		"club_rake_entries",
		"club_dealer_payouts",
		"club_dealer_tips",
		"club_cash_outs",
		"club_buy_ins",
		"club_tables",
		"club_cash_sessions",
		"club_chip_types",
		"club_dealers",
		"club_players",
	}

	for _, table := range tables {
		if _, err := env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			env.t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
