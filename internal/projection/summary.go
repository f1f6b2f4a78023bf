package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/greenfelt/cardroom/internal/reconcile"
)

// Session summaries are the hottest read: the cashier screen refreshes them
// constantly while records trickle in. They are cached under a short TTL and
// invalidated on every write that touches the session.

func summaryKey(sessionID string) string {
	return fmt.Sprintf("projection:summary:%s", sessionID)
}

// UpdateSummary caches a session's reconciliation summary.
func UpdateSummary(ctx context.Context, store Store, sessionID string, s reconcile.Summary, ttl time.Duration) error {
	return SetJSON(ctx, store, summaryKey(sessionID), s, ttl)
}

// GetSummary retrieves a cached session summary. Returns an error on miss.
func GetSummary(ctx context.Context, store Store, sessionID string) (*reconcile.Summary, error) {
	var s reconcile.Summary
	if err := GetJSON(ctx, store, summaryKey(sessionID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// InvalidateSummary removes a session's cached summary.
func InvalidateSummary(ctx context.Context, store Store, sessionID string) error {
	return store.Delete(ctx, summaryKey(sessionID))
}

func activeKey(tableID string) string {
	return fmt.Sprintf("projection:active:%s", tableID)
}

// UpdateActiveSessions caches the per-table active player list.
func UpdateActiveSessions(ctx context.Context, store Store, tableID string, sessions []reconcile.ActiveSession, ttl time.Duration) error {
	return SetJSON(ctx, store, activeKey(tableID), sessions, ttl)
}

// GetActiveSessions retrieves the cached active player list for a table.
func GetActiveSessions(ctx context.Context, store Store, tableID string) ([]reconcile.ActiveSession, error) {
	var sessions []reconcile.ActiveSession
	if err := GetJSON(ctx, store, activeKey(tableID), &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// InvalidateActiveSessions removes a table's cached active player list.
func InvalidateActiveSessions(ctx context.Context, store Store, tableID string) error {
	return store.Delete(ctx, activeKey(tableID))
}
