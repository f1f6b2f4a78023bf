// Package reconcile holds the pure read-side aggregations: who has chips in
// play at a table, and what a cash session's drawer should contain. Every
// function here is a deterministic fold over record slices, so the in-memory
// and persisted read paths cannot disagree — they call the same code.
package reconcile

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
)

// ActiveSession is one player's current net chip exposure at a table.
type ActiveSession struct {
	PlayerID   uuid.UUID    `json:"player_id"`
	Total      domain.Cents `json:"total"`
	BuyInCount int          `json:"buy_in_count"`
	StartTime  time.Time    `json:"start_time"`
}

// ActiveSessions groups buy-ins by player, sums amounts, and subtracts the
// total_buy_in of each cash-out by the same player. A player whose net is
// zero or below has cashed out and is absent from the result: amount in
// equal to amount out means not seated.
func ActiveSessions(buyIns []domain.BuyIn, cashOuts []domain.CashOut) []ActiveSession {
	byPlayer := make(map[uuid.UUID]*ActiveSession)
	for _, b := range buyIns {
		s, ok := byPlayer[b.PlayerID]
		if !ok {
			s = &ActiveSession{PlayerID: b.PlayerID, StartTime: b.CreatedAt}
			byPlayer[b.PlayerID] = s
		}
		s.Total += b.Amount
		s.BuyInCount++
		if b.CreatedAt.Before(s.StartTime) {
			s.StartTime = b.CreatedAt
		}
	}
	for _, c := range cashOuts {
		if s, ok := byPlayer[c.PlayerID]; ok {
			s.Total -= c.TotalBuyIn
		}
	}

	out := make([]ActiveSession, 0, len(byPlayer))
	for _, s := range byPlayer {
		if s.Total > 0 {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].PlayerID.String() < out[j].PlayerID.String()
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// OutstandingAtTable returns one player's current net contribution at a
// table — the amount a cash-out right now would attribute as total_buy_in.
func OutstandingAtTable(buyIns []domain.BuyIn, cashOuts []domain.CashOut, playerID uuid.UUID) domain.Cents {
	var net domain.Cents
	for _, b := range buyIns {
		if b.PlayerID == playerID {
			net += b.Amount
		}
	}
	for _, c := range cashOuts {
		if c.PlayerID == playerID {
			net -= c.TotalBuyIn
		}
	}
	return net
}
