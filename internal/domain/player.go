package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a club_players row.
//
// CreditBalance is a materialized counter: at all times it must equal the sum
// of remaining amounts across the player's unpaid credit records. It is only
// ever mutated inside the same transaction as the credit record or receipt
// that justifies the change; RecomputeCreditBalance repairs drift.
type Player struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CreditBalance Cents     `json:"credit_balance"`
	CreditLimit   Cents     `json:"credit_limit"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AvailableCredit returns how much more fiado the player may be extended.
func (p *Player) AvailableCredit() Cents {
	return p.CreditLimit - p.CreditBalance
}

// Dealer represents a club_dealers row.
//
// TotalTips is a cumulative counter: payouts never decrement it. The amount
// currently owed to a dealer is tips-to-date minus payouts-to-date, computed
// on read.
type Dealer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TotalTips Cents     `json:"total_tips"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
