package domain

import (
	"time"

	"github.com/google/uuid"
)

// CashSession represents one cash-drawer operating period. A calendar date
// may have zero, one, or many sessions (multiple drawers per day).
//
// FinalBalance is frozen at close time and survives a reopen; it only changes
// if the session is closed again.
type CashSession struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Responsible      string        `json:"responsible"`
	SessionDate      time.Time     `json:"session_date"`
	IsOpen           bool          `json:"is_open"`
	InitialInventory ChipInventory `json:"initial_inventory,omitempty"`
	FinalInventory   ChipInventory `json:"final_inventory,omitempty"`
	FinalBalance     *Cents        `json:"final_balance,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	ClosedAt         *time.Time    `json:"closed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// PokerTable represents a table owned by exactly one cash session. Tables are
// active only while their session is open; closing the session deactivates
// them and reopening does not bring them back.
type PokerTable struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
