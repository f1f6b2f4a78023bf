package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod enumerates the fixed set of settlement methods.
type PaymentMethod string

const (
	MethodPix         PaymentMethod = "pix"
	MethodCash        PaymentMethod = "cash"
	MethodDebit       PaymentMethod = "debit"
	MethodCredit      PaymentMethod = "credit"
	MethodCreditFiado PaymentMethod = "credit_fiado"
	MethodBonus       PaymentMethod = "bonus"
	MethodFichas      PaymentMethod = "fichas"
)

// BuyInMethods lists the methods accepted on a buy-in. fichas is payout-only.
var BuyInMethods = map[PaymentMethod]bool{
	MethodPix:         true,
	MethodCash:        true,
	MethodDebit:       true,
	MethodCredit:      true,
	MethodCreditFiado: true,
	MethodBonus:       true,
}

// PayoutMethods lists the methods accepted on a cash-out or credit payment.
// credit_fiado and bonus are buy-in-only.
var PayoutMethods = map[PaymentMethod]bool{
	MethodPix:    true,
	MethodCash:   true,
	MethodDebit:  true,
	MethodCredit: true,
	MethodFichas: true,
}

// BuyIn represents a club_buy_ins row: money or credit a player contributes
// to get chips at a table. A credit_fiado buy-in has exactly one linked
// CreditRecord created in the same transaction.
type BuyIn struct {
	ID        uuid.UUID     `json:"id"`
	TableID   uuid.UUID     `json:"table_id"`
	PlayerID  uuid.UUID     `json:"player_id"`
	SessionID *uuid.UUID    `json:"session_id,omitempty"`
	Amount    Cents         `json:"amount"`
	Method    PaymentMethod `json:"method"`
	IsBonus   bool          `json:"is_bonus"`
	CreatedAt time.Time     `json:"created_at"`
}

// CashOut represents a club_cash_outs row. TotalBuyIn is the player's
// outstanding net contribution at this table captured at cash-out time, so a
// cash-out always settles the player's table session in full.
type CashOut struct {
	ID         uuid.UUID     `json:"id"`
	TableID    uuid.UUID     `json:"table_id"`
	PlayerID   uuid.UUID     `json:"player_id"`
	SessionID  *uuid.UUID    `json:"session_id,omitempty"`
	ChipValue  Cents         `json:"chip_value"`
	TotalBuyIn Cents         `json:"total_buy_in"`
	Profit     Cents         `json:"profit"`
	Method     PaymentMethod `json:"method"`
	CreatedAt  time.Time     `json:"created_at"`
}

// RakeEntry represents a club_rake_entries row: house commission collected
// from a table, independent of player buy-ins.
type RakeEntry struct {
	ID        uuid.UUID  `json:"id"`
	TableID   uuid.UUID  `json:"table_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Amount    Cents      `json:"amount"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DealerTip represents a club_dealer_tips row (caixinha). Tips accumulate
// into the dealer's TotalTips counter.
type DealerTip struct {
	ID        uuid.UUID  `json:"id"`
	DealerID  uuid.UUID  `json:"dealer_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Amount    Cents      `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}

// DealerPayout represents a club_dealer_payouts row. Payouts reduce the
// owed computation only, never the cumulative TotalTips counter.
type DealerPayout struct {
	ID        uuid.UUID  `json:"id"`
	DealerID  uuid.UUID  `json:"dealer_id"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Amount    Cents      `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}
