package reconcile

import "github.com/greenfelt/cardroom/internal/domain"

// Summary is the financial picture of one cash session (or date range).
//
// Balance is the operational balance: buy-ins at face value, bonus and fiado
// included. RealBalance excludes them — it is what the physical drawer
// should actually contain.
type Summary struct {
	TotalBuyIns        domain.Cents `json:"total_buy_ins"`
	TotalCashOuts      domain.Cents `json:"total_cash_outs"`
	TotalBonuses       domain.Cents `json:"total_bonuses"`
	TotalCredits       domain.Cents `json:"total_credits"`
	TotalDealerTips    domain.Cents `json:"total_dealer_tips"`
	TotalDealerPayouts domain.Cents `json:"total_dealer_payouts"`
	TotalRake          domain.Cents `json:"total_rake"`
	Balance            domain.Cents `json:"balance"`
	RealBalance        domain.Cents `json:"real_balance"`
}

// FinalBalance is the house profit/loss number frozen when the session
// closes: the physical drawer position plus rake, minus what left the drawer
// as dealer payouts.
func (s Summary) FinalBalance() domain.Cents {
	return s.RealBalance + s.TotalRake - s.TotalDealerPayouts
}

// BuildSummary folds the session's records into a Summary. A buy-in counts
// as bonus when flagged or when its method is bonus; fiado buy-ins count
// into TotalCredits even though the debt is not yet collected.
func BuildSummary(buyIns []domain.BuyIn, cashOuts []domain.CashOut, tips []domain.DealerTip, payouts []domain.DealerPayout, rake []domain.RakeEntry) Summary {
	var s Summary
	for _, b := range buyIns {
		s.TotalBuyIns += b.Amount
		switch {
		case b.IsBonus || b.Method == domain.MethodBonus:
			s.TotalBonuses += b.Amount
		case b.Method == domain.MethodCreditFiado:
			s.TotalCredits += b.Amount
		}
	}
	for _, c := range cashOuts {
		s.TotalCashOuts += c.ChipValue
	}
	for _, t := range tips {
		s.TotalDealerTips += t.Amount
	}
	for _, p := range payouts {
		s.TotalDealerPayouts += p.Amount
	}
	for _, r := range rake {
		s.TotalRake += r.Amount
	}

	s.Balance = s.TotalBuyIns - s.TotalCashOuts
	s.RealBalance = s.Balance - s.TotalBonuses - s.TotalCredits
	return s
}

// Merge adds another summary into this one, for date-range reporting across
// several sessions.
func (s Summary) Merge(other Summary) Summary {
	s.TotalBuyIns += other.TotalBuyIns
	s.TotalCashOuts += other.TotalCashOuts
	s.TotalBonuses += other.TotalBonuses
	s.TotalCredits += other.TotalCredits
	s.TotalDealerTips += other.TotalDealerTips
	s.TotalDealerPayouts += other.TotalDealerPayouts
	s.TotalRake += other.TotalRake
	s.Balance += other.Balance
	s.RealBalance += other.RealBalance
	return s
}
