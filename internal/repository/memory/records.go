package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
)

func sortBySeq[T any](st *state, rows []T, id func(T) uuid.UUID) {
	sort.Slice(rows, func(i, j int) bool { return st.seq[id(rows[i])] < st.seq[id(rows[j])] })
}

type buyInRepo struct{ st *state }

func (r *buyInRepo) Insert(_ context.Context, b *domain.BuyIn) error {
	r.st.buyIns[b.ID] = *b
	r.st.track(b.ID)
	return nil
}

func (r *buyInRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.BuyIn, error) {
	if b, ok := r.st.buyIns[id]; ok {
		return &b, nil
	}
	return nil, nil
}

// Delete mirrors the FK cascade: credit records linked to the buy-in go
// with it, and their receipts go with them.
func (r *buyInRepo) Delete(_ context.Context, id uuid.UUID) error {
	for cid, c := range r.st.credits {
		if c.BuyInID != nil && *c.BuyInID == id {
			deleteCreditCascade(r.st, cid)
		}
	}
	delete(r.st.buyIns, id)
	return nil
}

func (r *buyInRepo) ListByTable(_ context.Context, tableID uuid.UUID) ([]domain.BuyIn, error) {
	var out []domain.BuyIn
	for _, b := range r.st.buyIns {
		if b.TableID == tableID {
			out = append(out, b)
		}
	}
	sortBySeq(r.st, out, func(b domain.BuyIn) uuid.UUID { return b.ID })
	return out, nil
}

func (r *buyInRepo) ListByTablePlayer(_ context.Context, tableID, playerID uuid.UUID) ([]domain.BuyIn, error) {
	var out []domain.BuyIn
	for _, b := range r.st.buyIns {
		if b.TableID == tableID && b.PlayerID == playerID {
			out = append(out, b)
		}
	}
	sortBySeq(r.st, out, func(b domain.BuyIn) uuid.UUID { return b.ID })
	return out, nil
}

func (r *buyInRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.BuyIn, error) {
	var out []domain.BuyIn
	for _, b := range r.st.buyIns {
		if b.SessionID != nil && *b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	sortBySeq(r.st, out, func(b domain.BuyIn) uuid.UUID { return b.ID })
	return out, nil
}

func (r *buyInRepo) AdoptOrphans(_ context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, b := range r.st.buyIns {
		if b.SessionID == nil && sameDay(b.CreatedAt, day) {
			sid := sessionID
			b.SessionID = &sid
			r.st.buyIns[id] = b
			n++
		}
	}
	return n, nil
}

type cashOutRepo struct{ st *state }

func (r *cashOutRepo) Insert(_ context.Context, c *domain.CashOut) error {
	r.st.cashOuts[c.ID] = *c
	r.st.track(c.ID)
	return nil
}

func (r *cashOutRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.CashOut, error) {
	if c, ok := r.st.cashOuts[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *cashOutRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.st.cashOuts, id)
	return nil
}

func (r *cashOutRepo) ListByTable(_ context.Context, tableID uuid.UUID) ([]domain.CashOut, error) {
	var out []domain.CashOut
	for _, c := range r.st.cashOuts {
		if c.TableID == tableID {
			out = append(out, c)
		}
	}
	sortBySeq(r.st, out, func(c domain.CashOut) uuid.UUID { return c.ID })
	return out, nil
}

func (r *cashOutRepo) ListByTablePlayer(_ context.Context, tableID, playerID uuid.UUID) ([]domain.CashOut, error) {
	var out []domain.CashOut
	for _, c := range r.st.cashOuts {
		if c.TableID == tableID && c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	sortBySeq(r.st, out, func(c domain.CashOut) uuid.UUID { return c.ID })
	return out, nil
}

func (r *cashOutRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.CashOut, error) {
	var out []domain.CashOut
	for _, c := range r.st.cashOuts {
		if c.SessionID != nil && *c.SessionID == sessionID {
			out = append(out, c)
		}
	}
	sortBySeq(r.st, out, func(c domain.CashOut) uuid.UUID { return c.ID })
	return out, nil
}

func (r *cashOutRepo) AdoptOrphans(_ context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, c := range r.st.cashOuts {
		if c.SessionID == nil && sameDay(c.CreatedAt, day) {
			sid := sessionID
			c.SessionID = &sid
			r.st.cashOuts[id] = c
			n++
		}
	}
	return n, nil
}

func deleteCreditCascade(st *state, creditID uuid.UUID) {
	for rid, rcpt := range st.receipts {
		if rcpt.CreditRecordID == creditID {
			delete(st.receipts, rid)
		}
	}
	delete(st.credits, creditID)
}

type creditRepo struct{ st *state }

func (r *creditRepo) Insert(_ context.Context, rec *domain.CreditRecord) error {
	r.st.credits[rec.ID] = *rec
	r.st.track(rec.ID)
	return nil
}

func (r *creditRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.CreditRecord, error) {
	if c, ok := r.st.credits[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *creditRepo) FindByBuyIn(_ context.Context, buyInID uuid.UUID) (*domain.CreditRecord, error) {
	for _, c := range r.st.credits {
		if c.BuyInID != nil && *c.BuyInID == buyInID {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (r *creditRepo) ListUnpaidByPlayer(_ context.Context, playerID uuid.UUID) ([]domain.CreditRecord, error) {
	var out []domain.CreditRecord
	for _, c := range r.st.credits {
		if c.PlayerID == playerID && !c.IsPaid {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return r.st.seq[out[i].ID] < r.st.seq[out[j].ID]
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *creditRepo) MarkPaid(_ context.Context, id uuid.UUID, paidAt time.Time) error {
	if c, ok := r.st.credits[id]; ok {
		c.IsPaid = true
		at := paidAt
		c.PaidAt = &at
		r.st.credits[id] = c
	}
	return nil
}

func (r *creditRepo) DetachBuyIn(_ context.Context, buyInID uuid.UUID) error {
	for id, c := range r.st.credits {
		if c.BuyInID != nil && *c.BuyInID == buyInID {
			c.BuyInID = nil
			r.st.credits[id] = c
		}
	}
	return nil
}

func (r *creditRepo) Delete(_ context.Context, id uuid.UUID) error {
	deleteCreditCascade(r.st, id)
	return nil
}

type receiptRepo struct{ st *state }

func (r *receiptRepo) Insert(_ context.Context, rcpt *domain.PaymentReceipt) error {
	r.st.receipts[rcpt.ID] = *rcpt
	r.st.track(rcpt.ID)
	return nil
}

func (r *receiptRepo) ListByRecord(_ context.Context, creditRecordID uuid.UUID) ([]domain.PaymentReceipt, error) {
	var out []domain.PaymentReceipt
	for _, rcpt := range r.st.receipts {
		if rcpt.CreditRecordID == creditRecordID {
			out = append(out, rcpt)
		}
	}
	sortBySeq(r.st, out, func(p domain.PaymentReceipt) uuid.UUID { return p.ID })
	return out, nil
}

func (r *receiptRepo) SumByRecord(_ context.Context, creditRecordID uuid.UUID) (domain.Cents, error) {
	var total domain.Cents
	for _, rcpt := range r.st.receipts {
		if rcpt.CreditRecordID == creditRecordID {
			total += rcpt.Amount
		}
	}
	return total, nil
}

type tipRepo struct{ st *state }

func (r *tipRepo) Insert(_ context.Context, t *domain.DealerTip) error {
	r.st.tips[t.ID] = *t
	r.st.track(t.ID)
	return nil
}

func (r *tipRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.DealerTip, error) {
	if t, ok := r.st.tips[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *tipRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.st.tips, id)
	return nil
}

func (r *tipRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.DealerTip, error) {
	var out []domain.DealerTip
	for _, t := range r.st.tips {
		if t.SessionID != nil && *t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sortBySeq(r.st, out, func(t domain.DealerTip) uuid.UUID { return t.ID })
	return out, nil
}

func (r *tipRepo) SumByDealer(_ context.Context, dealerID uuid.UUID) (domain.Cents, error) {
	var total domain.Cents
	for _, t := range r.st.tips {
		if t.DealerID == dealerID {
			total += t.Amount
		}
	}
	return total, nil
}

func (r *tipRepo) AdoptOrphans(_ context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, t := range r.st.tips {
		if t.SessionID == nil && sameDay(t.CreatedAt, day) {
			sid := sessionID
			t.SessionID = &sid
			r.st.tips[id] = t
			n++
		}
	}
	return n, nil
}

type payoutRepo struct{ st *state }

func (r *payoutRepo) Insert(_ context.Context, p *domain.DealerPayout) error {
	r.st.payouts[p.ID] = *p
	r.st.track(p.ID)
	return nil
}

func (r *payoutRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.DealerPayout, error) {
	var out []domain.DealerPayout
	for _, p := range r.st.payouts {
		if p.SessionID != nil && *p.SessionID == sessionID {
			out = append(out, p)
		}
	}
	sortBySeq(r.st, out, func(p domain.DealerPayout) uuid.UUID { return p.ID })
	return out, nil
}

func (r *payoutRepo) SumByDealer(_ context.Context, dealerID uuid.UUID) (domain.Cents, error) {
	var total domain.Cents
	for _, p := range r.st.payouts {
		if p.DealerID == dealerID {
			total += p.Amount
		}
	}
	return total, nil
}

func (r *payoutRepo) AdoptOrphans(_ context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, p := range r.st.payouts {
		if p.SessionID == nil && sameDay(p.CreatedAt, day) {
			sid := sessionID
			p.SessionID = &sid
			r.st.payouts[id] = p
			n++
		}
	}
	return n, nil
}

type rakeRepo struct{ st *state }

func (r *rakeRepo) Insert(_ context.Context, e *domain.RakeEntry) error {
	r.st.rake[e.ID] = *e
	r.st.track(e.ID)
	return nil
}

func (r *rakeRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.RakeEntry, error) {
	if e, ok := r.st.rake[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *rakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.st.rake, id)
	return nil
}

func (r *rakeRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.RakeEntry, error) {
	var out []domain.RakeEntry
	for _, e := range r.st.rake {
		if e.SessionID != nil && *e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	sortBySeq(r.st, out, func(e domain.RakeEntry) uuid.UUID { return e.ID })
	return out, nil
}

func (r *rakeRepo) AdoptOrphans(_ context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	var n int64
	for id, e := range r.st.rake {
		if e.SessionID == nil && sameDay(e.CreatedAt, day) {
			sid := sessionID
			e.SessionID = &sid
			r.st.rake[id] = e
			n++
		}
	}
	return n, nil
}
