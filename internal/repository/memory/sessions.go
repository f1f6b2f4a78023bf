package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
)

type sessionRepo struct{ st *state }

func (r *sessionRepo) Create(_ context.Context, s *domain.CashSession) error {
	r.st.sessions[s.ID] = *s
	r.st.track(s.ID)
	return nil
}

func (r *sessionRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.CashSession, error) {
	if s, ok := r.st.sessions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *sessionRepo) ListByDate(_ context.Context, day time.Time) ([]domain.CashSession, error) {
	var out []domain.CashSession
	for _, s := range r.st.sessions {
		if sameDay(s.SessionDate, day) {
			out = append(out, s)
		}
	}
	sortBySeq(r.st, out, func(s domain.CashSession) uuid.UUID { return s.ID })
	return out, nil
}

func (r *sessionRepo) List(_ context.Context) ([]domain.CashSession, error) {
	out := make([]domain.CashSession, 0, len(r.st.sessions))
	for _, s := range r.st.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return r.st.seq[out[i].ID] > r.st.seq[out[j].ID] })
	return out, nil
}

func (r *sessionRepo) Close(_ context.Context, id uuid.UUID, finalBalance domain.Cents, inventory domain.ChipInventory, notes string, closedAt time.Time) (*domain.CashSession, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, nil
	}
	s.IsOpen = false
	fb := finalBalance
	s.FinalBalance = &fb
	s.FinalInventory = inventory
	if notes != "" {
		s.Notes = notes
	}
	at := closedAt
	s.ClosedAt = &at
	r.st.sessions[id] = s
	return &s, nil
}

func (r *sessionRepo) Reopen(_ context.Context, id uuid.UUID) (*domain.CashSession, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return nil, nil
	}
	s.IsOpen = true
	s.ClosedAt = nil
	r.st.sessions[id] = s
	return &s, nil
}

// Delete mirrors the FK cascade: everything the session owns goes with it.
func (r *sessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for tid, t := range r.st.tables {
		if t.SessionID == id {
			deleteTableCascade(r.st, tid)
		}
	}
	for bid, b := range r.st.buyIns {
		if b.SessionID != nil && *b.SessionID == id {
			for cid, c := range r.st.credits {
				if c.BuyInID != nil && *c.BuyInID == bid {
					deleteCreditCascade(r.st, cid)
				}
			}
			delete(r.st.buyIns, bid)
		}
	}
	for cid, c := range r.st.cashOuts {
		if c.SessionID != nil && *c.SessionID == id {
			delete(r.st.cashOuts, cid)
		}
	}
	for rid, e := range r.st.rake {
		if e.SessionID != nil && *e.SessionID == id {
			delete(r.st.rake, rid)
		}
	}
	for tid, t := range r.st.tips {
		if t.SessionID != nil && *t.SessionID == id {
			delete(r.st.tips, tid)
		}
	}
	for pid, p := range r.st.payouts {
		if p.SessionID != nil && *p.SessionID == id {
			delete(r.st.payouts, pid)
		}
	}
	delete(r.st.sessions, id)
	return nil
}

func deleteTableCascade(st *state, tableID uuid.UUID) {
	for bid, b := range st.buyIns {
		if b.TableID == tableID {
			for cid, c := range st.credits {
				if c.BuyInID != nil && *c.BuyInID == bid {
					deleteCreditCascade(st, cid)
				}
			}
			delete(st.buyIns, bid)
		}
	}
	for cid, c := range st.cashOuts {
		if c.TableID == tableID {
			delete(st.cashOuts, cid)
		}
	}
	for rid, e := range st.rake {
		if e.TableID == tableID {
			delete(st.rake, rid)
		}
	}
	delete(st.tables, tableID)
}

type tableRepo struct{ st *state }

func (r *tableRepo) Create(_ context.Context, t *domain.PokerTable) error {
	r.st.tables[t.ID] = *t
	r.st.track(t.ID)
	return nil
}

func (r *tableRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.PokerTable, error) {
	if t, ok := r.st.tables[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *tableRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]domain.PokerTable, error) {
	var out []domain.PokerTable
	for _, t := range r.st.tables {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	sortBySeq(r.st, out, func(t domain.PokerTable) uuid.UUID { return t.ID })
	return out, nil
}

func (r *tableRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	if t, ok := r.st.tables[id]; ok {
		t.IsActive = active
		r.st.tables[id] = t
	}
	return nil
}

func (r *tableRepo) DeactivateBySession(_ context.Context, sessionID uuid.UUID) error {
	for id, t := range r.st.tables {
		if t.SessionID == sessionID && t.IsActive {
			t.IsActive = false
			r.st.tables[id] = t
		}
	}
	return nil
}

func (r *tableRepo) Delete(_ context.Context, id uuid.UUID) error {
	deleteTableCascade(r.st, id)
	return nil
}
