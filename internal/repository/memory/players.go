package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
)

type playerRepo struct{ st *state }

func (r *playerRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Player, error) {
	if p, ok := r.st.players[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *playerRepo) FindByName(_ context.Context, name string) (*domain.Player, error) {
	for _, p := range r.st.players {
		if p.IsActive && p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

// LockForUpdate is a plain read: the store mutex already serializes writers.
func (r *playerRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	return r.FindByID(ctx, id)
}

func (r *playerRepo) Create(_ context.Context, player *domain.Player) error {
	r.st.players[player.ID] = *player
	r.st.track(player.ID)
	return nil
}

func (r *playerRepo) AdjustCreditBalance(_ context.Context, id uuid.UUID, delta domain.Cents) (*domain.Player, error) {
	p, ok := r.st.players[id]
	if !ok {
		return nil, nil
	}
	p.CreditBalance += delta
	r.st.players[id] = p
	return &p, nil
}

func (r *playerRepo) SetCreditBalance(_ context.Context, id uuid.UUID, balance domain.Cents) (*domain.Player, error) {
	p, ok := r.st.players[id]
	if !ok {
		return nil, nil
	}
	p.CreditBalance = balance
	r.st.players[id] = p
	return &p, nil
}

func (r *playerRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.st.players[id]; ok {
		p.IsActive = false
		r.st.players[id] = p
	}
	return nil
}

func (r *playerRepo) List(_ context.Context) ([]domain.Player, error) {
	out := make([]domain.Player, 0, len(r.st.players))
	for _, p := range r.st.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return r.st.seq[out[i].ID] < r.st.seq[out[j].ID] })
	return out, nil
}

type dealerRepo struct{ st *state }

func (r *dealerRepo) Create(_ context.Context, d *domain.Dealer) error {
	r.st.dealers[d.ID] = *d
	r.st.track(d.ID)
	return nil
}

func (r *dealerRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Dealer, error) {
	if d, ok := r.st.dealers[id]; ok {
		return &d, nil
	}
	return nil, nil
}

func (r *dealerRepo) List(_ context.Context) ([]domain.Dealer, error) {
	out := make([]domain.Dealer, 0, len(r.st.dealers))
	for _, d := range r.st.dealers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return r.st.seq[out[i].ID] < r.st.seq[out[j].ID] })
	return out, nil
}

func (r *dealerRepo) AdjustTotalTips(_ context.Context, id uuid.UUID, delta domain.Cents) (*domain.Dealer, error) {
	d, ok := r.st.dealers[id]
	if !ok {
		return nil, nil
	}
	d.TotalTips += delta
	r.st.dealers[id] = d
	return &d, nil
}

type auditRepo struct{ st *state }

func (r *auditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.st.audit[e.ID] = *e
	r.st.track(e.ID)
	return nil
}

func (r *auditRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.AuditEntry, error) {
	if e, ok := r.st.audit[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *auditRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.st.audit, id)
	return nil
}

func (r *auditRepo) List(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	out := make([]domain.AuditEntry, 0, len(r.st.audit))
	for _, e := range r.st.audit {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return r.st.seq[out[i].ID] > r.st.seq[out[j].ID] })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type outboxRepo struct{ st *state }

func (r *outboxRepo) Insert(_ context.Context, draft domain.OutboxDraft) error {
	r.st.outboxSeq++
	r.st.outbox = append(r.st.outbox, domain.OutboxRow{SeqID: r.st.outboxSeq, OutboxDraft: draft})
	return nil
}

func (r *outboxRepo) FetchUnpublished(_ context.Context, limit int) ([]domain.OutboxRow, error) {
	n := len(r.st.outbox)
	if limit > 0 && n > limit {
		n = limit
	}
	return append([]domain.OutboxRow(nil), r.st.outbox[:n]...), nil
}

func (r *outboxRepo) MarkPublished(_ context.Context, ids []int64) error {
	published := make(map[int64]bool, len(ids))
	for _, id := range ids {
		published[id] = true
	}
	kept := r.st.outbox[:0]
	for _, row := range r.st.outbox {
		if !published[row.SeqID] {
			kept = append(kept, row)
		}
	}
	r.st.outbox = kept
	return nil
}

type chipTypeRepo struct{ st *state }

func (r *chipTypeRepo) Create(_ context.Context, ct *domain.ChipType) error {
	r.st.chipTypes = append(r.st.chipTypes, *ct)
	return nil
}

func (r *chipTypeRepo) List(_ context.Context) ([]domain.ChipType, error) {
	return append([]domain.ChipType(nil), r.st.chipTypes...), nil
}
