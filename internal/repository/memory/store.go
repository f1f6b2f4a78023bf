// Package memory is the in-memory store adapter. It backs unit tests and
// single-terminal demo runs; the pgx adapter in repository/postgres is the
// production one. Transactions are all-or-nothing: WithinTx snapshots the
// whole state and restores it when fn fails.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

type state struct {
	players   map[uuid.UUID]domain.Player
	tables    map[uuid.UUID]domain.PokerTable
	sessions  map[uuid.UUID]domain.CashSession
	buyIns    map[uuid.UUID]domain.BuyIn
	cashOuts  map[uuid.UUID]domain.CashOut
	credits   map[uuid.UUID]domain.CreditRecord
	receipts  map[uuid.UUID]domain.PaymentReceipt
	dealers   map[uuid.UUID]domain.Dealer
	tips      map[uuid.UUID]domain.DealerTip
	payouts   map[uuid.UUID]domain.DealerPayout
	rake      map[uuid.UUID]domain.RakeEntry
	audit     map[uuid.UUID]domain.AuditEntry
	chipTypes []domain.ChipType

	outbox    []domain.OutboxRow
	outboxSeq int64

	// seq preserves insertion order for created_at tie-breaks.
	seq     map[uuid.UUID]int64
	nextSeq int64
}

func newState() *state {
	return &state{
		players:  make(map[uuid.UUID]domain.Player),
		tables:   make(map[uuid.UUID]domain.PokerTable),
		sessions: make(map[uuid.UUID]domain.CashSession),
		buyIns:   make(map[uuid.UUID]domain.BuyIn),
		cashOuts: make(map[uuid.UUID]domain.CashOut),
		credits:  make(map[uuid.UUID]domain.CreditRecord),
		receipts: make(map[uuid.UUID]domain.PaymentReceipt),
		dealers:  make(map[uuid.UUID]domain.Dealer),
		tips:     make(map[uuid.UUID]domain.DealerTip),
		payouts:  make(map[uuid.UUID]domain.DealerPayout),
		rake:     make(map[uuid.UUID]domain.RakeEntry),
		audit:    make(map[uuid.UUID]domain.AuditEntry),
		seq:      make(map[uuid.UUID]int64),
	}
}

func (s *state) track(id uuid.UUID) {
	s.nextSeq++
	s.seq[id] = s.nextSeq
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		players:   cloneMap(s.players),
		tables:    cloneMap(s.tables),
		sessions:  cloneMap(s.sessions),
		buyIns:    cloneMap(s.buyIns),
		cashOuts:  cloneMap(s.cashOuts),
		credits:   cloneMap(s.credits),
		receipts:  cloneMap(s.receipts),
		dealers:   cloneMap(s.dealers),
		tips:      cloneMap(s.tips),
		payouts:   cloneMap(s.payouts),
		rake:      cloneMap(s.rake),
		audit:     cloneMap(s.audit),
		chipTypes: append([]domain.ChipType(nil), s.chipTypes...),
		outbox:    append([]domain.OutboxRow(nil), s.outbox...),
		outboxSeq: s.outboxSeq,
		seq:       cloneMap(s.seq),
		nextSeq:   s.nextSeq,
	}
	return c
}

// Store is the in-memory repository.Store implementation.
type Store struct {
	mu sync.Mutex
	st *state
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{st: newState()}
}

// WithinTx serializes all transactions behind one mutex. Rollback restores
// the pre-transaction snapshot, so fn's effects are genuinely atomic.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	tx := &memTx{st: s.st}
	if err := fn(tx); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type memTx struct {
	st *state
}

func (t *memTx) Players() repository.PlayerRepository    { return &playerRepo{st: t.st} }
func (t *memTx) Tables() repository.TableRepository      { return &tableRepo{st: t.st} }
func (t *memTx) Sessions() repository.SessionRepository  { return &sessionRepo{st: t.st} }
func (t *memTx) BuyIns() repository.BuyInRepository      { return &buyInRepo{st: t.st} }
func (t *memTx) CashOuts() repository.CashOutRepository  { return &cashOutRepo{st: t.st} }
func (t *memTx) Credits() repository.CreditRepository    { return &creditRepo{st: t.st} }
func (t *memTx) Receipts() repository.ReceiptRepository  { return &receiptRepo{st: t.st} }
func (t *memTx) Dealers() repository.DealerRepository    { return &dealerRepo{st: t.st} }
func (t *memTx) Tips() repository.TipRepository          { return &tipRepo{st: t.st} }
func (t *memTx) Payouts() repository.PayoutRepository    { return &payoutRepo{st: t.st} }
func (t *memTx) Rake() repository.RakeRepository         { return &rakeRepo{st: t.st} }
func (t *memTx) Audit() repository.AuditRepository       { return &auditRepo{st: t.st} }
func (t *memTx) Outbox() repository.OutboxRepository     { return &outboxRepo{st: t.st} }
func (t *memTx) ChipTypes() repository.ChipTypeRepository { return &chipTypeRepo{st: t.st} }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
