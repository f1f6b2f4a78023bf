package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/infra"
)

type dealerRepo struct {
	tx pgx.Tx
}

const dealerColumns = `id, name, total_tips, is_active, created_at`

func (r *dealerRepo) Create(ctx context.Context, d *domain.Dealer) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_dealers (id, name, total_tips, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, infra.CentsToNumeric(d.TotalTips), d.IsActive, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert dealer: %w", err)
	}
	return nil
}

func (r *dealerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Dealer, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+dealerColumns+`
		FROM club_dealers WHERE id = $1`, id)
	return scanDealer(row)
}

func (r *dealerRepo) List(ctx context.Context) ([]domain.Dealer, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+dealerColumns+`
		FROM club_dealers
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list dealers: %w", err)
	}
	defer rows.Close()

	var dealers []domain.Dealer
	for rows.Next() {
		d, err := scanDealer(rows)
		if err != nil {
			return nil, err
		}
		dealers = append(dealers, *d)
	}
	return dealers, rows.Err()
}

func (r *dealerRepo) AdjustTotalTips(ctx context.Context, id uuid.UUID, delta domain.Cents) (*domain.Dealer, error) {
	row := r.tx.QueryRow(ctx, `
		UPDATE club_dealers
		SET total_tips = total_tips + $2
		WHERE id = $1
		RETURNING `+dealerColumns, id, infra.CentsToNumeric(delta))
	return scanDealer(row)
}

func scanDealer(row pgx.Row) (*domain.Dealer, error) {
	var d domain.Dealer
	var tipsNum pgtype.Numeric
	err := row.Scan(&d.ID, &d.Name, &tipsNum, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan dealer: %w", err)
	}
	if d.TotalTips, err = infra.NumericToCents(tipsNum); err != nil {
		return nil, fmt.Errorf("convert total_tips: %w", err)
	}
	return &d, nil
}

type tipRepo struct {
	tx pgx.Tx
}

func (r *tipRepo) Insert(ctx context.Context, t *domain.DealerTip) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_dealer_tips (id, dealer_id, session_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.DealerID, t.SessionID, infra.CentsToNumeric(t.Amount), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tip: %w", err)
	}
	return nil
}

func (r *tipRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.DealerTip, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, dealer_id, session_id, amount, created_at
		FROM club_dealer_tips WHERE id = $1`, id)
	var t domain.DealerTip
	var amountNum pgtype.Numeric
	err := row.Scan(&t.ID, &t.DealerID, &t.SessionID, &amountNum, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan tip: %w", err)
	}
	if t.Amount, err = infra.NumericToCents(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &t, nil
}

func (r *tipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_dealer_tips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("dealer tip", id.String())
	}
	return nil
}

func (r *tipRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.DealerTip, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, dealer_id, session_id, amount, created_at
		FROM club_dealer_tips WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}
	defer rows.Close()

	var tips []domain.DealerTip
	for rows.Next() {
		var t domain.DealerTip
		var amountNum pgtype.Numeric
		if err := rows.Scan(&t.ID, &t.DealerID, &t.SessionID, &amountNum, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		if t.Amount, err = infra.NumericToCents(amountNum); err != nil {
			return nil, fmt.Errorf("convert amount: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}

func (r *tipRepo) SumByDealer(ctx context.Context, dealerID uuid.UUID) (domain.Cents, error) {
	return sumByDealer(ctx, r.tx, "club_dealer_tips", dealerID)
}

func (r *tipRepo) AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	return adoptOrphans(ctx, r.tx, "club_dealer_tips", day, sessionID)
}

type payoutRepo struct {
	tx pgx.Tx
}

func (r *payoutRepo) Insert(ctx context.Context, p *domain.DealerPayout) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_dealer_payouts (id, dealer_id, session_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.DealerID, p.SessionID, infra.CentsToNumeric(p.Amount), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

func (r *payoutRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.DealerPayout, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, dealer_id, session_id, amount, created_at
		FROM club_dealer_payouts WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var payouts []domain.DealerPayout
	for rows.Next() {
		var p domain.DealerPayout
		var amountNum pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.DealerID, &p.SessionID, &amountNum, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		if p.Amount, err = infra.NumericToCents(amountNum); err != nil {
			return nil, fmt.Errorf("convert amount: %w", err)
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

func (r *payoutRepo) SumByDealer(ctx context.Context, dealerID uuid.UUID) (domain.Cents, error) {
	return sumByDealer(ctx, r.tx, "club_dealer_payouts", dealerID)
}

func (r *payoutRepo) AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	return adoptOrphans(ctx, r.tx, "club_dealer_payouts", day, sessionID)
}

func sumByDealer(ctx context.Context, tx pgx.Tx, table string, dealerID uuid.UUID) (domain.Cents, error) {
	var sumNum pgtype.Numeric
	err := tx.QueryRow(ctx, fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0) FROM %s WHERE dealer_id = $1`, table), dealerID).Scan(&sumNum)
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", table, err)
	}
	return infra.NumericToCents(sumNum)
}

type rakeRepo struct {
	tx pgx.Tx
}

func (r *rakeRepo) Insert(ctx context.Context, entry *domain.RakeEntry) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_rake_entries (id, table_id, session_id, amount, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.TableID, entry.SessionID,
		infra.CentsToNumeric(entry.Amount), entry.Notes, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rake entry: %w", err)
	}
	return nil
}

func (r *rakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.RakeEntry, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, table_id, session_id, amount, notes, created_at
		FROM club_rake_entries WHERE id = $1`, id)
	return scanRake(row)
}

func (r *rakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_rake_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rake entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("rake entry", id.String())
	}
	return nil
}

func (r *rakeRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.RakeEntry, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, table_id, session_id, amount, notes, created_at
		FROM club_rake_entries WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list rake entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.RakeEntry
	for rows.Next() {
		entry, err := scanRake(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func (r *rakeRepo) AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	return adoptOrphans(ctx, r.tx, "club_rake_entries", day, sessionID)
}

func scanRake(row pgx.Row) (*domain.RakeEntry, error) {
	var entry domain.RakeEntry
	var amountNum pgtype.Numeric
	err := row.Scan(&entry.ID, &entry.TableID, &entry.SessionID, &amountNum, &entry.Notes, &entry.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan rake entry: %w", err)
	}
	if entry.Amount, err = infra.NumericToCents(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &entry, nil
}
