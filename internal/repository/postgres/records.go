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

// adoptOrphans attaches session-less rows created on the given UTC day to a
// session. Shared by every per-table repository that supports adoption.
func adoptOrphans(ctx context.Context, tx pgx.Tx, table string, day time.Time, sessionID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET session_id = $2
		WHERE session_id IS NULL
		  AND (created_at AT TIME ZONE 'UTC')::date = ($1::timestamptz AT TIME ZONE 'UTC')::date`,
		table), day, sessionID)
	if err != nil {
		return 0, fmt.Errorf("adopt orphans in %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

type buyInRepo struct {
	tx pgx.Tx
}

const buyInColumns = `id, table_id, player_id, session_id, amount, method, is_bonus, created_at`

func (r *buyInRepo) Insert(ctx context.Context, b *domain.BuyIn) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_buy_ins (id, table_id, player_id, session_id, amount, method, is_bonus, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.TableID, b.PlayerID, b.SessionID,
		infra.CentsToNumeric(b.Amount), string(b.Method), b.IsBonus, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert buy-in: %w", err)
	}
	return nil
}

func (r *buyInRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.BuyIn, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+buyInColumns+`
		FROM club_buy_ins WHERE id = $1`, id)
	return scanBuyIn(row)
}

func (r *buyInRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_buy_ins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete buy-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("buy-in", id.String())
	}
	return nil
}

func (r *buyInRepo) ListByTable(ctx context.Context, tableID uuid.UUID) ([]domain.BuyIn, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+buyInColumns+`
		FROM club_buy_ins WHERE table_id = $1
		ORDER BY created_at ASC`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	return collectBuyIns(rows)
}

func (r *buyInRepo) ListByTablePlayer(ctx context.Context, tableID, playerID uuid.UUID) ([]domain.BuyIn, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+buyInColumns+`
		FROM club_buy_ins WHERE table_id = $1 AND player_id = $2
		ORDER BY created_at ASC`, tableID, playerID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	return collectBuyIns(rows)
}

func (r *buyInRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.BuyIn, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+buyInColumns+`
		FROM club_buy_ins WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list buy-ins: %w", err)
	}
	return collectBuyIns(rows)
}

func (r *buyInRepo) AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	return adoptOrphans(ctx, r.tx, "club_buy_ins", day, sessionID)
}

func collectBuyIns(rows pgx.Rows) ([]domain.BuyIn, error) {
	defer rows.Close()
	var buyIns []domain.BuyIn
	for rows.Next() {
		b, err := scanBuyIn(rows)
		if err != nil {
			return nil, err
		}
		buyIns = append(buyIns, *b)
	}
	return buyIns, rows.Err()
}

func scanBuyIn(row pgx.Row) (*domain.BuyIn, error) {
	var b domain.BuyIn
	var amountNum pgtype.Numeric
	var method string
	err := row.Scan(&b.ID, &b.TableID, &b.PlayerID, &b.SessionID, &amountNum, &method, &b.IsBonus, &b.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan buy-in: %w", err)
	}
	b.Method = domain.PaymentMethod(method)
	if b.Amount, err = infra.NumericToCents(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &b, nil
}

type cashOutRepo struct {
	tx pgx.Tx
}

const cashOutColumns = `id, table_id, player_id, session_id, chip_value, total_buy_in, profit, method, created_at`

func (r *cashOutRepo) Insert(ctx context.Context, c *domain.CashOut) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_cash_outs
		  (id, table_id, player_id, session_id, chip_value, total_buy_in, profit, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.TableID, c.PlayerID, c.SessionID,
		infra.CentsToNumeric(c.ChipValue),
		infra.CentsToNumeric(c.TotalBuyIn),
		infra.CentsToNumeric(c.Profit),
		string(c.Method), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cash-out: %w", err)
	}
	return nil
}

func (r *cashOutRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CashOut, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+cashOutColumns+`
		FROM club_cash_outs WHERE id = $1`, id)
	return scanCashOut(row)
}

func (r *cashOutRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_cash_outs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cash-out: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("cash-out", id.String())
	}
	return nil
}

func (r *cashOutRepo) ListByTable(ctx context.Context, tableID uuid.UUID) ([]domain.CashOut, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+cashOutColumns+`
		FROM club_cash_outs WHERE table_id = $1
		ORDER BY created_at ASC`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list cash-outs: %w", err)
	}
	return collectCashOuts(rows)
}

func (r *cashOutRepo) ListByTablePlayer(ctx context.Context, tableID, playerID uuid.UUID) ([]domain.CashOut, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+cashOutColumns+`
		FROM club_cash_outs WHERE table_id = $1 AND player_id = $2
		ORDER BY created_at ASC`, tableID, playerID)
	if err != nil {
		return nil, fmt.Errorf("list cash-outs: %w", err)
	}
	return collectCashOuts(rows)
}

func (r *cashOutRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.CashOut, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+cashOutColumns+`
		FROM club_cash_outs WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash-outs: %w", err)
	}
	return collectCashOuts(rows)
}

func (r *cashOutRepo) AdoptOrphans(ctx context.Context, day time.Time, sessionID uuid.UUID) (int64, error) {
	return adoptOrphans(ctx, r.tx, "club_cash_outs", day, sessionID)
}

func collectCashOuts(rows pgx.Rows) ([]domain.CashOut, error) {
	defer rows.Close()
	var cashOuts []domain.CashOut
	for rows.Next() {
		c, err := scanCashOut(rows)
		if err != nil {
			return nil, err
		}
		cashOuts = append(cashOuts, *c)
	}
	return cashOuts, rows.Err()
}

func scanCashOut(row pgx.Row) (*domain.CashOut, error) {
	var c domain.CashOut
	var chipNum, totalNum, profitNum pgtype.Numeric
	var method string
	err := row.Scan(&c.ID, &c.TableID, &c.PlayerID, &c.SessionID,
		&chipNum, &totalNum, &profitNum, &method, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan cash-out: %w", err)
	}
	c.Method = domain.PaymentMethod(method)
	if c.ChipValue, err = infra.NumericToCents(chipNum); err != nil {
		return nil, fmt.Errorf("convert chip_value: %w", err)
	}
	if c.TotalBuyIn, err = infra.NumericToCents(totalNum); err != nil {
		return nil, fmt.Errorf("convert total_buy_in: %w", err)
	}
	if c.Profit, err = infra.NumericToCents(profitNum); err != nil {
		return nil, fmt.Errorf("convert profit: %w", err)
	}
	return &c, nil
}
