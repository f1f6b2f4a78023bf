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

const sessionColumns = `id, name, responsible, session_date, is_open,
	initial_inventory, final_inventory, final_balance, notes, closed_at, created_at`

type sessionRepo struct {
	tx pgx.Tx
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.CashSession) error {
	initial, err := marshalInventory(session.InitialInventory)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
		INSERT INTO club_cash_sessions
		  (id, name, responsible, session_date, is_open, initial_inventory, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session.ID,
		session.Name,
		session.Responsible,
		session.SessionDate,
		session.IsOpen,
		initial,
		session.Notes,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CashSession, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM club_cash_sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (r *sessionRepo) ListByDate(ctx context.Context, day time.Time) ([]domain.CashSession, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM club_cash_sessions
		WHERE (session_date AT TIME ZONE 'UTC')::date = ($1::timestamptz AT TIME ZONE 'UTC')::date
		ORDER BY created_at DESC`, day)
	if err != nil {
		return nil, fmt.Errorf("list sessions by date: %w", err)
	}
	return collectSessions(rows)
}

func (r *sessionRepo) List(ctx context.Context) ([]domain.CashSession, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM club_cash_sessions
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return collectSessions(rows)
}

func (r *sessionRepo) Close(ctx context.Context, id uuid.UUID, finalBalance domain.Cents, inventory domain.ChipInventory, notes string, closedAt time.Time) (*domain.CashSession, error) {
	final, err := marshalInventory(inventory)
	if err != nil {
		return nil, err
	}
	row := r.tx.QueryRow(ctx, `
		UPDATE club_cash_sessions
		SET is_open = false,
		    final_balance = $2,
		    final_inventory = $3,
		    notes = CASE WHEN $4 <> '' THEN $4 ELSE notes END,
		    closed_at = $5
		WHERE id = $1
		RETURNING `+sessionColumns,
		id, infra.CentsToNumeric(finalBalance), final, notes, closedAt)
	return scanSession(row)
}

func (r *sessionRepo) Reopen(ctx context.Context, id uuid.UUID) (*domain.CashSession, error) {
	row := r.tx.QueryRow(ctx, `
		UPDATE club_cash_sessions
		SET is_open = true, closed_at = NULL
		WHERE id = $1
		RETURNING `+sessionColumns, id)
	return scanSession(row)
}

// Delete relies on ON DELETE CASCADE for everything the session owns.
func (r *sessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_cash_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("cash session", id.String())
	}
	return nil
}

func collectSessions(rows pgx.Rows) ([]domain.CashSession, error) {
	defer rows.Close()
	var sessions []domain.CashSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*domain.CashSession, error) {
	var s domain.CashSession
	var initial, final []byte
	var balNum pgtype.Numeric
	err := row.Scan(&s.ID, &s.Name, &s.Responsible, &s.SessionDate, &s.IsOpen,
		&initial, &final, &balNum, &s.Notes, &s.ClosedAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if s.InitialInventory, err = unmarshalInventory(initial); err != nil {
		return nil, err
	}
	if s.FinalInventory, err = unmarshalInventory(final); err != nil {
		return nil, err
	}
	if balNum.Valid {
		bal, convErr := infra.NumericToCents(balNum)
		if convErr != nil {
			return nil, fmt.Errorf("convert final_balance: %w", convErr)
		}
		s.FinalBalance = &bal
	}
	return &s, nil
}

type tableRepo struct {
	tx pgx.Tx
}

func (r *tableRepo) Create(ctx context.Context, table *domain.PokerTable) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_tables (id, session_id, name, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		table.ID, table.SessionID, table.Name, table.IsActive, table.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	return nil
}

func (r *tableRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.PokerTable, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, session_id, name, is_active, created_at
		FROM club_tables WHERE id = $1`, id)
	return scanTable(row)
}

func (r *tableRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.PokerTable, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, session_id, name, is_active, created_at
		FROM club_tables WHERE session_id = $1
		ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.PokerTable
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, *t)
	}
	return tables, rows.Err()
}

func (r *tableRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE club_tables SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set table active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("table", id.String())
	}
	return nil
}

func (r *tableRepo) DeactivateBySession(ctx context.Context, sessionID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE club_tables SET is_active = false WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("deactivate tables: %w", err)
	}
	return nil
}

// Delete relies on ON DELETE CASCADE for the table's buy-ins, cash-outs and
// rake entries.
func (r *tableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_tables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("table", id.String())
	}
	return nil
}

func scanTable(row pgx.Row) (*domain.PokerTable, error) {
	var t domain.PokerTable
	err := row.Scan(&t.ID, &t.SessionID, &t.Name, &t.IsActive, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan table: %w", err)
	}
	return &t, nil
}
