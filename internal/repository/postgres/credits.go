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

type creditRepo struct {
	tx pgx.Tx
}

const creditColumns = `id, player_id, buy_in_id, amount, is_paid, paid_at, created_at`

func (r *creditRepo) Insert(ctx context.Context, record *domain.CreditRecord) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_credit_records (id, player_id, buy_in_id, amount, is_paid, paid_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.PlayerID, record.BuyInID,
		infra.CentsToNumeric(record.Amount), record.IsPaid, record.PaidAt, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert credit record: %w", err)
	}
	return nil
}

func (r *creditRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.CreditRecord, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+creditColumns+`
		FROM club_credit_records WHERE id = $1`, id)
	return scanCredit(row)
}

func (r *creditRepo) FindByBuyIn(ctx context.Context, buyInID uuid.UUID) (*domain.CreditRecord, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+creditColumns+`
		FROM club_credit_records WHERE buy_in_id = $1`, buyInID)
	return scanCredit(row)
}

// ListUnpaidByPlayer orders ascending by created_at: the oldest debt is
// settled first.
func (r *creditRepo) ListUnpaidByPlayer(ctx context.Context, playerID uuid.UUID) ([]domain.CreditRecord, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+creditColumns+`
		FROM club_credit_records
		WHERE player_id = $1 AND NOT is_paid
		ORDER BY created_at ASC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list unpaid records: %w", err)
	}
	defer rows.Close()

	var records []domain.CreditRecord
	for rows.Next() {
		rec, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *creditRepo) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE club_credit_records SET is_paid = true, paid_at = $2
		WHERE id = $1`, id, paidAt)
	if err != nil {
		return fmt.Errorf("mark credit record paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("credit record", id.String())
	}
	return nil
}

func (r *creditRepo) DetachBuyIn(ctx context.Context, buyInID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `
		UPDATE club_credit_records SET buy_in_id = NULL
		WHERE buy_in_id = $1`, buyInID)
	if err != nil {
		return fmt.Errorf("detach credit record: %w", err)
	}
	return nil
}

func (r *creditRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_credit_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credit record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("credit record", id.String())
	}
	return nil
}

func scanCredit(row pgx.Row) (*domain.CreditRecord, error) {
	var rec domain.CreditRecord
	var amountNum pgtype.Numeric
	err := row.Scan(&rec.ID, &rec.PlayerID, &rec.BuyInID, &amountNum, &rec.IsPaid, &rec.PaidAt, &rec.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan credit record: %w", err)
	}
	if rec.Amount, err = infra.NumericToCents(amountNum); err != nil {
		return nil, fmt.Errorf("convert amount: %w", err)
	}
	return &rec, nil
}

type receiptRepo struct {
	tx pgx.Tx
}

const receiptColumns = `id, receipt_number, credit_record_id, player_id, amount, method, session_id, created_at`

func (r *receiptRepo) Insert(ctx context.Context, rcpt *domain.PaymentReceipt) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_payment_receipts
		  (id, receipt_number, credit_record_id, player_id, amount, method, session_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rcpt.ID, rcpt.ReceiptNumber, rcpt.CreditRecordID, rcpt.PlayerID,
		infra.CentsToNumeric(rcpt.Amount), string(rcpt.Method), rcpt.SessionID, rcpt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (r *receiptRepo) ListByRecord(ctx context.Context, creditRecordID uuid.UUID) ([]domain.PaymentReceipt, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+receiptColumns+`
		FROM club_payment_receipts
		WHERE credit_record_id = $1
		ORDER BY created_at ASC`, creditRecordID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.PaymentReceipt
	for rows.Next() {
		var rcpt domain.PaymentReceipt
		var amountNum pgtype.Numeric
		var method string
		err := rows.Scan(&rcpt.ID, &rcpt.ReceiptNumber, &rcpt.CreditRecordID, &rcpt.PlayerID,
			&amountNum, &method, &rcpt.SessionID, &rcpt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		rcpt.Method = domain.PaymentMethod(method)
		if rcpt.Amount, err = infra.NumericToCents(amountNum); err != nil {
			return nil, fmt.Errorf("convert amount: %w", err)
		}
		receipts = append(receipts, rcpt)
	}
	return receipts, rows.Err()
}

func (r *receiptRepo) SumByRecord(ctx context.Context, creditRecordID uuid.UUID) (domain.Cents, error) {
	var sumNum pgtype.Numeric
	err := r.tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM club_payment_receipts
		WHERE credit_record_id = $1`, creditRecordID).Scan(&sumNum)
	if err != nil {
		return 0, fmt.Errorf("sum receipts: %w", err)
	}
	return infra.NumericToCents(sumNum)
}
