package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/infra"
)

type auditRepo struct {
	tx pgx.Tx
}

func (r *auditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_audit_log (id, action, operator, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		e.ID, string(e.Action), e.Operator, []byte(e.Snapshot), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *auditRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.AuditEntry, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT id, action, operator, snapshot, created_at
		FROM club_audit_log WHERE id = $1`, id)
	return scanAudit(row)
}

func (r *auditRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM club_audit_log WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete audit entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("audit entry", id.String())
	}
	return nil
}

func (r *auditRepo) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, action, operator, snapshot, created_at
		FROM club_audit_log
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		e, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanAudit(row pgx.Row) (*domain.AuditEntry, error) {
	var e domain.AuditEntry
	var action string
	var snapshot []byte
	err := row.Scan(&e.ID, &action, &e.Operator, &snapshot, &e.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan audit entry: %w", err)
	}
	e.Action = domain.AuditAction(action)
	e.Snapshot = snapshot
	return &e, nil
}

type outboxRepo struct {
	tx pgx.Tx
}

func (r *outboxRepo) Insert(ctx context.Context, draft domain.OutboxDraft) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO event_outbox
		  (event_id, aggregate_type, aggregate_id, event_type, partition_key, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		draft.EventID,
		string(draft.AggregateType),
		draft.AggregateID,
		string(draft.EventType),
		draft.PartitionKey,
		[]byte(draft.Payload),
		draft.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func (r *outboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]domain.OutboxRow, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, partition_key, payload, occurred_at
		FROM event_outbox
		ORDER BY id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch unpublished events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxRow
	for rows.Next() {
		var row domain.OutboxRow
		var aggType, evtType string
		var payload []byte
		err := rows.Scan(&row.SeqID, &row.EventID, &aggType, &row.AggregateID,
			&evtType, &row.PartitionKey, &payload, &row.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		row.AggregateType = domain.AggregateType(aggType)
		row.EventType = domain.EventType(evtType)
		row.Payload = payload
		events = append(events, row)
	}
	return events, rows.Err()
}

func (r *outboxRepo) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.tx.Exec(ctx, `DELETE FROM event_outbox WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	return nil
}

type chipTypeRepo struct {
	tx pgx.Tx
}

func (r *chipTypeRepo) Create(ctx context.Context, ct *domain.ChipType) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_chip_types (id, name, value, created_at)
		VALUES ($1, $2, $3, $4)`,
		ct.ID, ct.Name, infra.CentsToNumeric(ct.Value), ct.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert chip type: %w", err)
	}
	return nil
}

func (r *chipTypeRepo) List(ctx context.Context) ([]domain.ChipType, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT id, name, value, created_at
		FROM club_chip_types
		ORDER BY value ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chip types: %w", err)
	}
	defer rows.Close()

	var chipTypes []domain.ChipType
	for rows.Next() {
		var ct domain.ChipType
		var valueNum pgtype.Numeric
		if err := rows.Scan(&ct.ID, &ct.Name, &valueNum, &ct.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chip type: %w", err)
		}
		if ct.Value, err = infra.NumericToCents(valueNum); err != nil {
			return nil, fmt.Errorf("convert value: %w", err)
		}
		chipTypes = append(chipTypes, ct)
	}
	return chipTypes, rows.Err()
}
