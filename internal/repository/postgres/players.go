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

const playerColumns = `id, name, credit_balance, credit_limit, is_active, created_at, updated_at`

type playerRepo struct {
	tx pgx.Tx
}

func (r *playerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM club_players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) FindByName(ctx context.Context, name string) (*domain.Player, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM club_players WHERE name = $1 AND is_active`, name)
	return scanPlayer(row)
}

func (r *playerRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	row := r.tx.QueryRow(ctx, `
		SELECT `+playerColumns+`
		FROM club_players WHERE id = $1 FOR UPDATE`, id)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, player *domain.Player) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO club_players (id, name, credit_balance, credit_limit, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		player.ID,
		player.Name,
		infra.CentsToNumeric(player.CreditBalance),
		infra.CentsToNumeric(player.CreditLimit),
		player.IsActive,
		player.CreatedAt,
		player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

// AdjustCreditBalance uses server-side arithmetic so concurrent updates
// never clobber each other.
func (r *playerRepo) AdjustCreditBalance(ctx context.Context, id uuid.UUID, delta domain.Cents) (*domain.Player, error) {
	row := r.tx.QueryRow(ctx, `
		UPDATE club_players
		SET credit_balance = credit_balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+playerColumns, id, infra.CentsToNumeric(delta))
	return scanPlayer(row)
}

func (r *playerRepo) SetCreditBalance(ctx context.Context, id uuid.UUID, balance domain.Cents) (*domain.Player, error) {
	row := r.tx.QueryRow(ctx, `
		UPDATE club_players
		SET credit_balance = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+playerColumns, id, infra.CentsToNumeric(balance))
	return scanPlayer(row)
}

func (r *playerRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `
		UPDATE club_players SET is_active = false, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("player", id.String())
	}
	return nil
}

func (r *playerRepo) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.tx.Query(ctx, `
		SELECT `+playerColumns+`
		FROM club_players
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	var balNum, limitNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.Name, &balNum, &limitNum, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}

	var convErr error
	p.CreditBalance, convErr = infra.NumericToCents(balNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert credit_balance: %w", convErr)
	}
	p.CreditLimit, convErr = infra.NumericToCents(limitNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert credit_limit: %w", convErr)
	}
	return &p, nil
}
