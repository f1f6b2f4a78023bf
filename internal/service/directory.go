package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// DirectoryService handles the club roster: players, dealers and chip types.
type DirectoryService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewDirectoryService creates a DirectoryService.
func NewDirectoryService(store repository.Store, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{store: store, logger: logger}
}

// CreatePlayer registers a player with an optional credit limit.
func (s *DirectoryService) CreatePlayer(ctx context.Context, name string, creditLimit domain.Cents) (*domain.Player, error) {
	if name == "" {
		return nil, domain.ErrValidation("player name is required")
	}
	if creditLimit < 0 {
		return nil, domain.ErrValidation("credit limit must not be negative")
	}

	player := &domain.Player{
		ID:          uuid.New(),
		Name:        name,
		CreditLimit: creditLimit,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		existing, err := tx.Players().FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrConflict("player name already in use")
		}
		return tx.Players().Create(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("player created", "player_id", player.ID, "name", name)
	return player, nil
}

// GetPlayer returns one player by id.
func (s *DirectoryService) GetPlayer(ctx context.Context, id uuid.UUID) (*domain.Player, error) {
	var player *domain.Player
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		player, err = tx.Players().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", id.String())
	}
	return player, nil
}

// ListPlayers returns all players.
func (s *DirectoryService) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	var players []domain.Player
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		players, err = tx.Players().List(ctx)
		return err
	})
	return players, err
}

// DeactivatePlayer soft-deletes a player. A player with outstanding debt
// stays in the ledger; deactivation only blocks new buy-ins under the name.
func (s *DirectoryService) DeactivatePlayer(ctx context.Context, id uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Players().Deactivate(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("player deactivated", "player_id", id)
	return nil
}

// CreateDealer registers a dealer.
func (s *DirectoryService) CreateDealer(ctx context.Context, name string) (*domain.Dealer, error) {
	if name == "" {
		return nil, domain.ErrValidation("dealer name is required")
	}

	dealer := &domain.Dealer{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.Dealers().Create(ctx, dealer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dealer created", "dealer_id", dealer.ID, "name", name)
	return dealer, nil
}

// ListDealers returns all dealers.
func (s *DirectoryService) ListDealers(ctx context.Context) ([]domain.Dealer, error) {
	var dealers []domain.Dealer
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		dealers, err = tx.Dealers().List(ctx)
		return err
	})
	return dealers, err
}

// CreateChipType registers a chip denomination.
func (s *DirectoryService) CreateChipType(ctx context.Context, name string, value domain.Cents) (*domain.ChipType, error) {
	if name == "" {
		return nil, domain.ErrValidation("chip type name is required")
	}
	if err := domain.ValidatePositiveAmount(value); err != nil {
		return nil, err
	}

	chipType := &domain.ChipType{
		ID:        uuid.New(),
		Name:      name,
		Value:     value,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		return tx.ChipTypes().Create(ctx, chipType)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chip type created", "chip_type_id", chipType.ID, "name", name, "value", value)
	return chipType, nil
}

// ListChipTypes returns all chip denominations.
func (s *DirectoryService) ListChipTypes(ctx context.Context) ([]domain.ChipType, error) {
	var chipTypes []domain.ChipType
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		chipTypes, err = tx.ChipTypes().List(ctx)
		return err
	})
	return chipTypes, err
}
