package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type SimulationRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.Simulation, error)
	GetByID(ctx context.Context, tx *gorm.DB, simID uuid.UUID) (*types.Simulation, error)
	Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Simulation, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Simulation, error)
}

type simulationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationRepo(db *gorm.DB, baseLog *logger.Logger) SimulationRepo {
	return &simulationRepo{db: db, log: baseLog.With("repo", "SimulationRepo")}
}

func (sr *simulationRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Simulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Simulation
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *simulationRepo) GetByID(ctx context.Context, tx *gorm.DB, simID uuid.UUID) (*types.Simulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.Simulation
	if err := transaction.WithContext(ctx).
		Where("id = ?", simID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("simulation %s: %w", simID, errs.ErrNotFound)
		}
		return nil, err
	}
	return &result, nil
}

func (sr *simulationRepo) Search(ctx context.Context, tx *gorm.DB, query string) ([]*types.Simulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Simulation
	pattern := "%" + query + "%"
	if err := transaction.WithContext(ctx).
		Where("name ILIKE ? OR description ILIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *simulationRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string) ([]*types.Simulation, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Simulation
	if err := transaction.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
