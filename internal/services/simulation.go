package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type SimulationService interface {
	List(ctx context.Context) ([]*types.Simulation, error)
	Get(ctx context.Context, simID uuid.UUID) (*types.Simulation, error)
	Search(ctx context.Context, query string) ([]*types.Simulation, error)
	ListByCategory(ctx context.Context, category string) ([]*types.Simulation, error)
}

type simulationService struct {
	db             *gorm.DB
	log            *logger.Logger
	simulationRepo repos.SimulationRepo
}

func NewSimulationService(db *gorm.DB, log *logger.Logger, simulationRepo repos.SimulationRepo) SimulationService {
	return &simulationService{
		db:             db,
		log:            log.With("service", "SimulationService"),
		simulationRepo: simulationRepo,
	}
}

func (ss *simulationService) List(ctx context.Context) ([]*types.Simulation, error) {
	return ss.simulationRepo.List(ctx, nil)
}

func (ss *simulationService) Get(ctx context.Context, simID uuid.UUID) (*types.Simulation, error) {
	return ss.simulationRepo.GetByID(ctx, nil, simID)
}

func (ss *simulationService) Search(ctx context.Context, query string) ([]*types.Simulation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search text is required: %w", errs.ErrInvalidArgument)
	}
	return ss.simulationRepo.Search(ctx, nil, query)
}

func (ss *simulationService) ListByCategory(ctx context.Context, category string) ([]*types.Simulation, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category is required: %w", errs.ErrInvalidArgument)
	}
	return ss.simulationRepo.ListByCategory(ctx, nil, category)
}
