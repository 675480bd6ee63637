package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxislabs/praxis-backend/internal/errs"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/types"
)

type CategoryStat struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	AverageScore float64 `json:"average_score"`
}

type TrendPoint struct {
	Date           string  `json:"date"`
	Score          float64 `json:"score"`
	SimulationName string  `json:"simulation_name,omitempty"`
}

type HistorySummary struct {
	TotalSessions  int            `json:"total_sessions"`
	AverageScore   float64        `json:"average_score"`
	CompletionRate float64        `json:"completion_rate"`
	TotalMinutes   int            `json:"total_minutes"`
	Categories     []CategoryStat `json:"categories"`
	Trend          []TrendPoint   `json:"trend"`
}

type RecordSessionInput struct {
	SimulationID     uuid.UUID
	SimulationName   string
	Category         string
	Score            float64
	DurationMinutes  int
	CompletionStatus string
}

type HistoryService interface {
	Record(ctx context.Context, userID uuid.UUID, input RecordSessionInput) (*types.SessionRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.SessionRecord, error)
	Summary(ctx context.Context, userID uuid.UUID) (*HistorySummary, error)
}

type historyService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.SessionRepo
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, sessionRepo repos.SessionRepo) HistoryService {
	return &historyService{
		db:          db,
		log:         log.With("service", "HistoryService"),
		sessionRepo: sessionRepo,
	}
}

func validCompletionStatus(status string) bool {
	switch status {
	case types.SessionStatusNotStarted, types.SessionStatusInProgress,
		types.SessionStatusCompleted, types.SessionStatusAbandoned:
		return true
	}
	return false
}

func (hs *historyService) Record(ctx context.Context, userID uuid.UUID, input RecordSessionInput) (*types.SessionRecord, error) {
	if !validCompletionStatus(input.CompletionStatus) {
		return nil, fmt.Errorf("unknown completion status %q: %w", input.CompletionStatus, errs.ErrInvalidArgument)
	}
	record := &types.SessionRecord{
		ID:               uuid.New(),
		UserID:           userID,
		SimulationID:     input.SimulationID,
		SimulationName:   input.SimulationName,
		Category:         input.Category,
		Score:            input.Score,
		DurationMinutes:  input.DurationMinutes,
		CompletionStatus: input.CompletionStatus,
	}
	return hs.sessionRepo.Create(ctx, nil, record)
}

func (hs *historyService) List(ctx context.Context, userID uuid.UUID) ([]*types.SessionRecord, error) {
	return hs.sessionRepo.ListByUserID(ctx, nil, userID)
}

func (hs *historyService) Summary(ctx context.Context, userID uuid.UUID) (*HistorySummary, error) {
	records, err := hs.sessionRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	summary := AggregateHistory(records)
	return &summary, nil
}

// AggregateHistory derives summary statistics from past session records.
// Deterministic, no input mutation; zero-valued scores and durations count as
// zero rather than failing. Categories keep first-appearance order; the trend
// is ascending by creation time.
func AggregateHistory(records []*types.SessionRecord) HistorySummary {
	summary := HistorySummary{
		Categories: []CategoryStat{},
		Trend:      []TrendPoint{},
	}
	ordered := make([]*types.SessionRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			ordered = append(ordered, r)
		}
	}
	summary.TotalSessions = len(ordered)
	if len(ordered) == 0 {
		return summary
	}

	var completedCount int
	var completedScoreSum float64
	categoryIndex := map[string]int{}
	categorySums := map[string]float64{}

	for _, r := range ordered {
		summary.TotalMinutes += r.DurationMinutes
		if r.CompletionStatus == types.SessionStatusCompleted {
			completedCount++
			completedScoreSum += r.Score
		}
		if _, ok := categoryIndex[r.Category]; !ok {
			categoryIndex[r.Category] = len(summary.Categories)
			summary.Categories = append(summary.Categories, CategoryStat{Category: r.Category})
		}
		idx := categoryIndex[r.Category]
		summary.Categories[idx].Count++
		categorySums[r.Category] += r.Score
	}

	for i := range summary.Categories {
		c := &summary.Categories[i]
		if c.Count > 0 {
			c.AverageScore = categorySums[c.Category] / float64(c.Count)
		}
	}

	if completedCount > 0 {
		summary.AverageScore = completedScoreSum / float64(completedCount)
	}
	summary.CompletionRate = float64(completedCount) / float64(summary.TotalSessions) * 100

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})
	for _, r := range ordered {
		summary.Trend = append(summary.Trend, TrendPoint{
			Date:           r.CreatedAt.Format("2006-01-02"),
			Score:          r.Score,
			SimulationName: r.SimulationName,
		})
	}
	return summary
}
