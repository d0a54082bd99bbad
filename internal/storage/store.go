package storage

import (
	"context"

	"genopt/internal/model"
)

// Store defines persistence operations for optimization run records and
// their derived data.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]model.RunRecord, error)
	SaveStatistics(ctx context.Context, runID string, statistics []model.GenerationStats) error
	GetStatistics(ctx context.Context, runID string) ([]model.GenerationStats, bool, error)
	SaveFitnessHistory(ctx context.Context, runID string, history []float64) error
	GetFitnessHistory(ctx context.Context, runID string) ([]float64, bool, error)
	SaveBest(ctx context.Context, best model.BestRecord) error
	GetBest(ctx context.Context, runID string) (model.BestRecord, bool, error)
	Reset(ctx context.Context) error
}
