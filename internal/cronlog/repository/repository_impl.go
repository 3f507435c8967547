package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/cronlog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repository struct {
	db    *gorm.DB
	genID *snowflake.Node
}

func NewRepository(db *gorm.DB, genID *snowflake.Node) domain.Repository {
	return &repository{db: db, genID: genID}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx, genID: r.genID}
}

func (r *repository) Open(ctx context.Context, job string, startedAt time.Time) (*domain.CronLog, error) {
	run := domain.CronLog{
		ID:        r.genID.Generate(),
		Job:       job,
		Status:    domain.RunStatusRunning,
		StartedAt: startedAt,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
	}
	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) Close(ctx context.Context, runID snowflake.ID, status domain.RunStatus, results datatypes.JSON, errMsg string, durationMs int64, finishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.CronLog{}).
		Where("id = ? AND status = ?", runID, domain.RunStatusRunning).
		Updates(map[string]any{
			"status":      status,
			"results":     results,
			"error":       errMsg,
			"duration_ms": durationMs,
			"finished_at": finishedAt,
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRunClosed
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, runID snowflake.ID) (*domain.CronLog, error) {
	var run domain.CronLog
	err := r.db.WithContext(ctx).First(&run, "id = ?", runID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

func (r *repository) List(ctx context.Context, filter domain.ListRunsFilter) ([]domain.CronLog, error) {
	stmt := r.db.WithContext(ctx).Model(&domain.CronLog{})
	if filter.Job != "" {
		stmt = stmt.Where("job = ?", filter.Job)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 250 {
		limit = 50
	}

	var runs []domain.CronLog
	err := stmt.
		Order("started_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&runs).Error
	return runs, err
}

func (r *repository) MarkStaleFailed(ctx context.Context, cutoff, finishedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.CronLog{}).
		Where("status = ? AND started_at < ?", domain.RunStatusRunning, cutoff).
		Updates(map[string]any{
			"status":      domain.RunStatusFailed,
			"error":       "run abandoned: no terminal status recorded",
			"finished_at": finishedAt,
			"updated_at":  gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
