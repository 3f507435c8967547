// Package domain contains the append-only run ledger for scheduled jobs.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CronLog is one ledger row per job run. Rows transition running to
// completed or failed exactly once; they are never deleted.
type CronLog struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Job        string         `gorm:"type:text;not null;index" json:"job"`
	Status     RunStatus      `gorm:"type:text;not null;index" json:"status"`
	Results    datatypes.JSON `gorm:"type:jsonb" json:"results"`
	Error      string         `gorm:"type:text" json:"error"`
	DurationMs int64          `gorm:"column:duration_ms" json:"duration_ms"`
	StartedAt  time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (CronLog) TableName() string { return "cron_logs" }

var (
	ErrRunNotFound = errors.New("cron_run_not_found")
	ErrRunClosed   = errors.New("cron_run_already_closed")
)

type ListRunsFilter struct {
	Job    string
	Status RunStatus
	Limit  int
	Offset int
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Open creates a running ledger row for the job.
	Open(ctx context.Context, job string, startedAt time.Time) (*CronLog, error)
	// Close performs the single running to completed|failed transition.
	// Returns ErrRunClosed when the row is no longer running.
	Close(ctx context.Context, runID snowflake.ID, status RunStatus, results datatypes.JSON, errMsg string, durationMs int64, finishedAt time.Time) error
	GetByID(ctx context.Context, runID snowflake.ID) (*CronLog, error)
	List(ctx context.Context, filter ListRunsFilter) ([]CronLog, error)
	// MarkStaleFailed fails running rows started before the cutoff and
	// returns how many rows it reconciled.
	MarkStaleFailed(ctx context.Context, cutoff, finishedAt time.Time) (int64, error)
}
