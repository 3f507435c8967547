package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/cronlog/domain"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (domain.Repository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.CronLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewRepository(db, node), db
}

func TestCloseTransitionsExactlyOnce(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	started := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	run, err := repo.Open(ctx, "marketing-engine", started)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if run.Status != domain.RunStatusRunning {
		t.Fatalf("status %q, want running", run.Status)
	}

	finished := started.Add(3 * time.Second)
	results := datatypes.JSON(`{"organizations_processed":2}`)
	if err := repo.Close(ctx, run.ID, domain.RunStatusCompleted, results, "", 3000, finished); err != nil {
		t.Fatalf("close: %v", err)
	}

	stored, err := repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.RunStatusCompleted {
		t.Fatalf("status %q, want completed", stored.Status)
	}
	if stored.DurationMs != 3000 {
		t.Fatalf("duration %d, want 3000", stored.DurationMs)
	}
	if stored.FinishedAt == nil {
		t.Fatalf("expected finished_at")
	}

	// The row left running; a second close must not rewrite it.
	err = repo.Close(ctx, run.ID, domain.RunStatusFailed, nil, "boom", 9000, finished.Add(time.Minute))
	if err != domain.ErrRunClosed {
		t.Fatalf("expected ErrRunClosed, got %v", err)
	}

	stored, err = repo.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != domain.RunStatusCompleted || stored.Error != "" {
		t.Fatalf("row rewritten after close: %+v", stored)
	}
}

func TestMarkStaleFailedSweepsOldRunningRows(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	stale, err := repo.Open(ctx, "marketing-engine", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("open stale: %v", err)
	}
	fresh, err := repo.Open(ctx, "marketing-engine", now.Add(-time.Minute))
	if err != nil {
		t.Fatalf("open fresh: %v", err)
	}

	swept, err := repo.MarkStaleFailed(ctx, now.Add(-15*time.Minute), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("swept %d rows, want 1", swept)
	}

	staleRow, err := repo.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("get stale: %v", err)
	}
	if staleRow.Status != domain.RunStatusFailed {
		t.Fatalf("stale status %q, want failed", staleRow.Status)
	}

	freshRow, err := repo.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("get fresh: %v", err)
	}
	if freshRow.Status != domain.RunStatusRunning {
		t.Fatalf("fresh status %q, want running", freshRow.Status)
	}
}

func TestListFiltersByJobAndStatus(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	engineRun, err := repo.Open(ctx, "marketing-engine", now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := repo.Open(ctx, "publish-scheduled", now.Add(time.Minute)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.Close(ctx, engineRun.ID, domain.RunStatusCompleted, nil, "", 10, now.Add(time.Second)); err != nil {
		t.Fatalf("close: %v", err)
	}

	runs, err := repo.List(ctx, domain.ListRunsFilter{Job: "marketing-engine", Status: domain.RunStatusCompleted})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != engineRun.ID {
		t.Fatalf("unexpected runs %+v", runs)
	}
}
