package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/comment/domain"
	"github.com/getmarketingos/marketingos/internal/comment/repository"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCommentService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
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

	if err := db.AutoMigrate(&domain.SocialComment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))
	svc := NewService(repository.NewRepository(db), nil, nil, nil, node, clk, zap.NewNop())
	return svc, db, node
}

func TestIngestIsIdempotentOnRedelivery(t *testing.T) {
	svc, db, node := setupCommentService(t)
	ctx := context.Background()
	orgID := node.Generate()

	req := domain.IngestCommentRequest{
		Platform:          "instagram",
		ExternalCommentID: "ig-c-1",
		Author:            "ana",
		Text:              "Do you have oat milk?",
		NeedsReply:        true,
	}

	first, err := svc.Ingest(ctx, orgID.String(), req)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// Webhook redelivery of the same comment must not error or duplicate.
	second, err := svc.Ingest(ctx, orgID.String(), req)
	if err != nil {
		t.Fatalf("redelivered ingest: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("redelivery returned id %v, want stored id %v", second.ID, first.ID)
	}

	var count int64
	if err := db.Model(&domain.SocialComment{}).Count(&count).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row after redelivery, got %d", count)
	}
}

func TestIngestScopesDedupeByOrgAndPlatform(t *testing.T) {
	svc, db, node := setupCommentService(t)
	ctx := context.Background()
	orgA := node.Generate()
	orgB := node.Generate()

	base := domain.IngestCommentRequest{
		ExternalCommentID: "c-100",
		Author:            "leo",
		Text:              "What are your hours?",
		NeedsReply:        true,
	}

	igReq := base
	igReq.Platform = "instagram"
	if _, err := svc.Ingest(ctx, orgA.String(), igReq); err != nil {
		t.Fatalf("org A instagram ingest: %v", err)
	}

	// Same external id in another org is a different comment.
	if _, err := svc.Ingest(ctx, orgB.String(), igReq); err != nil {
		t.Fatalf("org B instagram ingest: %v", err)
	}

	// Platforms number their comments independently.
	fbReq := base
	fbReq.Platform = "facebook"
	if _, err := svc.Ingest(ctx, orgA.String(), fbReq); err != nil {
		t.Fatalf("org A facebook ingest: %v", err)
	}

	var count int64
	if err := db.Model(&domain.SocialComment{}).Count(&count).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}
