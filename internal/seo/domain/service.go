package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByOrg(ctx context.Context, orgID snowflake.ID) (*SeoConfig, error)
	Upsert(ctx context.Context, config SeoConfig) error
	RecordScan(ctx context.Context, configID snowflake.ID, score int, scannedAt time.Time) error
}

// Analyzer runs one external scan of a URL and returns a 0-100 score.
type Analyzer interface {
	AnalyzeURL(ctx context.Context, targetURL string) (int, error)
}

type Service interface {
	GetByOrg(ctx context.Context, orgID snowflake.ID) (*SeoConfig, error)
	Upsert(ctx context.Context, orgID snowflake.ID, targetURL string) (*SeoConfig, error)
	// ScanIfDue scans the org's target when the last scan is older than
	// the interval. Returns true when a scan actually ran.
	ScanIfDue(ctx context.Context, orgID snowflake.ID, interval time.Duration) (bool, error)
}
