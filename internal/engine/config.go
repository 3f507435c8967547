package engine

import (
	"time"
)

// Config controls engine intervals, batch sizes and stage timeouts.
type Config struct {
	RunInterval        time.Duration
	StageTimeout       time.Duration
	PublishBatchSize   int
	CommentBatchSize   int
	MaxGeneratePerPass int
	TokenRefreshWindow time.Duration
	SeoScanInterval    time.Duration
	RecoveryThreshold  time.Duration
	LockTTL            time.Duration
	// EnabledStages limits which stages run; empty enables all of them.
	EnabledStages []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:        time.Hour,
		StageTimeout:       2 * time.Minute,
		PublishBatchSize:   50,
		CommentBatchSize:   20,
		MaxGeneratePerPass: 3,
		TokenRefreshWindow: 7 * 24 * time.Hour,
		SeoScanInterval:    24 * time.Hour,
		RecoveryThreshold:  15 * time.Minute,
		LockTTL:            10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = defaults.StageTimeout
	}
	if c.PublishBatchSize <= 0 {
		c.PublishBatchSize = defaults.PublishBatchSize
	}
	if c.CommentBatchSize <= 0 {
		c.CommentBatchSize = defaults.CommentBatchSize
	}
	if c.MaxGeneratePerPass <= 0 {
		c.MaxGeneratePerPass = defaults.MaxGeneratePerPass
	}
	if c.TokenRefreshWindow <= 0 {
		c.TokenRefreshWindow = defaults.TokenRefreshWindow
	}
	if c.SeoScanInterval <= 0 {
		c.SeoScanInterval = defaults.SeoScanInterval
	}
	if c.RecoveryThreshold <= 0 {
		c.RecoveryThreshold = defaults.RecoveryThreshold
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
