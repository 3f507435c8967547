package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/seo/domain"
)

type service struct {
	repo     domain.Repository
	analyzer domain.Analyzer
	genID    *snowflake.Node
	clock    clock.Clock
}

func NewService(repo domain.Repository, analyzer domain.Analyzer, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		repo:     repo,
		analyzer: analyzer,
		genID:    genID,
		clock:    clk,
	}
}

func (s *service) GetByOrg(ctx context.Context, orgID snowflake.ID) (*domain.SeoConfig, error) {
	return s.repo.GetByOrg(ctx, orgID)
}

func (s *service) Upsert(ctx context.Context, orgID snowflake.ID, targetURL string) (*domain.SeoConfig, error) {
	targetURL = strings.TrimSpace(targetURL)
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, domain.ErrInvalidTarget
	}

	now := s.clock.Now()
	config := domain.SeoConfig{
		ID:        s.genID.Generate(),
		OrgID:     orgID,
		TargetURL: targetURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Upsert(ctx, config); err != nil {
		return nil, err
	}
	return s.repo.GetByOrg(ctx, orgID)
}

func (s *service) ScanIfDue(ctx context.Context, orgID snowflake.ID, interval time.Duration) (bool, error) {
	config, err := s.repo.GetByOrg(ctx, orgID)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			return false, nil
		}
		return false, err
	}
	if strings.TrimSpace(config.TargetURL) == "" {
		return false, nil
	}

	now := s.clock.Now()
	if !config.ScanDue(now, interval) {
		return false, nil
	}

	score, err := s.analyzer.AnalyzeURL(ctx, config.TargetURL)
	if err != nil {
		return false, err
	}
	if err := s.repo.RecordScan(ctx, config.ID, score, now); err != nil {
		return false, err
	}
	return true, nil
}
