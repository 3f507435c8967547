package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/organization/domain"
	"github.com/getmarketingos/marketingos/pkg/db"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func NewService(conn *gorm.DB, repo domain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &service{
		db:    conn,
		repo:  repo,
		genID: genID,
		clock: clk,
	}
}

func (s *service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (*domain.OrganizationResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Website:   strings.TrimSpace(req.Website),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}

		config := domain.MarketingConfig{
			ID:           s.genID.Generate(),
			OrgID:        org.ID,
			PostsPerWeek: 7,
			ContentTypes: datatypes.NewJSONSlice(domain.DefaultContentTypes),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return repo.UpsertMarketingConfig(ctx, config)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrOrganizationExists
		}
		return nil, err
	}

	return &domain.OrganizationResponse{
		ID:        org.ID.String(),
		Name:      org.Name,
		Slug:      org.Slug,
		Website:   org.Website,
		CreatedAt: org.CreatedAt,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	orgID, err := parseOrgID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetOrganization(ctx, orgID)
}

func (s *service) List(ctx context.Context) ([]domain.Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *service) ListEngineOrganizations(ctx context.Context) ([]domain.Organization, error) {
	return s.repo.ListEngineOrganizations(ctx)
}

func (s *service) UpsertBusinessProfile(ctx context.Context, id string, req domain.UpsertBusinessProfileRequest) (*domain.BusinessProfile, error) {
	orgID, err := parseOrgID(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	profile := domain.BusinessProfile{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		BusinessName:    strings.TrimSpace(req.BusinessName),
		Industry:        strings.TrimSpace(req.Industry),
		BrandVoice:      strings.TrimSpace(req.BrandVoice),
		Tone:            strings.TrimSpace(req.Tone),
		TargetAudience:  strings.TrimSpace(req.TargetAudience),
		DefaultHashtags: datatypes.NewJSONSlice(req.DefaultHashtags),
		Products:        datatypes.NewJSONSlice(req.Products),
		IsComplete:      profileComplete(req),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.UpsertBusinessProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetBusinessProfile(ctx, orgID)
}

func (s *service) UpsertMarketingConfig(ctx context.Context, id string, req domain.UpsertMarketingConfigRequest) (*domain.MarketingConfig, error) {
	orgID, err := parseOrgID(id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	config := domain.MarketingConfig{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		PostsPerWeek: 7,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if existing, err := s.repo.GetMarketingConfig(ctx, orgID); err == nil {
		config = *existing
		config.UpdatedAt = now
	}

	if req.IsPaused != nil {
		config.IsPaused = *req.IsPaused
	}
	if req.PostsPerWeek != nil && *req.PostsPerWeek > 0 {
		config.PostsPerWeek = *req.PostsPerWeek
	}
	if req.ContentTypes != nil {
		config.ContentTypes = datatypes.NewJSONSlice(req.ContentTypes)
	}

	if err := s.repo.UpsertMarketingConfig(ctx, config); err != nil {
		return nil, err
	}
	return s.repo.GetMarketingConfig(ctx, orgID)
}

func (s *service) SetPaused(ctx context.Context, id string, paused bool) error {
	orgID, err := parseOrgID(id)
	if err != nil {
		return err
	}
	return s.repo.SetPaused(ctx, orgID, paused)
}

func parseOrgID(id string) (snowflake.ID, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return 0, domain.ErrInvalidOrganization
	}
	orgID, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

func profileComplete(req domain.UpsertBusinessProfileRequest) bool {
	return strings.TrimSpace(req.BusinessName) != "" &&
		strings.TrimSpace(req.Industry) != "" &&
		strings.TrimSpace(req.TargetAudience) != ""
}
