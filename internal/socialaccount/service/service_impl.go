package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	"github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"github.com/getmarketingos/marketingos/internal/socialaccount/token"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db        *gorm.DB
	repo      domain.Repository
	codec     *token.Codec
	refresher domain.TokenRefresher
	genID     *snowflake.Node
	clock     clock.Clock
	log       *zap.Logger
}

func NewService(
	conn *gorm.DB,
	repo domain.Repository,
	codec *token.Codec,
	refresher domain.TokenRefresher,
	genID *snowflake.Node,
	clk clock.Clock,
	log *zap.Logger,
) domain.Service {
	return &service{
		db:        conn,
		repo:      repo,
		codec:     codec,
		refresher: refresher,
		genID:     genID,
		clock:     clk,
		log:       log,
	}
}

func (s *service) Connect(ctx context.Context, orgID string, req domain.ConnectAccountRequest) (*domain.SocialAccount, error) {
	org, err := parseID(orgID, domain.ErrInvalidAccount)
	if err != nil {
		return nil, err
	}

	platform := domain.Platform(strings.ToLower(strings.TrimSpace(req.Platform)))
	if !platform.Valid() {
		return nil, domain.ErrInvalidPlatform
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, domain.ErrInvalidAccount
	}

	sealedAccess, err := s.codec.Seal(req.AccessToken)
	if err != nil {
		return nil, err
	}
	sealedRefresh, err := s.codec.Seal(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := domain.SocialAccount{
		ID:             s.genID.Generate(),
		OrgID:          org,
		Platform:       platform,
		AccountName:    strings.TrimSpace(req.AccountName),
		AccessToken:    sealedAccess,
		RefreshToken:   sealedRefresh,
		TokenExpiresAt: req.ExpiresAt,
		IGBusinessID:   strings.TrimSpace(req.IGBusinessID),
		FBPageID:       strings.TrimSpace(req.FBPageID),
		TikTokOpenID:   strings.TrimSpace(req.TikTokOpenID),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Only one active account per (org, platform): deactivate any previous one.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if existing, err := repo.GetActive(ctx, org, platform); err == nil {
			if err := repo.Deactivate(ctx, existing.ID); err != nil {
				return err
			}
		}
		return repo.Create(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *service) ListByOrg(ctx context.Context, orgID string) ([]domain.SocialAccount, error) {
	org, err := parseID(orgID, domain.ErrInvalidAccount)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, org)
}

func (s *service) Disconnect(ctx context.Context, orgID, accountID string) error {
	org, err := parseID(orgID, domain.ErrInvalidAccount)
	if err != nil {
		return err
	}
	id, err := parseID(accountID, domain.ErrInvalidAccount)
	if err != nil {
		return err
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if account.OrgID != org {
		return domain.ErrAccountNotFound
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *service) ActiveCredentials(ctx context.Context, orgID snowflake.ID, platform domain.Platform) (*domain.Credentials, error) {
	account, err := s.repo.GetActive(ctx, orgID, platform)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.codec.Open(account.AccessToken)
	if err != nil {
		return nil, domain.ErrTokenDecryption
	}

	return &domain.Credentials{
		AccountID:    account.ID,
		OrgID:        account.OrgID,
		Platform:     account.Platform,
		AccessToken:  accessToken,
		IGBusinessID: account.IGBusinessID,
		FBPageID:     account.FBPageID,
		TikTokOpenID: account.TikTokOpenID,
	}, nil
}

func (s *service) RefreshExpiring(ctx context.Context, window time.Duration) (int, error) {
	now := s.clock.Now()
	accounts, err := s.repo.ListExpiring(ctx, now.Add(window))
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, account := range accounts {
		if err := s.refreshAccount(ctx, account); err != nil {
			s.log.Warn("social token refresh failed",
				zap.String("account_id", account.ID.String()),
				zap.String("org_id", account.OrgID.String()),
				zap.String("platform", string(account.Platform)),
				zap.Error(err),
			)
			// Refresh failure on an already expired token retires the account.
			if account.Expired(now) {
				if deactivateErr := s.repo.Deactivate(ctx, account.ID); deactivateErr != nil {
					s.log.Warn("social account deactivation failed",
						zap.String("account_id", account.ID.String()),
						zap.Error(deactivateErr),
					)
				}
			}
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

func (s *service) refreshAccount(ctx context.Context, account domain.SocialAccount) error {
	accessToken, err := s.codec.Open(account.AccessToken)
	if err != nil {
		return domain.ErrTokenDecryption
	}
	refreshToken, err := s.codec.Open(account.RefreshToken)
	if err != nil {
		return domain.ErrTokenDecryption
	}

	fresh, err := s.refresher.Refresh(ctx, account.Platform, accessToken, refreshToken)
	if err != nil {
		return err
	}

	sealedAccess, err := s.codec.Seal(fresh.AccessToken)
	if err != nil {
		return err
	}
	sealedRefresh := ""
	if fresh.RefreshToken != "" {
		if sealedRefresh, err = s.codec.Seal(fresh.RefreshToken); err != nil {
			return err
		}
	}

	return s.repo.UpdateTokens(ctx, account.ID, sealedAccess, sealedRefresh, fresh.ExpiresAt)
}

func parseID(raw string, invalid error) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, invalid
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil {
		return 0, invalid
	}
	return id, nil
}
