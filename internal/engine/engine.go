// Package engine orchestrates the scheduled marketing pass: content
// generation, publishing, SEO scans and comment replies per tenant.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
	cronlogdomain "github.com/getmarketingos/marketingos/internal/cronlog/domain"
	"github.com/getmarketingos/marketingos/internal/media"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters"
	"github.com/getmarketingos/marketingos/internal/ratelimit"
	seodomain "github.com/getmarketingos/marketingos/internal/seo/domain"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger job names. The publish-only pass writes its own ledger rows so
// the two cron routes stay distinguishable in cron_logs.
const (
	JobMarketingEngine  = "marketing-engine"
	JobPublishScheduled = "publish-scheduled"
)

// RunError is one isolated failure inside a pass.
type RunError struct {
	Scope string `json:"scope"` // org | post | comment
	ID    string `json:"id"`
	Err   string `json:"error"`
}

// RunResult is the summary persisted to the cron ledger.
type RunResult struct {
	OrganizationsProcessed int        `json:"organizations_processed"`
	ContentGenerated       int        `json:"content_generated"`
	PostsPublished         int        `json:"posts_published"`
	SeoAnalyzed            int        `json:"seo_analyzed"`
	CommentsReplied        int        `json:"comments_replied"`
	Errors                 []RunError `json:"errors,omitempty"`
}

func (r *RunResult) addError(scope string, id snowflake.ID, err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, RunError{
		Scope: scope,
		ID:    idString(id),
		Err:   err.Error(),
	})
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	OrgSvc     organizationdomain.Service
	PostSvc    postdomain.Service
	AccountSvc socialaccountdomain.Service
	SeoSvc     seodomain.Service
	CommentSvc commentdomain.Service
	Generator  contentdomain.Generator
	Registry   *adapters.Registry
	CronLogs   cronlogdomain.Repository
	Metrics    *obsmetrics.Metrics

	ImageFinder media.ImageFinder `optional:"true"`
	Locker      *ratelimit.Locker `optional:"true"`
	GenID       *snowflake.Node
	Clock       clock.Clock
	Config      Config `optional:"true"`
}

type Engine struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	orgSvc     organizationdomain.Service
	postSvc    postdomain.Service
	accountSvc socialaccountdomain.Service
	seoSvc     seodomain.Service
	commentSvc commentdomain.Service
	generator  contentdomain.Generator
	registry   *adapters.Registry
	images     media.ImageFinder
	locker     *ratelimit.Locker
	cronLogs   cronlogdomain.Repository
	metrics    *obsmetrics.Metrics
}

func New(p Params) (*Engine, error) {
	if p.DB == nil || p.Log == nil || p.OrgSvc == nil || p.PostSvc == nil || p.AccountSvc == nil || p.SeoSvc == nil || p.CommentSvc == nil || p.Generator == nil || p.Registry == nil || p.CronLogs == nil || p.Metrics == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Engine{
		db:         p.DB,
		log:        p.Log.Named("engine").With(zap.String("component", "engine")),
		cfg:        cfg,
		genID:      p.GenID,
		clock:      p.Clock,
		orgSvc:     p.OrgSvc,
		postSvc:    p.PostSvc,
		accountSvc: p.AccountSvc,
		seoSvc:     p.SeoSvc,
		commentSvc: p.CommentSvc,
		generator:  p.Generator,
		registry:   p.Registry,
		images:     p.ImageFinder,
		locker:     p.Locker,
		cronLogs:   p.CronLogs,
		metrics:    p.Metrics,
	}, nil
}

// Run executes one full pass over every eligible organization.
func (e *Engine) Run(parent context.Context) (RunResult, error) {
	return e.run(parent, JobMarketingEngine, e.fullPass)
}

// RunPublishOnly publishes due posts across all organizations without
// generating new content.
func (e *Engine) RunPublishOnly(parent context.Context) (RunResult, error) {
	return e.run(parent, JobPublishScheduled, e.publishOnlyPass)
}

func (e *Engine) run(parent context.Context, job string, pass func(ctx context.Context, result *RunResult) error) (RunResult, error) {
	result := RunResult{}

	release, err := e.acquireRunLock(parent, job)
	if err != nil {
		return result, err
	}
	defer release()

	e.recoverStaleState(parent)

	start := e.clock.Now()
	run, err := e.cronLogs.Open(parent, job, start)
	if err != nil {
		return result, err
	}

	engMetrics := obsmetrics.Engine()
	engMetrics.IncJobRun(job)
	e.logRunStart(job, run.ID)

	var passErr error
	// Single terminal ledger transition per run, even on panic.
	defer func() {
		e.closeRun(parent, job, run.ID, start, result, passErr)
	}()

	passErr = pass(parent, &result)
	engMetrics.ObserveJobDuration(job, time.Since(start))
	e.logRunFinish(job, run.ID, start, result, passErr)

	status := "completed"
	if passErr != nil {
		status = "failed"
		engMetrics.IncJobError(job, passErr)
	}
	e.metrics.RecordEngineRun(parent, status)

	return result, passErr
}

// closeRun performs the running -> completed|failed ledger transition.
func (e *Engine) closeRun(ctx context.Context, job string, runID snowflake.ID, start time.Time, result RunResult, passErr error) {
	finished := e.clock.Now()
	status := cronlogdomain.RunStatusCompleted
	errMsg := ""
	if passErr != nil {
		status = cronlogdomain.RunStatusFailed
		errMsg = passErr.Error()
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		encoded = []byte(`{}`)
	}

	if err := e.cronLogs.Close(ctx, runID, status, datatypes.JSON(encoded), errMsg, finished.Sub(start).Milliseconds(), finished); err != nil {
		e.log.Error("cron ledger close failed",
			zap.String("job", job),
			zap.String("run_id", runID.String()),
			zap.Error(err),
		)
	}
}

func (e *Engine) fullPass(ctx context.Context, result *RunResult) error {
	e.refreshTokens(ctx)

	orgs, err := e.orgSvc.ListEngineOrganizations(ctx)
	if err != nil {
		return err
	}

	for _, org := range orgs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !org.Eligible() {
			continue
		}
		result.OrganizationsProcessed++
		e.processOrganization(ctx, org, result)
	}
	return nil
}

func (e *Engine) publishOnlyPass(ctx context.Context, result *RunResult) error {
	e.refreshTokens(ctx)
	return e.runStage(ctx, obsmetrics.EngineStagePublish, func(ctx context.Context) error {
		return e.publishDue(ctx, 0, result)
	})
}

// processOrganization runs the four stages in order. A stage failure
// records an org-scoped error and aborts the organization's remaining
// stages; the caller continues with the next organization.
func (e *Engine) processOrganization(ctx context.Context, org organizationdomain.Organization, result *RunResult) {
	stages := []struct {
		Name string
		Run  func(ctx context.Context) error
	}{
		{obsmetrics.EngineStageContent, func(ctx context.Context) error {
			return e.generateContent(ctx, org, result)
		}},
		{obsmetrics.EngineStagePublish, func(ctx context.Context) error {
			return e.publishDue(ctx, org.ID, result)
		}},
		{obsmetrics.EngineStageSeo, func(ctx context.Context) error {
			return e.scanSeo(ctx, org, result)
		}},
		{obsmetrics.EngineStageComments, func(ctx context.Context) error {
			return e.replyComments(ctx, org, result)
		}},
	}

	for _, stage := range stages {
		if !e.isStageEnabled(stage.Name) {
			continue
		}
		if err := e.runStage(ctx, stage.Name, stage.Run); err != nil {
			e.logStageError(org.ID, stage.Name, err)
			result.addError("org", org.ID, err)
			return
		}
	}
}

// runStage bounds one stage with the stage timeout. A deadline on the
// stage context is soft: it is metered and logged but does not fail the
// organization.
func (e *Engine) runStage(parent context.Context, stage string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, e.cfg.StageTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		return nil
	}
	if isDeadline(err) && parent.Err() == nil {
		obsmetrics.Engine().IncJobTimeout(stage)
		e.log.Warn("engine stage timed out",
			zap.String("stage", stage),
			zap.Duration("timeout", e.cfg.StageTimeout),
			zap.Error(err),
		)
		return nil
	}
	obsmetrics.Engine().IncStageError(stage, err)
	return err
}

// refreshTokens exchanges soon-to-expire platform tokens. Failures are
// logged inside the account service and never fail the run.
func (e *Engine) refreshTokens(ctx context.Context) {
	if !e.isStageEnabled(obsmetrics.EngineStageTokenRefresh) {
		return
	}
	refreshed, err := e.accountSvc.RefreshExpiring(ctx, e.cfg.TokenRefreshWindow)
	if err != nil {
		obsmetrics.Engine().IncStageError(obsmetrics.EngineStageTokenRefresh, err)
		e.log.Warn("token refresh pass failed", zap.Error(err))
		return
	}
	if refreshed > 0 {
		e.log.Info("social tokens refreshed", zap.Int("count", refreshed))
	}
}

func (e *Engine) scanSeo(ctx context.Context, org organizationdomain.Organization, result *RunResult) error {
	scanned, err := e.seoSvc.ScanIfDue(ctx, org.ID, e.cfg.SeoScanInterval)
	if err != nil {
		e.metrics.RecordSeoScan(ctx, "failed")
		return err
	}
	if scanned {
		result.SeoAnalyzed++
		e.metrics.RecordSeoScan(ctx, "ok")
	}
	return nil
}

func (e *Engine) replyComments(ctx context.Context, org organizationdomain.Organization, result *RunResult) error {
	outcome, err := e.commentSvc.ReplyPending(ctx, org, e.cfg.CommentBatchSize)
	if err != nil {
		return err
	}
	result.CommentsReplied += outcome.Replied
	for platform, count := range outcome.RepliedByPlatform {
		for i := 0; i < count; i++ {
			e.metrics.RecordCommentReplied(ctx, platform)
		}
	}
	for _, failure := range outcome.Failures {
		result.addError("comment", failure.CommentID, failure.Err)
	}
	return nil
}

// RunForever drives full passes on a fixed interval until the context is
// canceled. Used by the standalone engine binary.
func (e *Engine) RunForever(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := e.clock.Now().Add(e.cfg.RunInterval)
	engMetrics := obsmetrics.Engine()

	for {
		runLag := time.Since(nextRun)
		if runLag > 0 {
			engMetrics.ObserveRunLoopLag(runLag)
		}
		if _, err := e.Run(ctx); err != nil {
			e.log.Warn("engine run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(e.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (e *Engine) isStageEnabled(stage string) bool {
	// Empty EnabledStages enables everything (monolith mode).
	if len(e.cfg.EnabledStages) == 0 {
		return true
	}
	for _, enabled := range e.cfg.EnabledStages {
		if strings.EqualFold(enabled, stage) {
			return true
		}
	}
	return false
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
