package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/comment"
	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
	"github.com/getmarketingos/marketingos/internal/config"
	"github.com/getmarketingos/marketingos/internal/content"
	"github.com/getmarketingos/marketingos/internal/cronlog"
	cronlogdomain "github.com/getmarketingos/marketingos/internal/cronlog/domain"
	"github.com/getmarketingos/marketingos/internal/engine"
	"github.com/getmarketingos/marketingos/internal/media"
	"github.com/getmarketingos/marketingos/internal/observability"
	obsmiddleware "github.com/getmarketingos/marketingos/internal/observability/logger"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	obstracing "github.com/getmarketingos/marketingos/internal/observability/tracing"
	"github.com/getmarketingos/marketingos/internal/organization"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	"github.com/getmarketingos/marketingos/internal/post"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	"github.com/getmarketingos/marketingos/internal/publisher"
	"github.com/getmarketingos/marketingos/internal/ratelimit"
	"github.com/getmarketingos/marketingos/internal/seo"
	seodomain "github.com/getmarketingos/marketingos/internal/seo/domain"
	"github.com/getmarketingos/marketingos/internal/socialaccount"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	fx.Provide(registerGin),
	organization.Module,
	socialaccount.Module,
	post.Module,
	publisher.Module,
	content.Module,
	media.Module,
	seo.Module,
	comment.Module,
	cronlog.Module,
	ratelimit.Module,
	engine.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine) {
	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	organizationSvc organizationdomain.Service
	accountSvc      socialaccountdomain.Service
	postSvc         postdomain.Service
	seoSvc          seodomain.Service
	commentSvc      commentdomain.Service
	cronLogs        cronlogdomain.Repository
	marketingEngine *engine.Engine
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	OrganizationSvc organizationdomain.Service
	AccountSvc      socialaccountdomain.Service
	PostSvc         postdomain.Service
	SeoSvc          seodomain.Service
	CommentSvc      commentdomain.Service
	CronLogs        cronlogdomain.Repository
	MarketingEngine *engine.Engine
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		organizationSvc: p.OrganizationSvc,
		accountSvc:      p.AccountSvc,
		postSvc:         p.PostSvc,
		seoSvc:          p.SeoSvc,
		commentSvc:      p.CommentSvc,
		cronLogs:        p.CronLogs,
		marketingEngine: p.MarketingEngine,
	}

	svc.registerCronRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerCronRoutes() {
	cron := s.engine.Group("/api/cron", s.CronAuthRequired())

	cron.GET("/marketing-engine", s.RunMarketingEngine)
	cron.GET("/publish-scheduled", s.RunPublishScheduled)
	// Legacy route name kept for existing external schedulers.
	cron.GET("/social-publish", s.RunPublishScheduled)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Organizations --------
	api.GET("/organizations", s.ListOrganizations)
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations/:id", s.GetOrganizationByID)
	api.PUT("/organizations/:id/profile", s.UpsertBusinessProfile)
	api.PUT("/organizations/:id/marketing-config", s.UpsertMarketingConfig)
	api.POST("/organizations/:id/pause", s.PauseMarketing)
	api.POST("/organizations/:id/resume", s.ResumeMarketing)

	// -------- Social accounts --------
	api.GET("/organizations/:id/social-accounts", s.ListSocialAccounts)
	api.POST("/organizations/:id/social-accounts", s.ConnectSocialAccount)
	api.DELETE("/organizations/:id/social-accounts/:accountId", s.DisconnectSocialAccount)

	// -------- Posts --------
	api.GET("/organizations/:id/posts", s.ListPosts)
	api.GET("/organizations/:id/posts/:postId", s.GetPostByID)
	api.DELETE("/organizations/:id/posts/:postId", s.CancelPost)
	api.POST("/organizations/:id/posts/:postId/retry", s.RetryPost)

	// -------- SEO --------
	api.GET("/organizations/:id/seo", s.GetSeoConfig)
	api.PUT("/organizations/:id/seo", s.UpsertSeoConfig)

	// -------- Comments --------
	api.GET("/organizations/:id/comments", s.ListComments)
	api.POST("/organizations/:id/comments", s.IngestComment)
	api.POST("/organizations/:id/comments/:commentId/spam", s.MarkCommentSpam)

	// -------- Cron ledger --------
	api.GET("/cron-logs", s.ListCronLogs)
}
