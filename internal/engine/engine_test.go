package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/getmarketingos/marketingos/internal/clock"
	commentdomain "github.com/getmarketingos/marketingos/internal/comment/domain"
	commentrepository "github.com/getmarketingos/marketingos/internal/comment/repository"
	commentservice "github.com/getmarketingos/marketingos/internal/comment/service"
	contentdomain "github.com/getmarketingos/marketingos/internal/content/domain"
	cronlogdomain "github.com/getmarketingos/marketingos/internal/cronlog/domain"
	cronlogrepository "github.com/getmarketingos/marketingos/internal/cronlog/repository"
	obsmetrics "github.com/getmarketingos/marketingos/internal/observability/metrics"
	organizationdomain "github.com/getmarketingos/marketingos/internal/organization/domain"
	organizationrepository "github.com/getmarketingos/marketingos/internal/organization/repository"
	organizationservice "github.com/getmarketingos/marketingos/internal/organization/service"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	postrepository "github.com/getmarketingos/marketingos/internal/post/repository"
	postservice "github.com/getmarketingos/marketingos/internal/post/service"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters"
	"github.com/getmarketingos/marketingos/internal/publisher/adapters/instagram"
	publisherdomain "github.com/getmarketingos/marketingos/internal/publisher/domain"
	seodomain "github.com/getmarketingos/marketingos/internal/seo/domain"
	seorepository "github.com/getmarketingos/marketingos/internal/seo/repository"
	seoservice "github.com/getmarketingos/marketingos/internal/seo/service"
	socialaccountdomain "github.com/getmarketingos/marketingos/internal/socialaccount/domain"
	socialaccountrepository "github.com/getmarketingos/marketingos/internal/socialaccount/repository"
	socialaccountservice "github.com/getmarketingos/marketingos/internal/socialaccount/service"
	"github.com/getmarketingos/marketingos/internal/socialaccount/token"
	"github.com/glebarez/sqlite"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fakes for external integrations

type fakeGenerator struct {
	postCalls  int
	replyCalls int
	postErr    error
}

func (g *fakeGenerator) GeneratePost(ctx context.Context, req contentdomain.GenerateRequest) (*contentdomain.GeneratedContent, error) {
	g.postCalls++
	if g.postErr != nil {
		return nil, g.postErr
	}
	return &contentdomain.GeneratedContent{
		Content:   "Fresh roast just landed. Come grab a cup before it is gone.",
		Hashtags:  []string{"#coffee", "#smallbusiness"},
		ImageIdea: "latte art closeup",
	}, nil
}

func (g *fakeGenerator) GenerateReply(ctx context.Context, req contentdomain.ReplyRequest) (string, error) {
	g.replyCalls++
	return "Thanks so much! Hope to see you soon.", nil
}

type fakePublisher struct {
	platform string
	calls    int
	err      error
}

func (p *fakePublisher) Platform() string { return p.platform }

func (p *fakePublisher) Publish(ctx context.Context, creds socialaccountdomain.Credentials, post postdomain.MarketingPost) (*publisherdomain.PublishedRef, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &publisherdomain.PublishedRef{
		ExternalID: "ext-123",
		URL:        "https://example.com/p/ext-123",
	}, nil
}

type fakeAnalyzer struct {
	calls int
	score int
	err   error
}

func (a *fakeAnalyzer) AnalyzeURL(ctx context.Context, targetURL string) (int, error) {
	a.calls++
	if a.err != nil {
		return 0, a.err
	}
	return a.score, nil
}

type fakeReplySender struct {
	calls int
	err   error
}

func (s *fakeReplySender) SendReply(ctx context.Context, creds socialaccountdomain.Credentials, externalCommentID, message string) error {
	s.calls++
	return s.err
}

type fakeRefresher struct{}

func (fakeRefresher) Refresh(ctx context.Context, platform socialaccountdomain.Platform, accessToken, refreshToken string) (*socialaccountdomain.RefreshedToken, error) {
	return &socialaccountdomain.RefreshedToken{AccessToken: accessToken}, nil
}

type testEnv struct {
	db         *gorm.DB
	clk        *clock.FakeClock
	node       *snowflake.Node
	engine     *Engine
	generator  *fakeGenerator
	publisher  *fakePublisher
	analyzer   *fakeAnalyzer
	sender     *fakeReplySender
	accountSvc socialaccountdomain.Service
}

func setupEngineTest(t *testing.T) *testEnv {
	return setupEngineTestWithPublisher(t, nil)
}

// setupEngineTestWithPublisher swaps the registered adapter, for tests
// driving a real platform publisher through the publish step.
func setupEngineTestWithPublisher(t *testing.T, pub publisherdomain.Publisher) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// SQLite support: strip row locking clauses from claim queries.
	stripLocks := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripLocks)
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripLocks)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&organizationdomain.Organization{},
		&organizationdomain.BusinessProfile{},
		&organizationdomain.MarketingConfig{},
		&socialaccountdomain.SocialAccount{},
		&postdomain.MarketingPost{},
		&seodomain.SeoConfig{},
		&commentdomain.SocialComment{},
		&cronlogdomain.CronLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	codec, err := token.NewCodec("test-token-secret")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}

	orgSvc := organizationservice.NewService(db, organizationrepository.NewRepository(db), node, clk)
	postSvc := postservice.NewService(db, postrepository.NewRepository(db), node, clk)
	accountSvc := socialaccountservice.NewService(db, socialaccountrepository.NewRepository(db), codec, fakeRefresher{}, node, clk, log)

	analyzer := &fakeAnalyzer{score: 88}
	seoSvc := seoservice.NewService(seorepository.NewRepository(db), analyzer, node, clk)

	generator := &fakeGenerator{}
	sender := &fakeReplySender{}
	commentSvc := commentservice.NewService(commentrepository.NewRepository(db), accountSvc, generator, sender, node, clk, log)

	publisher := &fakePublisher{platform: "instagram"}
	registered := publisherdomain.Publisher(publisher)
	if pub != nil {
		registered = pub
	}
	registry := adapters.NewRegistry(registered)

	cronLogs := cronlogrepository.NewRepository(db, node)

	appMetrics, err := obsmetrics.New(obsmetrics.Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	eng, err := New(Params{
		DB:         db,
		Log:        log,
		OrgSvc:     orgSvc,
		PostSvc:    postSvc,
		AccountSvc: accountSvc,
		SeoSvc:     seoSvc,
		CommentSvc: commentSvc,
		Generator:  generator,
		Registry:   registry,
		CronLogs:   cronLogs,
		Metrics:    appMetrics,
		GenID:      node,
		Clock:      clk,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	return &testEnv{
		db:         db,
		clk:        clk,
		node:       node,
		engine:     eng,
		generator:  generator,
		publisher:  publisher,
		analyzer:   analyzer,
		sender:     sender,
		accountSvc: accountSvc,
	}
}

type seedOrgOptions struct {
	postsPerWeek int
	paused       bool
	incomplete   bool
}

func (env *testEnv) seedOrg(t *testing.T, slug string, opts seedOrgOptions) organizationdomain.Organization {
	t.Helper()

	now := env.clk.Now()
	org := organizationdomain.Organization{
		ID:        env.node.Generate(),
		Name:      slug,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := env.db.Create(&org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}

	profile := organizationdomain.BusinessProfile{
		ID:           env.node.Generate(),
		OrgID:        org.ID,
		BusinessName: "Corner Coffee",
		Industry:     "coffee shop",
		BrandVoice:   "warm",
		IsComplete:   !opts.incomplete,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	postsPerWeek := opts.postsPerWeek
	if postsPerWeek == 0 {
		postsPerWeek = 7
	}
	config := organizationdomain.MarketingConfig{
		ID:           env.node.Generate(),
		OrgID:        org.ID,
		IsPaused:     opts.paused,
		PostsPerWeek: postsPerWeek,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := env.db.Create(&config).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}

	org.BusinessProfile = &profile
	org.MarketingConfig = &config
	return org
}

func (env *testEnv) connectInstagram(t *testing.T, orgID snowflake.ID) {
	t.Helper()
	_, err := env.accountSvc.Connect(context.Background(), orgID.String(), socialaccountdomain.ConnectAccountRequest{
		Platform:     "instagram",
		AccountName:  "cornercoffee",
		AccessToken:  "ig-access-token",
		IGBusinessID: "1789",
	})
	if err != nil {
		t.Fatalf("connect account: %v", err)
	}
}

func (env *testEnv) connectFacebook(t *testing.T, orgID snowflake.ID) {
	t.Helper()
	_, err := env.accountSvc.Connect(context.Background(), orgID.String(), socialaccountdomain.ConnectAccountRequest{
		Platform:    "facebook",
		AccountName: "Corner Coffee",
		AccessToken: "fb-access-token",
		FBPageID:    "page-1",
	})
	if err != nil {
		t.Fatalf("connect account: %v", err)
	}
}

func (env *testEnv) seedDuePost(t *testing.T, orgID snowflake.ID) snowflake.ID {
	t.Helper()
	post := postdomain.MarketingPost{
		ID:          env.node.Generate(),
		OrgID:       orgID,
		Platform:    "instagram",
		Content:     "Weekend special: two for one lattes.",
		Status:      postdomain.PostStatusScheduled,
		ScheduledAt: env.clk.Now().Add(-time.Hour),
	}
	if err := env.db.Create(&post).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post.ID
}

func TestRunGeneratesContentUpToWeeklyTarget(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 3})
	env.connectInstagram(t, org.ID)

	result, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.OrganizationsProcessed != 1 {
		t.Fatalf("expected 1 org processed, got %d", result.OrganizationsProcessed)
	}
	if result.ContentGenerated != 3 {
		t.Fatalf("expected 3 posts generated, got %d", result.ContentGenerated)
	}

	var posts []postdomain.MarketingPost
	if err := env.db.Order("scheduled_at ASC").Find(&posts).Error; err != nil {
		t.Fatalf("load posts: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}

	// Slots land on consecutive days cycling through the best hours.
	midnight := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	wantSlots := []time.Time{
		midnight.AddDate(0, 0, 1).Add(9 * time.Hour),
		midnight.AddDate(0, 0, 2).Add(12 * time.Hour),
		midnight.AddDate(0, 0, 3).Add(17 * time.Hour),
	}
	for i, post := range posts {
		if !post.ScheduledAt.UTC().Equal(wantSlots[i]) {
			t.Fatalf("post %d scheduled at %v, want %v", i, post.ScheduledAt.UTC(), wantSlots[i])
		}
		if post.Platform != "instagram" {
			t.Fatalf("post %d platform %q, want instagram", i, post.Platform)
		}
		if post.Status != postdomain.PostStatusScheduled {
			t.Fatalf("post %d status %q, want scheduled", i, post.Status)
		}
	}

	// Queue is full now; a second run must not generate more.
	result, err = env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.ContentGenerated != 0 {
		t.Fatalf("expected 0 posts on second run, got %d", result.ContentGenerated)
	}

	var count int64
	if err := env.db.Model(&postdomain.MarketingPost{}).Count(&count).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 posts after second run, got %d", count)
	}
}

func TestRunRoundRobinsAcrossConnectedPlatforms(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 3})
	env.connectInstagram(t, org.ID)
	env.clk.Advance(time.Minute)
	env.connectFacebook(t, org.ID)

	result, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ContentGenerated != 3 {
		t.Fatalf("expected 3 posts generated, got %d", result.ContentGenerated)
	}

	var posts []postdomain.MarketingPost
	if err := env.db.Order("scheduled_at ASC").Find(&posts).Error; err != nil {
		t.Fatalf("load posts: %v", err)
	}
	wantPlatforms := []string{"instagram", "facebook", "instagram"}
	if len(posts) != len(wantPlatforms) {
		t.Fatalf("expected %d posts, got %d", len(wantPlatforms), len(posts))
	}
	for i, post := range posts {
		if post.Platform != wantPlatforms[i] {
			t.Fatalf("post %d platform %q, want %q", i, post.Platform, wantPlatforms[i])
		}
	}
}

func TestRunRecordsOrgScopedErrorWhenGenerationFails(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 2})
	env.connectInstagram(t, org.ID)
	env.generator.postErr = errors.New("model unavailable")

	result, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ContentGenerated != 0 {
		t.Fatalf("expected 0 posts generated, got %d", result.ContentGenerated)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected one error per failed slot, got %+v", result.Errors)
	}
	for i, runErr := range result.Errors {
		// No post exists for a failed draft, so the error carries the org id.
		if runErr.Scope != "org" {
			t.Fatalf("error %d scope %q, want org", i, runErr.Scope)
		}
		if runErr.ID != org.ID.String() {
			t.Fatalf("error %d id %q, want %q", i, runErr.ID, org.ID.String())
		}
	}

	var count int64
	if err := env.db.Model(&postdomain.MarketingPost{}).Count(&count).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no posts persisted, got %d", count)
	}
}

func TestRunSkipsPausedAndIncompleteOrgs(t *testing.T) {
	env := setupEngineTest(t)
	env.seedOrg(t, "paused-org", seedOrgOptions{paused: true})
	env.seedOrg(t, "incomplete-org", seedOrgOptions{incomplete: true})

	result, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.OrganizationsProcessed != 0 {
		t.Fatalf("expected 0 orgs processed, got %d", result.OrganizationsProcessed)
	}
	if env.generator.postCalls != 0 {
		t.Fatalf("expected no generator calls, got %d", env.generator.postCalls)
	}
}

func TestRunPublishOnlyPublishesDuePost(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{})
	env.connectInstagram(t, org.ID)
	postID := env.seedDuePost(t, org.ID)

	result, err := env.engine.RunPublishOnly(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PostsPublished != 1 {
		t.Fatalf("expected 1 post published, got %d", result.PostsPublished)
	}
	if result.ContentGenerated != 0 {
		t.Fatalf("publish-only pass must not generate content, got %d", result.ContentGenerated)
	}
	if env.publisher.calls != 1 {
		t.Fatalf("expected 1 adapter call, got %d", env.publisher.calls)
	}

	var post postdomain.MarketingPost
	if err := env.db.First(&post, "id = ?", postID).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.Status != postdomain.PostStatusPublished {
		t.Fatalf("post status %q, want published", post.Status)
	}
	if post.ExternalID != "ext-123" {
		t.Fatalf("external id %q, want ext-123", post.ExternalID)
	}
	if post.PublishedAt == nil {
		t.Fatalf("expected published_at to be set")
	}
}

func TestRunPublishOnlyFailsPostWithoutActiveAccount(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "no-account-org", seedOrgOptions{})
	postID := env.seedDuePost(t, org.ID)

	result, err := env.engine.RunPublishOnly(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PostsPublished != 0 {
		t.Fatalf("expected 0 posts published, got %d", result.PostsPublished)
	}
	if env.publisher.calls != 0 {
		t.Fatalf("expected no adapter calls without an account, got %d", env.publisher.calls)
	}
	if len(result.Errors) != 1 || result.Errors[0].Scope != "post" {
		t.Fatalf("expected one post-scoped error, got %+v", result.Errors)
	}

	var post postdomain.MarketingPost
	if err := env.db.First(&post, "id = ?", postID).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.Status != postdomain.PostStatusFailed {
		t.Fatalf("post status %q, want failed", post.Status)
	}
	if !strings.Contains(post.PublishError, "no active instagram account") {
		t.Fatalf("publish error %q missing account message", post.PublishError)
	}
}

func TestRunPublishOnlyFailsImagelessInstagramPost(t *testing.T) {
	env := setupEngineTestWithPublisher(t, instagram.New())
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{})
	env.connectInstagram(t, org.ID)
	postID := env.seedDuePost(t, org.ID)

	result, err := env.engine.RunPublishOnly(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PostsPublished != 0 {
		t.Fatalf("expected 0 posts published, got %d", result.PostsPublished)
	}
	if len(result.Errors) != 1 || result.Errors[0].Scope != "post" {
		t.Fatalf("expected one post-scoped error, got %+v", result.Errors)
	}

	var post postdomain.MarketingPost
	if err := env.db.First(&post, "id = ?", postID).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.Status != postdomain.PostStatusFailed {
		t.Fatalf("post status %q, want failed", post.Status)
	}
	if !strings.Contains(post.PublishError, "Instagram requiere una imagen") {
		t.Fatalf("publish error %q missing image message", post.PublishError)
	}
}

func TestRunScansSeoAndRepliesComments(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 1})
	env.connectInstagram(t, org.ID)

	now := env.clk.Now()
	seoConfig := seodomain.SeoConfig{
		ID:        env.node.Generate(),
		OrgID:     org.ID,
		TargetURL: "https://cornercoffee.example",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := env.db.Create(&seoConfig).Error; err != nil {
		t.Fatalf("seed seo config: %v", err)
	}

	comment := commentdomain.SocialComment{
		ID:                env.node.Generate(),
		OrgID:             org.ID,
		Platform:          "instagram",
		ExternalCommentID: "c-1",
		Author:            "ana",
		Text:              "Do you have oat milk?",
		NeedsReply:        true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := env.db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	result, err := env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.SeoAnalyzed != 1 {
		t.Fatalf("expected 1 seo scan, got %d", result.SeoAnalyzed)
	}
	if env.analyzer.calls != 1 {
		t.Fatalf("expected 1 analyzer call, got %d", env.analyzer.calls)
	}
	if result.CommentsReplied != 1 {
		t.Fatalf("expected 1 comment replied, got %d", result.CommentsReplied)
	}
	if env.sender.calls != 1 {
		t.Fatalf("expected 1 reply sent, got %d", env.sender.calls)
	}

	var stored seodomain.SeoConfig
	if err := env.db.First(&stored, "org_id = ?", org.ID).Error; err != nil {
		t.Fatalf("load seo config: %v", err)
	}
	if stored.LastScore == nil || *stored.LastScore != 88 {
		t.Fatalf("expected last score 88, got %v", stored.LastScore)
	}

	var replied commentdomain.SocialComment
	if err := env.db.First(&replied, "id = ?", comment.ID).Error; err != nil {
		t.Fatalf("load comment: %v", err)
	}
	if !replied.Replied || replied.ReplyText == "" {
		t.Fatalf("expected comment replied with text, got %+v", replied)
	}

	// Second run: scan interval has not elapsed and no comments remain.
	result, err = env.engine.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.SeoAnalyzed != 0 || result.CommentsReplied != 0 {
		t.Fatalf("expected idle second run, got %+v", result)
	}
}

func TestRunWritesSingleLedgerRowPerRun(t *testing.T) {
	env := setupEngineTest(t)
	env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 1})

	if _, err := env.engine.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var runs []cronlogdomain.CronLog
	if err := env.db.Find(&runs).Error; err != nil {
		t.Fatalf("load runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 ledger row, got %d", len(runs))
	}
	run := runs[0]
	if run.Job != JobMarketingEngine {
		t.Fatalf("job %q, want %q", run.Job, JobMarketingEngine)
	}
	if run.Status != cronlogdomain.RunStatusCompleted {
		t.Fatalf("status %q, want completed", run.Status)
	}
	if run.FinishedAt == nil {
		t.Fatalf("expected finished_at to be set")
	}
	if len(run.Results) == 0 {
		t.Fatalf("expected results payload")
	}
}

func TestRunRecoversStaleState(t *testing.T) {
	env := setupEngineTest(t)
	org := env.seedOrg(t, "corner-coffee", seedOrgOptions{postsPerWeek: 1})

	now := env.clk.Now()
	stale := postdomain.MarketingPost{
		ID:          env.node.Generate(),
		OrgID:       org.ID,
		Platform:    "instagram",
		Content:     "interrupted mid publish",
		Status:      postdomain.PostStatusPublishing,
		ScheduledAt: now.Add(-2 * time.Hour),
	}
	if err := env.db.Create(&stale).Error; err != nil {
		t.Fatalf("seed stale post: %v", err)
	}
	// Backdate past the recovery threshold without touching gorm hooks.
	if err := env.db.Exec(`UPDATE marketing_posts SET updated_at = ? WHERE id = ?`, now.Add(-time.Hour), stale.ID).Error; err != nil {
		t.Fatalf("backdate post: %v", err)
	}

	abandoned, err := cronlogrepository.NewRepository(env.db, env.node).Open(context.Background(), JobMarketingEngine, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("open abandoned run: %v", err)
	}

	if _, err := env.engine.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var post postdomain.MarketingPost
	if err := env.db.First(&post, "id = ?", stale.ID).Error; err != nil {
		t.Fatalf("load post: %v", err)
	}
	if post.Status != postdomain.PostStatusFailed {
		t.Fatalf("stale post status %q, want failed", post.Status)
	}
	if !strings.Contains(post.PublishError, "interrupted") {
		t.Fatalf("publish error %q missing recovery message", post.PublishError)
	}

	var run cronlogdomain.CronLog
	if err := env.db.First(&run, "id = ?", abandoned.ID).Error; err != nil {
		t.Fatalf("load abandoned run: %v", err)
	}
	if run.Status != cronlogdomain.RunStatusFailed {
		t.Fatalf("abandoned run status %q, want failed", run.Status)
	}
}
