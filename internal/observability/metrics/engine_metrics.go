package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	postdomain "github.com/getmarketingos/marketingos/internal/post/domain"
	publisherdomain "github.com/getmarketingos/marketingos/internal/publisher/domain"
	"gorm.io/gorm"
)

const (
	engineErrorTypeDeadlineExceeded = "deadline_exceeded"
	engineErrorTypeProvider         = "provider"
	engineErrorTypeBusinessRule     = "business_rule"
	engineErrorTypeDB               = "db"
)

const (
	EngineErrorTypeDeadlineExceeded = engineErrorTypeDeadlineExceeded
	EngineErrorTypeProvider         = engineErrorTypeProvider
	EngineErrorTypeBusinessRule     = engineErrorTypeBusinessRule
	EngineErrorTypeDB               = engineErrorTypeDB
	EngineErrorTypeUnknown          = "unknown"
)

const (
	EngineJobReasonDeadlineExceeded     = "deadline_exceeded"
	EngineJobReasonDBLockTimeout        = "db_lock_timeout"
	EngineJobReasonSerializationFailure = "serialization_failure"
	EngineJobReasonUniqueViolation      = "unique_violation"
	EngineJobReasonProvider             = "provider"
	EngineJobReasonUnknown              = "unknown"

	EngineBatchDeferredReasonSkipLockedEmpty = "skip_locked_empty"
)

const (
	EngineStageContent      = "content"
	EngineStagePublish      = "publish"
	EngineStageSeo          = "seo"
	EngineStageComments     = "comments"
	EngineStageTokenRefresh = "token_refresh"
	EngineStageRecovery     = "recovery"
)

const (
	LockResourcePostsForWork      = "posts_for_work"
	LockResourceCommentsForWork   = "comments_for_work"
	LockResourceSeoConfigsForWork = "seo_configs_for_work"
	LockResourcePostByID          = "post_by_id"
)

// EngineMetrics captures marketing engine health signals.
type EngineMetrics struct {
	jobRuns          *prometheus.CounterVec
	jobDuration      *prometheus.HistogramVec
	jobTimeouts      *prometheus.CounterVec
	jobErrors        *prometheus.CounterVec
	batchProcessed   *prometheus.CounterVec
	batchDeferred    *prometheus.CounterVec
	runLoopLag       prometheus.Observer
	postTransitions  *prometheus.CounterVec
	stageErrors      *prometheus.CounterVec
	publishErrors    *prometheus.CounterVec
	dbLockWait       *prometheus.HistogramVec
	transitionCounts map[string]map[string]prometheus.Counter
	stageErrorCounts map[string]map[string]prometheus.Counter
	lockWaitObserver map[string]prometheus.Observer
}

var (
	engineMetricsOnce sync.Once
	engineMetrics     *EngineMetrics
)

// Engine returns the singleton engine metrics registry.
func Engine() *EngineMetrics {
	return EngineWithConfig(Config{})
}

// EngineWithConfig returns the singleton engine metrics registry using config labels.
func EngineWithConfig(cfg Config) *EngineMetrics {
	engineMetricsOnce.Do(func() {
		engineMetrics = newEngineMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return engineMetrics
}

// ResetEngineMetricsForTest resets the engine metrics singleton for tests.
func ResetEngineMetricsForTest() {
	engineMetricsOnce = sync.Once{}
	engineMetrics = nil
}

func newEngineMetrics(registerer prometheus.Registerer, cfg Config) *EngineMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "marketingos"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_job_runs_total",
		Help:        "Engine job runs by name.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "marketingos_engine_job_duration_seconds",
		Help:        "Engine job latency to protect cron run freshness.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 120, 300, 600, 1800},
		ConstLabels: constLabels,
	}, []string{"job"})
	jobTimeouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_job_timeouts_total",
		Help:        "Engine job timeouts that threaten scheduled publish windows.",
		ConstLabels: constLabels,
	}, []string{"job"})
	jobErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_job_errors_total",
		Help:        "Engine job errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	batchProcessed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_batch_processed_total",
		Help:        "Engine batch items processed to gauge automation throughput.",
		ConstLabels: constLabels,
	}, []string{"job", "resource"})
	batchDeferred := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_batch_deferred_total",
		Help:        "Engine batch deferrals by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"job", "reason"})
	runLoopLag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "marketingos_engine_runloop_lag_seconds",
		Help:        "Engine run loop lag beyond the configured interval.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		ConstLabels: constLabels,
	})
	postTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_post_transition_total",
		Help:        "Marketing post lifecycle transitions to validate publish pipeline health.",
		ConstLabels: constLabels,
	}, []string{"from", "to"})
	stageErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_engine_stage_error_total",
		Help:        "Engine errors by stage for faster incident isolation.",
		ConstLabels: constLabels,
	}, []string{"stage", "error_type"})
	publishErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "marketingos_publish_error_total",
		Help:        "Publish failures by platform and error type.",
		ConstLabels: constLabels,
	}, []string{"platform", "error_type"})
	dbLockWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "marketingos_engine_db_lock_wait_seconds",
		Help:        "Engine DB lock wait time for SELECT FOR UPDATE contention.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"resource"})

	registerer.MustRegister(
		jobRuns,
		jobDuration,
		jobTimeouts,
		jobErrors,
		batchProcessed,
		batchDeferred,
		runLoopLag,
		postTransitions,
		stageErrors,
		publishErrors,
		dbLockWait,
	)

	transitionCounts := map[string]map[string]prometheus.Counter{
		string(postdomain.PostStatusScheduled): {
			string(postdomain.PostStatusPublishing): postTransitions.WithLabelValues(
				string(postdomain.PostStatusScheduled),
				string(postdomain.PostStatusPublishing),
			),
			string(postdomain.PostStatusFailed): postTransitions.WithLabelValues(
				string(postdomain.PostStatusScheduled),
				string(postdomain.PostStatusFailed),
			),
		},
		string(postdomain.PostStatusPublishing): {
			string(postdomain.PostStatusPublished): postTransitions.WithLabelValues(
				string(postdomain.PostStatusPublishing),
				string(postdomain.PostStatusPublished),
			),
			string(postdomain.PostStatusFailed): postTransitions.WithLabelValues(
				string(postdomain.PostStatusPublishing),
				string(postdomain.PostStatusFailed),
			),
		},
		string(postdomain.PostStatusFailed): {
			string(postdomain.PostStatusScheduled): postTransitions.WithLabelValues(
				string(postdomain.PostStatusFailed),
				string(postdomain.PostStatusScheduled),
			),
		},
	}

	lockWaitObserver := map[string]prometheus.Observer{
		LockResourcePostsForWork:      dbLockWait.WithLabelValues(LockResourcePostsForWork),
		LockResourceCommentsForWork:   dbLockWait.WithLabelValues(LockResourceCommentsForWork),
		LockResourceSeoConfigsForWork: dbLockWait.WithLabelValues(LockResourceSeoConfigsForWork),
		LockResourcePostByID:          dbLockWait.WithLabelValues(LockResourcePostByID),
	}

	stageErrorCounts := map[string]map[string]prometheus.Counter{}
	errorTypes := []string{
		engineErrorTypeDeadlineExceeded,
		engineErrorTypeProvider,
		engineErrorTypeBusinessRule,
		engineErrorTypeDB,
	}
	for _, stage := range []string{
		EngineStageContent,
		EngineStagePublish,
		EngineStageSeo,
		EngineStageComments,
		EngineStageTokenRefresh,
		EngineStageRecovery,
	} {
		stageCounters := map[string]prometheus.Counter{}
		for _, errType := range errorTypes {
			stageCounters[errType] = stageErrors.WithLabelValues(stage, errType)
		}
		stageErrorCounts[stage] = stageCounters
	}

	return &EngineMetrics{
		jobRuns:          jobRuns,
		jobDuration:      jobDuration,
		jobTimeouts:      jobTimeouts,
		jobErrors:        jobErrors,
		batchProcessed:   batchProcessed,
		batchDeferred:    batchDeferred,
		runLoopLag:       runLoopLag,
		postTransitions:  postTransitions,
		stageErrors:      stageErrors,
		publishErrors:    publishErrors,
		dbLockWait:       dbLockWait,
		transitionCounts: transitionCounts,
		stageErrorCounts: stageErrorCounts,
		lockWaitObserver: lockWaitObserver,
	}
}

// IncJobRun increments the run counter for an engine job.
func (m *EngineMetrics) IncJobRun(job string) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

// ObserveJobDuration records engine job latency in seconds.
func (m *EngineMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

// IncJobTimeout increments the timeout counter for the engine job.
func (m *EngineMetrics) IncJobTimeout(job string) {
	if m == nil || m.jobTimeouts == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

// IncJobError increments the engine job error counter with classification.
func (m *EngineMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil || m.jobErrors == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifyEngineJobReason(err)).Inc()
}

// AddBatchProcessed increments the batch processed counter for a resource by count.
func (m *EngineMetrics) AddBatchProcessed(job, resource string, count int) {
	if m == nil || count <= 0 || m.batchProcessed == nil {
		return
	}
	m.batchProcessed.WithLabelValues(job, resource).Add(float64(count))
}

// IncBatchDeferred increments the batch deferred counter for a job and reason.
func (m *EngineMetrics) IncBatchDeferred(job, reason string) {
	if m == nil || m.batchDeferred == nil {
		return
	}
	m.batchDeferred.WithLabelValues(job, reason).Inc()
}

// ObserveRunLoopLag records lag between the scheduled tick and actual run start.
func (m *EngineMetrics) ObserveRunLoopLag(duration time.Duration) {
	if m == nil || m.runLoopLag == nil {
		return
	}
	lag := duration
	if lag < 0 {
		lag = 0
	}
	m.runLoopLag.Observe(lag.Seconds())
}

// IncPostTransition increments post lifecycle transition counters.
func (m *EngineMetrics) IncPostTransition(from, to string) {
	if m == nil {
		return
	}
	if toCounters, ok := m.transitionCounts[from]; ok {
		if counter, ok := toCounters[to]; ok {
			counter.Inc()
			return
		}
	}
	m.postTransitions.WithLabelValues(from, to).Inc()
}

// IncStageError increments engine errors by stage and type.
func (m *EngineMetrics) IncStageError(stage string, err error) {
	if m == nil || err == nil {
		return
	}
	errorType := classifyEngineError(err)
	if stageCounters, ok := m.stageErrorCounts[stage]; ok {
		if counter, ok := stageCounters[errorType]; ok {
			counter.Inc()
			return
		}
	}
	m.stageErrors.WithLabelValues(stage, errorType).Inc()
}

// IncPublishError increments publish failures by platform.
func (m *EngineMetrics) IncPublishError(platform string, err error) {
	if m == nil || err == nil || m.publishErrors == nil {
		return
	}
	m.publishErrors.WithLabelValues(platform, classifyEngineError(err)).Inc()
}

// ObserveDBLockWait records lock wait time for SELECT FOR UPDATE work.
func (m *EngineMetrics) ObserveDBLockWait(resource string, duration time.Duration) {
	if m == nil {
		return
	}
	if observer, ok := m.lockWaitObserver[resource]; ok {
		observer.Observe(duration.Seconds())
		return
	}
	m.dbLockWait.WithLabelValues(resource).Observe(duration.Seconds())
}

func classifyEngineError(err error) string {
	if err == nil {
		return engineErrorTypeBusinessRule
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return engineErrorTypeDeadlineExceeded
	}
	if isProviderError(err) {
		return engineErrorTypeProvider
	}
	if isDBError(err) {
		return engineErrorTypeDB
	}
	return engineErrorTypeBusinessRule
}

// ClassifyEngineErrorType returns a low-cardinality error type for logging.
func ClassifyEngineErrorType(err error) string {
	if err == nil {
		return EngineErrorTypeUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return EngineErrorTypeDeadlineExceeded
	}
	if isProviderError(err) {
		return EngineErrorTypeProvider
	}
	if isDBError(err) {
		return EngineErrorTypeDB
	}
	return EngineErrorTypeBusinessRule
}

// IsEngineErrorRetryable reports whether the engine error should be retried.
func IsEngineErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if publisherdomain.IsRetryable(err) {
		return true
	}
	return isDBError(err)
}

// ClassifyEngineJobReason maps engine job errors to low-cardinality reasons.
func ClassifyEngineJobReason(err error) string {
	if err == nil {
		return EngineJobReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return EngineJobReasonDeadlineExceeded
	}
	if isDBLockTimeout(err) {
		return EngineJobReasonDBLockTimeout
	}
	if isSerializationFailure(err) {
		return EngineJobReasonSerializationFailure
	}
	if isUniqueViolation(err) {
		return EngineJobReasonUniqueViolation
	}
	if isProviderError(err) {
		return EngineJobReasonProvider
	}
	return EngineJobReasonUnknown
}

func isDBLockTimeout(err error) bool {
	return hasPGCode(err, "55P03")
}

func isSerializationFailure(err error) bool {
	return hasPGCode(err, "40001")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return hasPGCode(err, "23505")
}

func hasPGCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

func isProviderError(err error) bool {
	var providerErr *publisherdomain.ProviderError
	if errors.As(err, &providerErr) {
		return true
	}
	return errors.Is(err, publisherdomain.ErrTokenExpired) ||
		errors.Is(err, publisherdomain.ErrNoActiveAccount) ||
		errors.Is(err, publisherdomain.ErrUnsupportedPlatform)
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidField) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrMissingWhereClause) ||
		errors.Is(err, gorm.ErrUnsupportedDriver) ||
		errors.Is(err, gorm.ErrRegistered) ||
		errors.Is(err, gorm.ErrInvalidValue) ||
		errors.Is(err, gorm.ErrNotImplemented) ||
		errors.Is(err, gorm.ErrDryRunModeUnsupported) ||
		errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
