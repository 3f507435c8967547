package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	publisherdomain "github.com/getmarketingos/marketingos/internal/publisher/domain"
	"gorm.io/gorm"
)

func TestClassifyEngineJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: EngineJobReasonDeadlineExceeded,
		},
		{
			name: "db_lock_timeout",
			err:  &pgconn.PgError{Code: "55P03"},
			want: EngineJobReasonDBLockTimeout,
		},
		{
			name: "serialization_failure",
			err:  &pgconn.PgError{Code: "40001"},
			want: EngineJobReasonSerializationFailure,
		},
		{
			name: "unique_violation",
			err:  gorm.ErrDuplicatedKey,
			want: EngineJobReasonUniqueViolation,
		},
		{
			name: "provider",
			err:  &publisherdomain.ProviderError{Platform: "instagram", Message: "rate limited"},
			want: EngineJobReasonProvider,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: EngineJobReasonUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyEngineJobReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestClassifyEngineErrorType(t *testing.T) {
	if got := ClassifyEngineErrorType(publisherdomain.ErrTokenExpired); got != EngineErrorTypeProvider {
		t.Fatalf("expected provider, got %q", got)
	}
	if got := ClassifyEngineErrorType(gorm.ErrInvalidTransaction); got != EngineErrorTypeDB {
		t.Fatalf("expected db, got %q", got)
	}
	if got := ClassifyEngineErrorType(errors.New("needs an image")); got != EngineErrorTypeBusinessRule {
		t.Fatalf("expected business_rule, got %q", got)
	}
}

func TestAddBatchProcessed(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newEngineMetrics(registry, Config{
		ServiceName: "marketingos",
		Environment: "test",
	})

	metrics.AddBatchProcessed("publish_scheduled", "posts", 3)

	got := testutil.ToFloat64(metrics.batchProcessed.WithLabelValues("publish_scheduled", "posts"))
	if got != 3 {
		t.Fatalf("expected processed count 3, got %v", got)
	}
}

func TestIncPostTransitionUsesPreboundCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newEngineMetrics(registry, Config{
		ServiceName: "marketingos",
		Environment: "test",
	})

	metrics.IncPostTransition("scheduled", "publishing")
	metrics.IncPostTransition("publishing", "published")
	metrics.IncPostTransition("publishing", "published")

	got := testutil.ToFloat64(metrics.postTransitions.WithLabelValues("publishing", "published"))
	if got != 2 {
		t.Fatalf("expected transition count 2, got %v", got)
	}
}
