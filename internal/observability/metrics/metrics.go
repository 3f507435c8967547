package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	contentGenerated metric.Int64Counter
	postsPublished   metric.Int64Counter
	commentsReplied  metric.Int64Counter
	seoScans         metric.Int64Counter
	engineRuns       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "marketingos"
	}
	meter := provider.Meter(name)

	contentGenerated, err := meter.Int64Counter("marketingos_content_generated_total")
	if err != nil {
		return nil, err
	}
	postsPublished, err := meter.Int64Counter("marketingos_posts_published_total")
	if err != nil {
		return nil, err
	}
	commentsReplied, err := meter.Int64Counter("marketingos_comments_replied_total")
	if err != nil {
		return nil, err
	}
	seoScans, err := meter.Int64Counter("marketingos_seo_scans_total")
	if err != nil {
		return nil, err
	}
	engineRuns, err := meter.Int64Counter("marketingos_engine_runs_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		contentGenerated: contentGenerated,
		postsPublished:   postsPublished,
		commentsReplied:  commentsReplied,
		seoScans:         seoScans,
		engineRuns:       engineRuns,
	}, nil
}

// RecordContentGenerated increments generated draft counts.
func (m *Metrics) RecordContentGenerated(ctx context.Context, platform, contentType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("platform", strings.TrimSpace(platform)),
		attribute.String("content_type", strings.TrimSpace(contentType)),
	)
	m.contentGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPostPublished increments published post counts.
func (m *Metrics) RecordPostPublished(ctx context.Context, platform string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("platform", strings.TrimSpace(platform)))
	m.postsPublished.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCommentReplied increments replied comment counts.
func (m *Metrics) RecordCommentReplied(ctx context.Context, platform string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("platform", strings.TrimSpace(platform)))
	m.commentsReplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSeoScan increments SEO scan counts.
func (m *Metrics) RecordSeoScan(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.seoScans.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordEngineRun increments completed engine run counts.
func (m *Metrics) RecordEngineRun(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.engineRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":       {},
	"endpoint":     {},
	"status_code":  {},
	"platform":     {},
	"content_type": {},
	"status":       {},
	"reason":       {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
