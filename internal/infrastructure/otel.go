package infrastructure

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"plxcli/internal/config"
)

const (
	ServiceName    = "plx-pricelist-extractor"
	ServiceVersion = config.AppVersion
	MeterName      = "plxcli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	MetricExporter string // "prometheus", "none"
	EnableMetrics  bool
}

// OTelProviders holds the OpenTelemetry providers. The binary is a batch
// tool, so metrics are gathered from a private Prometheus registry and
// written out as a textfile snapshot instead of being served over HTTP.
type OTelProviders struct {
	MeterProvider *sdkmetric.MeterProvider
	Meter         metric.Meter
	Registry      *prometheus.Registry
	Logger        *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("PLX_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		MetricExporter: "prometheus",
		EnableMetrics:  true,
	}
}

// InitializeOTel initializes OpenTelemetry metrics for one process run
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()

	providers := &OTelProviders{
		Logger: logger,
	}

	if !cfg.EnableMetrics || cfg.MetricExporter == "none" {
		return providers, nil
	}
	if cfg.MetricExporter != "prometheus" {
		return nil, fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	// A private registry keeps repeated initializations (tests, library
	// callers) from colliding on the global default registry.
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.Registry = registry

	otel.SetMeterProvider(mp)

	logger.InfoContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter),
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment))

	return providers, nil
}

// GatherText renders the current metric state in Prometheus text
// exposition format.
func (p *OTelProviders) GatherText() (string, error) {
	if p.Registry == nil {
		return "", nil
	}

	families, err := p.Registry.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, family); err != nil {
			return "", fmt.Errorf("failed to encode metric family %s: %w", family.GetName(), err)
		}
	}
	return buf.String(), nil
}

// WriteMetricsFile writes the metric snapshot to a file in textfile
// collector format, suitable for node_exporter pickup after a batch run.
func (p *OTelProviders) WriteMetricsFile(path string) error {
	text, err := p.GatherText()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("meter provider shutdown: %w", err)
		}
	}

	if p.Logger != nil {
		p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	}
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// ExtractionMetrics holds the instruments recorded during extraction runs
type ExtractionMetrics struct {
	FilesProcessed   metric.Int64Counter
	SheetsRendered   metric.Int64Counter
	TablesExtracted  metric.Int64Counter
	TablesDegraded   metric.Int64Counter
	RowsMaterialized metric.Int64Counter
	ExtractDuration  metric.Float64Histogram
	ExtractErrors    metric.Int64Counter
}

// CreateExtractionMetrics creates the extraction-specific instruments
func CreateExtractionMetrics(meter metric.Meter) (*ExtractionMetrics, error) {
	filesProcessed, err := meter.Int64Counter(
		"extract_files_total",
		metric.WithDescription("Total number of input files processed"),
	)
	if err != nil {
		return nil, err
	}

	sheetsRendered, err := meter.Int64Counter(
		"render_sheets_total",
		metric.WithDescription("Total number of workbook sheets rendered to table markup"),
	)
	if err != nil {
		return nil, err
	}

	tablesExtracted, err := meter.Int64Counter(
		"extract_tables_total",
		metric.WithDescription("Total number of table elements extracted"),
	)
	if err != nil {
		return nil, err
	}

	tablesDegraded, err := meter.Int64Counter(
		"extract_tables_degraded_total",
		metric.WithDescription("Total number of table elements whose markup failed to parse"),
	)
	if err != nil {
		return nil, err
	}

	rowsMaterialized, err := meter.Int64Counter(
		"extract_rows_total",
		metric.WithDescription("Total number of structured rows materialized"),
	)
	if err != nil {
		return nil, err
	}

	extractDuration, err := meter.Float64Histogram(
		"extract_duration_seconds",
		metric.WithDescription("End-to-end extraction duration per input file"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	extractErrors, err := meter.Int64Counter(
		"extract_errors_total",
		metric.WithDescription("Total number of failed extraction runs"),
	)
	if err != nil {
		return nil, err
	}

	return &ExtractionMetrics{
		FilesProcessed:   filesProcessed,
		SheetsRendered:   sheetsRendered,
		TablesExtracted:  tablesExtracted,
		TablesDegraded:   tablesDegraded,
		RowsMaterialized: rowsMaterialized,
		ExtractDuration:  extractDuration,
		ExtractErrors:    extractErrors,
	}, nil
}

// RecordExtractionMetrics records the outcome of extracting one input file
func RecordExtractionMetrics(ctx context.Context, metrics *ExtractionMetrics, fileType string, duration time.Duration, tables, degraded, rows int, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("file.type", fileType),
	}

	metrics.FilesProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
	}
	metrics.ExtractDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(append(attrs, statusAttr)...))

	if err != nil {
		metrics.ExtractErrors.Add(ctx, 1, metric.WithAttributes(
			append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))...))
		return
	}

	metrics.TablesExtracted.Add(ctx, int64(tables), metric.WithAttributes(attrs...))
	if degraded > 0 {
		metrics.TablesDegraded.Add(ctx, int64(degraded), metric.WithAttributes(attrs...))
	}
	metrics.RowsMaterialized.Add(ctx, int64(rows), metric.WithAttributes(attrs...))
}

// RecordSheetsRendered records how many sheets one workbook produced
func RecordSheetsRendered(ctx context.Context, metrics *ExtractionMetrics, count int) {
	if metrics == nil || count == 0 {
		return
	}
	metrics.SheetsRendered.Add(ctx, int64(count))
}
