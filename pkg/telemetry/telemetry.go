package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Service name for telemetry
	serviceName = "pinnal-graph-container"

	// Metric names
	metricImports          = "graph.imports.total"
	metricPrunes           = "graph.prunes.total"
	metricChanges          = "graph.input_changes.total"
	metricVetoes           = "graph.vetoes.total"
	metricCallbackDuration = "graph.callback.duration"
	metricGraphSize        = "graph.apply_nodes"
)

// Provider manages OpenTelemetry setup for the graph container: structural
// event counters, callback timing, and rewrite tracing, exported through a
// dedicated Prometheus registry.
type Provider struct {
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	tracer        trace.Tracer
	registry      *prometheus.Registry

	imports          metric.Int64Counter
	prunes           metric.Int64Counter
	changes          metric.Int64Counter
	vetoes           metric.Int64Counter
	callbackDuration metric.Float64Histogram
	graphSize        metric.Int64Histogram
}

// Config holds telemetry configuration
type Config struct {
	// ServiceName is the name of the service for telemetry
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment (e.g., "production", "staging", "development")
	Environment string

	// EnableTracing enables span creation around input changes
	EnableTracing bool
}

// DefaultConfig returns default telemetry configuration
func DefaultConfig() Config {
	return Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    "development",
		EnableTracing:  true,
	}
}

// NewProvider creates a telemetry provider with a Prometheus metrics
// exporter over its own registry. The registry's Gatherer is exposed for
// the embedding service to scrape.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	p := &Provider{
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(config.ServiceName),
		registry:      registry,
	}
	if config.EnableTracing {
		p.tracer = otel.Tracer(config.ServiceName)
	}
	if err := p.initInstruments(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) initInstruments() error {
	var err error
	if p.imports, err = p.meter.Int64Counter(metricImports,
		metric.WithDescription("Apply nodes imported into a graph")); err != nil {
		return fmt.Errorf("failed to create counter %s: %w", metricImports, err)
	}
	if p.prunes, err = p.meter.Int64Counter(metricPrunes,
		metric.WithDescription("Apply nodes pruned from a graph")); err != nil {
		return fmt.Errorf("failed to create counter %s: %w", metricPrunes, err)
	}
	if p.changes, err = p.meter.Int64Counter(metricChanges,
		metric.WithDescription("Input slots rewired")); err != nil {
		return fmt.Errorf("failed to create counter %s: %w", metricChanges, err)
	}
	if p.vetoes, err = p.meter.Int64Counter(metricVetoes,
		metric.WithDescription("Structural edits vetoed by a feature")); err != nil {
		return fmt.Errorf("failed to create counter %s: %w", metricVetoes, err)
	}
	if p.callbackDuration, err = p.meter.Float64Histogram(metricCallbackDuration,
		metric.WithDescription("Cumulative feature callback time per flush"),
		metric.WithUnit("s")); err != nil {
		return fmt.Errorf("failed to create histogram %s: %w", metricCallbackDuration, err)
	}
	if p.graphSize, err = p.meter.Int64Histogram(metricGraphSize,
		metric.WithDescription("Member node count observed at structural events")); err != nil {
		return fmt.Errorf("failed to create histogram %s: %w", metricGraphSize, err)
	}
	return nil
}

// Gatherer returns the Prometheus gatherer backing the exporter.
func (p *Provider) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Tracer returns the tracer, or nil when tracing is disabled.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// RecordImport counts one imported node.
func (p *Provider) RecordImport(ctx context.Context, graphID, op, reason string) {
	p.imports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph.id", graphID),
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

// RecordPrune counts one pruned node.
func (p *Provider) RecordPrune(ctx context.Context, graphID, op, reason string) {
	p.prunes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph.id", graphID),
		attribute.String("op", op),
		attribute.String("reason", reason),
	))
}

// RecordChange counts one rewired input slot.
func (p *Provider) RecordChange(ctx context.Context, graphID, reason string, size int) {
	p.changes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph.id", graphID),
		attribute.String("reason", reason),
	))
	p.graphSize.Record(ctx, int64(size), metric.WithAttributes(
		attribute.String("graph.id", graphID),
	))
}

// RecordVeto counts one vetoed edit.
func (p *Provider) RecordVeto(ctx context.Context, graphID, feature string) {
	p.vetoes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph.id", graphID),
		attribute.String("feature", feature),
	))
}

// RecordCallbackTime records cumulative callback seconds for one feature.
func (p *Provider) RecordCallbackTime(ctx context.Context, graphID, feature string, seconds float64) {
	p.callbackDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("graph.id", graphID),
		attribute.String("feature", feature),
	))
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
