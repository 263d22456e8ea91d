package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"greeting/internal/config"
)

// InstrumentationName nom du scope utilisé pour les instruments et les spans du service
const InstrumentationName = "greeting"

// Telemetry regroupe les providers OpenTelemetry du processus.
// Il est créé une seule fois au démarrage puis passé explicitement aux consommateurs.
type Telemetry struct {
	serviceName    string
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	propagator     propagation.TextMapPropagator
	logger         *logrus.Logger
}

type telemetryOptions struct {
	readers    []sdkmetric.Reader
	processors []sdktrace.SpanProcessor
}

// TelemetryOption personnalise les providers construits par NewTelemetry
type TelemetryOption func(*telemetryOptions)

// WithMetricReader ajoute un reader de métriques supplémentaire
func WithMetricReader(r sdkmetric.Reader) TelemetryOption {
	return func(o *telemetryOptions) { o.readers = append(o.readers, r) }
}

// WithSpanProcessor ajoute un processeur de spans supplémentaire
func WithSpanProcessor(sp sdktrace.SpanProcessor) TelemetryOption {
	return func(o *telemetryOptions) { o.processors = append(o.processors, sp) }
}

// NewTelemetry construit les providers de métriques et de traces.
// Les métriques sont toujours exposées via le registre Prometheus de m;
// l'export OTLP/HTTP n'est activé que si un endpoint est configuré.
func NewTelemetry(ctx context.Context, cfg config.TelemetryConfig, m *Metrics, logger *logrus.Logger, opts ...TelemetryOption) (*Telemetry, error) {
	var o telemetryOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build telemetry resource: %w", err)
	}

	promExporter, err := otelprom.New(otelprom.WithRegisterer(m.Registry()))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterOpts := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}
	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if cfg.OTLPEndpoint != "" {
		metricExporter, err := newOTLPMetricExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		meterOpts = append(meterOpts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(cfg.ExportInterval)),
		))

		traceExporter, err := newOTLPTraceExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(traceExporter))
	}

	for _, r := range o.readers {
		meterOpts = append(meterOpts, sdkmetric.WithReader(r))
	}
	for _, sp := range o.processors {
		traceOpts = append(traceOpts, sdktrace.WithSpanProcessor(sp))
	}

	logger.WithFields(logrus.Fields{
		"service_name":  cfg.ServiceName,
		"otlp_endpoint": cfg.OTLPEndpoint,
		"otlp_enabled":  cfg.OTLPEndpoint != "",
	}).Info("Telemetry initialized")

	return &Telemetry{
		serviceName:    cfg.ServiceName,
		meterProvider:  sdkmetric.NewMeterProvider(meterOpts...),
		tracerProvider: sdktrace.NewTracerProvider(traceOpts...),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		logger: logger,
	}, nil
}

func newOTLPMetricExporter(ctx context.Context, cfg config.TelemetryConfig) (sdkmetric.Exporter, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}
	return exp, nil
}

func newOTLPTraceExporter(ctx context.Context, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exp, nil
}

// ServiceName retourne le nom de service déclaré dans la ressource
func (t *Telemetry) ServiceName() string {
	return t.serviceName
}

// Meter retourne le meter du service
func (t *Telemetry) Meter() metric.Meter {
	return t.meterProvider.Meter(InstrumentationName)
}

// Tracer retourne le tracer du service
func (t *Telemetry) Tracer() trace.Tracer {
	return t.tracerProvider.Tracer(InstrumentationName)
}

// TracerProvider retourne le provider de traces
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// Propagator retourne le propagateur W3C (TraceContext + Baggage)
func (t *Telemetry) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

// Shutdown vide les exporteurs puis arrête les providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	err := errors.Join(
		t.tracerProvider.Shutdown(ctx),
		t.meterProvider.Shutdown(ctx),
	)
	if err != nil {
		t.logger.WithError(err).Warn("Telemetry shutdown incomplete")
		return err
	}
	t.logger.Info("Telemetry flushed and stopped")
	return nil
}
