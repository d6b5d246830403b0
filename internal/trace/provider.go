package trace

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.6.1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceNamespace = "form-engine"

// ServiceInfo describes the running build in exported spans.
type ServiceInfo struct {
	Name        string
	Version     string
	CommitHash  string
	Environment string
}

func (s ServiceInfo) attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ServiceNameKey.String(s.Name),
		semconv.ServiceVersionKey.String(s.Version),
		semconv.ServiceNamespaceKey.String(serviceNamespace),
		semconv.DeploymentEnvironmentKey.String(s.Environment),
		attribute.String("service.commit_hash", s.CommitHash),
	}
}

// Setup installs the global tracer provider and propagator. Spans are only
// exported when collectorURL is set; otherwise they are sampled and dropped.
// The returned function flushes and stops the provider.
func Setup(ctx context.Context, info ServiceInfo, collectorURL string) (func(context.Context) error, error) {
	res, err := resource.New(ctx, resource.WithAttributes(info.attributes()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}

	if collectorURL != "" {
		exporter, err := newExporter(ctx, collectorURL)
		if err != nil {
			return nil, err
		}
		options = append(options, sdktrace.WithBatcher(exporter))
	}

	provider := sdktrace.NewTracerProvider(options...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return provider.Shutdown, nil
}

func newExporter(ctx context.Context, collectorURL string) (sdktrace.SpanExporter, error) {
	conn, err := grpc.NewClient(collectorURL, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return exporter, nil
}
