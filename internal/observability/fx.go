package observability

import (
	"github.com/smallbiznis/rentora/internal/observability/logger"
	"github.com/smallbiznis/rentora/internal/observability/metrics"
	"github.com/smallbiznis/rentora/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module provides the zap logger, tracer provider, domain meters and the
// Prometheus HTTP collectors.
var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		Config.components,
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
	),
	// The tracer provider has no consumers in the graph but must be built
	// so the global provider is registered before the first request.
	fx.Invoke(func(*sdktrace.TracerProvider) {}),
)
