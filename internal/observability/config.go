package observability

import (
	"os"
	"strconv"
	"strings"

	"github.com/smallbiznis/rentora/internal/config"
	"github.com/smallbiznis/rentora/internal/observability/logger"
	"github.com/smallbiznis/rentora/internal/observability/metrics"
	"github.com/smallbiznis/rentora/internal/observability/tracing"
	"go.uber.org/fx"
)

// Config is the process-wide observability setup resolved from the environment.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// LoadConfig layers OTEL_* and LOG_* overrides on top of the app config.
// Export stays off unless OTEL_ENABLED is set so local runs need no collector.
func LoadConfig(cfg config.Config) Config {
	out := Config{
		ServiceName:          firstNonBlank(cfg.AppName, "rentora"),
		Environment:          firstNonBlank(os.Getenv("DEPLOYMENT_ENV"), cfg.Environment),
		Version:              firstNonBlank(os.Getenv("SERVICE_VERSION"), cfg.AppVersion),
		LogLevel:             strings.ToLower(firstNonBlank(os.Getenv("LOG_LEVEL"), "info")),
		LogFormat:            strings.ToLower(firstNonBlank(os.Getenv("LOG_FORMAT"), "json")),
		OtelExporterEndpoint: firstNonBlank(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), cfg.OTLPEndpoint),
		OtelExporterProtocol: strings.ToLower(firstNonBlank(
			os.Getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"),
			os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"),
			"grpc",
		)),
		OtelSamplingRatio: 0.1,
	}
	if enabled, err := strconv.ParseBool(strings.TrimSpace(os.Getenv("OTEL_ENABLED"))); err == nil {
		out.OtelEnabled = enabled
	}
	if ratio, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("OTEL_SAMPLING_RATIO")), 64); err == nil && ratio >= 0 && ratio <= 1 {
		out.OtelSamplingRatio = ratio
	}
	return out
}

// Debug is true for debug log level or any non-production-like environment.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

type components struct {
	fx.Out

	Logger  logger.Config
	Tracing tracing.Config
	Metrics metrics.Config
}

func (c Config) components() components {
	return components{
		Logger: logger.Config{
			ServiceName:         c.ServiceName,
			Environment:         c.Environment,
			Version:             c.Version,
			Level:               c.LogLevel,
			Format:              c.LogFormat,
			Debug:               c.Debug(),
			IncludeCaller:       true,
			IncludeStackOnError: c.Debug(),
		},
		Tracing: tracing.Config{
			Enabled:          c.OtelEnabled,
			ServiceName:      c.ServiceName,
			ServiceVersion:   c.Version,
			Environment:      c.Environment,
			ExporterEndpoint: c.OtelExporterEndpoint,
			SamplingRatio:    c.OtelSamplingRatio,
		},
		Metrics: metrics.Config{
			Enabled:          c.OtelEnabled,
			ExporterEndpoint: c.OtelExporterEndpoint,
			ExporterProtocol: c.OtelExporterProtocol,
			ServiceName:      c.ServiceName,
			Environment:      c.Environment,
		},
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
