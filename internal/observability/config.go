package observability

import (
	"strings"

	"github.com/andreasgmg/fornet/internal/config"
)

// Config is the resolved observability setup for one process.
type Config struct {
	ServiceName string
	Environment string
	Version     string
	RootDomain  string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	obs := cfg.Observability

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "fornet"
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		RootDomain:           cfg.RootDomain,
		LogLevel:             logLevel(obs.LogLevel),
		LogFormat:            logFormat(obs.LogFormat),
		OtelEnabled:          obs.OtelEnabled && strings.TrimSpace(obs.OTLPEndpoint) != "",
		OtelExporterEndpoint: strings.TrimSpace(obs.OTLPEndpoint),
		OtelExporterProtocol: exporterProtocol(obs.OTLPProtocol),
		OtelSamplingRatio:    clampRatio(obs.SamplingRatio),
	}
}

// Debug turns on verbose request and query logging.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}

func logLevel(raw string) string {
	switch level := strings.ToLower(strings.TrimSpace(raw)); level {
	case "debug", "info", "warn", "error":
		return level
	case "warning":
		return "warn"
	}
	return "info"
}

func logFormat(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "console") {
		return "console"
	}
	return "json"
}

func exporterProtocol(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "http", "http/protobuf":
		return "http"
	}
	return "grpc"
}

func clampRatio(ratio float64) float64 {
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}
