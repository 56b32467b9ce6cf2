// Package observability wires the process-wide structured logger and
// Prometheus metrics the rest of the hub reports through.
package observability

import (
	"go.uber.org/zap"

	"coordination-hub/internal/config"
)

// NewLogger builds the process-wide logger at the configured level (info if
// it does not parse): JSON output in production, human-readable console
// output in every other environment. A logging format of "console" selects
// console output in production too.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapCfg.Level = level

	if cfg.Logging.Format == "console" {
		zapCfg.Encoding = "console"
	}

	return zapCfg.Build()
}
