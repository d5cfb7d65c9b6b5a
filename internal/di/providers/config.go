// Package providers contains dependency injection providers for the
// clip caption service.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/droth0951/audio2-sub001/internal/config"
	"github.com/droth0951/audio2-sub001/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting clip caption service",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"store_path", cfg.Store.Path,
	)

	return log, nil
}
