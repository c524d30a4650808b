// Package providers wires concrete dependencies into the DI container.
package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/config"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/validation"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// ProvideConfig loads application configuration.
func ProvideConfig(do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the application logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return logger.New(logger.Config{
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Logger.Level),
	}), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
