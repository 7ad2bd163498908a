//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/xterio/xdeploy/internal/adapters"
	"github.com/xterio/xdeploy/internal/config"
	"github.com/xterio/xdeploy/internal/logging"
	"github.com/xterio/xdeploy/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewDeployContract,
		usecase.NewVerifyContract,
		usecase.NewRunDeployScript,
		usecase.NewDeployStack,
		usecase.NewVerifyAddress,
		usecase.NewListContracts,

		// App
		NewApp,
	)
	return nil, nil
}
