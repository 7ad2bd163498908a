package app

import (
	"log/slog"

	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Prompter usecase.InteractivePrompter

	// Use cases
	DeployContract  *usecase.DeployContract
	RunDeployScript *usecase.RunDeployScript
	DeployStack     *usecase.DeployStack
	VerifyAddress   *usecase.VerifyAddress
	ListContracts   *usecase.ListContracts
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	prompter usecase.InteractivePrompter,
	deployContract *usecase.DeployContract,
	runDeployScript *usecase.RunDeployScript,
	deployStack *usecase.DeployStack,
	verifyAddress *usecase.VerifyAddress,
	listContracts *usecase.ListContracts,
) (*App, error) {
	return &App{
		Config:          cfg,
		Log:             log,
		Prompter:        prompter,
		DeployContract:  deployContract,
		RunDeployScript: runDeployScript,
		DeployStack:     deployStack,
		VerifyAddress:   verifyAddress,
		ListContracts:   listContracts,
	}, nil
}
