package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xterio/xdeploy/internal/adapters/progress"
	"github.com/xterio/xdeploy/internal/app"
	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
	// viperKey is the context key for the viper instance bound to the command flags
	viperKey contextKey = "viper"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xdeploy",
		Short: "Deploy and verify the Xterio contract suite",
		Long: `xdeploy deploys the Xterio contracts (token, gateway, marketplace, minter and
friends) to an EVM network, runs their initialization and configuration
transactions in order, and verifies their source on the network's explorer.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			appInstance, err := app.InitApp(v, newProgressSink(cmd, v))
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			ctx = context.WithValue(ctx, viperKey, v)

			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., sepolia, xterio-testnet)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Skip the deployment confirmation prompt")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	contractsCmd := NewContractsCmd()
	contractsCmd.GroupID = "management"
	rootCmd.AddCommand(contractsCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// newProgressSink picks a spinner for terminals and plain lines otherwise
func newProgressSink(cmd *cobra.Command, v *viper.Viper) usecase.ProgressSink {
	var sink usecase.ProgressSink = progress.NewSpinnerSink(os.Stderr)
	if v.GetBool("non_interactive") || !isatty.IsTerminal(os.Stderr.Fd()) {
		sink = progress.NewLineSink(os.Stderr)
	}
	if cmd.Name() == "stack" {
		return progress.NewStackProgress(render.NewStackRenderer(os.Stdout), sink)
	}
	return sink
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}

// getViper retrieves the viper instance from the command context
func getViper(cmd *cobra.Command) (*viper.Viper, error) {
	v, ok := cmd.Context().Value(viperKey).(*viper.Viper)
	if !ok {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return v, nil
}
