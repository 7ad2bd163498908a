package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/usecase"
)

// NewStackCmd creates the deploy stack command
func NewStackCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "stack <manifest.yaml>",
		Short: "Deploy a group of contracts from a YAML manifest",
		Long: `Deploy several contracts in dependency order from a YAML manifest.

Arguments may reference the address of another component with ${name}; the
referenced component is deployed first. Components with an address field are
reused instead of deployed. Progress is saved under .xdeploy/ after every
component, so a failed run can be continued with --resume.

Example manifest:
  group: xterio-core
  components:
    gateway:
      kind: gateway
      args:
        gatewayAdmin: "0xA..."
    marketplace:
      kind: marketplace
      args:
        gateway: ${gateway}
        serviceFeeRecipient: "0xF..."`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			v, err := getViper(cmd)
			if err != nil {
				return err
			}
			overrides, err := parseOverrides(cmd.Flags())
			if err != nil {
				return err
			}

			result, err := app.DeployStack.Execute(cmd.Context(), usecase.StackParams{
				ManifestPath: args[0],
				Resume:       resume,
				SkipVerify:   v.GetBool("skip_verify"),
				Overrides:    overrides,
			})
			if err != nil {
				return err
			}

			if err := render.NewStackRenderer(os.Stdout).Render(result); err != nil {
				return err
			}
			if !result.Success && !result.Aborted {
				return fmt.Errorf("stack %s: component %s failed: %w", result.Plan.Group, result.FailedStep.Step.Name, result.FailedStep.Error)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Continue a failed run, skipping components it already deployed")

	return cmd
}
