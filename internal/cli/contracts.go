package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/xterio/xdeploy/internal/cli/render"
)

// NewContractsCmd creates the contracts command
func NewContractsCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "contracts",
		Short:        "List deployable contracts and their compiled artifacts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			return render.NewContractsRenderer(os.Stdout).Render(app.ListContracts.Run(cmd.Context()))
		},
	}
}
