package cli

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var (
		contract        string
		constructorArgs string
		values          []string
		types           []string
	)

	cmd := &cobra.Command{
		Use:   "verify <address>",
		Short: "Verify the source of a deployed contract",
		Long: `Verify any deployed contract on the network's explorer.

--contract takes a contract identifier (path:Name) or one of the contract
kinds. Constructor arguments are given either ABI-encoded with
--constructor-args or as values with matching solidity types.

Examples:
  xdeploy verify 0x... --contract gateway --network sepolia
  xdeploy verify 0x... --contract contracts/Distribute.sol:Distribute --args 0x... --types address`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			address, err := models.ParseAddress(args[0])
			if err != nil {
				return err
			}

			contractID := contract
			if kind, err := models.ParseContractKind(contract); err == nil {
				recipe, _ := models.LookupRecipe(kind)
				contractID = recipe.ContractID()
			}

			params := usecase.VerifyAddressParams{
				Address:    address,
				ContractID: contractID,
				Args:       values,
				Types:      types,
			}
			if constructorArgs != "" {
				if params.ConstructorArgs, err = hexutil.Decode(constructorArgs); err != nil {
					return fmt.Errorf("--constructor-args: %w", err)
				}
			}

			outcome, err := app.VerifyAddress.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := render.NewVerifyRenderer(os.Stdout).Render(outcome); err != nil {
				return err
			}
			if outcome.Status == usecase.VerifyStatusFailed {
				return outcome.Err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contract, "contract", "", "Contract identifier (path:Name) or contract kind")
	cmd.Flags().StringVar(&constructorArgs, "constructor-args", "", "ABI-encoded constructor arguments (0x...)")
	cmd.Flags().StringSliceVar(&values, "args", nil, "Constructor argument values, comma separated")
	cmd.Flags().StringSliceVar(&types, "types", nil, "Solidity types of --args, comma separated")
	_ = cmd.MarkFlagRequired("contract")

	return cmd
}
