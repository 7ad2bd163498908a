package cli

import (
	"fmt"
	"math/big"
	"os"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xterio/xdeploy/internal/app"
	"github.com/xterio/xdeploy/internal/cli/render"
	"github.com/xterio/xdeploy/internal/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// NewDeployCmd creates the deploy command with one subcommand per contract kind
func NewDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [kind]",
		Short: "Deploy a contract",
		Long: `Deploy one of the Xterio contracts to the selected network.

Each contract kind is a subcommand taking its constructor or initializer
arguments as flags. Proxy contracts (gateway, marketplace) are deployed behind
an ERC-1967 proxy whose constructor runs the initializer; the marketplace is
then configured with its payment token, fee recipient and gateway.

Run without a kind to pick one interactively.

Examples:
  # Deploy the token gateway behind a proxy
  xdeploy deploy gateway --gateway-admin 0xA... --network sepolia

  # Deploy the marketplace and configure it
  xdeploy deploy marketplace --gateway 0x... --service-fee-recipient 0x... --payment-token 0x...

  # Verify an already deployed minter instead of deploying a new one
  xdeploy deploy minter --gateway 0x... --verify-address 0x...

  # Proxy kinds verify the implementation contract, so pass its address
  xdeploy deploy gateway --verify-address 0xIMPL...`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			kind, err := app.Prompter.SelectKind(cmd.Context(), models.AllKinds())
			if err != nil {
				return err
			}
			return runDeploy(cmd, kind)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("gas-price", "", "Gas price in wei, or with a gwei suffix (e.g. 3gwei)")
	flags.Uint64("gas-limit", 0, "Gas limit for every transaction")
	flags.Uint64("nonce", 0, "Nonce of the first transaction, incremented for each following one")
	flags.String("from", "", "Expected deployer address, checked against the configured key")
	flags.Bool("skip-verify", false, "Skip source verification")

	for _, kind := range models.AllKinds() {
		cmd.AddCommand(newDeployKindCmd(kind))
	}
	cmd.AddCommand(NewStackCmd())

	return cmd
}

func newDeployKindCmd(kind models.ContractKind) *cobra.Command {
	recipe, _ := models.LookupRecipe(kind)

	cmd := &cobra.Command{
		Use:          string(kind),
		Short:        fmt.Sprintf("Deploy %s (%s)", recipe.Artifact, recipe.Strategy),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, kind)
		},
	}

	for _, p := range recipe.Params {
		usage := p.Description
		switch {
		case p.DefaultsToSigner:
			usage += " (defaults to the deployer)"
		case p.Optional:
			usage += " (optional)"
		}
		cmd.Flags().String(flagName(p.Name), "", usage)
	}
	verifyUsage := "Verify the contract already deployed at this address instead of deploying"
	if recipe.Strategy == models.StrategyProxy {
		verifyUsage += " (the implementation address, not the proxy)"
	}
	cmd.Flags().String("verify-address", "", verifyUsage)

	return cmd
}

func runDeploy(cmd *cobra.Command, kind models.ContractKind) error {
	app, err := getApp(cmd)
	if err != nil {
		return err
	}
	v, err := getViper(cmd)
	if err != nil {
		return err
	}

	recipe, ok := models.LookupRecipe(kind)
	if !ok {
		_, err := models.ParseContractKind(string(kind))
		return err
	}

	args, err := collectArgs(cmd, app, recipe)
	if err != nil {
		return err
	}
	overrides, err := parseOverrides(cmd.Flags())
	if err != nil {
		return err
	}
	script, err := config.ScriptConfigFromViper(v)
	if err != nil {
		return err
	}

	result, err := app.RunDeployScript.Run(cmd.Context(), usecase.ScriptParams{
		Kind:      kind,
		Args:      args,
		Overrides: overrides,
		Script:    script,
	})
	if err != nil {
		return err
	}

	return render.NewDeployRenderer(os.Stdout).Render(result)
}

// collectArgs reads every recipe parameter from its flag and prompts for the
// required ones that were left out
func collectArgs(cmd *cobra.Command, app *app.App, recipe models.Recipe) (map[string]common.Address, error) {
	verifyOnly := cmd.Flags().Changed("verify-address")

	args := make(map[string]common.Address)
	for _, p := range recipe.Params {
		if f := cmd.Flags().Lookup(flagName(p.Name)); f != nil && f.Changed {
			addr, err := models.ParseAddress(f.Value.String())
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", flagName(p.Name), err)
			}
			args[p.Name] = addr
			continue
		}
		if p.Optional || p.DefaultsToSigner || app.Config.NonInteractive {
			continue
		}
		if verifyOnly && !verificationNeeds(recipe, p.Name) {
			continue
		}

		addr, err := app.Prompter.PromptAddress(cmd.Context(), p)
		if err != nil {
			return nil, err
		}
		if addr != (common.Address{}) {
			args[p.Name] = addr
		}
	}
	return args, nil
}

// verificationNeeds reports whether verifying an existing deployment uses the param.
// Proxy recipes verify the implementation, which takes no constructor arguments.
func verificationNeeds(recipe models.Recipe, param string) bool {
	if recipe.Strategy == models.StrategyProxy {
		return false
	}
	return lo.Contains(recipe.CreationParams, param)
}

// parseOverrides collects the transaction flags; nil when none was given
func parseOverrides(flags *pflag.FlagSet) (*models.TxOverrides, error) {
	overrides := &models.TxOverrides{}

	if f := flags.Lookup("gas-price"); f != nil && f.Changed {
		price, err := parseGasPrice(f.Value.String())
		if err != nil {
			return nil, fmt.Errorf("--gas-price: %w", err)
		}
		overrides.GasPrice = price
	}
	if f := flags.Lookup("gas-limit"); f != nil && f.Changed {
		limit, err := flags.GetUint64("gas-limit")
		if err != nil {
			return nil, err
		}
		overrides.GasLimit = limit
	}
	if f := flags.Lookup("nonce"); f != nil && f.Changed {
		nonce, err := flags.GetUint64("nonce")
		if err != nil {
			return nil, err
		}
		overrides.Nonce = &nonce
	}
	if f := flags.Lookup("from"); f != nil && f.Changed {
		from, err := models.ParseAddress(f.Value.String())
		if err != nil {
			return nil, fmt.Errorf("--from: %w", err)
		}
		overrides.From = &from
	}

	if overrides.IsZero() {
		return nil, nil
	}
	return overrides, nil
}

func parseGasPrice(raw string) (*big.Int, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	multiplier := big.NewInt(1)
	if strings.HasSuffix(raw, "gwei") {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, "gwei"))
		multiplier = big.NewInt(1_000_000_000)
	}

	value, ok := new(big.Float).SetString(raw)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid gas price %q", raw)
	}
	wei, _ := value.Mul(value, new(big.Float).SetInt(multiplier)).Int(nil)
	return wei, nil
}

// flagName converts a parameter name to its flag: serviceFeeRecipient -> service-fee-recipient
func flagName(param string) string {
	var b strings.Builder
	for i, r := range param {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
