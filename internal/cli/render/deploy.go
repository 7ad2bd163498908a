package render

import (
	"fmt"
	"io"

	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// DeployRenderer prints the result of a single contract deployment
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// Render implements Renderer
func (r *DeployRenderer) Render(result *usecase.ScriptResult) error {
	switch result.Outcome {
	case usecase.ScriptOutcomeAborted:
		fmt.Fprintln(r.out, FormatWarning("Deployment cancelled, no transactions were sent"))
		return nil
	case usecase.ScriptOutcomeVerifiedOnly:
		return NewVerifyRenderer(r.out).Render(result.Verification)
	}

	c := result.Contract
	recipe, _ := models.LookupRecipe(c.Kind)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s (%s) on %s", recipe.Artifact, c.Kind, networkLabel(result))))
	fmt.Fprintln(r.out)

	if c.IsProxy() {
		fmt.Fprintf(r.out, "  %-16s %s\n", "Proxy:", cyanColor.Sprint(c.Address.Hex()))
		fmt.Fprintf(r.out, "  %-16s %s\n", "Implementation:", c.Implementation.Hex())
	} else {
		fmt.Fprintf(r.out, "  %-16s %s\n", "Address:", cyanColor.Sprint(c.Address.Hex()))
	}
	fmt.Fprintf(r.out, "  %-16s %s\n", "Deployer:", result.Deployer.Hex())

	for _, name := range sortedArgNames(recipe, c) {
		fmt.Fprintf(r.out, "  %-16s %s\n", name+":", c.Args[name].Hex())
	}

	if len(c.Steps) > 0 {
		fmt.Fprintln(r.out)
		boldColor.Fprintln(r.out, "  Transactions:")
		for _, step := range c.Steps {
			fmt.Fprintf(r.out, "    %-13s %-24s %s\n", step.Stage, step.Label, faintColor.Sprint(shortHash(step.TxHash)))
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %-16s %s\n", "Verification:", verificationLine(result.Verification))
	if result.Verification != nil && result.Verification.Err != nil {
		fmt.Fprintf(r.out, "  %-16s %s\n", "", FormatWarning(result.Verification.Err.Error()))
	}
	return nil
}

// sortedArgNames lists supplied parameters in recipe order
func sortedArgNames(recipe models.Recipe, c *models.DeployedContract) []string {
	var names []string
	for _, p := range recipe.Params {
		if _, ok := c.Args[p.Name]; ok {
			names = append(names, p.Name)
		}
	}
	return names
}

func networkLabel(result *usecase.ScriptResult) string {
	if result.Network == nil {
		return "unknown network"
	}
	return fmt.Sprintf("%s (chain %d)", result.Network.Name, result.Network.ChainID)
}

var _ Renderer[*usecase.ScriptResult] = (*DeployRenderer)(nil)
