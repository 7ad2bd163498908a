package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/usecase"
)

// Confirmer shows the deployment banner and asks for a y/N answer
type Confirmer struct {
	out            io.Writer
	assumeYes      bool
	nonInteractive bool
	ask            func(label string) (bool, error)
}

// NewConfirmer creates a confirmer writing to stderr
func NewConfirmer(cfg *config.RuntimeConfig) *Confirmer {
	return &Confirmer{
		out:            os.Stderr,
		assumeYes:      cfg.AssumeYes,
		nonInteractive: cfg.NonInteractive,
		ask:            askYesNo,
	}
}

// Confirm prints the banner and returns the operator's answer
func (c *Confirmer) Confirm(ctx context.Context, req usecase.ConfirmRequest) (bool, error) {
	c.printBanner(req)

	if c.assumeYes {
		color.New(color.FgYellow).Fprintln(c.out, "Proceeding without prompt (--yes)")
		return true, nil
	}
	if c.nonInteractive {
		return false, fmt.Errorf("%w: pass --yes to deploy in non-interactive mode", domain.ErrConfirmationRequired)
	}
	return c.ask("Proceed with deployment")
}

func (c *Confirmer) printBanner(req usecase.ConfirmRequest) {
	bold := color.New(color.Bold)
	label := color.New(color.FgHiBlack)

	fmt.Fprintln(c.out)
	bold.Fprintf(c.out, "🚀 %s\n", req.Title)
	fmt.Fprintf(c.out, "%s\n", strings.Repeat("─", 50))
	fmt.Fprintf(c.out, "%s %s\n", label.Sprint("Network: "), color.New(color.FgCyan).Sprint(req.Network))
	fmt.Fprintf(c.out, "%s %d\n", label.Sprint("Chain ID:"), req.ChainID)
	fmt.Fprintf(c.out, "%s %s\n", label.Sprint("Deployer:"), req.Deployer.Hex())
	if len(req.Items) > 0 {
		fmt.Fprintln(c.out)
		for _, item := range req.Items {
			fmt.Fprintf(c.out, "  • %s\n", item)
		}
	}
	fmt.Fprintln(c.out)
}

func askYesNo(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		// promptui reports "n" and an empty answer as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ usecase.Confirmer = (*Confirmer)(nil)
