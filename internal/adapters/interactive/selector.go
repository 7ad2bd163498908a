package interactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

// Selector fills in a contract kind and missing arguments interactively
type Selector struct {
	nonInteractive bool
}

// NewSelector creates a new selector
func NewSelector(cfg *config.RuntimeConfig) *Selector {
	return &Selector{nonInteractive: cfg.NonInteractive}
}

// SelectKind asks which contract to deploy
func (s *Selector) SelectKind(ctx context.Context, kinds []models.ContractKind) (models.ContractKind, error) {
	if s.nonInteractive {
		return "", fmt.Errorf("interactive selection not available in non-interactive mode")
	}
	if len(kinds) == 0 {
		return "", fmt.Errorf("no contracts provided for selection")
	}

	options := formatKindOptions(kinds)
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             "Contract to deploy",
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return "", fmt.Errorf("selection cancelled: %w", err)
	}
	return kinds[index], nil
}

// PromptAddress asks for a single address parameter
func (s *Selector) PromptAddress(ctx context.Context, param models.Param) (common.Address, error) {
	if s.nonInteractive {
		return common.Address{}, fmt.Errorf("%w: %s", domain.ErrMissingArgument, param.Name)
	}

	label := param.Name
	if param.Description != "" {
		label = fmt.Sprintf("%s (%s)", param.Name, param.Description)
	}
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" && param.Optional {
				return nil
			}
			if !common.IsHexAddress(input) {
				return errors.New("not a 0x-prefixed 20-byte address")
			}
			return nil
		},
	}
	raw, err := prompt.Run()
	if err != nil {
		return common.Address{}, err
	}
	if raw == "" {
		return common.Address{}, nil
	}
	return common.HexToAddress(raw), nil
}

// formatKindOptions creates display strings like "gateway  TokenGateway (proxy)"
func formatKindOptions(kinds []models.ContractKind) []string {
	options := make([]string, len(kinds))
	for i, kind := range kinds {
		recipe, _ := models.LookupRecipe(kind)
		name := color.New(color.FgWhite, color.Bold).Sprintf("%-20s", kind)
		artifact := color.New(color.FgBlue).Sprint(recipe.Artifact)
		options[i] = fmt.Sprintf("%s %s (%s)", name, artifact, recipe.Strategy)
	}
	return options
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if input == "" {
			return true
		}

		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		if strings.Contains(item, input) {
			return true
		}

		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

var _ usecase.InteractivePrompter = (*Selector)(nil)
