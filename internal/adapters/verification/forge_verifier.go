package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

const defaultVerifier = "etherscan"

// commandRunner runs forge and returns its combined output
type commandRunner func(ctx context.Context, dir string, args ...string) ([]byte, error)

// ForgeVerifier submits sources through `forge verify-contract`
type ForgeVerifier struct {
	projectRoot  string
	network      *config.Network
	verification config.VerificationConfig
	run          commandRunner
	log          *slog.Logger
}

// NewForgeVerifier creates a verifier for the selected network
func NewForgeVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot:  cfg.ProjectRoot,
		network:      cfg.Network,
		verification: cfg.Verification,
		run:          runForge,
		log:          log.With("component", "ForgeVerifier"),
	}
}

// Verify runs the verification and waits for the explorer verdict when watching
func (v *ForgeVerifier) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error) {
	if v.network == nil {
		return nil, domain.ErrNetworkNotConfigured
	}

	args := v.buildArgs(req)
	v.log.Debug("running forge", "args", redact(args))

	output, err := v.run(ctx, v.projectRoot, args...)
	out := strings.TrimSpace(string(output))

	result := &models.VerificationResult{
		Verifier: v.verifierName(),
		URL:      v.explorerURL(req),
	}

	if isAlreadyVerified(out) {
		result.Message = "already verified"
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrVerificationFailed, lastLines(out, err))
	}
	if strings.Contains(out, "successfully verified") || strings.Contains(out, "Pass - Verified") {
		result.Message = "verified"
		return result, nil
	}
	if !v.verification.Watch && strings.Contains(out, "Submitted contract for verification") {
		result.Message = "submitted"
		return result, nil
	}
	return nil, fmt.Errorf("%w: verification status unclear: %s", domain.ErrVerificationFailed, lastLines(out, nil))
}

func (v *ForgeVerifier) buildArgs(req models.VerificationRequest) []string {
	args := []string{
		"verify-contract",
		req.Address.Hex(),
		req.ContractID,
		"--chain-id", strconv.FormatUint(v.network.ChainID, 10),
		"--root", v.projectRoot,
	}
	if v.verification.Watch {
		args = append(args, "--watch")
	}

	verifier := v.verifierName()
	args = append(args, "--verifier", verifier)
	if v.network.ExplorerAPIURL != "" {
		args = append(args, "--verifier-url", v.network.ExplorerAPIURL)
	}
	if v.network.ExplorerAPIKey != "" && verifier != "sourcify" {
		args = append(args, "--etherscan-api-key", v.network.ExplorerAPIKey)
	}
	if v.network.RPCURL != "" {
		args = append(args, "--rpc-url", v.network.RPCURL)
	}
	if v.verification.CompilerVersion != "" {
		args = append(args, "--compiler-version", v.verification.CompilerVersion)
	}
	if len(req.ConstructorArgs) > 0 {
		args = append(args, "--constructor-args", strings.TrimPrefix(hexutil.Encode(req.ConstructorArgs), "0x"))
	}
	return args
}

func (v *ForgeVerifier) verifierName() string {
	if v.network.Verifier != "" {
		return v.network.Verifier
	}
	if v.verification.Verifier != "" {
		return v.verification.Verifier
	}
	return defaultVerifier
}

func (v *ForgeVerifier) explorerURL(req models.VerificationRequest) string {
	if v.network.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/address/%s#code", strings.TrimSuffix(v.network.ExplorerURL, "/"), req.Address.Hex())
}

func isAlreadyVerified(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "already verified")
}

// lastLines keeps the tail of forge output, which carries the explorer's answer
func lastLines(output string, err error) string {
	if output == "" {
		if err != nil {
			return err.Error()
		}
		return "no output"
	}
	lines := strings.Split(output, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}

func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := range out {
		if out[i] == "--etherscan-api-key" && i+1 < len(out) {
			out[i+1] = "***"
		}
	}
	return out
}

func runForge(ctx context.Context, dir string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath("forge"); err != nil {
		return nil, errors.New("forge not found in PATH, install foundry to verify contracts")
	}
	cmd := exec.CommandContext(ctx, "forge", args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

var _ usecase.ContractVerifier = (*ForgeVerifier)(nil)
