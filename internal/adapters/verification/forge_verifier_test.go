package verification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
)

var minterReq = models.VerificationRequest{
	Address:         common.HexToAddress("0x00000000000000000000000000000000000000d1"),
	ContractID:      "contracts/WhitelistMinter.sol:WhitelistMinter",
	ConstructorArgs: common.LeftPadBytes([]byte{0xa1}, 32),
}

func newTestVerifier(network *config.Network, output string, runErr error) (*ForgeVerifier, *[]string) {
	cfg := &config.RuntimeConfig{
		ProjectRoot:  "/work",
		Network:      network,
		Verification: config.VerificationConfig{Watch: true, CompilerVersion: "0.8.24"},
	}
	v := NewForgeVerifier(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var got []string
	v.run = func(_ context.Context, dir string, args ...string) ([]byte, error) {
		got = args
		return []byte(output), runErr
	}
	return v, &got
}

func TestForgeVerifier_Args(t *testing.T) {
	network := &config.Network{
		Name:           "sepolia",
		ChainID:        11155111,
		RPCURL:         "https://rpc.example",
		ExplorerURL:    "https://sepolia.etherscan.io/",
		ExplorerAPIURL: "https://api-sepolia.etherscan.io/api",
		ExplorerAPIKey: "KEY",
	}
	v, args := newTestVerifier(network, "Contract successfully verified", nil)

	result, err := v.Verify(context.Background(), minterReq)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"verify-contract", minterReq.Address.Hex(), minterReq.ContractID,
		"--chain-id", "11155111",
		"--root", "/work",
		"--watch",
		"--verifier", "etherscan",
		"--verifier-url", "https://api-sepolia.etherscan.io/api",
		"--etherscan-api-key", "KEY",
		"--rpc-url", "https://rpc.example",
		"--compiler-version", "0.8.24",
		"--constructor-args", "00000000000000000000000000000000000000000000000000000000000000a1",
	}, *args)
	assert.Equal(t, "etherscan", result.Verifier)
	assert.Equal(t, "https://sepolia.etherscan.io/address/"+minterReq.Address.Hex()+"#code", result.URL)
}

func TestForgeVerifier_Outcomes(t *testing.T) {
	network := &config.Network{Name: "local", ChainID: 31337, Verifier: "blockscout"}

	t.Run("already verified counts as success", func(t *testing.T) {
		v, _ := newTestVerifier(network, "Error: Contract source code already verified", errors.New("exit status 1"))
		result, err := v.Verify(context.Background(), minterReq)
		require.NoError(t, err)
		assert.Equal(t, "already verified", result.Message)
		assert.Equal(t, "blockscout", result.Verifier)
	})

	t.Run("failure carries forge output", func(t *testing.T) {
		v, _ := newTestVerifier(network, "Error: Bytecode does not match", errors.New("exit status 1"))
		_, err := v.Verify(context.Background(), minterReq)
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
		assert.Contains(t, err.Error(), "Bytecode does not match")
	})

	t.Run("unclear output", func(t *testing.T) {
		v, _ := newTestVerifier(network, "something else", nil)
		_, err := v.Verify(context.Background(), minterReq)
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("no constructor args flag when empty", func(t *testing.T) {
		v, args := newTestVerifier(network, "Pass - Verified", nil)
		_, err := v.Verify(context.Background(), models.VerificationRequest{Address: minterReq.Address, ContractID: "contracts/Forwarder.sol:Forwarder"})
		require.NoError(t, err)
		assert.NotContains(t, *args, "--constructor-args")
	})

	t.Run("requires a network", func(t *testing.T) {
		v, _ := newTestVerifier(nil, "", nil)
		_, err := v.Verify(context.Background(), minterReq)
		assert.ErrorIs(t, err, domain.ErrNetworkNotConfigured)
	})
}

func TestRedact(t *testing.T) {
	assert.Equal(t, []string{"--etherscan-api-key", "***", "--watch"}, redact([]string{"--etherscan-api-key", "secret", "--watch"}))
}
