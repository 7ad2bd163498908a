package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
	"github.com/xterio/xdeploy/internal/usecase"
)

var (
	proxyAddr = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	implAddr  = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	adminAddr = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
)

func init() {
	color.NoColor = true
}

func TestDeployRenderer(t *testing.T) {
	var buf bytes.Buffer
	result := &usecase.ScriptResult{
		Outcome: usecase.ScriptOutcomeDeployed,
		Network: &config.Network{Name: "sepolia", ChainID: 11155111},
		Contract: &models.DeployedContract{
			Kind:           models.KindGateway,
			Address:        proxyAddr,
			Implementation: implAddr,
			Args:           map[string]common.Address{"gatewayAdmin": adminAddr},
			Steps: []models.StepRecord{
				{Stage: models.StageCreating, Label: "logic", TxHash: common.HexToHash("0x01")},
				{Stage: models.StageInitializing, Label: "proxy", TxHash: common.HexToHash("0x02")},
			},
		},
		Verification: &usecase.VerifyOutcome{
			Status: usecase.VerifyStatusVerified,
			Result: &models.VerificationResult{URL: "https://sepolia.etherscan.io/address/x#code"},
		},
	}

	require.NoError(t, NewDeployRenderer(&buf).Render(result))
	out := buf.String()
	assert.Contains(t, out, "Deployed TokenGateway (gateway) on sepolia (chain 11155111)")
	assert.Contains(t, out, "Proxy:           "+proxyAddr.Hex())
	assert.Contains(t, out, "Implementation:  "+implAddr.Hex())
	assert.Contains(t, out, "gatewayAdmin:")
	assert.Contains(t, out, "initializing")
	assert.Contains(t, out, "✓ verified https://sepolia.etherscan.io/address/x#code")
}

func TestDeployRenderer_Aborted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDeployRenderer(&buf).Render(&usecase.ScriptResult{Outcome: usecase.ScriptOutcomeAborted}))
	assert.Contains(t, buf.String(), "no transactions were sent")
}

func TestVerifyRenderer(t *testing.T) {
	req := models.VerificationRequest{Address: implAddr, ContractID: "contracts/Forwarder.sol:Forwarder"}

	var buf bytes.Buffer
	require.NoError(t, NewVerifyRenderer(&buf).Render(&usecase.VerifyOutcome{
		Request: req,
		Status:  usecase.VerifyStatusFailed,
		Err:     errors.New("bytecode mismatch"),
	}))
	assert.Contains(t, buf.String(), "Verification of Forwarder at "+implAddr.Hex()+" failed")
	assert.Contains(t, buf.String(), "bytecode mismatch")
}

func TestStackRenderer(t *testing.T) {
	gateway := &usecase.StackStep{Name: "gateway", Kind: models.KindGateway}
	minter := &usecase.StackStep{
		Name:         "minter",
		Kind:         models.KindMinter,
		Dependencies: []string{"gateway"},
		Args:         map[string]models.AddressRef{"gateway": {Component: "gateway"}},
	}
	plan := &usecase.StackPlan{Group: "xterio-core", Components: []*usecase.StackStep{gateway, minter}}

	var buf bytes.Buffer
	r := NewStackRenderer(&buf)
	r.RenderPlan(plan)
	assert.Contains(t, buf.String(), "2. minter → minter (depends on: gateway)")
	assert.Contains(t, buf.String(), "gateway = ${gateway}")

	buf.Reset()
	require.NoError(t, r.Render(&usecase.StackResult{
		Plan: plan,
		Steps: []*usecase.StackStepResult{
			{Step: gateway, Status: usecase.StackStepDeployed, Address: proxyAddr},
			{Step: minter, Status: usecase.StackStepFailed, Error: errors.New("execution reverted")},
		},
		FailedStep: &usecase.StackStepResult{Step: minter},
	}))
	out := buf.String()
	assert.Contains(t, out, "Stack xterio-core failed at minter")
	assert.Contains(t, out, proxyAddr.Hex())
	assert.Contains(t, out, "--resume")
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Transfer Validator", Title("transfer-validator"))
	assert.Equal(t, "Reused", Title("reused"))
}
