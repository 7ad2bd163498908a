package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xterio/xdeploy/internal/domain"
	"github.com/xterio/xdeploy/internal/domain/config"
	"github.com/xterio/xdeploy/internal/domain/models"
)

const coreStack = `
group: xterio-core
components:
  marketplace:
    kind: marketplace
    args:
      gateway: ${gateway}
      serviceFeeRecipient: "0x00000000000000000000000000000000000000f1"
      paymentToken: ${token}
  gateway:
    kind: gateway
    args:
      gatewayAdmin: "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
  token:
    kind: token
    address: "0x00000000000000000000000000000000000000b1"
  minter:
    kind: minter
    deps: [marketplace]
    args:
      gateway: ${gateway}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type stackFixture struct {
	chain     *fakeChain
	confirmer *mockConfirmer
	verifier  *mockVerifier
	store     *memoryStateStore
	uc        *DeployStack
}

func newStackFixture(t *testing.T) *stackFixture {
	t.Helper()
	f := &stackFixture{
		chain:     &fakeChain{},
		confirmer: &mockConfirmer{},
		verifier:  &mockVerifier{},
		store:     newMemoryStateStore(),
	}
	f.verifier.On("Verify", mock.Anything, mock.Anything).Return(&models.VerificationResult{}, nil).Maybe()

	cfg := &config.RuntimeConfig{Network: &config.Network{Name: "local", ChainID: 31337}}
	log := discardLogger()
	signer := staticSigner{addr: signerAddr}
	deploy := NewDeployContract(&fakeResolver{}, f.chain, f.chain, signer, NopProgress{}, log)
	verify := NewVerifyContract(f.verifier, NopProgress{}, log)
	f.uc = NewDeployStack(cfg, deploy, verify, signer, staticChain(31337), f.confirmer, f.store, NopProgress{}, log)
	return f
}

func TestStackManifestPlan(t *testing.T) {
	manifest, err := ParseStackManifest(writeManifest(t, coreStack))
	require.NoError(t, err)

	plan, err := manifest.Plan()
	require.NoError(t, err)

	var names []string
	for _, step := range plan.Components {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{"gateway", "token", "marketplace", "minter"}, names)

	marketplace := plan.Components[2]
	assert.Equal(t, models.KindMarketplace, marketplace.Kind)
	assert.Equal(t, []string{"gateway", "token"}, marketplace.Dependencies)
	assert.True(t, marketplace.Args["gateway"].IsReference())
	assert.Equal(t, feeAddr, marketplace.Args["serviceFeeRecipient"].Literal)

	require.NotNil(t, plan.Components[1].Address)
	assert.Equal(t, tokenAddr, *plan.Components[1].Address)
}

func TestStackManifestValidation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  error
		contains string
	}{
		{
			name:     "missing group",
			manifest: "components:\n  t:\n    kind: forwarder\n",
			contains: "group name is required",
		},
		{
			name:     "unknown kind",
			manifest: "group: g\ncomponents:\n  t:\n    kind: tokn\n",
			wantErr:  domain.ErrUnknownContract,
		},
		{
			name:     "unresolved reference",
			manifest: "group: g\ncomponents:\n  m:\n    kind: minter\n    args:\n      gateway: ${gateway}\n",
			wantErr:  domain.ErrUnresolvedReference,
		},
		{
			name:     "invalid literal",
			manifest: "group: g\ncomponents:\n  m:\n    kind: minter\n    args:\n      gateway: \"0x123\"\n",
			wantErr:  domain.ErrInvalidAddress,
		},
		{
			name:     "unknown argument",
			manifest: "group: g\ncomponents:\n  m:\n    kind: forwarder\n    args:\n      gateway: \"0x00000000000000000000000000000000000000a1\"\n",
			contains: "does not take argument",
		},
		{
			name:     "cycle",
			manifest: "group: g\ncomponents:\n  a:\n    kind: forwarder\n    deps: [b]\n  b:\n    kind: forwarder\n    deps: [a]\n",
			contains: "circular dependency",
		},
		{
			name:     "self dependency",
			manifest: "group: g\ncomponents:\n  a:\n    kind: minter\n    args:\n      gateway: ${a}\n",
			contains: "cannot depend on itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest, err := ParseStackManifest(writeManifest(t, tt.manifest))
			require.NoError(t, err)

			_, err = manifest.Plan()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestDeployStack_ThreadsAddresses(t *testing.T) {
	f := newStackFixture(t)
	f.confirmer.On("Confirm", mock.Anything, mock.MatchedBy(func(req ConfirmRequest) bool {
		return len(req.Items) == 4
	})).Return(true, nil).Once()

	result, err := f.uc.Execute(context.Background(), StackParams{ManifestPath: writeManifest(t, coreStack)})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Steps, 4)

	gateway := result.Steps[0]
	assert.Equal(t, StackStepDeployed, gateway.Status)
	assert.Equal(t, StackStepReused, result.Steps[1].Status)
	assert.Equal(t, tokenAddr, result.Steps[1].Address)

	assert.Equal(t, []string{
		"proxy:TokenGateway",
		"proxy:MarketplaceV2",
		"addPaymentTokens",
		"setServiceFeeRecipient",
		"setGateway",
		"create:WhitelistMinter",
	}, f.chain.calls())

	// marketplace got the gateway proxy and the reused token
	assert.Equal(t, []any{[]common.Address{tokenAddr}}, f.chain.txs[2].Args)
	assert.Equal(t, []any{gateway.Address}, f.chain.txs[4].Args)
	assert.Equal(t, []any{gateway.Address}, f.chain.txs[5].Args)

	state := f.store.states["xterio-core"]
	require.NotNil(t, state)
	assert.Equal(t, StackStatusCompleted, state.Status)
	assert.Len(t, state.Outputs, 4)
	f.confirmer.AssertExpectations(t)
}

func TestDeployStack_DeclinedSendsNothing(t *testing.T) {
	f := newStackFixture(t)
	f.confirmer.On("Confirm", mock.Anything, mock.Anything).Return(false, nil)

	result, err := f.uc.Execute(context.Background(), StackParams{ManifestPath: writeManifest(t, coreStack)})
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Empty(t, f.chain.txs)
	assert.Zero(t, f.store.saves)
}

func TestDeployStack_InvalidManifestSendsNothing(t *testing.T) {
	f := newStackFixture(t)

	_, err := f.uc.Execute(context.Background(), StackParams{
		ManifestPath: writeManifest(t, "group: g\ncomponents:\n  m:\n    kind: minter\n    args:\n      gateway: ${gateway}\n"),
	})
	assert.ErrorIs(t, err, domain.ErrUnresolvedReference)
	assert.Empty(t, f.chain.txs)
	f.confirmer.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestDeployStack_StopsAtFirstFailureAndResumes(t *testing.T) {
	f := newStackFixture(t)
	f.confirmer.On("Confirm", mock.Anything, mock.Anything).Return(true, nil)
	f.chain.failOn = "setGateway"
	f.chain.failErr = errors.New("execution reverted")

	path := writeManifest(t, coreStack)
	result, err := f.uc.Execute(context.Background(), StackParams{ManifestPath: path})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.FailedStep)
	assert.Equal(t, "marketplace", result.FailedStep.Step.Name)
	assert.Len(t, result.Steps, 3)

	state := f.store.states["xterio-core"]
	assert.Equal(t, StackStatusFailed, state.Status)
	assert.Equal(t, "marketplace", state.Failed)
	assert.Contains(t, state.Outputs, "gateway")
	assert.NotContains(t, state.Outputs, "marketplace")
	gateway := state.Outputs["gateway"]

	// second run resumes after the gateway
	f.chain.failOn = ""
	f.chain.txs = nil
	result, err = f.uc.Execute(context.Background(), StackParams{ManifestPath: path, Resume: true})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, StackStepResumed, result.Steps[0].Status)
	assert.Equal(t, gateway, result.Steps[0].Address)
	assert.NotContains(t, f.chain.calls(), "proxy:TokenGateway")
	assert.Equal(t, StackStatusCompleted, f.store.states["xterio-core"].Status)
}

func TestDeployStack_ResumeWithoutState(t *testing.T) {
	f := newStackFixture(t)

	_, err := f.uc.Execute(context.Background(), StackParams{ManifestPath: writeManifest(t, coreStack), Resume: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no previous run")
}

func TestDeployStack_RejectsNonceOverride(t *testing.T) {
	f := newStackFixture(t)
	nonce := uint64(1)

	_, err := f.uc.Execute(context.Background(), StackParams{
		ManifestPath: writeManifest(t, coreStack),
		Overrides:    &models.TxOverrides{Nonce: &nonce},
	})
	assert.Error(t, err)
	assert.Empty(t, f.chain.txs)
}
