package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/xterio/xdeploy/internal/domain/models"
)

var (
	signerAddr  = common.HexToAddress("0x5e11e75e11e75e11e75e11e75e11e75e11e75e1")
	adminAddr   = common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	gatewayAddr = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	feeAddr     = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	tokenAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b1")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// txRecord is one transaction the fake chain received
type txRecord struct {
	Kind     string // create, proxy or call
	Contract string
	Method   string
	Target   common.Address
	Args     []any
	Nonce    *uint64
}

// fakeChain records every transaction in order and hands out sequential addresses
type fakeChain struct {
	mu      sync.Mutex
	txs     []txRecord
	failOn  string
	failErr error
	counter byte
}

func (f *fakeChain) nextAddr() common.Address {
	f.counter++
	return common.BytesToAddress([]byte{0xc0, f.counter})
}

func (f *fakeChain) nextHash() common.Hash {
	return common.BytesToHash([]byte{0x7e, byte(len(f.txs))})
}

func (f *fakeChain) record(rec txRecord, overrides *models.TxOverrides) error {
	if overrides != nil && overrides.Nonce != nil {
		n := *overrides.Nonce
		rec.Nonce = &n
	}
	f.txs = append(f.txs, rec)
	key := rec.Method
	if rec.Kind != "call" {
		key = rec.Kind
	}
	if f.failOn != "" && f.failOn == key {
		return f.failErr
	}
	return nil
}

func (f *fakeChain) Deploy(_ context.Context, handle *models.ContractHandle, args []any, overrides *models.TxOverrides) (*models.CreationReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(txRecord{Kind: "create", Contract: handle.Name, Args: args}, overrides); err != nil {
		return nil, err
	}
	encoded, err := handle.PackConstructor(args...)
	if err != nil {
		return nil, err
	}
	return &models.CreationReceipt{Address: f.nextAddr(), TxHash: f.nextHash(), EncodedArgs: encoded}, nil
}

func (f *fakeChain) Transact(_ context.Context, handle *models.ContractHandle, address common.Address, method string, args []any, overrides *models.TxOverrides) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(txRecord{Kind: "call", Contract: handle.Name, Method: method, Target: address, Args: args}, overrides); err != nil {
		return common.Hash{}, err
	}
	return f.nextHash(), nil
}

func (f *fakeChain) DeployProxy(_ context.Context, logic *models.ContractHandle, initArgs []any, overrides *models.TxOverrides) (*models.ProxyReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(txRecord{Kind: "proxy", Contract: logic.Name, Args: initArgs}, overrides); err != nil {
		return nil, err
	}
	impl := f.nextAddr()
	proxy := f.nextAddr()
	return &models.ProxyReceipt{
		Proxy:          proxy,
		Implementation: impl,
		LogicTx:        f.nextHash(),
		ProxyTx:        f.nextHash(),
	}, nil
}

func (f *fakeChain) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.txs))
	for _, tx := range f.txs {
		if tx.Kind == "call" {
			out = append(out, tx.Method)
		} else {
			out = append(out, tx.Kind+":"+tx.Contract)
		}
	}
	return out
}

// fakeResolver builds handles whose ABI has an address-only constructor matching the recipe
type fakeResolver struct {
	err error
}

func (r *fakeResolver) Resolve(_ context.Context, recipe models.Recipe) (*models.ContractHandle, error) {
	if r.err != nil {
		return nil, r.err
	}
	inputs := []string{}
	if recipe.Strategy == models.StrategyDirect {
		for _, name := range recipe.CreationParams {
			inputs = append(inputs, fmt.Sprintf(`{"name":"%s","type":"address"}`, name))
		}
	}
	parsed, err := abi.JSON(strings.NewReader(fmt.Sprintf(`[{"type":"constructor","inputs":[%s],"stateMutability":"nonpayable"}]`, strings.Join(inputs, ","))))
	if err != nil {
		return nil, err
	}
	return &models.ContractHandle{
		Name:       recipe.Artifact,
		ContractID: recipe.ContractID(),
		ABI:        parsed,
	}, nil
}

func (r *fakeResolver) ResolveByName(ctx context.Context, name string) (*models.ContractHandle, error) {
	return nil, fmt.Errorf("not implemented")
}

type staticSigner struct {
	addr common.Address
	err  error
}

func (s staticSigner) Address(context.Context) (common.Address, error) {
	return s.addr, s.err
}

type staticChain uint64

func (c staticChain) ChainID(context.Context) (uint64, error) {
	return uint64(c), nil
}

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, req ConfirmRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, req models.VerificationRequest) (*models.VerificationResult, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*models.VerificationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingSink keeps the stage of every progress event
type recordingSink struct {
	NopProgress
	stages []string
}

func (s *recordingSink) OnProgress(_ context.Context, event ProgressEvent) {
	s.stages = append(s.stages, event.Stage)
}

type memoryStateStore struct {
	states map[string]*StackState
	saves  int
}

func newMemoryStateStore() *memoryStateStore {
	return &memoryStateStore{states: map[string]*StackState{}}
}

func (m *memoryStateStore) Load(_ context.Context, stack string) (*StackState, error) {
	s, ok := m.states[stack]
	if !ok {
		return nil, nil
	}
	cp := *s
	cp.Outputs = make(map[string]common.Address, len(s.Outputs))
	for k, v := range s.Outputs {
		cp.Outputs[k] = v
	}
	return &cp, nil
}

func (m *memoryStateStore) Save(_ context.Context, state *StackState) error {
	m.saves++
	cp := *state
	cp.Outputs = make(map[string]common.Address, len(state.Outputs))
	for k, v := range state.Outputs {
		cp.Outputs[k] = v
	}
	m.states[state.Stack] = &cp
	return nil
}

func (m *memoryStateStore) Delete(_ context.Context, stack string) error {
	delete(m.states, stack)
	return nil
}

func newTestDeployContract(chain *fakeChain, sink ProgressSink) *DeployContract {
	if sink == nil {
		sink = NopProgress{}
	}
	return NewDeployContract(&fakeResolver{}, chain, chain, staticSigner{addr: signerAddr}, sink, discardLogger())
}
