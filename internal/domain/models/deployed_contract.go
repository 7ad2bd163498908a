package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractHandle is a compiled contract bound to its ABI and creation bytecode
type ContractHandle struct {
	Name         string
	ContractID   string
	ArtifactPath string
	ABI          abi.ABI
	Bytecode     []byte
	Compiler     string
}

// PackConstructor ABI-encodes constructor arguments exactly as they are appended to the creation code
func (h *ContractHandle) PackConstructor(args ...any) ([]byte, error) {
	return h.ABI.Pack("", args...)
}

// Stage is a state of the per-recipe state machine
type Stage string

const (
	StageNotStarted   Stage = "not-started"
	StageCreating     Stage = "creating"
	StageInitializing Stage = "initializing"
	StageConfiguring  Stage = "configuring"
	StageReady        Stage = "ready"
)

// CreationReceipt is the confirmed result of a contract creation transaction
type CreationReceipt struct {
	Address     common.Address
	TxHash      common.Hash
	EncodedArgs []byte
}

// ProxyReceipt is the confirmed result of a proxy deployment: logic contract, proxy and initializer
type ProxyReceipt struct {
	Proxy           common.Address
	Implementation  common.Address
	LogicTx         common.Hash
	ProxyTx         common.Hash
	InitData        []byte
	ProxyContractID string
}

// StepRecord is one confirmed transaction of a recipe
type StepRecord struct {
	Stage  Stage
	Label  string
	TxHash common.Hash
}

// DeployedContract is the result of a successful recipe
type DeployedContract struct {
	Kind       ContractKind
	ContractID string
	Address    common.Address
	// Implementation is the logic contract behind a proxy; zero for direct deployments.
	Implementation common.Address
	Args           map[string]common.Address
	CreationArgs   []any
	// EncodedConstructorArgs are the bytes the creation transaction appended to the bytecode
	// of the verified contract (the logic contract for proxies).
	EncodedConstructorArgs []byte
	Steps                  []StepRecord
}

// IsProxy reports whether the contract sits behind an upgradeable proxy
func (d *DeployedContract) IsProxy() bool {
	return d.Implementation != (common.Address{})
}

// VerificationTarget is the address whose source gets verified
func (d *DeployedContract) VerificationTarget() common.Address {
	if d.IsProxy() {
		return d.Implementation
	}
	return d.Address
}

// VerificationRequest is a single source-verification submission
type VerificationRequest struct {
	Address         common.Address
	ContractID      string
	ConstructorArgs []byte
}

// ContractName returns the part of the identifier after the colon
func (r VerificationRequest) ContractName() string {
	if idx := strings.LastIndex(r.ContractID, ":"); idx != -1 {
		return r.ContractID[idx+1:]
	}
	return r.ContractID
}

func (r VerificationRequest) String() string {
	return fmt.Sprintf("%s @ %s", r.ContractID, r.Address.Hex())
}

// VerificationResult is what the explorer reported for an accepted request
type VerificationResult struct {
	Verifier string
	URL      string
	Message  string
}
