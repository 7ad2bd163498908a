package models

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/xterio/xdeploy/internal/domain"
)

// ContractKind identifies one of the contracts this tool knows how to deploy
type ContractKind string

const (
	KindToken             ContractKind = "token"
	KindGateway           ContractKind = "gateway"
	KindMarketplace       ContractKind = "marketplace"
	KindForwarder         ContractKind = "forwarder"
	KindMinter            ContractKind = "minter"
	KindUnwrapper         ContractKind = "unwrapper"
	KindTransferValidator ContractKind = "transfer-validator"
	KindDistributor       ContractKind = "distributor"
)

// DeployStrategy is how the creation step of a recipe is executed
type DeployStrategy string

const (
	// StrategyDirect deploys the contract with its constructor
	StrategyDirect DeployStrategy = "direct"
	// StrategyProxy deploys a logic contract behind an upgradeable proxy and runs its initializer
	StrategyProxy DeployStrategy = "proxy"
)

// Param is an address input of a recipe
type Param struct {
	Name        string
	Description string
	// Optional params may be omitted; calls consuming them are skipped.
	Optional bool
	// DefaultsToSigner params fall back to the deployer address when omitted.
	DefaultsToSigner bool
}

// ConfigCall is a post-deploy configuration transaction
type ConfigCall struct {
	Method string
	Param  string
	// AsList wraps the argument in a single-element address array.
	AsList bool
}

// Recipe is the ordered deployment and configuration procedure for one contract kind
type Recipe struct {
	Kind     ContractKind
	Artifact string
	Source   string
	Strategy DeployStrategy
	Params   []Param
	// CreationParams are fed, in order, to the constructor (direct) or initializer (proxy).
	CreationParams []string
	ConfigCalls    []ConfigCall
}

// ContractID returns the fully-qualified source identifier (path:Name)
func (r Recipe) ContractID() string {
	return fmt.Sprintf("%s:%s", r.Source, r.Artifact)
}

// Param returns the parameter definition with the given name
func (r Recipe) Param(name string) (Param, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ResolveArgs checks the supplied arguments against the recipe schema, filling signer
// defaults. Unknown argument names are rejected.
func (r Recipe) ResolveArgs(args map[string]common.Address, signer common.Address) (map[string]common.Address, error) {
	for name := range args {
		if _, ok := r.Param(name); !ok {
			return nil, fmt.Errorf("%s does not take argument %q", r.Kind, name)
		}
	}

	resolved := make(map[string]common.Address, len(r.Params))
	for _, p := range r.Params {
		addr, ok := args[p.Name]
		switch {
		case ok:
			resolved[p.Name] = addr
		case p.DefaultsToSigner:
			resolved[p.Name] = signer
		case p.Optional:
		default:
			return nil, fmt.Errorf("%w: %s requires %s", domain.ErrMissingArgument, r.Kind, p.Name)
		}
	}
	return resolved, nil
}

// CreationArgs returns the constructor or initializer arguments in order
func (r Recipe) CreationArgs(resolved map[string]common.Address) []any {
	out := make([]any, 0, len(r.CreationParams))
	for _, name := range r.CreationParams {
		out = append(out, resolved[name])
	}
	return out
}

var recipes = map[ContractKind]Recipe{
	KindToken: {
		Kind:           KindToken,
		Artifact:       "XterToken",
		Source:         "contracts/XterToken.sol",
		Strategy:       StrategyDirect,
		Params:         []Param{{Name: "wallet", Description: "receiver of the initial supply"}},
		CreationParams: []string{"wallet"},
	},
	KindGateway: {
		Kind:           KindGateway,
		Artifact:       "TokenGateway",
		Source:         "contracts/TokenGateway.sol",
		Strategy:       StrategyProxy,
		Params:         []Param{{Name: "gatewayAdmin", Description: "gateway admin"}},
		CreationParams: []string{"gatewayAdmin"},
	},
	KindMarketplace: {
		Kind:     KindMarketplace,
		Artifact: "MarketplaceV2",
		Source:   "contracts/MarketplaceV2.sol",
		Strategy: StrategyProxy,
		Params: []Param{
			{Name: "gateway", Description: "token gateway the marketplace queries for token managers"},
			{Name: "serviceFeeRecipient", Description: "receiver of marketplace service fees"},
			{Name: "paymentToken", Description: "ERC20 accepted as payment", Optional: true},
		},
		ConfigCalls: []ConfigCall{
			{Method: "addPaymentTokens", Param: "paymentToken", AsList: true},
			{Method: "setServiceFeeRecipient", Param: "serviceFeeRecipient"},
			{Method: "setGateway", Param: "gateway"},
		},
	},
	KindForwarder: {
		Kind:     KindForwarder,
		Artifact: "Forwarder",
		Source:   "contracts/Forwarder.sol",
		Strategy: StrategyDirect,
	},
	KindMinter: {
		Kind:           KindMinter,
		Artifact:       "WhitelistMinter",
		Source:         "contracts/WhitelistMinter.sol",
		Strategy:       StrategyDirect,
		Params:         []Param{{Name: "gateway", Description: "token gateway"}},
		CreationParams: []string{"gateway"},
	},
	KindUnwrapper: {
		Kind:           KindUnwrapper,
		Artifact:       "LootboxUnwrapper",
		Source:         "contracts/LootboxUnwrapper.sol",
		Strategy:       StrategyDirect,
		Params:         []Param{{Name: "gateway", Description: "token gateway"}},
		CreationParams: []string{"gateway"},
	},
	KindTransferValidator: {
		Kind:           KindTransferValidator,
		Artifact:       "CreatorTokenTransferValidator",
		Source:         "contracts/CreatorTokenTransferValidator.sol",
		Strategy:       StrategyDirect,
		Params:         []Param{{Name: "defaultOwner", Description: "default owner of validator lists"}},
		CreationParams: []string{"defaultOwner"},
	},
	KindDistributor: {
		Kind:           KindDistributor,
		Artifact:       "Distribute",
		Source:         "contracts/Distribute.sol",
		Strategy:       StrategyDirect,
		Params:         []Param{{Name: "admin", Description: "distributor admin", DefaultsToSigner: true}},
		CreationParams: []string{"admin"},
	},
}

// kindOrder is the display order, roughly the dependency order of a full rollout.
var kindOrder = []ContractKind{
	KindToken,
	KindGateway,
	KindMarketplace,
	KindForwarder,
	KindMinter,
	KindUnwrapper,
	KindTransferValidator,
	KindDistributor,
}

// AllKinds returns every registered contract kind
func AllKinds() []ContractKind {
	out := make([]ContractKind, len(kindOrder))
	copy(out, kindOrder)
	return out
}

// LookupRecipe returns the recipe registered for kind
func LookupRecipe(kind ContractKind) (Recipe, bool) {
	r, ok := recipes[kind]
	return r, ok
}

// ParseContractKind maps a user-supplied name to a registered kind
func ParseContractKind(name string) (ContractKind, error) {
	kind := ContractKind(name)
	if _, ok := recipes[kind]; ok {
		return kind, nil
	}

	names := make([]string, 0, len(kindOrder))
	for _, k := range kindOrder {
		names = append(names, string(k))
	}
	matches := fuzzy.Find(name, names)
	sort.Stable(matches)

	suggestions := make([]string, 0, 3)
	for i := 0; i < len(matches) && i < 3; i++ {
		suggestions = append(suggestions, matches[i].Str)
	}
	return "", domain.UnknownContractErr{Name: name, Suggestions: suggestions}
}

// Args returns the call arguments, or false when the call consumes an omitted optional param.
func (c ConfigCall) Args(resolved map[string]common.Address) ([]any, bool) {
	addr, ok := resolved[c.Param]
	if !ok {
		return nil, false
	}
	if c.AsList {
		return []any{[]common.Address{addr}}, true
	}
	return []any{addr}, true
}
