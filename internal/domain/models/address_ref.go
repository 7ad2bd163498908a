package models

import (
	"fmt"
	"regexp"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xterio/xdeploy/internal/domain"
)

// refPattern matches ${component} references to the output of another recipe
var refPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_-]*)\}$`)

// AddressRef is either a literal address or a reference to the address produced by a prior recipe
type AddressRef struct {
	Literal   common.Address
	Component string
}

// ParseAddressRef parses "0x…" literals and "${component}" references
func ParseAddressRef(raw string) (AddressRef, error) {
	if m := refPattern.FindStringSubmatch(raw); len(m) == 2 {
		return AddressRef{Component: m[1]}, nil
	}
	addr, err := ParseAddress(raw)
	if err != nil {
		return AddressRef{}, err
	}
	return AddressRef{Literal: addr}, nil
}

// ParseAddress parses a hex address, rejecting malformed input
func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidAddress, raw)
	}
	return common.HexToAddress(raw), nil
}

// IsReference reports whether the address comes from another recipe
func (r AddressRef) IsReference() bool {
	return r.Component != ""
}

// Resolve returns the concrete address, looking references up in outputs
func (r AddressRef) Resolve(outputs map[string]common.Address) (common.Address, error) {
	if !r.IsReference() {
		return r.Literal, nil
	}
	addr, ok := outputs[r.Component]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: ${%s}", domain.ErrUnresolvedReference, r.Component)
	}
	return addr, nil
}

func (r AddressRef) String() string {
	if r.IsReference() {
		return "${" + r.Component + "}"
	}
	return r.Literal.Hex()
}
