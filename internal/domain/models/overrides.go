package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxOverrides holds caller-supplied transaction parameters. Nil fields use network defaults.
type TxOverrides struct {
	GasPrice *big.Int
	GasLimit uint64
	Nonce    *uint64
	From     *common.Address
}

// Clone returns an independent copy; a nil receiver yields empty overrides
func (o *TxOverrides) Clone() *TxOverrides {
	if o == nil {
		return &TxOverrides{}
	}
	c := &TxOverrides{GasLimit: o.GasLimit}
	if o.GasPrice != nil {
		c.GasPrice = new(big.Int).Set(o.GasPrice)
	}
	if o.Nonce != nil {
		n := *o.Nonce
		c.Nonce = &n
	}
	if o.From != nil {
		f := *o.From
		c.From = &f
	}
	return c
}

// IsZero reports whether no override is set
func (o *TxOverrides) IsZero() bool {
	return o == nil || (o.GasPrice == nil && o.GasLimit == 0 && o.Nonce == nil && o.From == nil)
}

// Advance moves an explicit nonce on to the next transaction of the recipe
func (o *TxOverrides) Advance() {
	if o != nil && o.Nonce != nil {
		n := *o.Nonce + 1
		o.Nonce = &n
	}
}
