package usecase

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/xterio/xdeploy/internal/domain/models"
)

// EncodeConstructorArgs ABI-encodes textual values against solidity type names,
// e.g. values "0xA…,1000" with types "address,uint256"
func EncodeConstructorArgs(values, types []string) ([]byte, error) {
	if len(values) != len(types) {
		return nil, fmt.Errorf("got %d argument(s) but %d type(s)", len(values), len(types))
	}

	args := make(abi.Arguments, 0, len(types))
	packed := make([]any, 0, len(values))
	for i, typeName := range types {
		typ, err := abi.NewType(strings.TrimSpace(typeName), "", nil)
		if err != nil {
			return nil, fmt.Errorf("argument %d: invalid type %q: %w", i, typeName, err)
		}
		value, err := parseValue(typ, strings.TrimSpace(values[i]))
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, typeName, err)
		}
		args = append(args, abi.Argument{Type: typ})
		packed = append(packed, value)
	}
	return args.Pack(packed...)
}

func parseValue(typ abi.Type, raw string) (any, error) {
	switch typ.T {
	case abi.AddressTy:
		return models.ParseAddress(raw)
	case abi.BoolTy:
		return strconv.ParseBool(raw)
	case abi.StringTy:
		return raw, nil
	case abi.BytesTy:
		return hexutil.Decode(raw)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, err
		}
		if len(b) > typ.Size {
			return nil, fmt.Errorf("value is %d bytes, type holds %d", len(b), typ.Size)
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(common.RightPadBytes(b, typ.Size)))
		return arr.Interface(), nil
	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(raw, 0)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		if typ.Size > 64 {
			return n, nil
		}
		v := reflect.New(typ.GetType()).Elem()
		if typ.T == abi.UintTy {
			if n.Sign() < 0 || n.BitLen() > typ.Size {
				return nil, fmt.Errorf("%s out of range for uint%d", raw, typ.Size)
			}
			v.SetUint(n.Uint64())
		} else {
			if !n.IsInt64() || v.OverflowInt(n.Int64()) {
				return nil, fmt.Errorf("%s out of range for int%d", raw, typ.Size)
			}
			v.SetInt(n.Int64())
		}
		return v.Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported type %s", typ.String())
	}
}
