package eip712

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	permit "github.com/feng001-8/work"
)

// EncodeValue returns the 32-byte encodeData word of value as declared by
// field. Struct-typed fields are replaced by their struct hash and arrays by
// the keccak256 of their concatenated element words.
func EncodeValue(types Types, field Field, value interface{}) (common.Hash, error) {
	return encodeValue(types, field.Name, field.Type, value)
}

func encodeValue(types Types, path, typ string, value interface{}) (common.Hash, error) {
	elem, length, isArray, err := splitArray(typ)
	if err != nil {
		return common.Hash{}, err
	}
	if isArray {
		return encodeArray(types, path, typ, elem, length, value)
	}

	if _, isStruct := types[typ]; isStruct {
		msg, err := toMessage(path, typ, value)
		if err != nil {
			return common.Hash{}, err
		}
		return hashStruct(types, typ, msg, path)
	}

	switch typ {
	case "address":
		addr, err := toAddress(path, value)
		if err != nil {
			return common.Hash{}, err
		}
		return common.BytesToHash(addr.Bytes()), nil
	case "bool":
		b, ok := value.(bool)
		if !ok {
			return common.Hash{}, permit.NewTypeMismatchError(path, typ, value, "")
		}
		var word common.Hash
		if b {
			word[31] = 1
		}
		return word, nil
	case "string":
		s, ok := value.(string)
		if !ok {
			return common.Hash{}, permit.NewTypeMismatchError(path, typ, value, "")
		}
		return crypto.Keccak256Hash([]byte(s)), nil
	case "bytes":
		b, err := toBytes(path, typ, value)
		if err != nil {
			return common.Hash{}, err
		}
		return crypto.Keccak256Hash(b), nil
	}

	if size, ok := fixedBytesSize(typ); ok {
		b, err := toFixedBytes(path, typ, size, value)
		if err != nil {
			return common.Hash{}, err
		}
		var word common.Hash
		copy(word[:], b)
		return word, nil
	}

	if bits, signed, ok := integerBits(typ); ok {
		n, err := toBigInt(path, typ, value)
		if err != nil {
			return common.Hash{}, err
		}
		return encodeInteger(path, typ, bits, signed, n)
	}

	return common.Hash{}, permit.NewSchemaError("", "field %q has unknown type %s", path, typ)
}

func encodeArray(types Types, path, typ, elem string, length int, value interface{}) (common.Hash, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return common.Hash{}, permit.NewTypeMismatchError(path, typ, value, "")
	}
	if length >= 0 && rv.Len() != length {
		return common.Hash{}, permit.NewTypeMismatchError(path, typ, value,
			fmt.Sprintf("expected %d elements, got %d", length, rv.Len()))
	}

	var buf bytes.Buffer
	for i := 0; i < rv.Len(); i++ {
		word, err := encodeValue(types, fmt.Sprintf("%s[%d]", path, i), elem, rv.Index(i).Interface())
		if err != nil {
			return common.Hash{}, err
		}
		buf.Write(word[:])
	}
	return crypto.Keccak256Hash(buf.Bytes()), nil
}

func toMessage(path, typ string, value interface{}) (Message, error) {
	switch v := value.(type) {
	case Message:
		return v, nil
	case map[string]interface{}:
		return Message(v), nil
	}
	return nil, permit.NewTypeMismatchError(path, typ, value, "")
}

func toAddress(path string, value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v != nil {
			return *v, nil
		}
	case [20]byte:
		return common.Address(v), nil
	case []byte:
		if len(v) == common.AddressLength {
			return common.BytesToAddress(v), nil
		}
		return common.Address{}, permit.NewTypeMismatchError(path, "address", value,
			fmt.Sprintf("expected 20 bytes, got %d", len(v)))
	case string:
		if has0xPrefix(v) && common.IsHexAddress(v) {
			return common.HexToAddress(v), nil
		}
		return common.Address{}, permit.NewTypeMismatchError(path, "address", value,
			fmt.Sprintf("%q is not a 0x-prefixed 20-byte hex address", v))
	}
	return common.Address{}, permit.NewTypeMismatchError(path, "address", value, "")
}

func toBytes(path, typ string, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case hexutil.Bytes:
		return v, nil
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, permit.NewTypeMismatchError(path, typ, value, err.Error())
		}
		return b, nil
	}
	return nil, permit.NewTypeMismatchError(path, typ, value, "")
}

func toFixedBytes(path, typ string, size int, value interface{}) ([]byte, error) {
	var b []byte
	switch v := value.(type) {
	case common.Hash:
		b = v.Bytes()
	case []byte:
		b = v
	case hexutil.Bytes:
		b = v
	case string:
		decoded, err := hexutil.Decode(v)
		if err != nil {
			return nil, permit.NewTypeMismatchError(path, typ, value, err.Error())
		}
		b = decoded
	default:
		// [N]byte arrays of any size
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
			return nil, permit.NewTypeMismatchError(path, typ, value, "")
		}
		b = make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(b), rv)
	}
	if len(b) != size {
		return nil, permit.NewTypeMismatchError(path, typ, value,
			fmt.Sprintf("expected %d bytes, got %d", size, len(b)))
	}
	return b, nil
}

// toBigInt accepts every integer shape a caller or a JSON decoder is likely
// to hand over. Strings are decimal unless 0x-prefixed.
func toBigInt(path, typ string, value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v != nil {
			return new(big.Int).Set(v), nil
		}
	case big.Int:
		return new(big.Int).Set(&v), nil
	case *uint256.Int:
		if v != nil {
			return v.ToBig(), nil
		}
	case uint256.Int:
		return v.ToBig(), nil
	case *hexutil.Big:
		if v != nil {
			return new(big.Int).Set(v.ToInt()), nil
		}
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		// encoding/json without UseNumber
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return big.NewInt(int64(v)), nil
		}
		return nil, permit.NewTypeMismatchError(path, typ, value, "not an exactly representable integer")
	case json.Number:
		return parseIntegerString(path, typ, value, v.String())
	case string:
		return parseIntegerString(path, typ, value, v)
	}
	return nil, permit.NewTypeMismatchError(path, typ, value, "")
}

func parseIntegerString(path, typ string, value interface{}, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n := new(big.Int)
	var ok bool
	switch {
	case has0xPrefix(s):
		_, ok = n.SetString(s[2:], 16)
	case strings.HasPrefix(s, "-0x"), strings.HasPrefix(s, "-0X"):
		if _, ok = n.SetString(s[3:], 16); ok {
			n.Neg(n)
		}
	default:
		_, ok = n.SetString(s, 10)
	}
	if !ok {
		return nil, permit.NewTypeMismatchError(path, typ, value, fmt.Sprintf("%q is not an integer", s))
	}
	return n, nil
}

// encodeInteger range-checks n against its declared width and returns the
// 256-bit big-endian word, two's complement for negative values.
func encodeInteger(path, typ string, bits int, signed bool, n *big.Int) (common.Hash, error) {
	rangeErr := &permit.RangeError{Field: path, Type: typ, Value: n.String()}

	abs := new(big.Int).Abs(n)
	if !signed {
		if n.Sign() < 0 || n.BitLen() > bits {
			return common.Hash{}, rangeErr
		}
	} else {
		limit := abs
		if n.Sign() < 0 {
			// -2^(bits-1) is the smallest value
			limit = new(big.Int).Sub(abs, big.NewInt(1))
		}
		if limit.BitLen() > bits-1 {
			return common.Hash{}, rangeErr
		}
	}

	word, overflow := uint256.FromBig(abs)
	if overflow {
		return common.Hash{}, rangeErr
	}
	if n.Sign() < 0 {
		word.Neg(word)
	}
	return common.Hash(word.Bytes32()), nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
