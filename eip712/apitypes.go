package eip712

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	permit "github.com/feng001-8/work"
)

// ToAPITypes converts td into go-ethereum's apitypes.TypedData. Message
// values are normalized to the shapes apitypes understands: addresses as
// checksummed hex strings, integers as *big.Int, byte strings as []byte and
// nested structs as plain maps.
func (td TypedData) ToAPITypes() (apitypes.TypedData, error) {
	if _, err := EncodeType(td.Types, td.PrimaryType); err != nil {
		return apitypes.TypedData{}, err
	}

	out := apitypes.TypedData{
		Types:       make(apitypes.Types, len(td.Types)+1),
		PrimaryType: td.PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:    td.Domain.Name,
			Version: td.Domain.Version,
		},
	}
	for name, fields := range td.TypesWithDomain() {
		converted := make([]apitypes.Type, len(fields))
		for i, f := range fields {
			converted[i] = apitypes.Type{Name: f.Name, Type: f.Type}
		}
		out.Types[name] = converted
	}

	for _, f := range td.Domain.DomainFields() {
		switch f.Name {
		case "chainId":
			if td.Domain.ChainID != nil {
				out.Domain.ChainId = (*math.HexOrDecimal256)(td.Domain.ChainID)
			}
		case "verifyingContract":
			out.Domain.VerifyingContract = td.Domain.VerifyingContract.Hex()
		case "salt":
			if td.Domain.Salt != nil {
				out.Domain.Salt = td.Domain.Salt.Hex()
			}
		}
	}

	message, err := normalizeStruct(td.Types, td.PrimaryType, td.Message, "")
	if err != nil {
		return apitypes.TypedData{}, err
	}
	out.Message = message
	return out, nil
}

func normalizeStruct(types Types, typeName string, message Message, path string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(message))
	for _, f := range types[typeName] {
		value, ok := message[f.Name]
		if !ok {
			continue
		}
		normalized, err := normalizeValue(types, joinPath(path, f.Name), f.Type, value)
		if err != nil {
			return nil, err
		}
		out[f.Name] = normalized
	}
	return out, nil
}

func normalizeValue(types Types, path, typ string, value interface{}) (interface{}, error) {
	elem, _, isArray, err := splitArray(typ)
	if err != nil {
		return nil, err
	}
	if isArray {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return nil, permit.NewTypeMismatchError(path, typ, value, "")
		}
		items := make([]interface{}, rv.Len())
		for i := range items {
			item, err := normalizeValue(types, fmt.Sprintf("%s[%d]", path, i), elem, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return items, nil
	}

	if _, isStruct := types[typ]; isStruct {
		msg, err := toMessage(path, typ, value)
		if err != nil {
			return nil, err
		}
		return normalizeStruct(types, typ, msg, path)
	}

	switch typ {
	case "address":
		addr, err := toAddress(path, value)
		if err != nil {
			return nil, err
		}
		return addr.Hex(), nil
	case "bytes":
		return toBytes(path, typ, value)
	case "bool", "string":
		return value, nil
	}
	if size, ok := fixedBytesSize(typ); ok {
		return toFixedBytes(path, typ, size, value)
	}
	if _, _, ok := integerBits(typ); ok {
		return toBigInt(path, typ, value)
	}
	return nil, permit.NewSchemaError("", "field %q has unknown type %s", path, typ)
}
