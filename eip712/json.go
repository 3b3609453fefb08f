package eip712

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/xeipuuv/gojsonschema"

	permit "github.com/feng001-8/work"
)

// typedDataSchema describes the eth_signTypedData_v4 payload
const typedDataSchema = `{
  "type": "object",
  "required": ["types", "primaryType", "domain", "message"],
  "properties": {
    "types": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["name", "type"],
          "properties": {
            "name": {"type": "string", "minLength": 1},
            "type": {"type": "string", "minLength": 1}
          }
        }
      }
    },
    "primaryType": {"type": "string", "minLength": 1},
    "domain": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "version": {"type": "string"},
        "chainId": {"type": ["integer", "string"]},
        "verifyingContract": {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
        "salt": {"type": "string", "pattern": "^0x[0-9a-fA-F]{64}$"}
      },
      "additionalProperties": false
    },
    "message": {"type": "object"}
  }
}`

type typedDataJSON struct {
	Types       Types                  `json:"types"`
	PrimaryType string                 `json:"primaryType"`
	Domain      map[string]interface{} `json:"domain"`
	Message     Message                `json:"message"`
}

// ParseTypedDataJSON decodes an eth_signTypedData_v4 payload. Numbers are
// kept as json.Number so large integers survive intact. When the payload has
// no EIP712Domain type, the domain type is derived from the members present.
func ParseTypedDataJSON(data []byte) (*TypedData, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(typedDataSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, permit.NewSchemaError("", "invalid typed data JSON: %v", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, permit.NewSchemaError("", "typed data JSON: %s", strings.Join(problems, "; "))
	}

	var raw typedDataJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, permit.NewSchemaError("", "invalid typed data JSON: %v", err)
	}

	domain, err := parseDomain(raw.Domain, raw.Types[DomainTypeName])
	if err != nil {
		return nil, err
	}

	types := make(Types, len(raw.Types))
	for name, fields := range raw.Types {
		if name != DomainTypeName {
			types[name] = fields
		}
	}
	if raw.Message == nil {
		raw.Message = Message{}
	}

	return &TypedData{
		Types:       types,
		PrimaryType: raw.PrimaryType,
		Domain:      domain,
		Message:     raw.Message,
	}, nil
}

func parseDomain(raw map[string]interface{}, declared []Field) (Domain, error) {
	var d Domain
	for key, value := range raw {
		path := "domain." + key
		switch key {
		case "name", "version":
			s, ok := value.(string)
			if !ok {
				return Domain{}, permit.NewTypeMismatchError(path, "string", value, "")
			}
			if key == "name" {
				d.Name = s
			} else {
				d.Version = s
			}
		case "chainId":
			n, err := toBigInt(path, "uint256", value)
			if err != nil {
				return Domain{}, err
			}
			if n.Sign() < 0 {
				return Domain{}, &permit.RangeError{Field: path, Type: "uint256", Value: n.String()}
			}
			d.ChainID = n
		case "verifyingContract":
			addr, err := toAddress(path, value)
			if err != nil {
				return Domain{}, err
			}
			d.VerifyingContract = addr
		case "salt":
			b, err := toFixedBytes(path, "bytes32", 32, value)
			if err != nil {
				return Domain{}, err
			}
			salt := common.BytesToHash(b)
			d.Salt = &salt
		default:
			return Domain{}, permit.NewSchemaError(DomainTypeName, "unknown domain member %q", key)
		}
	}

	if len(declared) > 0 {
		names := make(map[string]bool, len(declared))
		for _, f := range declared {
			names[f.Name] = true
			if _, ok := raw[f.Name]; !ok {
				return Domain{}, permit.NewTypeMismatchError("domain."+f.Name, f.Type, nil, "declared domain member is missing")
			}
		}
		for key, value := range raw {
			if !names[key] {
				return Domain{}, permit.NewTypeMismatchError("domain."+key, "undeclared", value, "domain member is not declared by "+DomainTypeName)
			}
		}
		d.Fields = declared
		return d, nil
	}
	for _, f := range canonicalDomainFields {
		if _, ok := raw[f.Name]; ok {
			d.Fields = append(d.Fields, f)
		}
	}
	if len(d.Fields) == 0 {
		return Domain{}, permit.NewSchemaError(DomainTypeName, "domain declares no fields")
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler through ParseTypedDataJSON
func (td *TypedData) UnmarshalJSON(data []byte) error {
	parsed, err := ParseTypedDataJSON(data)
	if err != nil {
		return err
	}
	*td = *parsed
	return nil
}

// MarshalJSON renders td in the eth_signTypedData_v4 shape, including the
// EIP712Domain type and only the domain members it declares.
func (td TypedData) MarshalJSON() ([]byte, error) {
	domain := make(map[string]interface{}, len(td.Domain.DomainFields()))
	for key, value := range td.Domain.Map() {
		switch v := value.(type) {
		case common.Address:
			domain[key] = v.Hex()
		case common.Hash:
			domain[key] = v.Hex()
		case *big.Int:
			domain[key] = json.Number(v.String())
		default:
			domain[key] = v
		}
	}
	message := td.Message
	if message == nil {
		message = Message{}
	}
	out, err := json.Marshal(typedDataJSON{
		Types:       td.TypesWithDomain(),
		PrimaryType: td.PrimaryType,
		Domain:      domain,
		Message:     message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	return out, nil
}
