package eip712

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	permit "github.com/feng001-8/work"
)

// digestPrefix is the EIP-191 version byte pair for structured data
var digestPrefix = []byte{0x19, 0x01}

// EncodeData returns typeHash || enc(field1) || enc(field2) ... for message,
// the preimage of HashStruct.
func EncodeData(types Types, typeName string, message Message) ([]byte, error) {
	return encodeData(types, typeName, message, "")
}

// HashStruct returns keccak256(EncodeData(types, typeName, message))
func HashStruct(types Types, typeName string, message Message) (common.Hash, error) {
	return hashStruct(types, typeName, message, "")
}

func hashStruct(types Types, typeName string, message Message, path string) (common.Hash, error) {
	data, err := encodeData(types, typeName, message, path)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

func encodeData(types Types, typeName string, message Message, path string) ([]byte, error) {
	typeHash, err := TypeHash(types, typeName)
	if err != nil {
		return nil, err
	}
	fields := types[typeName]

	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
	}
	// sorted so the reported key is stable
	extra := make([]string, 0)
	for key := range message {
		if !declared[key] {
			extra = append(extra, key)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, permit.NewTypeMismatchError(joinPath(path, extra[0]), "no such field in "+typeName, message[extra[0]], "undeclared message key")
	}

	var buf bytes.Buffer
	buf.Grow(32 * (len(fields) + 1))
	buf.Write(typeHash[:])
	for _, f := range fields {
		fieldPath := joinPath(path, f.Name)
		value, ok := message[f.Name]
		if !ok {
			return nil, permit.NewTypeMismatchError(fieldPath, f.Type, nil, "missing value")
		}
		word, err := encodeValue(types, fieldPath, f.Type, value)
		if err != nil {
			return nil, err
		}
		buf.Write(word[:])
	}
	return buf.Bytes(), nil
}

// DomainSeparator returns hashStruct(EIP712Domain, domain). The domain type
// may only use the standard members, in the standard order.
func DomainSeparator(domain Domain) (common.Hash, error) {
	fields := domain.DomainFields()
	if err := validateDomainFields(fields); err != nil {
		return common.Hash{}, err
	}
	for _, f := range fields {
		switch {
		case f.Name == "chainId" && domain.ChainID == nil:
			return common.Hash{}, permit.NewSchemaError(DomainTypeName, "chainId is declared but not set")
		case f.Name == "salt" && domain.Salt == nil:
			return common.Hash{}, permit.NewSchemaError(DomainTypeName, "salt is declared but not set")
		}
	}
	return HashStruct(Types{DomainTypeName: fields}, DomainTypeName, domain.Map())
}

func validateDomainFields(fields []Field) error {
	if len(fields) == 0 {
		return permit.NewSchemaError(DomainTypeName, "domain declares no fields")
	}
	next := 0
	for _, f := range fields {
		idx := -1
		for i := next; i < len(canonicalDomainFields); i++ {
			if canonicalDomainFields[i].Name == f.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return permit.NewSchemaError(DomainTypeName, "field %q is not a domain member or is out of order", f.Name)
		}
		if want := canonicalDomainFields[idx].Type; f.Type != want {
			return permit.NewSchemaError(DomainTypeName, "field %q must be %s, not %s", f.Name, want, f.Type)
		}
		next = idx + 1
	}
	return nil
}

// Digest returns keccak256("\x19\x01" || domainSeparator || structHash)
func Digest(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(digestPrefix, domainSeparator[:], structHash[:])
}

// SigningDigest computes the digest a wallet signs for message
func SigningDigest(domain Domain, types Types, primaryType string, message Message) (common.Hash, error) {
	hashes, err := HashTypedData(TypedData{Types: types, PrimaryType: primaryType, Domain: domain, Message: message})
	if err != nil {
		return common.Hash{}, err
	}
	return hashes.Digest, nil
}

// HashTypedData computes every intermediate hash of td in one pass
func HashTypedData(td TypedData) (*Hashes, error) {
	if td.PrimaryType == "" {
		return nil, permit.NewSchemaError("", "primary type is empty")
	}
	if td.PrimaryType == DomainTypeName {
		return nil, permit.NewSchemaError(DomainTypeName, "domain type cannot be the primary type")
	}

	encodedType, err := EncodeType(td.Types, td.PrimaryType)
	if err != nil {
		return nil, err
	}
	domainSeparator, err := DomainSeparator(td.Domain)
	if err != nil {
		return nil, err
	}
	structHash, err := HashStruct(td.Types, td.PrimaryType, td.Message)
	if err != nil {
		return nil, err
	}

	return &Hashes{
		EncodedType:     encodedType,
		TypeHash:        crypto.Keccak256Hash([]byte(encodedType)),
		DomainSeparator: domainSeparator,
		StructHash:      structHash,
		Digest:          Digest(domainSeparator, structHash),
	}, nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
