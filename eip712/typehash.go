package eip712

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	permit "github.com/feng001-8/work"
)

// EncodeType returns the canonical type string of typeName: the type itself
// followed by every struct type it references, directly or transitively,
// sorted by name.
//
//	Mail(Person from,Person to,string contents)Person(string name,address wallet)
func EncodeType(types Types, typeName string) (string, error) {
	deps, err := dependencies(types, typeName)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, name := range deps {
		b.WriteString(name)
		b.WriteByte('(')
		for i, field := range types[name] {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(field.Type)
			b.WriteByte(' ')
			b.WriteString(field.Name)
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

// TypeHash returns keccak256(EncodeType(types, typeName))
func TypeHash(types Types, typeName string) (common.Hash, error) {
	encoded, err := EncodeType(types, typeName)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash([]byte(encoded)), nil
}

// dependencies returns typeName followed by its referenced struct types in
// lexicographic order. The schema must be complete and acyclic.
func dependencies(types Types, typeName string) ([]string, error) {
	if typeName == "" {
		return nil, permit.NewSchemaError("", "primary type is empty")
	}
	seen := map[string]bool{typeName: true}
	inPath := map[string]bool{}
	var deps []string
	if err := collectDependencies(types, typeName, seen, inPath, &deps); err != nil {
		return nil, err
	}
	sort.Strings(deps)
	return append([]string{typeName}, deps...), nil
}

func collectDependencies(types Types, typeName string, seen, inPath map[string]bool, deps *[]string) error {
	fields, ok := types[typeName]
	if !ok {
		return permit.NewSchemaError(typeName, "type is not defined")
	}
	if isPrimitive(typeName) {
		return permit.NewSchemaError(typeName, "struct name collides with a primitive type")
	}

	inPath[typeName] = true
	names := make(map[string]bool, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			return permit.NewSchemaError(typeName, "field with empty name")
		}
		if names[field.Name] {
			return permit.NewSchemaError(typeName, "duplicate field %q", field.Name)
		}
		names[field.Name] = true

		base, err := baseType(typeName, field.Type)
		if err != nil {
			return err
		}
		if _, isStruct := types[base]; isStruct {
			if inPath[base] {
				return permit.NewSchemaError(typeName, "cyclic reference through field %q of type %s", field.Name, base)
			}
			if !seen[base] {
				seen[base] = true
				*deps = append(*deps, base)
				if err := collectDependencies(types, base, seen, inPath, deps); err != nil {
					return err
				}
			}
			continue
		}
		if !isPrimitive(base) {
			return permit.NewSchemaError(typeName, "field %q references undefined type %s", field.Name, base)
		}
	}
	inPath[typeName] = false
	return nil
}

// splitArray splits the outermost array dimension off typ. "T[2][]" yields
// ("T[2]", -1, true); "T[3]" yields ("T", 3, true).
func splitArray(typ string) (elem string, length int, isArray bool, err error) {
	if !strings.HasSuffix(typ, "]") {
		return typ, 0, false, nil
	}
	open := strings.LastIndex(typ, "[")
	if open <= 0 {
		return "", 0, false, permit.NewSchemaError("", "malformed array type %q", typ)
	}
	inner := typ[open+1 : len(typ)-1]
	if inner == "" {
		return typ[:open], -1, true, nil
	}
	n, convErr := strconv.Atoi(inner)
	if convErr != nil || n <= 0 || inner[0] == '0' {
		return "", 0, false, permit.NewSchemaError("", "malformed array length in %q", typ)
	}
	return typ[:open], n, true, nil
}

func baseType(owner, typ string) (string, error) {
	for {
		elem, _, isArray, err := splitArray(typ)
		if err != nil {
			err.(*permit.SchemaError).Type = owner
			return "", err
		}
		if !isArray {
			return typ, nil
		}
		typ = elem
	}
}

func isPrimitive(typ string) bool {
	switch typ {
	case "address", "bool", "string", "bytes":
		return true
	}
	if _, ok := fixedBytesSize(typ); ok {
		return true
	}
	if _, _, ok := integerBits(typ); ok {
		return true
	}
	return false
}

// fixedBytesSize parses bytes1 … bytes32
func fixedBytesSize(typ string) (int, bool) {
	if !strings.HasPrefix(typ, "bytes") || typ == "bytes" {
		return 0, false
	}
	n, ok := parseSize(typ[len("bytes"):])
	if !ok || n < 1 || n > 32 {
		return 0, false
	}
	return n, true
}

// integerBits parses uint8 … uint256 and int8 … int256. The bare aliases
// "uint" and "int" are not valid EIP-712 type names.
func integerBits(typ string) (bits int, signed bool, ok bool) {
	var suffix string
	switch {
	case strings.HasPrefix(typ, "uint"):
		suffix = typ[len("uint"):]
	case strings.HasPrefix(typ, "int"):
		suffix, signed = typ[len("int"):], true
	default:
		return 0, false, false
	}
	n, valid := parseSize(suffix)
	if !valid || n < 8 || n > 256 || n%8 != 0 {
		return 0, false, false
	}
	return n, signed, true
}

func parseSize(s string) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
