// Package inspect runs the codec pipelines shared by the HTTP API, the MCP
// tools and the CLI: parse typed-data JSON, hash it and recover signers.
package inspect

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
	"github.com/feng001-8/work/signature"
)

// Recovery is the result of recovering a signature over typed data
type Recovery struct {
	Address   string               `json:"address"`
	Signature *signature.Signature `json:"signature"`
	Hashes    *eip712.Hashes       `json:"hashes"`
}

// Verification is the result of checking a signature against a signer
type Verification struct {
	Valid     bool   `json:"valid"`
	Recovered string `json:"recovered"`
}

// Hash parses typed-data JSON and returns its hash snapshot
func Hash(typedData []byte) (*eip712.Hashes, error) {
	td, err := eip712.ParseTypedDataJSON(typedData)
	if err != nil {
		return nil, err
	}
	return eip712.HashTypedData(*td)
}

// Recover hashes typedData and recovers the address that produced sig
func Recover(typedData []byte, sig string) (*Recovery, error) {
	hashes, err := Hash(typedData)
	if err != nil {
		return nil, err
	}
	parsed, err := signature.Parse(sig)
	if err != nil {
		return nil, err
	}
	address, err := signature.Recover(hashes.Digest, parsed.Bytes())
	if err != nil {
		return nil, err
	}
	return &Recovery{Address: address.Hex(), Signature: parsed, Hashes: hashes}, nil
}

// Verify reports whether sig over typedData was produced by signer. A
// signature that recovers to another address is not an error.
func Verify(typedData []byte, sig, signer string) (*Verification, error) {
	if !common.IsHexAddress(signer) {
		return nil, permit.NewTypeMismatchError("signer", "address", signer, fmt.Sprintf("%q is not a hex address", signer))
	}
	recovery, err := Recover(typedData, sig)
	if err != nil {
		return nil, err
	}
	return &Verification{
		Valid:     common.HexToAddress(recovery.Address) == common.HexToAddress(signer),
		Recovered: recovery.Address,
	}, nil
}

// Split decodes a hex signature into r, s and a normalized v
func Split(sig string) (*signature.Signature, error) {
	return signature.Parse(sig)
}

// RawJSON returns the raw bytes of a JSON value that may itself be a string
// holding JSON, as MCP clients and shells sometimes send.
func RawJSON(v json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return []byte(s)
	}
	return v
}
