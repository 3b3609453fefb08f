// Package eip712 encodes EIP-712 typed structured data.
//
// The package computes type hashes, struct hashes, domain separators and the
// final signing digest:
//
//	digest = keccak256("\x19\x01" || domainSeparator || hashStruct(message))
//
// Every function here is a pure function of its inputs. Nothing is cached and
// nothing is shared, so concurrent callers need no locking.
package eip712

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DomainTypeName is the reserved name of the domain struct type
const DomainTypeName = "EIP712Domain"

// Field is a single (name, type) member of a struct type
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Types maps struct type names to their ordered fields.
// Field order is part of the hash.
type Types map[string][]Field

// Message is a struct value keyed by field name
type Message map[string]interface{}

// Domain is the EIP-712 signing domain.
//
// Fields is the explicit EIP712Domain type. When empty, StandardDomainFields
// is used. Domains that leave a member out (Permit2 has no version) must say
// so through Fields.
type Domain struct {
	Name              string         `json:"name,omitempty"`
	Version           string         `json:"version,omitempty"`
	ChainID           *big.Int       `json:"chainId,omitempty"`
	VerifyingContract common.Address `json:"verifyingContract,omitempty"`
	Salt              *common.Hash   `json:"salt,omitempty"`
	Fields            []Field        `json:"-"`
}

// StandardDomainFields is EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)
var StandardDomainFields = []Field{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// canonicalDomainFields lists every member EIP712Domain may have, in the
// order the standard requires.
var canonicalDomainFields = []Field{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
	{Name: "salt", Type: "bytes32"},
}

// TypedData is a complete signing request in the eth_signTypedData_v4 shape
type TypedData struct {
	Types       Types   `json:"types"`
	PrimaryType string  `json:"primaryType"`
	Domain      Domain  `json:"domain"`
	Message     Message `json:"message"`
}

// Hashes is an immutable snapshot of every intermediate value of a digest
// computation, suitable for display or debugging.
type Hashes struct {
	EncodedType     string      `json:"encodedType"`
	TypeHash        common.Hash `json:"typeHash"`
	DomainSeparator common.Hash `json:"domainSeparator"`
	StructHash      common.Hash `json:"structHash"`
	Digest          common.Hash `json:"digest"`
}

// DomainFields returns the EIP712Domain type of the domain
func (d Domain) DomainFields() []Field {
	if len(d.Fields) == 0 {
		return StandardDomainFields
	}
	return d.Fields
}

// Map returns the domain as a message keyed by the members its type declares
func (d Domain) Map() Message {
	m := make(Message, len(d.DomainFields()))
	for _, f := range d.DomainFields() {
		switch f.Name {
		case "name":
			m["name"] = d.Name
		case "version":
			m["version"] = d.Version
		case "chainId":
			if d.ChainID != nil {
				m["chainId"] = new(big.Int).Set(d.ChainID)
			}
		case "verifyingContract":
			m["verifyingContract"] = d.VerifyingContract
		case "salt":
			if d.Salt != nil {
				m["salt"] = *d.Salt
			}
		}
	}
	return m
}

// TypesWithDomain returns a copy of types that also carries the domain's
// EIP712Domain definition, which is what wallets expect to receive.
func (td TypedData) TypesWithDomain() Types {
	out := make(Types, len(td.Types)+1)
	for name, fields := range td.Types {
		out[name] = fields
	}
	out[DomainTypeName] = td.Domain.DomainFields()
	return out
}
