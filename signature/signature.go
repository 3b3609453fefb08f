// Package signature handles 65-byte secp256k1 signatures in the r || s || v
// layout produced by eth_signTypedData and consumed by ecrecover.
package signature

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	permit "github.com/feng001-8/work"
)

// Length is the size of an r || s || v signature
const Length = 65

// Signature is a split signature with v in {27, 28}
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8
}

// Split cuts sig into r, s and the raw v byte
func Split(sig []byte) (r, s [32]byte, v uint8, err error) {
	if len(sig) != Length {
		return r, s, 0, &permit.LengthError{Expected: Length, Actual: len(sig)}
	}
	copy(r[:], sig[:32])
	copy(s[:], sig[32:64])
	return r, s, sig[64], nil
}

// NormalizeV maps a recovery id to the 27/28 convention. 0 and 1 become 27
// and 28; 27 and 28 pass through.
func NormalizeV(v int) (uint8, error) {
	switch v {
	case 0, 1:
		return uint8(v + 27), nil
	case 27, 28:
		return uint8(v), nil
	}
	return 0, &permit.InvalidRecoveryIDError{V: v}
}

// Join is the inverse of Split
func Join(r, s [32]byte, v uint8) []byte {
	sig := make([]byte, Length)
	copy(sig[:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v
	return sig
}

// FromBytes splits sig and normalizes its v
func FromBytes(sig []byte) (*Signature, error) {
	r, s, rawV, err := Split(sig)
	if err != nil {
		return nil, err
	}
	v, err := NormalizeV(int(rawV))
	if err != nil {
		return nil, err
	}
	return &Signature{R: r, S: s, V: v}, nil
}

// Parse decodes a 0x-prefixed hex signature
func Parse(hexSig string) (*Signature, error) {
	sig, err := hexutil.Decode(hexSig)
	if err != nil {
		return nil, &permit.InvalidSignatureError{Message: fmt.Sprintf("signature is not valid hex: %v", err)}
	}
	return FromBytes(sig)
}

// Bytes returns r || s || v
func (s Signature) Bytes() []byte {
	return Join(s.R, s.S, s.V)
}

// Hex returns the 0x-prefixed encoding of Bytes
func (s Signature) Hex() string {
	return hexutil.Encode(s.Bytes())
}

// RecoveryID returns v in the 0/1 convention used by crypto.Ecrecover
func (s Signature) RecoveryID() uint8 {
	if s.V >= 27 {
		return s.V - 27
	}
	return s.V
}

// MarshalJSON encodes the signature as {"r", "s", "v"} with hex r and s
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		R string `json:"r"`
		S string `json:"s"`
		V uint8  `json:"v"`
	}{
		R: hexutil.Encode(s.R[:]),
		S: hexutil.Encode(s.S[:]),
		V: s.V,
	})
}

// Recover returns the address that produced sig over digest. High-s
// signatures and r/s values outside the curve order are rejected, matching
// OpenZeppelin's ECDSA.recover.
func Recover(digest common.Hash, sig []byte) (common.Address, error) {
	parsed, err := FromBytes(sig)
	if err != nil {
		return common.Address{}, err
	}

	r := new(big.Int).SetBytes(parsed.R[:])
	s := new(big.Int).SetBytes(parsed.S[:])
	if !crypto.ValidateSignatureValues(parsed.RecoveryID(), r, s, true) {
		return common.Address{}, &permit.InvalidSignatureError{Message: "r or s out of range (high-s signatures are not accepted)"}
	}

	raw := parsed.Bytes()
	raw[64] = parsed.RecoveryID()
	pub, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return common.Address{}, &permit.InvalidSignatureError{Message: fmt.Sprintf("failed to recover public key: %v", err)}
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig over digest was produced by expected
func Verify(digest common.Hash, sig []byte, expected common.Address) (bool, error) {
	recovered, err := Recover(digest, sig)
	if err != nil {
		return false, err
	}
	return recovered == expected, nil
}
