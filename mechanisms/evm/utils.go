package evm

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	permit "github.com/feng001-8/work"
)

// NormalizeAddress returns the EIP-55 checksummed form of address
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

// IsValidAddress reports whether address is a 0x-prefixed 20-byte hex string
func IsValidAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

// HexToBytes decodes a 0x-prefixed hex string. "0x" and "" decode to nil.
func HexToBytes(s string) ([]byte, error) {
	if s == "" || s == "0x" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string %q: %w", s, err)
	}
	return b, nil
}

// BytesToHex encodes b as a 0x-prefixed hex string
func BytesToHex(b []byte) string {
	return hexutil.Encode(b)
}

// MaxUint256 returns 2^256 - 1, the conventional unlimited approval
func MaxUint256() *big.Int {
	return new(uint256.Int).SetAllOne().ToBig()
}

// ParseUint256 parses a decimal (or 0x hex) string that must fit in uint256
func ParseUint256(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, permit.NewTypeMismatchError(field, "uint256", s, "empty value")
	}
	if strings.HasPrefix(s, "-") {
		return nil, &permit.RangeError{Field: field, Type: "uint256", Value: s}
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, permit.NewTypeMismatchError(field, "uint256", s, fmt.Sprintf("%q is not an integer", s))
		}
		if _, overflow := uint256.FromBig(n); overflow {
			return nil, &permit.RangeError{Field: field, Type: "uint256", Value: s}
		}
		return n, nil
	}

	n, err := uint256.FromDecimal(s)
	if err != nil {
		if errors.Is(err, uint256.ErrBig256Range) {
			return nil, &permit.RangeError{Field: field, Type: "uint256", Value: s}
		}
		return nil, permit.NewTypeMismatchError(field, "uint256", s, fmt.Sprintf("%q is not an integer", s))
	}
	return n.ToBig(), nil
}

// CreatePermit2Nonce returns a random 256-bit Permit2 nonce as a decimal
// string. Permit2 nonces are unordered, so random values do not collide in
// practice.
func CreatePermit2Nonce() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate permit2 nonce: %w", err)
	}
	return new(uint256.Int).SetBytes32(buf[:]).Dec(), nil
}

// Permit2NoncePosition splits a Permit2 nonce into the nonceBitmap word
// index and the bit within that word.
func Permit2NoncePosition(nonce *big.Int) (wordPos *big.Int, bitPos uint) {
	wordPos = new(big.Int).Rsh(nonce, 8)
	bitPos = uint(new(big.Int).And(nonce, big.NewInt(0xff)).Uint64())
	return wordPos, bitPos
}

// DeadlineFromNow returns now+d as a Unix timestamp decimal string
func DeadlineFromNow(d time.Duration) string {
	return deadlineFrom(time.Now(), d)
}

func deadlineFrom(now time.Time, d time.Duration) string {
	return strconv.FormatInt(now.Add(d).Unix(), 10)
}
