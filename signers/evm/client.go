package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
	permitevm "github.com/feng001-8/work/mechanisms/evm"
)

var _ permitevm.SigningProvider = (*ClientSigner)(nil)

// ClientSigner implements permitevm.SigningProvider using an ECDSA private key.
type ClientSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewClientSignerFromPrivateKey creates a client signer from a hex-encoded private key.
//
// Args:
//
//	privateKeyHex: Hex-encoded private key (with or without "0x" prefix)
//
// Returns:
//
//	SigningProvider implementation ready for use with permitevm.NewPermitClient()
//	Error if private key is invalid
//
// Example:
//
//	signer, err := evm.NewClientSignerFromPrivateKey("0x1234...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := permitevm.NewPermitClient(signer, chain)
func NewClientSignerFromPrivateKey(privateKeyHex string) (*ClientSigner, error) {
	// Strip 0x prefix if present
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	// Parse hex string to ECDSA private key
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &ClientSigner{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the Ethereum address of the signer.
func (s *ClientSigner) Address() string {
	return s.address.Hex()
}

// SignTypedData signs EIP-712 typed data.
//
// The digest is computed by go-ethereum's apitypes encoder, independently of
// the eip712 package, so a caller that recovers the signature against its
// own digest cross-checks both encoders.
//
// Returns:
//
//	65-byte signature (r, s, v) with v in {27, 28}
//	SigningRejectedError if ctx is done before signing
func (s *ClientSigner) SignTypedData(ctx context.Context, typedData eip712.TypedData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &permit.SigningRejectedError{Reason: "context done before signing", Err: err}
	}

	apiTypedData, err := typedData.ToAPITypes()
	if err != nil {
		return nil, err
	}

	digest, _, err := apitypes.TypedDataAndHash(apiTypedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}

	// Sign the digest with ECDSA
	signature, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	// Adjust v value for Ethereum (recovery ID 0/1 → 27/28)
	signature[64] += 27

	return signature, nil
}
