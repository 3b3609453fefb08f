package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feng001-8/work/eip712"
)

// TokenDomain identifies an ERC-2612 token's signing domain
type TokenDomain struct {
	Name    string   `json:"name"`    // token name() as used in its DOMAIN_SEPARATOR
	Version string   `json:"version"` // usually "1"
	ChainID *big.Int `json:"chainId"`
	Token   string   `json:"token"` // token contract address (hex)
}

// ERC2612Authorization represents the ERC-2612 Permit message
type ERC2612Authorization struct {
	Owner    string `json:"owner"`    // Ethereum address (hex)
	Spender  string `json:"spender"`  // Ethereum address (hex)
	Value    string `json:"value"`    // Amount in wei as decimal string
	Nonce    string `json:"nonce"`    // Token nonce of owner as decimal string
	Deadline string `json:"deadline"` // Unix timestamp as decimal string
}

// Permit2TokenPermissions represents the permitted token and amount for Permit2.
type Permit2TokenPermissions struct {
	Token  string `json:"token"`  // Token contract address (hex)
	Amount string `json:"amount"` // Amount in smallest unit as decimal string
}

// Permit2Authorization represents the Permit2 PermitTransferFrom message.
// From is the signer; it is not part of the signed struct.
type Permit2Authorization struct {
	From      string                  `json:"from"`
	Permitted Permit2TokenPermissions `json:"permitted"`
	Spender   string                  `json:"spender"`
	Nonce     string                  `json:"nonce"`    // unordered uint256 nonce as decimal string
	Deadline  string                  `json:"deadline"` // Unix timestamp as decimal string
}

// MarketDomain identifies the NFT market contract's signing domain
type MarketDomain struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	ChainID  *big.Int `json:"chainId"`
	Contract string   `json:"contract"`
}

// WhitelistAuthorization represents the WhitelistPermit message the project
// owner signs for a buyer.
type WhitelistAuthorization struct {
	Buyer     string `json:"buyer"`
	ListingID string `json:"listingId"`
	Deadline  string `json:"deadline"`
	Nonce     string `json:"nonce"`
}

// SigningProvider abstracts the wallet or key holding the private key
type SigningProvider interface {
	// Address returns the signer's Ethereum address
	Address() string

	// SignTypedData signs EIP-712 typed data and returns the 65-byte signature
	SignTypedData(ctx context.Context, typedData eip712.TypedData) ([]byte, error)
}

// ChainReader abstracts the chain state a permit needs before signing
type ChainReader interface {
	// CurrentNonce returns nonces(account) on contract
	CurrentNonce(ctx context.Context, contract string, account string) (*big.Int, error)

	// ContractBytecodeExists reports whether code is deployed at address
	ContractBytecodeExists(ctx context.Context, address string) (bool, error)
}

// Permit2NonceChecker is implemented by readers that can inspect Permit2's
// nonce bitmap. PermitClient uses it when the reader supports it.
type Permit2NonceChecker interface {
	Permit2NonceUsed(ctx context.Context, owner string, nonce *big.Int) (bool, error)
}

// ContractSignatureChecker validates signatures of contract accounts
// (EIP-1271), such as multisig wallets holding tokens.
type ContractSignatureChecker interface {
	IsValidContractSignature(ctx context.Context, account string, digest common.Hash, sig []byte) (bool, error)
}

// SignedPermit is the call-argument tuple for a permit-style contract call
type SignedPermit struct {
	Owner     string         `json:"owner"`
	Spender   string         `json:"spender"`
	Token     string         `json:"token"`
	Amount    string         `json:"amount"`
	Nonce     string         `json:"nonce"`
	Deadline  string         `json:"deadline"`
	V         uint8          `json:"v"`
	R         string         `json:"r"`
	S         string         `json:"s"`
	Signature string         `json:"signature"`
	Hashes    *eip712.Hashes `json:"hashes"`
}

// PermitArgs returns the arguments of ERC-2612 permit(owner, spender, value,
// deadline, v, r, s) in the Go types accounts/abi packs.
func (p *SignedPermit) PermitArgs() ([]interface{}, error) {
	value, err := ParseUint256("amount", p.Amount)
	if err != nil {
		return nil, err
	}
	deadline, err := ParseUint256("deadline", p.Deadline)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		common.HexToAddress(p.Owner),
		common.HexToAddress(p.Spender),
		value,
		deadline,
		p.V,
		common.HexToHash(p.R),
		common.HexToHash(p.S),
	}, nil
}

// SignedWhitelistPermit is a project owner's whitelist approval for a buyer
type SignedWhitelistPermit struct {
	Signer    string         `json:"signer"`
	Buyer     string         `json:"buyer"`
	Market    string         `json:"market"`
	ListingID string         `json:"listingId"`
	Deadline  string         `json:"deadline"`
	Nonce     string         `json:"nonce"`
	Signature string         `json:"signature"`
	Hashes    *eip712.Hashes `json:"hashes"`
}

// PermitBuyArgs returns the arguments of permitBuy(listingId, deadline,
// nonce, signature), which the buyer submits.
func (p *SignedWhitelistPermit) PermitBuyArgs() ([]interface{}, error) {
	listingID, err := ParseUint256("listingId", p.ListingID)
	if err != nil {
		return nil, err
	}
	deadline, err := ParseUint256("deadline", p.Deadline)
	if err != nil {
		return nil, err
	}
	nonce, err := ParseUint256("nonce", p.Nonce)
	if err != nil {
		return nil, err
	}
	sig, err := HexToBytes(p.Signature)
	if err != nil {
		return nil, err
	}
	return []interface{}{listingID, deadline, nonce, sig}, nil
}

// VerifyResult is the outcome of a successful offline verification
type VerifyResult struct {
	Signer string         `json:"signer"`
	Hashes *eip712.Hashes `json:"hashes"`
	// ContractSignature is set when the signer is a contract account that
	// accepted the signature through EIP-1271
	ContractSignature bool `json:"contractSignature,omitempty"`
}
