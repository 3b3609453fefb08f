package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
)

var (
	// ERC2612PermitTypes is Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)
	ERC2612PermitTypes = eip712.Types{
		PrimaryTypeERC2612Permit: {
			{Name: "owner", Type: "address"},
			{Name: "spender", Type: "address"},
			{Name: "value", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
		},
	}

	// Permit2TransferFromTypes defines the EIP-712 types for Permit2
	// signature transfers. Field order MUST match the on-chain Permit2
	// contract.
	Permit2TransferFromTypes = eip712.Types{
		PrimaryTypePermit2TransferFrom: {
			{Name: "permitted", Type: "TokenPermissions"},
			{Name: "spender", Type: "address"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
		},
		"TokenPermissions": {
			{Name: "token", Type: "address"},
			{Name: "amount", Type: "uint256"},
		},
	}

	// WhitelistPermitTypes is WhitelistPermit(address buyer,uint256 listingId,uint256 deadline,uint256 nonce)
	WhitelistPermitTypes = eip712.Types{
		PrimaryTypeWhitelistPermit: {
			{Name: "buyer", Type: "address"},
			{Name: "listingId", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
		},
	}

	// Permit2DomainFields is the Permit2 domain type.
	// Permit2 uses name + chainId + verifyingContract (no version field).
	Permit2DomainFields = []eip712.Field{
		{Name: "name", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}
)

// Permit2Domain returns the Permit2 signing domain on chainID
func Permit2Domain(chainID *big.Int) eip712.Domain {
	return eip712.Domain{
		Name:              Permit2DomainName,
		ChainID:           chainID,
		VerifyingContract: common.HexToAddress(PERMIT2Address),
		Fields:            Permit2DomainFields,
	}
}

// NewERC2612PermitTypedData builds the typed data a token owner signs to
// grant spender an allowance through permit().
func NewERC2612PermitTypedData(domain TokenDomain, auth ERC2612Authorization) (eip712.TypedData, error) {
	if err := requireAddress("token", domain.Token); err != nil {
		return eip712.TypedData{}, err
	}
	value, err := ParseUint256("value", auth.Value)
	if err != nil {
		return eip712.TypedData{}, err
	}
	nonce, err := ParseUint256("nonce", auth.Nonce)
	if err != nil {
		return eip712.TypedData{}, err
	}
	deadline, err := ParseUint256("deadline", auth.Deadline)
	if err != nil {
		return eip712.TypedData{}, err
	}

	return eip712.TypedData{
		Types:       ERC2612PermitTypes,
		PrimaryType: PrimaryTypeERC2612Permit,
		Domain: eip712.Domain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainID:           domain.ChainID,
			VerifyingContract: common.HexToAddress(domain.Token),
		},
		Message: eip712.Message{
			"owner":    auth.Owner,
			"spender":  auth.Spender,
			"value":    value,
			"nonce":    nonce,
			"deadline": deadline,
		},
	}, nil
}

// NewPermit2TypedData builds the PermitTransferFrom typed data for a
// signature transfer through the Permit2 singleton.
func NewPermit2TypedData(chainID *big.Int, auth Permit2Authorization) (eip712.TypedData, error) {
	amount, err := ParseUint256("permitted.amount", auth.Permitted.Amount)
	if err != nil {
		return eip712.TypedData{}, err
	}
	nonce, err := ParseUint256("nonce", auth.Nonce)
	if err != nil {
		return eip712.TypedData{}, err
	}
	deadline, err := ParseUint256("deadline", auth.Deadline)
	if err != nil {
		return eip712.TypedData{}, err
	}

	return eip712.TypedData{
		Types:       Permit2TransferFromTypes,
		PrimaryType: PrimaryTypePermit2TransferFrom,
		Domain:      Permit2Domain(chainID),
		Message: eip712.Message{
			"permitted": eip712.Message{
				"token":  auth.Permitted.Token,
				"amount": amount,
			},
			"spender":  auth.Spender,
			"nonce":    nonce,
			"deadline": deadline,
		},
	}, nil
}

// NewWhitelistTypedData builds the WhitelistPermit typed data the project
// owner signs for a buyer.
func NewWhitelistTypedData(domain MarketDomain, auth WhitelistAuthorization) (eip712.TypedData, error) {
	if err := requireAddress("market", domain.Contract); err != nil {
		return eip712.TypedData{}, err
	}
	listingID, err := ParseUint256("listingId", auth.ListingID)
	if err != nil {
		return eip712.TypedData{}, err
	}
	deadline, err := ParseUint256("deadline", auth.Deadline)
	if err != nil {
		return eip712.TypedData{}, err
	}
	nonce, err := ParseUint256("nonce", auth.Nonce)
	if err != nil {
		return eip712.TypedData{}, err
	}

	return eip712.TypedData{
		Types:       WhitelistPermitTypes,
		PrimaryType: PrimaryTypeWhitelistPermit,
		Domain: eip712.Domain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainID:           domain.ChainID,
			VerifyingContract: common.HexToAddress(domain.Contract),
		},
		Message: eip712.Message{
			"buyer":     auth.Buyer,
			"listingId": listingID,
			"deadline":  deadline,
			"nonce":     nonce,
		},
	}, nil
}

// HashERC2612Permit hashes a Permit message for a token's permit().
//
// This is a convenience function that wraps eip712.HashTypedData with the
// ERC-2612 types and domain.
//
// Returns:
//
//	32-byte hash suitable for signing or verification
//	error if hashing fails
func HashERC2612Permit(domain TokenDomain, auth ERC2612Authorization) ([]byte, error) {
	typedData, err := NewERC2612PermitTypedData(domain, auth)
	if err != nil {
		return nil, err
	}
	return digestOf(typedData)
}

// HashPermit2Transfer hashes a PermitTransferFrom message for Permit2
func HashPermit2Transfer(chainID *big.Int, auth Permit2Authorization) ([]byte, error) {
	typedData, err := NewPermit2TypedData(chainID, auth)
	if err != nil {
		return nil, err
	}
	return digestOf(typedData)
}

// HashWhitelistPermit hashes a WhitelistPermit message for the NFT market
func HashWhitelistPermit(domain MarketDomain, auth WhitelistAuthorization) ([]byte, error) {
	typedData, err := NewWhitelistTypedData(domain, auth)
	if err != nil {
		return nil, err
	}
	return digestOf(typedData)
}

func digestOf(typedData eip712.TypedData) ([]byte, error) {
	hashes, err := eip712.HashTypedData(typedData)
	if err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", typedData.PrimaryType, err)
	}
	return hashes.Digest.Bytes(), nil
}

func requireAddress(field, address string) error {
	if !IsValidAddress(address) {
		return permit.NewTypeMismatchError(field, "address", address,
			fmt.Sprintf("%q is not a 0x-prefixed 20-byte hex address", address))
	}
	return nil
}
