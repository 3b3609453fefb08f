package evm

import (
	"math/big"
)

const (
	// Primary type names
	PrimaryTypeERC2612Permit       = "Permit"
	PrimaryTypePermit2TransferFrom = "PermitTransferFrom"
	PrimaryTypeWhitelistPermit     = "WhitelistPermit"

	// Contract function names
	FunctionNonces      = "nonces"
	FunctionPermit      = "permit"
	FunctionAllowance   = "allowance"
	FunctionApprove     = "approve"
	FunctionNonceBitmap = "nonceBitmap"
	FunctionPermitBuy   = "permitBuy"
	FunctionIsValidSig  = "isValidSignature"

	// EIP1271MagicValue is returned by isValidSignature for a valid signature
	EIP1271MagicValue = "0x1626ba7e"

	// Default validity period (1 hour)
	DefaultValidityPeriod = 3600 // seconds

	// Permit2 constants
	// PERMIT2Address is the canonical Uniswap Permit2 contract address.
	// Same address on all EVM chains via CREATE2 deployment.
	PERMIT2Address = "0x000000000022D473030F116dDEE9F6B43aC78BA3"

	// Permit2DomainName is the fixed EIP-712 domain name of Permit2
	Permit2DomainName = "Permit2"

	// Permit2DeadlineBuffer is the time buffer (in seconds) added when checking
	// deadline expiration to account for block propagation time.
	Permit2DeadlineBuffer = 6

	// Permit2MainnetDomainSeparator is DOMAIN_SEPARATOR() of Permit2 on chain 1
	Permit2MainnetDomainSeparator = "0x866a5aba21966af95d6c7ab78eb2b2fc913915c28be3b9aa07cc04ff903e3f28"

	// Verification failure reasons
	ErrPermitDeadlineExpired  = "permit_deadline_expired"
	ErrPermitInvalidSignature = "invalid_permit_signature"
	ErrPermitSignerMismatch   = "permit_signer_mismatch"
	ErrPermitInvalidPayload   = "invalid_permit_payload"
	ErrPermit2InvalidSpender  = "invalid_permit2_spender"
	ErrPermit2NonceUsed       = "permit2_nonce_used"
)

var (
	// Network chain IDs
	ChainIDMainnet     = big.NewInt(1)
	ChainIDSepolia     = big.NewInt(11155111)
	ChainIDBase        = big.NewInt(8453)
	ChainIDBaseSepolia = big.NewInt(84532)

	// EIP2612NoncesABI reads the next ERC-2612 nonce of an owner. The NFT
	// market exposes the same getter for whitelist nonces.
	EIP2612NoncesABI = []byte(`[
		{
			"inputs": [{"name": "owner", "type": "address"}],
			"name": "nonces",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	// ERC20PermitABI is the ERC-2612 permit entry point
	ERC20PermitABI = []byte(`[
		{
			"inputs": [
				{"name": "owner", "type": "address"},
				{"name": "spender", "type": "address"},
				{"name": "value", "type": "uint256"},
				{"name": "deadline", "type": "uint256"},
				{"name": "v", "type": "uint8"},
				{"name": "r", "type": "bytes32"},
				{"name": "s", "type": "bytes32"}
			],
			"name": "permit",
			"outputs": [],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)

	// ERC20AllowanceABI for checking Permit2 approval
	ERC20AllowanceABI = []byte(`[
		{
			"inputs": [
				{"name": "owner", "type": "address"},
				{"name": "spender", "type": "address"}
			],
			"name": "allowance",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	// ERC20ApproveABI for approving Permit2
	ERC20ApproveABI = []byte(`[
		{
			"inputs": [
				{"name": "spender", "type": "address"},
				{"name": "amount", "type": "uint256"}
			],
			"name": "approve",
			"outputs": [{"name": "", "type": "bool"}],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)

	// Permit2NonceBitmapABI reads one 256-bit word of Permit2's unordered
	// nonce bitmap
	Permit2NonceBitmapABI = []byte(`[
		{
			"inputs": [
				{"name": "owner", "type": "address"},
				{"name": "wordPos", "type": "uint256"}
			],
			"name": "nonceBitmap",
			"outputs": [{"name": "", "type": "uint256"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	// EIP1271ABI is the contract-account signature check
	EIP1271ABI = []byte(`[
		{
			"inputs": [
				{"name": "hash", "type": "bytes32"},
				{"name": "signature", "type": "bytes"}
			],
			"name": "isValidSignature",
			"outputs": [{"name": "magicValue", "type": "bytes4"}],
			"stateMutability": "view",
			"type": "function"
		}
	]`)

	// PermitBuyABI is the NFT market's whitelist purchase entry point
	PermitBuyABI = []byte(`[
		{
			"inputs": [
				{"name": "listingId", "type": "uint256"},
				{"name": "deadline", "type": "uint256"},
				{"name": "nonce", "type": "uint256"},
				{"name": "signature", "type": "bytes"}
			],
			"name": "permitBuy",
			"outputs": [],
			"stateMutability": "nonpayable",
			"type": "function"
		}
	]`)
)
