package evm

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Permit2AllowanceParams contains parameters for checking Permit2 allowance.
type Permit2AllowanceParams struct {
	TokenAddress string
	OwnerAddress string
}

// Permit2AllowanceReadParams returns contract read parameters for checking Permit2 allowance.
// Use with ChainClient.ReadContract to check if the owner has approved Permit2.
func Permit2AllowanceReadParams(params Permit2AllowanceParams) (address string, abi []byte, functionName string, args []interface{}) {
	return NormalizeAddress(params.TokenAddress),
		ERC20AllowanceABI,
		FunctionAllowance,
		[]interface{}{common.HexToAddress(params.OwnerAddress), common.HexToAddress(PERMIT2Address)}
}

// Permit2ApprovalTxData creates transaction data to approve Permit2 to spend tokens.
// The owner sends this transaction (paying gas) once before using Permit2.
// A nil amount approves MaxUint256.
func Permit2ApprovalTxData(tokenAddress string, amount *big.Int) (to string, abi []byte, functionName string, args []interface{}) {
	if amount == nil {
		amount = MaxUint256()
	}
	return NormalizeAddress(tokenAddress),
		ERC20ApproveABI,
		FunctionApprove,
		[]interface{}{common.HexToAddress(PERMIT2Address), amount}
}

// Permit2NonceBitmapReadParams returns the nonceBitmap(owner, wordPos) read
// for nonce and the bit to test in the returned word.
func Permit2NonceBitmapReadParams(owner string, nonce *big.Int) (address string, abi []byte, functionName string, args []interface{}, bitPos uint) {
	wordPos, bitPos := Permit2NoncePosition(nonce)
	return PERMIT2Address,
		Permit2NonceBitmapABI,
		FunctionNonceBitmap,
		[]interface{}{common.HexToAddress(owner), wordPos},
		bitPos
}
