package evm

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	permitevm "github.com/feng001-8/work/mechanisms/evm"
)

var _ permitevm.ContractSignatureChecker = (*ChainClient)(nil)

// IsValidContractSignature calls EIP-1271 isValidSignature(digest, sig) on
// account via eth_call.
//
// Returns false (not an error) if account has no code or returns anything
// but the magic value. Returns false + error if the call itself fails.
func (c *ChainClient) IsValidContractSignature(
	ctx context.Context,
	account string,
	digest common.Hash,
	sig []byte,
) (bool, error) {
	exists, err := c.ContractBytecodeExists(ctx, account)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	result, err := c.ReadContract(
		ctx,
		account,
		permitevm.EIP1271ABI,
		permitevm.FunctionIsValidSig,
		[32]byte(digest),
		sig,
	)
	if err != nil {
		return false, err
	}
	magic, ok := result.([4]byte)
	if !ok {
		return false, nil
	}
	return hexutil.Encode(magic[:]) == permitevm.EIP1271MagicValue, nil
}
