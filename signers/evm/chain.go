package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	permitevm "github.com/feng001-8/work/mechanisms/evm"
)

var (
	_ permitevm.ChainReader         = (*ChainClient)(nil)
	_ permitevm.Permit2NonceChecker = (*ChainClient)(nil)
)

// ChainClient implements permitevm.ChainReader over a JSON-RPC endpoint
type ChainClient struct {
	ethClient *ethclient.Client
}

// NewChainClient wraps an existing ethclient
func NewChainClient(ethClient *ethclient.Client) *ChainClient {
	return &ChainClient{ethClient: ethClient}
}

// DialChainClient connects to rpcURL
func DialChainClient(ctx context.Context, rpcURL string) (*ChainClient, error) {
	ethClient, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return NewChainClient(ethClient), nil
}

// Close closes the underlying RPC connection
func (c *ChainClient) Close() {
	c.ethClient.Close()
}

// ChainID returns the chain ID reported by the node
func (c *ChainClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.ethClient.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	return id, nil
}

// CurrentNonce returns nonces(account) on contract
func (c *ChainClient) CurrentNonce(ctx context.Context, contract string, account string) (*big.Int, error) {
	result, err := c.ReadContract(ctx, contract, permitevm.EIP2612NoncesABI, permitevm.FunctionNonces, common.HexToAddress(account))
	if err != nil {
		return nil, fmt.Errorf("failed to read nonce: %w", err)
	}
	nonce, ok := result.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected nonce type: %T", result)
	}
	return nonce, nil
}

// ContractBytecodeExists reports whether code is deployed at address
func (c *ChainClient) ContractBytecodeExists(ctx context.Context, address string) (bool, error) {
	code, err := c.ethClient.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return false, fmt.Errorf("failed to get code: %w", err)
	}
	return len(code) > 0, nil
}

// Permit2NonceUsed reports whether owner has already consumed nonce in
// Permit2's unordered nonce bitmap
func (c *ChainClient) Permit2NonceUsed(ctx context.Context, owner string, nonce *big.Int) (bool, error) {
	address, abiBytes, functionName, args, bitPos := permitevm.Permit2NonceBitmapReadParams(owner, nonce)
	result, err := c.ReadContract(ctx, address, abiBytes, functionName, args...)
	if err != nil {
		return false, err
	}
	word, ok := result.(*big.Int)
	if !ok {
		return false, fmt.Errorf("unexpected bitmap type: %T", result)
	}
	return word.Bit(int(bitPos)) == 1, nil
}

// Permit2Allowance returns the owner's ERC-20 allowance to Permit2 on token
func (c *ChainClient) Permit2Allowance(ctx context.Context, token, owner string) (*big.Int, error) {
	address, abiBytes, functionName, args := permitevm.Permit2AllowanceReadParams(permitevm.Permit2AllowanceParams{
		TokenAddress: token,
		OwnerAddress: owner,
	})
	result, err := c.ReadContract(ctx, address, abiBytes, functionName, args...)
	if err != nil {
		return nil, err
	}
	allowance, ok := result.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected allowance type: %T", result)
	}
	return allowance, nil
}

// ReadContract reads data from a smart contract.
func (c *ChainClient) ReadContract(
	ctx context.Context,
	contractAddress string,
	abiBytes []byte,
	functionName string,
	args ...interface{},
) (interface{}, error) {
	// Parse ABI
	contractABI, err := abi.JSON(strings.NewReader(string(abiBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	// Pack the method call
	data, err := contractABI.Pack(functionName, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack method call: %w", err)
	}

	// Create call message
	addr := common.HexToAddress(contractAddress)
	msg := ethereum.CallMsg{
		To:   &addr,
		Data: data,
	}

	// Execute call
	result, err := c.ethClient.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}

	// Unpack result
	outputs, err := contractABI.Unpack(functionName, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}

	if len(outputs) == 0 {
		return nil, nil
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return outputs, nil
}

// PackCall ABI-encodes a contract call, e.g. for the approve or permitBuy
// transactions a caller submits through its own wallet.
func PackCall(abiBytes []byte, functionName string, args ...interface{}) ([]byte, error) {
	contractABI, err := abi.JSON(strings.NewReader(string(abiBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}
	data, err := contractABI.Pack(functionName, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", functionName, err)
	}
	return data, nil
}
