// Package evm provides the permit presets built on the eip712 codec:
// ERC-2612 Permit, Permit2 PermitTransferFrom and the NFT market's
// WhitelistPermit. It also holds the client that signs them and the offline
// verifiers that check them.
package evm

import (
	"fmt"
	"math/big"
	"strings"
)

// NetworkChainIDs maps network names to chain IDs
var NetworkChainIDs = map[string]*big.Int{
	"mainnet":          ChainIDMainnet,
	"ethereum":         ChainIDMainnet,
	"sepolia":          ChainIDSepolia,
	"base":             ChainIDBase,
	"base-sepolia":     ChainIDBaseSepolia,
	"abstract":         big.NewInt(2741),
	"abstract-testnet": big.NewInt(11124),
	"avalanche-fuji":   big.NewInt(43113),
	"avalanche":        big.NewInt(43114),
	"polygon":          big.NewInt(137),
	"polygon-amoy":     big.NewInt(80002),
	"sei":              big.NewInt(1329),
	"sei-testnet":      big.NewInt(1328),
	"monad":            big.NewInt(143),
}

// knownTokens holds the ERC-2612 domains of well-known permit tokens,
// keyed by network name
var knownTokens = map[string]TokenDomain{
	"base": {
		Name:    "USD Coin",
		Version: "2",
		ChainID: ChainIDBase,
		Token:   "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	},
	"base-sepolia": {
		Name:    "USDC",
		Version: "2",
		ChainID: ChainIDBaseSepolia,
		Token:   "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
	},
	"monad": {
		Name:    "USD Coin",
		Version: "2",
		ChainID: big.NewInt(143),
		Token:   "0x754704Bc059F8C67012fEd69BC8A327a5aafb603",
	},
}

// GetEvmChainId resolves a network name, a CAIP-2 id ("eip155:8453") or a
// decimal/hex chain id to a chain ID.
func GetEvmChainId(network string) (*big.Int, error) {
	network = strings.TrimSpace(network)
	if id, ok := NetworkChainIDs[strings.ToLower(network)]; ok {
		return new(big.Int).Set(id), nil
	}
	network = strings.TrimPrefix(network, "eip155:")
	id, err := ParseUint256("chainId", network)
	if err != nil || id.Sign() == 0 {
		return nil, fmt.Errorf("unsupported network: %s", network)
	}
	return id, nil
}

// KnownTokenDomain returns the USDC permit domain of network, if known
func KnownTokenDomain(network string) (TokenDomain, bool) {
	domain, ok := knownTokens[strings.ToLower(strings.TrimSpace(network))]
	if !ok {
		return TokenDomain{}, false
	}
	domain.ChainID = new(big.Int).Set(domain.ChainID)
	return domain, true
}
