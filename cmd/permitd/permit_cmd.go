package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feng001-8/work/mechanisms/evm"
	"github.com/feng001-8/work/pkg/logger"
	signers "github.com/feng001-8/work/signers/evm"
)

// DefaultKeyEnv holds the signing key for the permit commands
const DefaultKeyEnv = "PERMITD_PRIVATE_KEY"

type permitFlags struct {
	keyEnv   string
	chain    string
	nonce    string
	deadline string
	validity time.Duration
}

// permitSession bundles what every permit subcommand needs
type permitSession struct {
	client  *evm.PermitClient
	chain   *signers.ChainClient
	chainID *big.Int
	log     *zap.Logger
}

func (s *permitSession) Close() {
	if s.chain != nil {
		s.chain.Close()
	}
	_ = logger.Sync()
}

func permitCmd() *cobra.Command {
	flags := &permitFlags{}
	cmd := &cobra.Command{
		Use:   "permit",
		Short: "Sign ERC-2612, Permit2 or whitelist permits",
	}
	cmd.PersistentFlags().StringVar(&flags.keyEnv, "key-env", DefaultKeyEnv, "environment variable holding the hex private key")
	cmd.PersistentFlags().StringVar(&flags.chain, "chain", "", "chain name or id (defaults to PERMITD_CHAIN_ID)")
	cmd.PersistentFlags().StringVar(&flags.nonce, "nonce", "", "nonce (read from chain when empty)")
	cmd.PersistentFlags().StringVar(&flags.deadline, "deadline", "", "unix deadline (now + validity when empty)")
	cmd.PersistentFlags().DurationVar(&flags.validity, "validity", evm.DefaultValidityPeriod*time.Second, "validity period for the default deadline")

	cmd.AddCommand(erc2612Cmd(flags), permit2Cmd(flags), whitelistCmd(flags))
	return cmd
}

func newPermitSession(ctx context.Context, flags *permitFlags) (*permitSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	signer, err := signers.NewClientSignerFromPrivateKey(os.Getenv(flags.keyEnv))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flags.keyEnv, err)
	}

	chainID := cfg.ChainIDInt()
	if flags.chain != "" {
		if chainID, err = evm.GetEvmChainId(flags.chain); err != nil {
			return nil, err
		}
	}

	session := &permitSession{chainID: chainID, log: logger.L()}
	var reader evm.ChainReader
	if cfg.RPCURL != "" {
		if session.chain, err = signers.DialChainClient(ctx, cfg.RPCURL); err != nil {
			return nil, err
		}
		reader = session.chain
	}
	session.client = evm.NewPermitClient(signer, reader,
		evm.WithLogger(session.log),
		evm.WithValidityPeriod(flags.validity),
	)
	return session, nil
}

func erc2612Cmd(flags *permitFlags) *cobra.Command {
	var token, name, version, spender, value string
	var usdc bool
	cmd := &cobra.Command{
		Use:   "erc2612",
		Short: "Sign an ERC-2612 permit for a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPermitSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer session.Close()

			domain := evm.TokenDomain{Name: name, Version: version, ChainID: session.chainID, Token: token}
			if usdc {
				known, ok := evm.KnownTokenDomain(flags.chain)
				if !ok {
					return fmt.Errorf("no known USDC domain for chain %q", flags.chain)
				}
				domain = known
			} else if token == "" || name == "" {
				return fmt.Errorf("--token and --name are required unless --usdc is set")
			}

			signed, err := session.client.CreateERC2612Permit(cmd.Context(), evm.ERC2612PermitRequest{
				Domain:   domain,
				Spender:  spender,
				Value:    value,
				Nonce:    flags.nonce,
				Deadline: flags.deadline,
			})
			if err != nil {
				return err
			}

			permitArgs, err := signed.PermitArgs()
			if err != nil {
				return err
			}
			calldata, err := signers.PackCall(evm.ERC20PermitABI, evm.FunctionPermit, permitArgs...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				*evm.SignedPermit
				PermitCalldata string `json:"permitCalldata"`
			}{signed, evm.BytesToHex(calldata)})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token contract address")
	cmd.Flags().StringVar(&name, "name", "", "token EIP-712 domain name")
	cmd.Flags().StringVar(&version, "domain-version", "1", "token EIP-712 domain version")
	cmd.Flags().StringVar(&spender, "spender", "", "spender address")
	cmd.Flags().StringVar(&value, "value", "", "allowance in base units")
	cmd.Flags().BoolVar(&usdc, "usdc", false, "use the known USDC domain of --chain")
	for _, f := range []string{"spender", "value"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func permit2Cmd(flags *permitFlags) *cobra.Command {
	var token, spender, amount string
	cmd := &cobra.Command{
		Use:   "permit2",
		Short: "Sign a Permit2 PermitTransferFrom",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPermitSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer session.Close()

			signed, err := session.client.CreatePermit2Transfer(cmd.Context(), evm.Permit2Request{
				ChainID:  session.chainID,
				Token:    token,
				Spender:  spender,
				Amount:   amount,
				Nonce:    flags.nonce,
				Deadline: flags.deadline,
			})
			if err != nil {
				return err
			}
			if session.chain != nil {
				warnMissingPermit2Approval(cmd.Context(), session, signed)
			}
			return printJSON(cmd.OutOrStdout(), signed)
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token contract address")
	cmd.Flags().StringVar(&spender, "spender", "", "spender address")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in base units")
	for _, f := range []string{"token", "spender", "amount"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// warnMissingPermit2Approval logs the approve() calldata when the owner's
// allowance to Permit2 is below the signed amount.
func warnMissingPermit2Approval(ctx context.Context, session *permitSession, signed *evm.SignedPermit) {
	allowance, err := session.chain.Permit2Allowance(ctx, signed.Token, signed.Owner)
	if err != nil {
		session.log.Warn("could not read Permit2 allowance", zap.Error(err))
		return
	}
	amount, _ := new(big.Int).SetString(signed.Amount, 10)
	if amount == nil || allowance.Cmp(amount) >= 0 {
		return
	}
	to, abiBytes, fn, args := evm.Permit2ApprovalTxData(signed.Token, nil)
	data, err := signers.PackCall(abiBytes, fn, args...)
	if err != nil {
		session.log.Warn("could not encode approval", zap.Error(err))
		return
	}
	session.log.Warn("token has not approved Permit2; send this transaction first",
		zap.String("allowance", allowance.String()),
		zap.String("to", to),
		zap.String("data", evm.BytesToHex(data)),
	)
}

func whitelistCmd(flags *permitFlags) *cobra.Command {
	var market, name, version, buyer, listing string
	cmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Sign an NFT market WhitelistPermit as the project owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newPermitSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer session.Close()

			signed, err := session.client.CreateWhitelistPermit(cmd.Context(), evm.WhitelistRequest{
				Domain:    evm.MarketDomain{Name: name, Version: version, ChainID: session.chainID, Contract: market},
				Buyer:     buyer,
				ListingID: listing,
				Nonce:     flags.nonce,
				Deadline:  flags.deadline,
			})
			if err != nil {
				return err
			}

			buyArgs, err := signed.PermitBuyArgs()
			if err != nil {
				return err
			}
			calldata, err := signers.PackCall(evm.PermitBuyABI, evm.FunctionPermitBuy, buyArgs...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				*evm.SignedWhitelistPermit
				PermitBuyCalldata string `json:"permitBuyCalldata"`
			}{signed, evm.BytesToHex(calldata)})
		},
	}
	cmd.Flags().StringVar(&market, "market", "", "NFT market contract address")
	cmd.Flags().StringVar(&name, "name", "", "market EIP-712 domain name")
	cmd.Flags().StringVar(&version, "domain-version", "1", "market EIP-712 domain version")
	cmd.Flags().StringVar(&buyer, "buyer", "", "whitelisted buyer address")
	cmd.Flags().StringVar(&listing, "listing", "", "listing id")
	for _, f := range []string{"market", "name", "buyer", "listing"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}
