package evm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
	"github.com/feng001-8/work/pkg/logger"
	"github.com/feng001-8/work/signature"
)

// PermitClient builds, signs and self-checks permit signatures
type PermitClient struct {
	signer   SigningProvider
	reader   ChainReader
	logger   *zap.Logger
	now      func() time.Time
	validity time.Duration
}

// ClientOption configures a PermitClient
type ClientOption func(*PermitClient)

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *PermitClient) {
		c.logger = l
	}
}

// WithClock overrides the time source used for default deadlines
func WithClock(now func() time.Time) ClientOption {
	return func(c *PermitClient) {
		c.now = now
	}
}

// WithValidityPeriod sets how long a permit without an explicit deadline
// stays valid
func WithValidityPeriod(d time.Duration) ClientOption {
	return func(c *PermitClient) {
		c.validity = d
	}
}

// NewPermitClient creates a client. reader may be nil, in which case every
// request must carry its nonce and no bytecode check is made.
func NewPermitClient(signer SigningProvider, reader ChainReader, opts ...ClientOption) *PermitClient {
	c := &PermitClient{
		signer:   signer,
		reader:   reader,
		logger:   logger.L(),
		now:      time.Now,
		validity: DefaultValidityPeriod * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ERC2612PermitRequest asks the signer to permit Spender to move Value of
// the token.
type ERC2612PermitRequest struct {
	Domain   TokenDomain
	Spender  string
	Value    string
	Nonce    string // read from nonces(owner) when empty
	Deadline string // now + validity period when empty
}

// Permit2Request asks the signer for a Permit2 signature transfer
type Permit2Request struct {
	ChainID  *big.Int
	Token    string
	Spender  string
	Amount   string
	Nonce    string // random when empty
	Deadline string
}

// WhitelistRequest asks the project owner to whitelist Buyer for a listing
type WhitelistRequest struct {
	Domain    MarketDomain
	Buyer     string
	ListingID string
	Nonce     string // read from the market's nonces(buyer) when empty
	Deadline  string
}

// CreateERC2612Permit signs an ERC-2612 permit and returns the permit()
// call arguments.
func (c *PermitClient) CreateERC2612Permit(ctx context.Context, req ERC2612PermitRequest) (*SignedPermit, error) {
	owner := c.signer.Address()
	token := req.Domain.Token
	if err := requireAddress("token", token); err != nil {
		return nil, err
	}

	if err := c.requireContract(ctx, token); err != nil {
		return nil, err
	}
	nonce, err := c.nonceOrCurrent(ctx, req.Nonce, token, owner)
	if err != nil {
		return nil, err
	}
	deadline := c.deadlineOrDefault(req.Deadline)

	auth := ERC2612Authorization{
		Owner:    owner,
		Spender:  req.Spender,
		Value:    req.Value,
		Nonce:    nonce,
		Deadline: deadline,
	}
	typedData, err := NewERC2612PermitTypedData(req.Domain, auth)
	if err != nil {
		return nil, err
	}

	sig, hashes, err := c.signAndCheck(ctx, typedData, owner)
	if err != nil {
		return nil, err
	}

	return &SignedPermit{
		Owner:     NormalizeAddress(owner),
		Spender:   NormalizeAddress(req.Spender),
		Token:     NormalizeAddress(token),
		Amount:    typedData.Message["value"].(*big.Int).String(),
		Nonce:     nonce,
		Deadline:  deadline,
		V:         sig.V,
		R:         hexutil.Encode(sig.R[:]),
		S:         hexutil.Encode(sig.S[:]),
		Signature: sig.Hex(),
		Hashes:    hashes,
	}, nil
}

// CreatePermit2Transfer signs a Permit2 PermitTransferFrom. The token must
// already have approved Permit2; see Permit2AllowanceReadParams.
func (c *PermitClient) CreatePermit2Transfer(ctx context.Context, req Permit2Request) (*SignedPermit, error) {
	owner := c.signer.Address()
	if req.ChainID == nil {
		return nil, permit.NewSchemaError(eip712.DomainTypeName, "chainId is required for Permit2")
	}
	if err := c.requireContract(ctx, PERMIT2Address); err != nil {
		return nil, err
	}

	nonce := req.Nonce
	if nonce == "" {
		var err error
		if nonce, err = CreatePermit2Nonce(); err != nil {
			return nil, err
		}
	} else if err := c.requireUnusedPermit2Nonce(ctx, owner, nonce); err != nil {
		return nil, err
	}
	deadline := c.deadlineOrDefault(req.Deadline)

	auth := Permit2Authorization{
		From: owner,
		Permitted: Permit2TokenPermissions{
			Token:  req.Token,
			Amount: req.Amount,
		},
		Spender:  req.Spender,
		Nonce:    nonce,
		Deadline: deadline,
	}
	typedData, err := NewPermit2TypedData(req.ChainID, auth)
	if err != nil {
		return nil, err
	}

	sig, hashes, err := c.signAndCheck(ctx, typedData, owner)
	if err != nil {
		return nil, err
	}

	permitted := typedData.Message["permitted"].(eip712.Message)
	return &SignedPermit{
		Owner:     NormalizeAddress(owner),
		Spender:   NormalizeAddress(req.Spender),
		Token:     NormalizeAddress(req.Token),
		Amount:    permitted["amount"].(*big.Int).String(),
		Nonce:     typedData.Message["nonce"].(*big.Int).String(),
		Deadline:  typedData.Message["deadline"].(*big.Int).String(),
		V:         sig.V,
		R:         hexutil.Encode(sig.R[:]),
		S:         hexutil.Encode(sig.S[:]),
		Signature: sig.Hex(),
		Hashes:    hashes,
	}, nil
}

// CreateWhitelistPermit signs a WhitelistPermit for req.Buyer. The client's
// signer is the project owner the market trusts.
func (c *PermitClient) CreateWhitelistPermit(ctx context.Context, req WhitelistRequest) (*SignedWhitelistPermit, error) {
	market := req.Domain.Contract
	if err := requireAddress("market", market); err != nil {
		return nil, err
	}
	if err := c.requireContract(ctx, market); err != nil {
		return nil, err
	}
	nonce, err := c.nonceOrCurrent(ctx, req.Nonce, market, req.Buyer)
	if err != nil {
		return nil, err
	}
	deadline := c.deadlineOrDefault(req.Deadline)

	auth := WhitelistAuthorization{
		Buyer:     req.Buyer,
		ListingID: req.ListingID,
		Deadline:  deadline,
		Nonce:     nonce,
	}
	typedData, err := NewWhitelistTypedData(req.Domain, auth)
	if err != nil {
		return nil, err
	}

	signer := c.signer.Address()
	sig, hashes, err := c.signAndCheck(ctx, typedData, signer)
	if err != nil {
		return nil, err
	}

	return &SignedWhitelistPermit{
		Signer:    NormalizeAddress(signer),
		Buyer:     NormalizeAddress(req.Buyer),
		Market:    NormalizeAddress(market),
		ListingID: typedData.Message["listingId"].(*big.Int).String(),
		Deadline:  deadline,
		Nonce:     nonce,
		Signature: sig.Hex(),
		Hashes:    hashes,
	}, nil
}

// signAndCheck hashes typedData, asks the provider to sign it and recovers
// the signature locally before anything leaves the client.
func (c *PermitClient) signAndCheck(ctx context.Context, typedData eip712.TypedData, expected string) (*signature.Signature, *eip712.Hashes, error) {
	hashes, err := eip712.HashTypedData(typedData)
	if err != nil {
		return nil, nil, err
	}

	log := c.logger.With(
		zap.String("primaryType", typedData.PrimaryType),
		zap.String("digest", hashes.Digest.Hex()),
	)
	log.Debug("requesting signature")

	if err := ctx.Err(); err != nil {
		return nil, nil, &permit.SigningRejectedError{Reason: "context done before signing", Err: err}
	}
	raw, err := c.signer.SignTypedData(ctx, typedData)
	if err != nil {
		log.Warn("signing failed", zap.Error(err))
		if permit.ErrorCode(err) != "" {
			return nil, nil, err
		}
		reason := "signing provider failed"
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			reason = "signing cancelled"
		}
		return nil, nil, &permit.SigningRejectedError{Reason: reason, Err: err}
	}

	sig, err := signature.FromBytes(raw)
	if err != nil {
		return nil, nil, err
	}
	recovered, err := signature.Recover(hashes.Digest, sig.Bytes())
	if err != nil {
		return nil, nil, err
	}
	if recovered != common.HexToAddress(expected) {
		return nil, nil, &permit.InvalidSignatureError{
			Message: fmt.Sprintf("signature recovers to %s, expected %s", recovered.Hex(), NormalizeAddress(expected)),
		}
	}

	log.Info("permit signed", zap.String("signer", recovered.Hex()))
	return sig, hashes, nil
}

func (c *PermitClient) requireContract(ctx context.Context, address string) error {
	if c.reader == nil {
		return nil
	}
	exists, err := c.reader.ContractBytecodeExists(ctx, address)
	if err != nil {
		return &permit.ContractStateError{Address: address, Message: "failed to read bytecode", Err: err}
	}
	if !exists {
		return &permit.ContractStateError{Address: address, Message: "no contract deployed"}
	}
	return nil
}

func (c *PermitClient) nonceOrCurrent(ctx context.Context, nonce, contract, account string) (string, error) {
	if nonce != "" {
		n, err := ParseUint256("nonce", nonce)
		if err != nil {
			return "", err
		}
		return n.String(), nil
	}
	if c.reader == nil {
		return "", &permit.ContractStateError{Address: contract, Message: "nonce not given and no chain reader configured"}
	}
	current, err := c.reader.CurrentNonce(ctx, contract, account)
	if err != nil {
		return "", &permit.ContractStateError{Address: contract, Message: "failed to read nonce", Err: err}
	}
	return current.String(), nil
}

func (c *PermitClient) requireUnusedPermit2Nonce(ctx context.Context, owner, nonce string) error {
	checker, ok := c.reader.(Permit2NonceChecker)
	if !ok {
		return nil
	}
	n, err := ParseUint256("nonce", nonce)
	if err != nil {
		return err
	}
	used, err := checker.Permit2NonceUsed(ctx, owner, n)
	if err != nil {
		return &permit.ContractStateError{Address: PERMIT2Address, Message: "failed to read nonce bitmap", Err: err}
	}
	if used {
		return &permit.ContractStateError{Address: PERMIT2Address, Message: fmt.Sprintf("%s: nonce %s already used by %s", ErrPermit2NonceUsed, nonce, owner)}
	}
	return nil
}

func (c *PermitClient) deadlineOrDefault(deadline string) string {
	if deadline != "" {
		return deadline
	}
	return deadlineFrom(c.now(), c.validity)
}
