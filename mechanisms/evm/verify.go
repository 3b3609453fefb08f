package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feng001-8/work/eip712"
	"github.com/feng001-8/work/signature"
)

// VerifyError reports why a permit failed offline verification. Err holds
// the underlying codec or signature error, if any.
type VerifyError struct {
	InvalidReason  string
	Signer         string
	InvalidMessage string
	Err            error
}

func (e *VerifyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.InvalidReason, e.InvalidMessage, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.InvalidReason, e.InvalidMessage)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// NewVerifyError creates a verification error
func NewVerifyError(reason, signer, message string) *VerifyError {
	return &VerifyError{InvalidReason: reason, Signer: signer, InvalidMessage: message}
}

// VerifyOption configures offline verification
type VerifyOption func(*verifyConfig)

type verifyConfig struct {
	now     time.Time
	buffer  int64
	ctx     context.Context
	checker ContractSignatureChecker
	nonces  Permit2NonceChecker
}

// VerifyAt checks deadlines against t instead of the current time
func VerifyAt(t time.Time) VerifyOption {
	return func(c *verifyConfig) {
		c.now = t
	}
}

// WithDeadlineBuffer sets the seconds of slack required before a deadline
func WithDeadlineBuffer(seconds int64) VerifyOption {
	return func(c *verifyConfig) {
		c.buffer = seconds
	}
}

// WithContractSignatureChecker falls back to an EIP-1271 check when the
// signature does not recover to the expected signer. ctx bounds the call.
func WithContractSignatureChecker(ctx context.Context, checker ContractSignatureChecker) VerifyOption {
	return func(c *verifyConfig) {
		c.ctx = ctx
		c.checker = checker
	}
}

// WithPermit2NonceChecker rejects Permit2 transfers whose nonce is already
// set in the owner's nonce bitmap. ctx bounds the call.
func WithPermit2NonceChecker(ctx context.Context, checker Permit2NonceChecker) VerifyOption {
	return func(c *verifyConfig) {
		c.ctx = ctx
		c.nonces = checker
	}
}

func newVerifyConfig(opts []VerifyOption) verifyConfig {
	cfg := verifyConfig{now: time.Now(), buffer: Permit2DeadlineBuffer, ctx: context.Background()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// VerifyERC2612Permit checks that sig is auth.Owner's signature over the
// permit and that the deadline has not passed.
func VerifyERC2612Permit(domain TokenDomain, auth ERC2612Authorization, sig string, opts ...VerifyOption) (*VerifyResult, error) {
	typedData, err := NewERC2612PermitTypedData(domain, auth)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidPayload, Signer: auth.Owner, InvalidMessage: "invalid permit", Err: err}
	}
	return verifyTypedData(typedData, auth.Deadline, sig, auth.Owner, newVerifyConfig(opts))
}

// VerifyPermit2Transfer checks that sig is auth.From's signature over the
// PermitTransferFrom message. An expectedSpender, when given, must match.
func VerifyPermit2Transfer(chainID *big.Int, auth Permit2Authorization, sig string, expectedSpender string, opts ...VerifyOption) (*VerifyResult, error) {
	if expectedSpender != "" && !strings.EqualFold(auth.Spender, expectedSpender) {
		return nil, NewVerifyError(ErrPermit2InvalidSpender, auth.From, "invalid spender")
	}
	typedData, err := NewPermit2TypedData(chainID, auth)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidPayload, Signer: auth.From, InvalidMessage: "invalid permit2 transfer", Err: err}
	}
	cfg := newVerifyConfig(opts)
	result, err := verifyTypedData(typedData, auth.Deadline, sig, auth.From, cfg)
	if err != nil || cfg.nonces == nil {
		return result, err
	}
	used, err := cfg.nonces.Permit2NonceUsed(cfg.ctx, auth.From, typedData.Message["nonce"].(*big.Int))
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermit2NonceUsed, Signer: auth.From, InvalidMessage: "failed to read nonce bitmap", Err: err}
	}
	if used {
		return nil, NewVerifyError(ErrPermit2NonceUsed, auth.From, "nonce already used")
	}
	return result, nil
}

// VerifyWhitelistPermit checks that sig over auth was produced by the
// project owner expectedSigner.
func VerifyWhitelistPermit(domain MarketDomain, auth WhitelistAuthorization, sig string, expectedSigner string, opts ...VerifyOption) (*VerifyResult, error) {
	typedData, err := NewWhitelistTypedData(domain, auth)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidPayload, Signer: expectedSigner, InvalidMessage: "invalid whitelist permit", Err: err}
	}
	return verifyTypedData(typedData, auth.Deadline, sig, expectedSigner, newVerifyConfig(opts))
}

func verifyTypedData(typedData eip712.TypedData, deadline, sig, expected string, cfg verifyConfig) (*VerifyResult, error) {
	// Parse and verify deadline not expired (with buffer for block time)
	deadlineBig, err := ParseUint256("deadline", deadline)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidPayload, Signer: expected, InvalidMessage: "invalid deadline format", Err: err}
	}
	threshold := big.NewInt(cfg.now.Unix() + cfg.buffer)
	if deadlineBig.Cmp(threshold) < 0 {
		return nil, NewVerifyError(ErrPermitDeadlineExpired, expected, "deadline expired")
	}

	hashes, err := eip712.HashTypedData(typedData)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidPayload, Signer: expected, InvalidMessage: "failed to hash typed data", Err: err}
	}

	sigBytes, err := HexToBytes(sig)
	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidSignature, Signer: expected, InvalidMessage: "invalid signature format", Err: err}
	}
	recovered, err := signature.Recover(hashes.Digest, sigBytes)
	if err == nil && recovered == common.HexToAddress(expected) {
		return &VerifyResult{Signer: recovered.Hex(), Hashes: hashes}, nil
	}

	if cfg.checker != nil {
		ctx := cfg.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		valid, checkErr := cfg.checker.IsValidContractSignature(ctx, expected, hashes.Digest, sigBytes)
		if checkErr != nil {
			return nil, &VerifyError{InvalidReason: ErrPermitInvalidSignature, Signer: expected, InvalidMessage: "contract signature check failed", Err: checkErr}
		}
		if valid {
			return &VerifyResult{Signer: NormalizeAddress(expected), Hashes: hashes, ContractSignature: true}, nil
		}
	}

	if err != nil {
		return nil, &VerifyError{InvalidReason: ErrPermitInvalidSignature, Signer: expected, InvalidMessage: "invalid signature", Err: err}
	}
	return nil, NewVerifyError(ErrPermitSignerMismatch, expected,
		fmt.Sprintf("signature recovers to %s", recovered.Hex()))
}
