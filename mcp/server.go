package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/pkg/inspect"
	"github.com/feng001-8/work/pkg/logger"
)

// ServerName is the implementation name reported to MCP clients
const ServerName = "permitd"

// Tool names
const (
	ToolEIP712Hash     = "eip712_hash"
	ToolEIP712Recover  = "eip712_recover"
	ToolEIP712Verify   = "eip712_verify"
	ToolSignatureSplit = "signature_split"
)

// ErrCodeInvalidArguments is returned when tool arguments do not decode
const ErrCodeInvalidArguments = "invalid_arguments"

// ToolHandler handles decoded tool arguments and returns a JSON-encodable result
type ToolHandler func(ctx context.Context, args json.RawMessage) (interface{}, error)

type hashArgs struct {
	TypedData json.RawMessage `json:"typedData"`
}

type recoverArgs struct {
	TypedData json.RawMessage `json:"typedData"`
	Signature string          `json:"signature"`
}

type verifyArgs struct {
	TypedData json.RawMessage `json:"typedData"`
	Signature string          `json:"signature"`
	Signer    string          `json:"signer"`
}

type splitArgs struct {
	Signature string `json:"signature"`
}

var (
	hashSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"typedData": {"description": "eth_signTypedData_v4 payload, as an object or a JSON string"}
		},
		"required": ["typedData"]
	}`)
	recoverSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"typedData": {"description": "eth_signTypedData_v4 payload, as an object or a JSON string"},
			"signature": {"type": "string", "description": "0x-prefixed 65-byte r||s||v signature"}
		},
		"required": ["typedData", "signature"]
	}`)
	verifySchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"typedData": {"description": "eth_signTypedData_v4 payload, as an object or a JSON string"},
			"signature": {"type": "string", "description": "0x-prefixed 65-byte r||s||v signature"},
			"signer": {"type": "string", "description": "expected signer address"}
		},
		"required": ["typedData", "signature", "signer"]
	}`)
	splitSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"signature": {"type": "string", "description": "0x-prefixed 65-byte r||s||v signature"}
		},
		"required": ["signature"]
	}`)
)

// NewServer creates an MCP server with the codec tools registered
func NewServer(version string) *mcpsdk.Server {
	server := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolEIP712Hash,
		Description: "Compute the EIP-712 encoded type, type hash, domain separator, struct hash and signing digest of typed data.",
		InputSchema: hashSchema,
	}, wrapHandler(ToolEIP712Hash, handleHash))

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolEIP712Recover,
		Description: "Recover the address that signed EIP-712 typed data.",
		InputSchema: recoverSchema,
	}, wrapHandler(ToolEIP712Recover, handleRecover))

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolEIP712Verify,
		Description: "Check whether a signature over EIP-712 typed data was produced by the given signer.",
		InputSchema: verifySchema,
	}, wrapHandler(ToolEIP712Verify, handleVerify))

	server.AddTool(&mcpsdk.Tool{
		Name:        ToolSignatureSplit,
		Description: "Split a 65-byte ECDSA signature into r, s and v (v normalized to 27 or 28).",
		InputSchema: splitSchema,
	}, wrapHandler(ToolSignatureSplit, handleSplit))

	return server
}

func handleHash(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args hashArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return inspect.Hash(inspect.RawJSON(args.TypedData))
}

func handleRecover(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args recoverArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return inspect.Recover(inspect.RawJSON(args.TypedData), args.Signature)
}

func handleVerify(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args verifyArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return inspect.Verify(inspect.RawJSON(args.TypedData), args.Signature, args.Signer)
}

func handleSplit(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var args splitArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return inspect.Split(args.Signature)
}

// argumentsError reports undecodable tool arguments
type argumentsError struct {
	err error
}

func (e *argumentsError) Error() string {
	return fmt.Sprintf("failed to decode arguments: %v", e.err)
}

func (e *argumentsError) Unwrap() error {
	return e.err
}

func decodeArgs(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &argumentsError{err: err}
	}
	return nil
}

// wrapHandler adapts a ToolHandler to the SDK handler signature. Results are
// returned as JSON text content; errors become IsError results.
func wrapHandler(name string, handler ToolHandler) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		log := logger.WithContext(ctx).With(zap.String("tool", name))

		var raw json.RawMessage
		if req.Params != nil {
			raw = req.Params.Arguments
		}
		result, err := handler(ctx, raw)
		if err != nil {
			log.Warn("tool call failed", zap.Error(err))
			return errorResult(err), nil
		}

		text, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s result: %w", name, err)
		}
		log.Debug("tool call succeeded")
		return &mcpsdk.CallToolResult{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(text)}},
		}, nil
	}
}

func errorResult(err error) *mcpsdk.CallToolResult {
	code := permit.ErrorCode(err)
	if code == "" {
		code = ErrCodeInvalidArguments
	}
	text, _ := json.Marshal(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": err.Error(),
		},
	})
	return &mcpsdk.CallToolResult{
		IsError: true,
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(text)}},
	}
}
