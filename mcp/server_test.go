package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/feng001-8/work/eip712"
	"github.com/feng001-8/work/mcp"
	signers "github.com/feng001-8/work/signers/evm"
)

const permitJSON = `{
	"types": {
		"Permit": [
			{"name": "owner", "type": "address"},
			{"name": "spender", "type": "address"},
			{"name": "value", "type": "uint256"},
			{"name": "nonce", "type": "uint256"},
			{"name": "deadline", "type": "uint256"}
		]
	},
	"primaryType": "Permit",
	"domain": {
		"name": "MyToken",
		"version": "1",
		"chainId": 1,
		"verifyingContract": "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	},
	"message": {
		"owner": "0x1111111111111111111111111111111111111111",
		"spender": "0x2222222222222222222222222222222222222222",
		"value": "1000000000000000000",
		"nonce": 0,
		"deadline": 2000000000
	}
}`

const permitDigest = "0x242ab6b8e78105c56fcade516779ebf671ecbeb8ebfbbee606fbb6076ba785ba"

func connect(t *testing.T) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := mcp.NewServer("test").Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect server: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("Failed to connect client: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]interface{}) (map[string]interface{}, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s) failed: %v", name, err)
	}
	if len(result.Content) != 1 {
		t.Fatalf("Expected one content item, got %d", len(result.Content))
	}
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatalf("Tool returned non-JSON text %q: %v", text.Text, err)
	}
	return decoded, result.IsError
}

func signPermit(t *testing.T) (*signers.ClientSigner, string) {
	t.Helper()
	signer, err := signers.NewClientSignerFromPrivateKey("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")
	if err != nil {
		t.Fatalf("Failed to create signer: %v", err)
	}
	td, err := eip712.ParseTypedDataJSON([]byte(permitJSON))
	if err != nil {
		t.Fatalf("Failed to parse typed data: %v", err)
	}
	sig, err := signer.SignTypedData(context.Background(), *td)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	return signer, hexutil.Encode(sig)
}

func TestListTools(t *testing.T) {
	session := connect(t)
	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}

	names := map[string]bool{}
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{mcp.ToolEIP712Hash, mcp.ToolEIP712Recover, mcp.ToolEIP712Verify, mcp.ToolSignatureSplit} {
		if !names[want] {
			t.Errorf("Tool %s not registered", want)
		}
	}
}

func TestHashTool(t *testing.T) {
	session := connect(t)

	t.Run("Typed data as an object", func(t *testing.T) {
		var typedData map[string]interface{}
		if err := json.Unmarshal([]byte(permitJSON), &typedData); err != nil {
			t.Fatal(err)
		}
		result, isError := callTool(t, session, mcp.ToolEIP712Hash, map[string]interface{}{"typedData": typedData})
		if isError {
			t.Fatalf("Unexpected error result: %v", result)
		}
		if result["digest"] != permitDigest {
			t.Errorf("Expected digest %s, got %v", permitDigest, result["digest"])
		}
	})

	t.Run("Typed data as a JSON string", func(t *testing.T) {
		result, isError := callTool(t, session, mcp.ToolEIP712Hash, map[string]interface{}{"typedData": permitJSON})
		if isError {
			t.Fatalf("Unexpected error result: %v", result)
		}
		if result["digest"] != permitDigest {
			t.Errorf("Expected digest %s, got %v", permitDigest, result["digest"])
		}
	})

	t.Run("Codec errors are error results", func(t *testing.T) {
		result, isError := callTool(t, session, mcp.ToolEIP712Hash, map[string]interface{}{"typedData": `{"types": {}, "primaryType": "Permit", "domain": {}, "message": {}}`})
		if !isError {
			t.Fatal("Expected an error result")
		}
		errObj, _ := result["error"].(map[string]interface{})
		if errObj["code"] != "schema_error" {
			t.Errorf("Expected schema_error, got %v", result)
		}
	})
}

func TestRecoverAndVerifyTools(t *testing.T) {
	session := connect(t)
	signer, sig := signPermit(t)

	t.Run("Recover", func(t *testing.T) {
		result, isError := callTool(t, session, mcp.ToolEIP712Recover, map[string]interface{}{
			"typedData": permitJSON,
			"signature": sig,
		})
		if isError {
			t.Fatalf("Unexpected error result: %v", result)
		}
		if result["address"] != signer.Address() {
			t.Errorf("Recovered %v, want %s", result["address"], signer.Address())
		}
	})

	t.Run("Verify", func(t *testing.T) {
		result, isError := callTool(t, session, mcp.ToolEIP712Verify, map[string]interface{}{
			"typedData": permitJSON,
			"signature": sig,
			"signer":    "0x1111111111111111111111111111111111111111",
		})
		if isError {
			t.Fatalf("Unexpected error result: %v", result)
		}
		if result["valid"] != false || result["recovered"] != signer.Address() {
			t.Errorf("Unexpected verification %v", result)
		}
	})

	t.Run("Bad recovery id", func(t *testing.T) {
		bad := sig[:130] + "1d"
		result, isError := callTool(t, session, mcp.ToolEIP712Recover, map[string]interface{}{
			"typedData": permitJSON,
			"signature": bad,
		})
		if !isError {
			t.Fatal("Expected an error result")
		}
		errObj, _ := result["error"].(map[string]interface{})
		if errObj["code"] != "invalid_recovery_id" {
			t.Errorf("Expected invalid_recovery_id, got %v", result)
		}
	})
}

func TestSplitTool(t *testing.T) {
	session := connect(t)
	_, sig := signPermit(t)

	result, isError := callTool(t, session, mcp.ToolSignatureSplit, map[string]interface{}{"signature": sig})
	if isError {
		t.Fatalf("Unexpected error result: %v", result)
	}
	if result["r"] != sig[:66] || result["s"] != "0x"+sig[66:130] {
		t.Errorf("Unexpected split %v", result)
	}
	if v, _ := result["v"].(float64); v != 27 && v != 28 {
		t.Errorf("Expected v in {27, 28}, got %v", result["v"])
	}
}
