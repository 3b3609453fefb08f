// Package mcp exposes the EIP-712 and signature codecs as Model Context
// Protocol tools.
//
// # Server Usage
//
//	server := mcp.NewServer("1.0.0")
//	if err := server.Run(ctx, &mcpsdk.StdioTransport{}); err != nil {
//	    log.Fatal(err)
//	}
//
// Tools:
//
//   - eip712_hash: typed-data JSON to its hash snapshot
//   - eip712_recover: typed data plus signature to the signer address
//   - eip712_verify: typed data, signature and expected signer to {valid, recovered}
//   - signature_split: 65-byte signature hex to r, s and v
//
// Failures are returned as IsError results whose text is
// {"error": {"code", "message"}}, never as protocol errors.
package mcp
