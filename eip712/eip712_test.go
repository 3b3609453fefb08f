package eip712_test

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	permit "github.com/feng001-8/work"
	"github.com/feng001-8/work/eip712"
)

var mailTypes = eip712.Types{
	"Person": {
		{Name: "name", Type: "string"},
		{Name: "wallet", Type: "address"},
	},
	"Mail": {
		{Name: "from", Type: "Person"},
		{Name: "to", Type: "Person"},
		{Name: "contents", Type: "string"},
	},
}

func mailTypedData() eip712.TypedData {
	return eip712.TypedData{
		Types:       mailTypes,
		PrimaryType: "Mail",
		Domain: eip712.Domain{
			Name:              "Ether Mail",
			Version:           "1",
			ChainID:           big.NewInt(1),
			VerifyingContract: common.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"),
		},
		Message: eip712.Message{
			"from": map[string]interface{}{
				"name":   "Cow",
				"wallet": "0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826",
			},
			"to": eip712.Message{
				"name":   "Bob",
				"wallet": common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"),
			},
			"contents": "Hello, Bob!",
		},
	}
}

var permitTypes = eip712.Types{
	"Permit": {
		{Name: "owner", Type: "address"},
		{Name: "spender", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
	},
}

func myTokenPermit() eip712.TypedData {
	value, _ := new(big.Int).SetString("1000000000000000000", 10)
	return eip712.TypedData{
		Types:       permitTypes,
		PrimaryType: "Permit",
		Domain: eip712.Domain{
			Name:              "MyToken",
			Version:           "1",
			ChainID:           big.NewInt(1),
			VerifyingContract: common.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
		},
		Message: eip712.Message{
			"owner":    "0x1111111111111111111111111111111111111111",
			"spender":  "0x2222222222222222222222222222222222222222",
			"value":    value,
			"nonce":    0,
			"deadline": "2000000000",
		},
	}
}

func TestEncodeType(t *testing.T) {
	t.Run("Mail lists referenced Person after the primary type", func(t *testing.T) {
		encoded, err := eip712.EncodeType(mailTypes, "Mail")
		if err != nil {
			t.Fatalf("EncodeType failed: %v", err)
		}
		want := "Mail(Person from,Person to,string contents)Person(string name,address wallet)"
		if encoded != want {
			t.Errorf("got %q, want %q", encoded, want)
		}
	})

	t.Run("Dependencies are sorted by name, not by first use", func(t *testing.T) {
		types := eip712.Types{
			"Order": {{Name: "zeta", Type: "Zeta"}, {Name: "alpha", Type: "Alpha[]"}},
			"Zeta":  {{Name: "leg", Type: "Leg"}},
			"Alpha": {{Name: "x", Type: "uint256"}},
			"Leg":   {{Name: "y", Type: "bytes32"}},
		}
		encoded, err := eip712.EncodeType(types, "Order")
		if err != nil {
			t.Fatalf("EncodeType failed: %v", err)
		}
		want := "Order(Zeta zeta,Alpha[] alpha)Alpha(uint256 x)Leg(bytes32 y)Zeta(Leg leg)"
		if encoded != want {
			t.Errorf("got %q, want %q", encoded, want)
		}
	})

	t.Run("Shared dependency appears once", func(t *testing.T) {
		encoded, err := eip712.EncodeType(mailTypes, "Mail")
		if err != nil {
			t.Fatalf("EncodeType failed: %v", err)
		}
		if count := strings.Count(encoded, "Person("); count != 1 {
			t.Errorf("Person definition appears %d times", count)
		}
	})
}

func TestTypeHash(t *testing.T) {
	tests := []struct {
		name     string
		types    eip712.Types
		typeName string
		want     string
	}{
		{"Mail", mailTypes, "Mail", "0xa0cedeb2dc280ba39b857546d74f5549c3a1d7bdc2dd96bf881f76108e23dac2"},
		{"ERC-2612 Permit", permitTypes, "Permit", "0x6e71edae12b1b97f4d1f60370fef10105fa2faae0126114a169c64845d6126c9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eip712.TypeHash(tt.types, tt.typeName)
			if err != nil {
				t.Fatalf("TypeHash failed: %v", err)
			}
			if got.Hex() != tt.want {
				t.Errorf("got %s, want %s", got.Hex(), tt.want)
			}
		})
	}

	t.Run("Field order changes the type hash", func(t *testing.T) {
		swapped := eip712.Types{"Permit": {
			{Name: "spender", Type: "address"},
			{Name: "owner", Type: "address"},
			{Name: "value", Type: "uint256"},
			{Name: "nonce", Type: "uint256"},
			{Name: "deadline", Type: "uint256"},
		}}
		a, _ := eip712.TypeHash(permitTypes, "Permit")
		b, err := eip712.TypeHash(swapped, "Permit")
		if err != nil {
			t.Fatalf("TypeHash failed: %v", err)
		}
		if a == b {
			t.Error("Swapping fields should change the type hash")
		}

		td := myTokenPermit()
		original, err := eip712.SigningDigest(td.Domain, td.Types, td.PrimaryType, td.Message)
		if err != nil {
			t.Fatalf("SigningDigest failed: %v", err)
		}
		reordered, err := eip712.SigningDigest(td.Domain, swapped, td.PrimaryType, td.Message)
		if err != nil {
			t.Fatalf("SigningDigest failed: %v", err)
		}
		if original == reordered {
			t.Error("Swapping fields should change the signing digest")
		}
	})
}

func TestParseTypedDataJSON(t *testing.T) {
	payload := func(domainType, domain string) []byte {
		return []byte(`{
			"types": {
				"EIP712Domain": ` + domainType + `,
				"Note": [{"name": "body", "type": "string"}]
			},
			"primaryType": "Note",
			"domain": ` + domain + `,
			"message": {"body": "hi"}
		}`)
	}

	t.Run("Declared domain members are used as given", func(t *testing.T) {
		td, err := eip712.ParseTypedDataJSON(payload(
			`[{"name": "name", "type": "string"}, {"name": "chainId", "type": "uint256"}]`,
			`{"name": "X", "chainId": 1}`,
		))
		if err != nil {
			t.Fatalf("ParseTypedDataJSON failed: %v", err)
		}
		if len(td.Domain.Fields) != 2 || td.Domain.ChainID.Int64() != 1 {
			t.Errorf("Unexpected domain %+v", td.Domain)
		}
	})

	t.Run("Missing declared domain member is rejected", func(t *testing.T) {
		_, err := eip712.ParseTypedDataJSON(payload(
			`[{"name": "name", "type": "string"}, {"name": "version", "type": "string"}, {"name": "chainId", "type": "uint256"}]`,
			`{"name": "X", "chainId": 1}`,
		))
		var mismatch *permit.TypeMismatchError
		if !errors.As(err, &mismatch) || mismatch.Field != "domain.version" {
			t.Errorf("Expected type mismatch on domain.version, got %v", err)
		}
	})

	t.Run("Undeclared domain member is rejected", func(t *testing.T) {
		_, err := eip712.ParseTypedDataJSON(payload(
			`[{"name": "name", "type": "string"}, {"name": "chainId", "type": "uint256"}]`,
			`{"name": "X", "version": "9", "chainId": 1}`,
		))
		var mismatch *permit.TypeMismatchError
		if !errors.As(err, &mismatch) || mismatch.Field != "domain.version" {
			t.Errorf("Expected type mismatch on domain.version, got %v", err)
		}
	})

	t.Run("Domain type is derived when not declared", func(t *testing.T) {
		td, err := eip712.ParseTypedDataJSON([]byte(`{
			"types": {"Note": [{"name": "body", "type": "string"}]},
			"primaryType": "Note",
			"domain": {"chainId": 5, "name": "X"},
			"message": {"body": "hi"}
		}`))
		if err != nil {
			t.Fatalf("ParseTypedDataJSON failed: %v", err)
		}
		if len(td.Domain.Fields) != 2 || td.Domain.Fields[0].Name != "name" {
			t.Errorf("Unexpected domain fields %+v", td.Domain.Fields)
		}
	})
}

func TestSchemaErrors(t *testing.T) {
	tests := []struct {
		name  string
		types eip712.Types
		root  string
	}{
		{"Missing referenced type", eip712.Types{"Mail": {{Name: "from", Type: "Person"}}}, "Mail"},
		{"Missing root type", mailTypes, "Letter"},
		{"Direct cycle", eip712.Types{"Node": {{Name: "next", Type: "Node"}}}, "Node"},
		{"Indirect cycle", eip712.Types{
			"A": {{Name: "b", Type: "B"}},
			"B": {{Name: "c", Type: "C[]"}},
			"C": {{Name: "a", Type: "A"}},
		}, "A"},
		{"Duplicate field", eip712.Types{"T": {{Name: "x", Type: "uint256"}, {Name: "x", Type: "address"}}}, "T"},
		{"Unaligned integer width", eip712.Types{"T": {{Name: "x", Type: "uint7"}}}, "T"},
		{"Integer alias without width", eip712.Types{"T": {{Name: "x", Type: "uint"}}}, "T"},
		{"Oversized fixed bytes", eip712.Types{"T": {{Name: "x", Type: "bytes33"}}}, "T"},
		{"Malformed array length", eip712.Types{"T": {{Name: "x", Type: "uint256[0]"}}}, "T"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eip712.EncodeType(tt.types, tt.root)
			var schemaErr *permit.SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("Expected SchemaError, got %v", err)
			}
			if permit.ErrorCode(err) != permit.ErrCodeSchema {
				t.Errorf("Expected code %s, got %s", permit.ErrCodeSchema, permit.ErrorCode(err))
			}
		})
	}
}

func TestHashTypedData(t *testing.T) {
	t.Run("EIP-712 Mail reference vector", func(t *testing.T) {
		hashes, err := eip712.HashTypedData(mailTypedData())
		if err != nil {
			t.Fatalf("HashTypedData failed: %v", err)
		}
		assertHash(t, "domain separator", hashes.DomainSeparator, "0xf2cee375fa42b42143804025fc449deafd50cc031ca257e0b194a650a912090f")
		assertHash(t, "struct hash", hashes.StructHash, "0xc52c0ee5d84264471806290a3f2c4cecfc5490626bf912d01f240d7a274b371e")
		assertHash(t, "digest", hashes.Digest, "0xbe609aee343fb3c4b28e1df9e632fca64fcfaede20f02e86244efddf30957bd2")
		assertHash(t, "type hash", hashes.TypeHash, "0xa0cedeb2dc280ba39b857546d74f5549c3a1d7bdc2dd96bf881f76108e23dac2")
	})

	t.Run("ERC-2612 permit vector", func(t *testing.T) {
		hashes, err := eip712.HashTypedData(myTokenPermit())
		if err != nil {
			t.Fatalf("HashTypedData failed: %v", err)
		}
		assertHash(t, "domain separator", hashes.DomainSeparator, "0x0c5953cfe7ab06b380e9fb8bffeb180219e5edf41212affff8afdf39e9d21815")
		assertHash(t, "struct hash", hashes.StructHash, "0x13456c2d6f630d93ac8b96524973eb983386d0c6fe1b883eaa369901d32388bd")
		assertHash(t, "digest", hashes.Digest, "0x242ab6b8e78105c56fcade516779ebf671ecbeb8ebfbbee606fbb6076ba785ba")
	})

	t.Run("Digest matches SigningDigest and the Digest helper", func(t *testing.T) {
		td := myTokenPermit()
		hashes, err := eip712.HashTypedData(td)
		if err != nil {
			t.Fatalf("HashTypedData failed: %v", err)
		}
		digest, err := eip712.SigningDigest(td.Domain, td.Types, td.PrimaryType, td.Message)
		if err != nil {
			t.Fatalf("SigningDigest failed: %v", err)
		}
		if digest != hashes.Digest {
			t.Errorf("SigningDigest %s != snapshot digest %s", digest.Hex(), hashes.Digest.Hex())
		}
		if eip712.Digest(hashes.DomainSeparator, hashes.StructHash) != digest {
			t.Error("Digest helper disagrees with SigningDigest")
		}
	})

	t.Run("Same inputs produce same digest", func(t *testing.T) {
		a, _ := eip712.HashTypedData(myTokenPermit())
		b, _ := eip712.HashTypedData(myTokenPermit())
		if *a != *b {
			t.Error("Hashing is not deterministic")
		}
	})

	t.Run("Every message field affects the digest", func(t *testing.T) {
		base, _ := eip712.HashTypedData(myTokenPermit())
		changes := map[string]interface{}{
			"owner":    "0x3333333333333333333333333333333333333333",
			"spender":  "0x3333333333333333333333333333333333333333",
			"value":    1,
			"nonce":    1,
			"deadline": 2000000001,
		}
		for field, value := range changes {
			td := myTokenPermit()
			td.Message[field] = value
			hashes, err := eip712.HashTypedData(td)
			if err != nil {
				t.Fatalf("%s: %v", field, err)
			}
			if hashes.Digest == base.Digest {
				t.Errorf("Changing %s did not change the digest", field)
			}
		}
	})

	t.Run("Domain primary type is rejected", func(t *testing.T) {
		td := myTokenPermit()
		td.PrimaryType = eip712.DomainTypeName
		if _, err := eip712.HashTypedData(td); permit.ErrorCode(err) != permit.ErrCodeSchema {
			t.Errorf("Expected schema error, got %v", err)
		}
	})
}

func TestDomainSeparator(t *testing.T) {
	permit2 := common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")
	noVersion := []eip712.Field{
		{Name: "name", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}

	t.Run("Permit2 domain without version matches mainnet", func(t *testing.T) {
		ds, err := eip712.DomainSeparator(eip712.Domain{
			Name:              "Permit2",
			ChainID:           big.NewInt(1),
			VerifyingContract: permit2,
			Fields:            noVersion,
		})
		if err != nil {
			t.Fatalf("DomainSeparator failed: %v", err)
		}
		assertHash(t, "Permit2 domain separator", ds, "0x866a5aba21966af95d6c7ab78eb2b2fc913915c28be3b9aa07cc04ff903e3f28")
	})

	t.Run("Declaring a version changes the separator", func(t *testing.T) {
		ds, err := eip712.DomainSeparator(eip712.Domain{
			Name:              "Permit2",
			Version:           "1",
			ChainID:           big.NewInt(1),
			VerifyingContract: permit2,
		})
		if err != nil {
			t.Fatalf("DomainSeparator failed: %v", err)
		}
		assertHash(t, "versioned domain separator", ds, "0xe59a26548888a5261bf700b7266dde617e60706704a98d294d9af9c62ffe9697")
	})

	t.Run("Out of order domain fields are rejected", func(t *testing.T) {
		_, err := eip712.DomainSeparator(eip712.Domain{
			Name:    "X",
			ChainID: big.NewInt(1),
			Fields: []eip712.Field{
				{Name: "chainId", Type: "uint256"},
				{Name: "name", Type: "string"},
			},
		})
		if permit.ErrorCode(err) != permit.ErrCodeSchema {
			t.Errorf("Expected schema error, got %v", err)
		}
	})

	t.Run("Unknown domain member is rejected", func(t *testing.T) {
		_, err := eip712.DomainSeparator(eip712.Domain{
			Name:   "X",
			Fields: []eip712.Field{{Name: "name", Type: "string"}, {Name: "owner", Type: "address"}},
		})
		if permit.ErrorCode(err) != permit.ErrCodeSchema {
			t.Errorf("Expected schema error, got %v", err)
		}
	})

	t.Run("Declared chainId without value is rejected", func(t *testing.T) {
		_, err := eip712.DomainSeparator(eip712.Domain{Name: "X", Version: "1"})
		if permit.ErrorCode(err) != permit.ErrCodeSchema {
			t.Errorf("Expected schema error, got %v", err)
		}
	})

	t.Run("Chain ID separates domains", func(t *testing.T) {
		a, _ := eip712.DomainSeparator(eip712.Domain{Name: "T", Version: "1", ChainID: big.NewInt(1)})
		b, _ := eip712.DomainSeparator(eip712.Domain{Name: "T", Version: "1", ChainID: big.NewInt(11155111)})
		if a == b {
			t.Error("Different chains should produce different separators")
		}
	})
}

func TestEncodeValue(t *testing.T) {
	t.Run("Address is left padded", func(t *testing.T) {
		word, err := eip712.EncodeValue(nil, eip712.Field{Name: "a", Type: "address"}, "0x1111111111111111111111111111111111111111")
		if err != nil {
			t.Fatalf("EncodeValue failed: %v", err)
		}
		assertHash(t, "address word", word, "0x0000000000000000000000001111111111111111111111111111111111111111")
	})

	t.Run("Fixed bytes are right padded", func(t *testing.T) {
		word, err := eip712.EncodeValue(nil, eip712.Field{Name: "sel", Type: "bytes4"}, [4]byte{0xde, 0xad, 0xbe, 0xef})
		if err != nil {
			t.Fatalf("EncodeValue failed: %v", err)
		}
		assertHash(t, "bytes4 word", word, "0xdeadbeef00000000000000000000000000000000000000000000000000000000")
	})

	t.Run("Negative int is two's complement", func(t *testing.T) {
		word, err := eip712.EncodeValue(nil, eip712.Field{Name: "d", Type: "int8"}, -1)
		if err != nil {
			t.Fatalf("EncodeValue failed: %v", err)
		}
		assertHash(t, "int8 word", word, "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	})

	t.Run("Bool encodes as 0 or 1", func(t *testing.T) {
		word, err := eip712.EncodeValue(nil, eip712.Field{Name: "b", Type: "bool"}, true)
		if err != nil {
			t.Fatalf("EncodeValue failed: %v", err)
		}
		if word.Big().Cmp(big.NewInt(1)) != 0 {
			t.Errorf("Expected 1, got %s", word.Hex())
		}
	})

	t.Run("Hex and decimal strings encode the same integer", func(t *testing.T) {
		a, _ := eip712.EncodeValue(nil, eip712.Field{Name: "n", Type: "uint256"}, "0xff")
		b, _ := eip712.EncodeValue(nil, eip712.Field{Name: "n", Type: "uint256"}, "255")
		if a != b {
			t.Errorf("0xff encoded as %s, 255 as %s", a.Hex(), b.Hex())
		}
	})
}

func TestTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"Overlong address string is not truncated", "owner", "0x111111111111111111111111111111111111111111"},
		{"Address without hex prefix", "owner", "1111111111111111111111111111111111111111"},
		{"Integer given as bool", "nonce", true},
		{"Integer given as non-numeric string", "value", "not_a_number"},
		{"Fractional float", "deadline", 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			td := myTokenPermit()
			td.Message[tt.field] = tt.value
			_, err := eip712.HashTypedData(td)
			var mismatch *permit.TypeMismatchError
			if !errors.As(err, &mismatch) {
				t.Fatalf("Expected TypeMismatchError, got %v", err)
			}
			if mismatch.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, mismatch.Field)
			}
		})
	}

	t.Run("Missing field is reported", func(t *testing.T) {
		td := myTokenPermit()
		delete(td.Message, "nonce")
		_, err := eip712.HashTypedData(td)
		if permit.ErrorCode(err) != permit.ErrCodeTypeMismatch {
			t.Errorf("Expected type mismatch, got %v", err)
		}
	})

	t.Run("Undeclared message key is rejected", func(t *testing.T) {
		td := myTokenPermit()
		td.Message["extra"] = "1"
		_, err := eip712.HashTypedData(td)
		var mismatch *permit.TypeMismatchError
		if !errors.As(err, &mismatch) || mismatch.Field != "extra" {
			t.Errorf("Expected type mismatch on extra, got %v", err)
		}
	})

	t.Run("Nested field path is reported", func(t *testing.T) {
		td := mailTypedData()
		td.Message["to"] = eip712.Message{"name": "Bob", "wallet": 42}
		_, err := eip712.HashTypedData(td)
		var mismatch *permit.TypeMismatchError
		if !errors.As(err, &mismatch) || mismatch.Field != "to.wallet" {
			t.Errorf("Expected type mismatch on to.wallet, got %v", err)
		}
	})
}

func TestRangeErrors(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	tests := []struct {
		name  string
		typ   string
		value interface{}
		ok    bool
	}{
		{"uint8 max", "uint8", 255, true},
		{"uint8 overflow", "uint8", 256, false},
		{"uint256 negative", "uint256", -1, false},
		{"uint256 overflow", "uint256", tooBig, false},
		{"int8 min", "int8", -128, true},
		{"int8 underflow", "int8", -129, false},
		{"int8 overflow", "int8", 128, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eip712.EncodeValue(nil, eip712.Field{Name: "n", Type: tt.typ}, tt.value)
			if tt.ok {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			var rangeErr *permit.RangeError
			if !errors.As(err, &rangeErr) {
				t.Errorf("Expected RangeError, got %v", err)
			}
		})
	}
}

func TestMatchesReferenceEncoder(t *testing.T) {
	types := eip712.Types{
		"Person": {
			{Name: "name", Type: "string"},
			{Name: "wallets", Type: "address[]"},
		},
		"Mail": {
			{Name: "from", Type: "Person"},
			{Name: "to", Type: "Person[]"},
			{Name: "contents", Type: "string"},
			{Name: "amounts", Type: "uint256[]"},
			{Name: "delta", Type: "int8"},
			{Name: "attachment", Type: "bytes"},
			{Name: "salt", Type: "bytes32"},
		},
	}
	td := eip712.TypedData{
		Types:       types,
		PrimaryType: "Mail",
		Domain: eip712.Domain{
			Name:              "Ether Mail",
			Version:           "1",
			ChainID:           big.NewInt(1),
			VerifyingContract: common.HexToAddress("0xCcCCccccCCCCcCCCCCCcCcCccCcCCCcCcccccccC"),
		},
		Message: eip712.Message{
			"from": eip712.Message{
				"name":    "Cow",
				"wallets": []string{"0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826", "0xDeaDbeefdEAdbeefdEadbEEFdeadbeEFdEaDbeeF"},
			},
			"to": []interface{}{
				map[string]interface{}{
					"name":    "Bob",
					"wallets": []interface{}{"0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB"},
				},
			},
			"contents":   "Hello, Bob!",
			"amounts":    []interface{}{1, "2", big.NewInt(3)},
			"delta":      -5,
			"attachment": []byte{0x01, 0x02},
			"salt":       common.HexToHash("0x01"),
		},
	}

	hashes, err := eip712.HashTypedData(td)
	if err != nil {
		t.Fatalf("HashTypedData failed: %v", err)
	}

	ref, err := td.ToAPITypes()
	if err != nil {
		t.Fatalf("ToAPITypes failed: %v", err)
	}
	want, _, err := apitypes.TypedDataAndHash(ref)
	if err != nil {
		t.Fatalf("reference encoder failed: %v", err)
	}
	if hashes.Digest != common.BytesToHash(want) {
		t.Errorf("digest %s differs from reference %x", hashes.Digest.Hex(), want)
	}
}

func assertHash(t *testing.T, label string, got common.Hash, want string) {
	t.Helper()
	if got != common.HexToHash(want) {
		t.Errorf("%s: got %s, want %s", label, got.Hex(), want)
	}
}
