package signature_test

import (
	"math/big"
	"testing"

	"github.com/ardanlabs/fundme/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

type payload struct {
	Method string
	Value  uint64
}

// =============================================================================

func Test_Signing(t *testing.T) {
	value := payload{Method: "fund", Value: 500}

	t.Log("Given the need to sign and recover the signer of a payload.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}

		v, r, s, err := signature.Sign(value, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to sign data.", success)

		if err := signature.VerifySignature(v, r, s); err != nil {
			t.Fatalf("\t%s\tShould be able to verify the signature: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to verify the signature.", success)

		addr, err := signature.FromAddress(value, v, r, s)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate from address: %s", failed, err)
		}

		if from != addr {
			t.Logf("\t\tgot: %s", addr)
			t.Logf("\t\texp: %s", from)
			t.Fatalf("\t%s\tShould get back the right address.", failed)
		}
		t.Logf("\t%s\tShould get back the right address.", success)

		str := signature.SignatureString(v, r, s)
		v2, r2, s2, err := signature.ToVRSFromHexSignature(str)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to parse the signature string: %s", failed, err)
		}

		if v.Cmp(v2) != 0 || r.Cmp(r2) != 0 || s.Cmp(s2) != 0 {
			t.Fatalf("\t%s\tShould get back the same signature values from the string.", failed)
		}
		t.Logf("\t%s\tShould get back the same signature values from the string.", success)
	}
}

func Test_Tampered(t *testing.T) {
	t.Log("Given the need to detect a payload that was changed after signing.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}

		v, r, s, err := signature.Sign(payload{Method: "fund", Value: 500}, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}

		addr, err := signature.FromAddress(payload{Method: "fund", Value: 5000}, v, r, s)
		if err == nil && addr == from {
			t.Fatalf("\t%s\tShould not recover the signer for a different payload.", failed)
		}
		t.Logf("\t%s\tShould not recover the signer for a different payload.", success)

		if err := signature.VerifySignature(big.NewInt(27), r, s); err == nil {
			t.Fatalf("\t%s\tShould reject a recovery id without the fundme id.", failed)
		}
		t.Logf("\t%s\tShould reject a recovery id without the fundme id.", success)
	}
}

func Test_Hash(t *testing.T) {
	t.Log("Given the need to hash values consistently.")
	{
		h1 := signature.Hash(payload{Method: "fund", Value: 1})
		h2 := signature.Hash(payload{Method: "fund", Value: 1})
		h3 := signature.Hash(payload{Method: "fund", Value: 2})

		if h1 != h2 {
			t.Logf("\t\tgot: %s", h2)
			t.Logf("\t\texp: %s", h1)
			t.Fatalf("\t%s\tShould get back the same hash twice.", failed)
		}
		t.Logf("\t%s\tShould get back the same hash twice.", success)

		if h1 == h3 {
			t.Fatalf("\t%s\tShould get a different hash for different values.", failed)
		}
		t.Logf("\t%s\tShould get a different hash for different values.", success)

		if len(h1) != len(signature.ZeroHash) {
			t.Fatalf("\t%s\tShould get a 32 byte hex hash, got %d chars.", failed, len(h1))
		}
		t.Logf("\t%s\tShould get a 32 byte hex hash.", success)
	}
}

func Test_SignConsistency(t *testing.T) {
	t.Log("Given the need to sign different values with the same key.")
	{
		pk, err := crypto.HexToECDSA(pkHexKey)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a private key: %s", failed, err)
		}

		value1 := payload{Method: "fund"}
		value2 := payload{Method: "withdraw"}

		v1, r1, s1, err := signature.Sign(value1, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}

		addr1, err := signature.FromAddress(value1, v1, r1, s1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an address: %s", failed, err)
		}

		v2, r2, s2, err := signature.Sign(value2, pk)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to sign data: %s", failed, err)
		}

		addr2, err := signature.FromAddress(value2, v2, r2, s2)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an address: %s", failed, err)
		}

		if addr1 != addr2 {
			t.Logf("\t\tgot: %s", addr1)
			t.Logf("\t\tgot: %s", addr2)
			t.Fatalf("\t%s\tShould have the same address.", failed)
		}
		t.Logf("\t%s\tShould have the same address.", success)
	}
}
