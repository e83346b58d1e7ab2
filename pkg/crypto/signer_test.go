package crypto

import (
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestSignAndRecover(t *testing.T) {
	signer, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	digest := gethcrypto.Keccak256([]byte("hello exchange"))
	sig, err := signer.Sign(digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}

	got, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if got != signer.Address() {
		t.Errorf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}

func TestRecoverLegacyV(t *testing.T) {
	signer, _ := GenerateKey()
	digest := gethcrypto.Keccak256([]byte("legacy v"))
	sig, _ := signer.Sign(digest)

	// 27/28 recovery ids must normalize
	sig[64] += 27
	got, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if got != signer.Address() {
		t.Errorf("recovered %s, want %s", got.Hex(), signer.Address().Hex())
	}
}

func TestSignHexRoundTrip(t *testing.T) {
	signer, _ := GenerateKey()
	digest := gethcrypto.Keccak256([]byte("hex round trip"))

	sigHex, err := signer.SignHex(digest)
	if err != nil {
		t.Fatalf("SignHex: %v", err)
	}
	sig, err := ParseSignature(sigHex)
	if err != nil {
		t.Fatalf("ParseSignature: %v", err)
	}
	got, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if got != signer.Address() {
		t.Error("hex round trip lost the signer")
	}
}

func TestFromPrivateKeyHex(t *testing.T) {
	signer, _ := GenerateKey()

	restored, err := FromPrivateKeyHex(signer.PrivateKeyHex())
	if err != nil {
		t.Fatalf("FromPrivateKeyHex: %v", err)
	}
	if restored.Address() != signer.Address() {
		t.Error("restored signer has a different address")
	}

	if _, err := FromPrivateKeyHex("zz"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func TestWrongKeyDoesNotRecoverToAddress(t *testing.T) {
	a, _ := GenerateKey()
	b, _ := GenerateKey()
	digest := gethcrypto.Keccak256([]byte("payload"))
	sig, _ := b.Sign(digest)

	got, err := RecoverAddress(digest, sig)
	if err != nil {
		t.Fatalf("RecoverAddress: %v", err)
	}
	if got == a.Address() {
		t.Error("signature by b recovered to a's address")
	}
}
