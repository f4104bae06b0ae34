package security

import (
	"testing"
	"time"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	token, hash, exp, err := Generate(opts, "u1", []string{"chat"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := Verify(opts, token, hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject() != "u1" {
		t.Fatalf("expected sub u1, got %q", claims.Subject())
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, _, err := Generate(DefaultOptions([]byte("secret-a")), "u1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Verify(DefaultOptions([]byte("secret-b")), token, ""); err == nil {
		t.Fatal("verify must fail with a different secret")
	}
}

func TestVerifyHashMismatch(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	token, _, _, err := Generate(opts, "u1", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := Verify(opts, token, "sha256:deadbeef"); err == nil {
		t.Fatal("verify must fail on hash mismatch")
	}
}

func TestUnsupportedAlg(t *testing.T) {
	opts := Options{Secret: []byte("x"), Alg: "RS256"}
	if _, _, _, err := Generate(opts, "u1", nil); err == nil {
		t.Fatal("RS256 must be rejected")
	}
}
