package security

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if strings.Contains(hash, "secret1") {
		t.Fatal("hash contains the plaintext password")
	}
	if !h.Verify("secret1", hash) {
		t.Fatal("expected password to verify")
	}
	if h.Verify("secret2", hash) {
		t.Fatal("wrong password verified")
	}

	again, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if again == hash {
		t.Fatal("expected a fresh salt per hash")
	}
}

func TestBcryptHasherClampsCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost + 1); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}

func TestBcryptHasherRejectsMalformedHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if h.Verify("secret1", "not-a-hash") {
		t.Fatal("malformed hash verified")
	}
}

func TestBcryptHasherLongPasswords(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	long := strings.Repeat("p", 80)

	hash, err := h.Hash(long)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !h.Verify(long, hash) {
		t.Fatal("expected long password to verify")
	}
	// Passwords sharing the first 72 bytes must still be told apart.
	if h.Verify(strings.Repeat("p", 72)+"different", hash) {
		t.Fatal("password differing after byte 72 verified")
	}
}
