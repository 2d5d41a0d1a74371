package security_test

import (
	"testing"

	"github.com/seembe/seembe/internal/security"
)

// bcrypt at cost 12 is deliberately slow; tests use the library minimum.
const testCost = 4

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("secret1", testCost)

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == "secret1" || hash == "" {
		t.Fatalf("hash must not be empty or equal to the plaintext, got %q", hash)
	}

	if err := security.CheckPassword(hash, "secret1"); err != nil {
		t.Fatalf("CheckPassword rejected the original password: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("CheckPassword accepted a wrong password")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := security.HashPassword("secret1", testCost)
	if err != nil {
		t.Fatalf("first hash failed: %v", err)
	}

	second, err := security.HashPassword("secret1", testCost)
	if err != nil {
		t.Fatalf("second hash failed: %v", err)
	}

	if first == second {
		t.Fatalf("two hashes of the same password must differ, both were %q", first)
	}

	// both still verify the original password
	if err := security.CheckPassword(first, "secret1"); err != nil {
		t.Fatalf("first hash no longer verifies: %v", err)
	}
	if err := security.CheckPassword(second, "secret1"); err != nil {
		t.Fatalf("second hash no longer verifies: %v", err)
	}
}

func TestHashPasswordOutOfRangeCostFallsBack(t *testing.T) {
	hash, err := security.HashPassword("secret1", 99)

	if err != nil {
		t.Fatalf("HashPassword with out-of-range cost returned error: %v", err)
	}

	if err := security.CheckPassword(hash, "secret1"); err != nil {
		t.Fatalf("fallback-cost hash does not verify: %v", err)
	}
}
