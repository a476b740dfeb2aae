package passcode

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1000, "pepper")

	encoded, err := hasher.Hash("garlic")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "pbkdf2-sha256-v1:1000:") {
		t.Errorf("unexpected encoding %q", encoded)
	}

	if !hasher.Verify("garlic", encoded) {
		t.Error("correct passcode must verify")
	}
	if hasher.Verify("stake", encoded) {
		t.Error("wrong passcode must not verify")
	}
}

func TestHashEmptyPasscode(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1000, "")

	if _, err := hasher.Hash("   "); !errors.Is(err, EmptyPasscodeErr) {
		t.Errorf("expected empty passcode error got %v", err)
	}
	if hasher.Verify("", "whatever") {
		t.Error("empty passcode must never verify")
	}
}

func TestHashIsSalted(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1000, "")

	first, err := hasher.Hash("garlic")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := hasher.Hash("garlic")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same passcode must differ")
	}
}

func TestVerifyCarriedIterations(t *testing.T) {
	t.Parallel()

	old := NewHasher(1000, "pepper")
	encoded, err := old.Hash("garlic")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	// A hasher configured with a different count still verifies old
	// hashes: the iteration count travels inside the encoding.
	current := NewHasher(2000, "pepper")
	if !current.Verify("garlic", encoded) {
		t.Error("old hash must verify under a reconfigured hasher")
	}
}

func TestVerifyRejectsPepperMismatch(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1000, "pepper")
	encoded, err := hasher.Hash("garlic")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	other := NewHasher(1000, "different")
	if other.Verify("garlic", encoded) {
		t.Error("a different pepper must not verify")
	}
}

func TestVerifyRejectsMalformedEncodings(t *testing.T) {
	t.Parallel()

	hasher := NewHasher(1000, "")

	for _, encoded := range []string{
		"",
		"garbage",
		"pbkdf2-sha256-v1:x:y",
		"pbkdf2-sha256-v1:notanumber:c2FsdA==:aGFzaA==",
		"pbkdf2-sha256-v1:-5:c2FsdA==:aGFzaA==",
		"pbkdf2-sha256-v1:1000:!!!:aGFzaA==",
		"pbkdf2-sha256-v1:1000:c2FsdA==:!!!",
		"md5:1000:c2FsdA==:aGFzaA==",
	} {
		if hasher.Verify("garlic", encoded) {
			t.Errorf("malformed encoding %q must not verify", encoded)
		}
	}
}
