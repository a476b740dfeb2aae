package passcode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Encoded hashes look like pbkdf2-sha256-v1:<iterations>:<salt>:<hash>,
// salt and hash base64 encoded. Verify accepts any iteration count carried
// by the hash itself so old hashes keep verifying after a config change.
const format = "pbkdf2-sha256-v1"

const (
	defaultIterations = 100_000
	saltSize          = 16
	hashSize          = 32
)

var EmptyPasscodeErr = fmt.Errorf("passcode cannot be empty")

type Hasher struct {
	iterations int
	pepper     string
}

func NewHasher(iterations int, pepper string) *Hasher {
	if iterations <= 0 {
		iterations = defaultIterations
	}
	return &Hasher{iterations: iterations, pepper: pepper}
}

func (h *Hasher) Hash(passcode string) (string, error) {
	if strings.TrimSpace(passcode) == "" {
		return "", EmptyPasscodeErr
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	hash := h.derive(passcode, salt, h.iterations, hashSize)

	return strings.Join([]string{
		format,
		strconv.Itoa(h.iterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	}, ":"), nil
}

func (h *Hasher) Verify(passcode, encoded string) bool {
	if strings.TrimSpace(passcode) == "" || strings.TrimSpace(encoded) == "" {
		return false
	}

	parts := strings.Split(encoded, ":")
	if len(parts) != 4 || parts[0] != format {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}

	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	actual := h.derive(passcode, salt, iterations, len(expected))

	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func (h *Hasher) derive(passcode string, salt []byte, iterations, size int) []byte {
	return pbkdf2.Key([]byte(passcode+h.pepper), salt, iterations, size, sha256.New)
}
