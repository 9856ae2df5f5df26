package signature

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// SecretPrefix marks Standard Webhooks symmetric secrets
	SecretPrefix = "whsec_"

	MinSecretBytes = 24
	MaxSecretBytes = 64
)

// Secret is a symmetric signing key shared with a gateway or an alert receiver
type Secret struct {
	raw     []byte
	encoded string
}

// GenerateSecret returns a random secret of size bytes
func GenerateSecret(size int) (Secret, error) {
	if err := checkSize(size); err != nil {
		return Secret{}, err
	}
	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return Secret{}, fmt.Errorf("reading random bytes: %w", err)
	}
	return Secret{raw: raw, encoded: SecretPrefix + base64.StdEncoding.EncodeToString(raw)}, nil
}

// ParseSecret decodes a whsec_ prefixed base64 secret
func ParseSecret(encoded string) (Secret, error) {
	b64, ok := strings.CutPrefix(encoded, SecretPrefix)
	if !ok {
		return Secret{}, fmt.Errorf("secret must start with %s", SecretPrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Secret{}, fmt.Errorf("decoding secret: %w", err)
	}
	if err := checkSize(len(raw)); err != nil {
		return Secret{}, err
	}
	return Secret{raw: raw, encoded: encoded}, nil
}

func checkSize(n int) error {
	if n < MinSecretBytes || n > MaxSecretBytes {
		return fmt.Errorf("secret size must be between %d and %d bytes, got %d", MinSecretBytes, MaxSecretBytes, n)
	}
	return nil
}

// IsZero reports whether the secret was never set
func (s Secret) IsZero() bool {
	return len(s.raw) == 0
}

func (s Secret) String() string {
	return s.encoded
}

func (s Secret) Bytes() []byte {
	return s.raw
}
