// Package auth provides password hashing, access tokens and the token key.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PASETO v4 requires a 256-bit (32-byte) symmetric key.
const keyLength = 32

// KeyFileName is the key file inside the data directory.
const KeyFileName = "auth.key"

// LoadOrGenerateKey reads the hex-encoded token key from dir/auth.key,
// creating it with a fresh random key on first start.
func LoadOrGenerateKey(dir string) ([]byte, error) {
	keyPath := filepath.Join(dir, KeyFileName)

	//#nosec G304 -- key path is derived from the configured data directory
	data, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(data)))
		if decodeErr != nil {
			return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", decodeErr)
		}
		if len(key) != keyLength {
			return nil, fmt.Errorf("invalid auth key length: expected %d bytes, got %d", keyLength, len(key))
		}
		return key, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate auth key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save auth key: %w", err)
	}
	return key, nil
}
