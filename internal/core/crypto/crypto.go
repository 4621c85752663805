// Package crypto seals API keys stored in the config file with a short PIN.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize         = 16
	NonceSize        = 12
	KeySize          = 32 // AES-256
	PBKDF2Iterations = 100000

	gcmTagSize = 16
)

var (
	// ErrInvalidPIN is returned when the PIN format is invalid
	ErrInvalidPIN = errors.New("PIN must be exactly 4 digits")

	// ErrDecryptionFailed is returned for a wrong PIN or corrupted data
	ErrDecryptionFailed = errors.New("decryption failed: wrong PIN or corrupted data")

	// ErrInvalidData is returned when the sealed value is not salt+nonce+ciphertext
	ErrInvalidData = errors.New("invalid encrypted data format")

	pinRegex = regexp.MustCompile(`^\d{4}$`)
)

// ValidatePIN checks if the PIN is exactly 4 digits.
func ValidatePIN(pin string) error {
	if !pinRegex.MatchString(pin) {
		return ErrInvalidPIN
	}
	return nil
}

func newGCM(pin string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(pin), salt, PBKDF2Iterations, KeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt seals plaintext with AES-256-GCM under a PIN-derived key.
// The result is base64(salt || nonce || ciphertext).
func Encrypt(plaintext, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	buf := make([]byte, SaltSize+NonceSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt and nonce: %w", err)
	}
	salt, nonce := buf[:SaltSize], buf[SaltSize:]

	gcm, err := newGCM(pin, salt)
	if err != nil {
		return "", err
	}

	sealed := gcm.Seal(buf, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(encrypted, pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}

	combined, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidData
	}
	if len(combined) < SaltSize+NonceSize+gcmTagSize {
		return "", ErrInvalidData
	}

	salt := combined[:SaltSize]
	nonce := combined[SaltSize : SaltSize+NonceSize]
	ciphertext := combined[SaltSize+NonceSize:]

	gcm, err := newGCM(pin, salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
