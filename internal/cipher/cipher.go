// Package cipher provides the symmetric encryption used for locally retained
// biometric insight records. Keys live only in process memory: a restart
// makes previously encrypted records unreadable, which is the intended
// privacy posture.
package cipher

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrCiphertextTooShort is returned when a ciphertext is shorter than the
// nonce prefix.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// #region random-source

// RandomSource abstracts the entropy source so tests can run deterministic
// nonces. The default reads crypto/rand.
type RandomSource interface {
	Read(p []byte) error
}

type cryptoRandSource struct{}

func (cryptoRandSource) Read(p []byte) error {
	_, err := rand.Read(p)
	return err
}

// CryptoRand returns the crypto/rand-backed source.
func CryptoRand() RandomSource { return cryptoRandSource{} }

// #endregion random-source

// #region cipher

// Cipher seals and opens byte payloads.
type Cipher interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(ciphertext []byte) ([]byte, error)
}

// ProcessCipher is an XChaCha20-Poly1305 cipher over a process-lifetime key.
type ProcessCipher struct {
	key    []byte
	random RandomSource
}

// NewProcessCipher generates a fresh in-memory key. The key is never written
// to disk or transmitted.
func NewProcessCipher(random RandomSource) (*ProcessCipher, error) {
	if random == nil {
		random = CryptoRand()
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if err := random.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	return &ProcessCipher{key: key, random: random}, nil
}

// Seal encrypts plaintext. The random nonce is prepended to the output.
func (c *ProcessCipher) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if err := c.random.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a payload produced by Seal.
func (c *ProcessCipher) Open(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, ErrCiphertextTooShort
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plain, nil
}

// #endregion cipher
