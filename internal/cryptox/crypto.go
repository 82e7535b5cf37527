// Package cryptox implements field-level encryption for bookmark content.
// Individual string attributes are encrypted with AES-GCM; the key is derived
// from a user passphrase with Argon2id. Ciphertext is transported as
// base64(nonce || sealed) so it fits the remote store's text columns.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
)

// Encryptor encrypts and decrypts individual string fields.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey derives a 32-byte AES key from a passphrase and salt using
// Argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// GenerateSalt returns cryptographically random bytes of the given length.
func GenerateSalt(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// AESGCM is an Encryptor backed by AES-GCM with a fixed key.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds an AESGCM encryptor. The key must be 16, 24, or 32 bytes.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// Encrypt seals the plaintext with a fresh random nonce and returns
// base64(nonce || ciphertext).
func (a *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := a.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}

// Decrypt reverses Encrypt.
func (a *AESGCM) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	ns := a.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrCiphertextTooShort
	}
	plain, err := a.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// DecryptIfNeeded returns value unchanged when encrypted is false. When true
// it decrypts, falling back to the original ciphertext value if decryption
// fails, so a sync pass can proceed even if a single field is undecryptable.
func DecryptIfNeeded(enc Encryptor, value string, encrypted bool) string {
	if !encrypted || value == "" {
		return value
	}
	plain, err := enc.Decrypt(value)
	if err != nil {
		return value
	}
	return plain
}
