// Package seal encrypts small secrets (the provider API key) before they are
// written to the local state database.
//
// Format: salt(16) || nonce(24) || secretbox(plaintext). The key is derived
// from a passphrase with scrypt, so the same passphrase opens the value on any
// machine that has it.
package seal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	// scrypt cost parameters (interactive logins, 2017 recommendation).
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

var (
	// ErrNoPassphrase is returned by Seal and Open for an empty passphrase.
	ErrNoPassphrase = errors.New("seal: empty passphrase")
	// ErrMalformed means the sealed value is too short to hold salt and nonce.
	ErrMalformed = errors.New("seal: malformed sealed value")
	// ErrDecrypt means authentication failed: wrong passphrase or tampered data.
	ErrDecrypt = errors.New("seal: decryption failed")
)

// Seal encrypts plaintext under passphrase. Each call uses a fresh salt and
// nonce, so sealing the same value twice yields different output.
func Seal(passphrase string, plaintext []byte) ([]byte, error) {
	return sealWith(rand.Reader, passphrase, plaintext)
}

func sealWith(random io.Reader, passphrase string, plaintext []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}

	header := make([]byte, saltSize+nonceSize)
	if _, err := io.ReadFull(random, header); err != nil {
		return nil, fmt.Errorf("seal: read random: %w", err)
	}
	salt := header[:saltSize]

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], header[saltSize:])

	return secretbox.Seal(header, plaintext, &nonce, key), nil
}

// Open reverses Seal.
func Open(passphrase string, sealed []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrMalformed
	}

	key, err := deriveKey(passphrase, sealed[:saltSize])
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func deriveKey(passphrase string, salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
