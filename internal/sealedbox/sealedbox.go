// Package sealedbox seals secret values against a repository public key
// using the NaCl anonymous sealed-box construction. A fresh ephemeral key
// pair is generated per call and discarded, so only the holder of the
// matching private key can decrypt and the ciphertext carries no sender
// identity.
package sealedbox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/box"

	"github.com/neuromagic888-cloud/secretsync/internal/domain/model"
)

// keySize is the length of a raw X25519 public key.
const keySize = 32

// Encrypt seals plaintext against the repository public key and returns the
// payload ready for upload, tagged with the key's ID. The only failure mode
// is a malformed key; no network access happens here.
func Encrypt(plaintext string, key model.RepositoryPublicKey) (model.EncryptedSecret, error) {
	recipient, err := decodeKey(key.Key)
	if err != nil {
		return model.EncryptedSecret{}, err
	}

	sealed, err := box.SealAnonymous(nil, []byte(plaintext), recipient, rand.Reader)
	if err != nil {
		return model.EncryptedSecret{}, fmt.Errorf("sealing secret value: %w", err)
	}

	return model.EncryptedSecret{
		KeyID:          key.KeyID,
		EncryptedValue: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// decodeKey decodes the base64 repository key into the fixed-size array the
// box package expects.
func decodeKey(encoded string) (*[keySize]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidPublicKey, err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", model.ErrInvalidPublicKey, keySize, len(raw))
	}

	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
