package crypto

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	PrivateKeyLen = 32

	PublicKeyLenCompressed   = 33
	PublicKeyLenUncompressed = 65
)

// PrivateKey is a type representing a secp256k1 private key.
type PrivateKey struct {
	real *secp256k1.PrivateKey
}

// PublicKey is a type representing a public key, which can be serialized to
// or deserialized from compressed or uncompressed formats.
type PublicKey struct {
	real *secp256k1.PublicKey
}

// GenerateKeyPair generates a private and public key pair.
func GenerateKeyPair() (*PrivateKey, *PublicKey) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		panic(err)
	}
	return &PrivateKey{priv}, &PublicKey{priv.PubKey()}
}

// ParsePrivateKey parses the 32-byte raw private key.
func ParsePrivateKey(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeyLen {
		return nil, errors.New("invalid private key length")
	}
	priv := secp256k1.PrivKeyFromBytes(b)
	if priv.Key.IsZero() {
		return nil, errors.New("invalid private key")
	}
	return &PrivateKey{priv}, nil
}

// Bytes returns the 32-byte raw private key.
func (key *PrivateKey) Bytes() []byte {
	return key.real.Serialize()
}

// PublicKey returns the public key corresponding to the private key.
func (key *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key.real.PubKey()}
}

func (key *PrivateKey) String() string {
	return "0x" + hex.EncodeToString(key.Bytes())
}

// ParsePublicKey parses the public key into a PublicKey instance. It supports
// uncompressed and compressed formats.
func ParsePublicKey(pubKey []byte) (*PublicKey, error) {
	switch len(pubKey) {
	case 0:
		return nil, errors.New("public key bytes are empty")
	case PublicKeyLenCompressed, PublicKeyLenUncompressed:
		pk, err := secp256k1.ParsePubKey(pubKey)
		if err != nil {
			return nil, err
		}
		return &PublicKey{pk}, nil
	default:
		return nil, errors.New("wrong format")
	}
}

// SerializeCompressed serializes the public key in a 33-byte compressed format.
func (key *PublicKey) SerializeCompressed() []byte {
	return key.real.SerializeCompressed()
}

// SerializeUncompressed serializes the public key in a 65-byte uncompressed format.
func (key *PublicKey) SerializeUncompressed() []byte {
	return key.real.SerializeUncompressed()
}

// Equal returns true if the given public key is same as this instance
// semantically
func (key *PublicKey) Equal(key2 *PublicKey) bool {
	if key == nil || key2 == nil {
		return key == key2
	}
	return key.real.IsEqual(key2.real)
}

func (key *PublicKey) String() string {
	return "0x" + hex.EncodeToString(key.SerializeCompressed())
}
