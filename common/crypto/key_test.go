package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrivateKey_Parse(t *testing.T) {
	sk, pk := GenerateKeyPair()

	sk2, err := ParsePrivateKey(sk.Bytes())
	assert.NoError(t, err)
	assert.Equal(t, sk.Bytes(), sk2.Bytes())
	assert.True(t, pk.Equal(sk2.PublicKey()))

	_, err = ParsePrivateKey(make([]byte, PrivateKeyLen))
	assert.Error(t, err)

	_, err = ParsePrivateKey([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestPublicKey_Parse(t *testing.T) {
	_, pk := GenerateKeyPair()

	comp := pk.SerializeCompressed()
	assert.Len(t, comp, PublicKeyLenCompressed)
	uncomp := pk.SerializeUncompressed()
	assert.Len(t, uncomp, PublicKeyLenUncompressed)

	pk2, err := ParsePublicKey(comp)
	assert.NoError(t, err)
	assert.True(t, pk.Equal(pk2))

	pk3, err := ParsePublicKey(uncomp)
	assert.NoError(t, err)
	assert.True(t, pk.Equal(pk3))

	_, err = ParsePublicKey(nil)
	assert.Error(t, err)
	_, err = ParsePublicKey(uncomp[:40])
	assert.Error(t, err)
}

func TestAddressBytesOf(t *testing.T) {
	// well known test vector: private key 0x...01
	key := make([]byte, PrivateKeyLen)
	key[PrivateKeyLen-1] = 1
	sk, err := ParsePrivateKey(key)
	assert.NoError(t, err)

	addr := AddressBytesOf(sk.PublicKey())
	assert.Equal(t, "7e5f4552091a69125d5dfcb7b8c2659029395bdf", hex.EncodeToString(addr))
	assert.Nil(t, AddressBytesOf(nil))
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()))
	assert.Equal(t, Keccak256([]byte("ab")), Keccak256([]byte("a"), []byte("b")))
}
