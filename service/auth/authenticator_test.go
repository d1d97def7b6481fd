package auth

import (
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/accounts"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/crypto"
	"github.com/icon-project/govote/common/errors"
)

func newKey() (*crypto.PrivateKey, common.Address) {
	sk, pk := crypto.GenerateKeyPair()
	return sk, common.NewAccountAddressFromPublicKey(pk)
}

func signRSV(t *testing.T, m VoteMessage, sk *crypto.PrivateKey) []byte {
	sig, err := Sign(m, sk)
	require.NoError(t, err)
	bs, err := sig.SerializeRSV()
	require.NoError(t, err)
	return bs
}

func TestAuthenticator_Authenticate(t *testing.T) {
	a := NewAuthenticator(nil)
	sk, addr := newKey()
	m := VoteMessage{VoteOption: 1, ProposalID: 7, Nonce: 0}
	sig := signRSV(t, m, sk)

	id, err := a.Authenticate(addr, m, sig)
	assert.NoError(t, err)
	assert.Equal(t, addr, id)

	// V of 27/28
	sig27 := append([]byte{}, sig...)
	sig27[64] += 27
	id, err = a.Authenticate(addr, m, sig27)
	assert.NoError(t, err)
	assert.Equal(t, addr, id)
}

func TestAuthenticator_SignerMismatch(t *testing.T) {
	a := NewAuthenticator(nil)
	skA, addrA := newKey()
	_, addrB := newKey()
	m := VoteMessage{VoteOption: 2, ProposalID: 3, Nonce: 4}
	sig := signRSV(t, m, skA)

	_, err := a.Authenticate(addrB, m, sig)
	assert.True(t, errors.SignerMismatchError.Equals(err))

	// the same signature for other message recovers other identity
	_, err = a.Authenticate(addrA, VoteMessage{VoteOption: 2, ProposalID: 3, Nonce: 5}, sig)
	assert.True(t, errors.SignerMismatchError.Equals(err))
}

func TestAuthenticator_InvalidSignature(t *testing.T) {
	a := NewAuthenticator(nil)
	sk, addr := newKey()
	m := VoteMessage{VoteOption: 1, ProposalID: 1, Nonce: 0}
	sig := signRSV(t, m, sk)

	cases := map[string][]byte{
		"empty":   nil,
		"short":   sig[:10],
		"noV":     sig[:64],
		"badV":    append(append([]byte{}, sig[:64]...), 5),
		"zeroR":   append(make([]byte, 32), sig[32:]...),
		"allZero": make([]byte, 65),
		"tooLong": append(append([]byte{}, sig...), 0),
	}
	for name, bs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Authenticate(addr, m, bs)
			assert.True(t, errors.InvalidSignatureError.Equals(err), "err=%v", err)
		})
	}
}

func TestAuthenticator_RejectHighS(t *testing.T) {
	a := NewAuthenticator(nil)
	sk, addr := newKey()
	m := VoteMessage{VoteOption: 1, ProposalID: 1, Nonce: 0}
	sig := signRSV(t, m, sk)

	// (r, n-s, v^1) is another valid signature of the same key
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[32:64])
	s.Negate()
	high := s.Bytes()
	flipped := append([]byte{}, sig[:32]...)
	flipped = append(flipped, high[:]...)
	flipped = append(flipped, sig[64]^1)

	_, err := a.Authenticate(addr, m, flipped)
	assert.True(t, errors.InvalidSignatureError.Equals(err))
}

func TestAuthenticator_EthereumSigner(t *testing.T) {
	a := NewAuthenticator(nil)
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	addr, err := common.NewAddress(gethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	require.NoError(t, err)

	// the same key is the same identity on both sides
	sk, err := crypto.ParsePrivateKey(gethcrypto.FromECDSA(key))
	require.NoError(t, err)
	assert.Equal(t, addr, common.NewAccountAddressFromPublicKey(sk.PublicKey()))

	m := VoteMessage{VoteOption: 1, ProposalID: 7, Nonce: 0}
	inner := gethcrypto.Keccak256(m.Bytes())
	assert.Equal(t, inner, InnerHash(m))

	sig, err := gethcrypto.Sign(accounts.TextHash(inner), key)
	require.NoError(t, err)
	id, err := a.Authenticate(addr, m, sig)
	assert.NoError(t, err)
	assert.Equal(t, addr, id)

	// and signatures of ours are recovered by go-ethereum
	ours := signRSV(t, m, sk)
	pub, err := gethcrypto.SigToPub(MessageHash(m), ours)
	require.NoError(t, err)
	assert.Equal(t, addr.Bytes(), gethcrypto.PubkeyToAddress(*pub).Bytes())
	assert.True(t, gethcrypto.ValidateSignatureValues(ours[64], new(big.Int).SetBytes(ours[:32]),
		new(big.Int).SetBytes(ours[32:64]), true))
}
