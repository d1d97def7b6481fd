package auth

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteMessage_Bytes(t *testing.T) {
	m := VoteMessage{VoteOption: 1, ProposalID: 7, Nonce: 0}
	bs := m.Bytes()
	assert.Len(t, bs, 96)
	assert.Equal(t,
		"0000000000000000000000000000000000000000000000000000000000000001"+
			"0000000000000000000000000000000000000000000000000000000000000007"+
			"0000000000000000000000000000000000000000000000000000000000000000",
		hex.EncodeToString(bs))
}

func TestVoteMessage_ABICompatible(t *testing.T) {
	uint256, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)
	args := abi.Arguments{{Type: uint256}, {Type: uint256}, {Type: uint256}}

	cases := []VoteMessage{
		{0, 0, 0},
		{1, 7, 0},
		{3, 99, 12},
		{^uint64(0), 1 << 40, ^uint64(0) - 1},
	}
	for _, m := range cases {
		packed, err := args.Pack(
			new(big.Int).SetUint64(m.VoteOption),
			new(big.Int).SetUint64(m.ProposalID),
			new(big.Int).SetUint64(m.Nonce),
		)
		require.NoError(t, err)
		assert.Equal(t, packed, m.Bytes(), m.String())
	}
}

func TestHash_Distinct(t *testing.T) {
	msgs := []VoteMessage{
		{1, 7, 0},
		{7, 1, 0},
		{0, 7, 1},
		{1, 0, 7},
		{1, 7, 1},
	}
	seen := make(map[string]VoteMessage)
	for _, m := range msgs {
		h := hex.EncodeToString(InnerHash(m))
		_, dup := seen[h]
		assert.False(t, dup, m.String())
		seen[h] = m
	}
}

func TestSignedHash_TextHash(t *testing.T) {
	inner := InnerHash(VoteMessage{1, 7, 0})
	assert.Equal(t, accounts.TextHash(inner), SignedHash(inner))
	assert.Equal(t, SignedHash(inner), MessageHash(VoteMessage{1, 7, 0}))
	assert.NotEqual(t, inner, SignedHash(inner))
}
