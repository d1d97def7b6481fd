package auth

import (
	"encoding/binary"
	"fmt"

	"github.com/icon-project/govote/common/crypto"
)

const (
	// DomainPrefix scopes vote signatures to signed messages of 32 bytes.
	DomainPrefix = "\x19Ethereum Signed Message:\n32"

	// EncodingVersion is the version of the vote message encoding.
	EncodingVersion = 1

	wordLen = 32
)

// VoteMessage is the payload signed by a signer.
type VoteMessage struct {
	VoteOption uint64
	ProposalID uint64
	Nonce      uint64
}

func putWord(buf []byte, v uint64) {
	binary.BigEndian.PutUint64(buf[wordLen-8:wordLen], v)
}

// Bytes returns encoded message. Every field takes a 32 bytes big-endian
// word in the order of vote option, proposal id and nonce.
func (m VoteMessage) Bytes() []byte {
	buf := make([]byte, wordLen*3)
	putWord(buf[0:], m.VoteOption)
	putWord(buf[wordLen:], m.ProposalID)
	putWord(buf[wordLen*2:], m.Nonce)
	return buf
}

func (m VoteMessage) String() string {
	return fmt.Sprintf("VoteMessage{option=%d,proposal=%d,nonce=%d}",
		m.VoteOption, m.ProposalID, m.Nonce)
}

func InnerHash(m VoteMessage) []byte {
	return crypto.Keccak256(m.Bytes())
}

// SignedHash returns the hash to be signed for the inner hash.
func SignedHash(inner []byte) []byte {
	return crypto.Keccak256([]byte(DomainPrefix), inner)
}

func MessageHash(m VoteMessage) []byte {
	return SignedHash(InnerHash(m))
}

// Sign signs the message with the key.
func Sign(m VoteMessage, key *crypto.PrivateKey) (*crypto.Signature, error) {
	return crypto.NewSignature(MessageHash(m), key)
}
