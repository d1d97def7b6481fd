package crypto

import (
	"golang.org/x/crypto/sha3"
)

const AddressBytesLen = 20

// Keccak256 returns the legacy Keccak-256 digest of the concatenated data,
// which is the hash Ethereum tooling signs.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// SHA3Sum256 returns the FIPS-202 SHA3-256 digest of the data.
func SHA3Sum256(data []byte) []byte {
	digest := sha3.Sum256(data)
	return digest[:]
}

// AddressBytesOf returns the 20-byte account identity of the public key,
// which is the last 20 bytes of keccak256 of the uncompressed point.
func AddressBytesOf(key *PublicKey) []byte {
	if key == nil {
		return nil
	}
	pub := key.SerializeUncompressed()
	digest := Keccak256(pub[1:])
	return digest[len(digest)-AddressBytesLen:]
}
