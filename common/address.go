package common

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/icon-project/govote/common/crypto"
)

const AddressBytes = crypto.AddressBytesLen

// Address is the identity of a signer. It's the 20-byte account address
// derived from the signer's public key, so it's comparable and can be used
// as a map key.
type Address [AddressBytes]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Equal(a2 Address) bool {
	return a == a2
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return a.SetStringStrict(s)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	return a.SetStringStrict(string(b))
}

// SetStringStrict accepts only "0x" followed by 40 hex digits. Mixed case
// (EIP-55 checksum form) is accepted but the checksum isn't verified.
func (a *Address) SetStringStrict(s string) error {
	if len(s) != AddressBytes*2+2 || !strings.HasPrefix(s, "0x") {
		return ErrIllegalArgument
	}
	bs, err := hex.DecodeString(s[2:])
	if err != nil {
		return ErrIllegalArgument
	}
	copy(a[:], bs)
	return nil
}

// SetString parses the hex string with or without "0x" prefix. Shorter
// values are padded with leading zeros.
func (a *Address) SetString(s string) error {
	s = strings.TrimPrefix(s, "0x")
	if len(s) > AddressBytes*2 {
		return ErrIllegalArgument
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	bs, err := hex.DecodeString(s)
	if err != nil {
		return ErrIllegalArgument
	}
	a.setID(bs)
	return nil
}

func (a *Address) SetBytes(b []byte) error {
	if len(b) != AddressBytes {
		return ErrIllegalArgument
	}
	copy(a[:], b)
	return nil
}

func (a *Address) setID(id []byte) {
	var zero Address
	bp := AddressBytes - len(id)
	copy(a[:bp], zero[:])
	copy(a[bp:], id)
}

func NewAddress(b []byte) (Address, error) {
	var a Address
	if err := a.SetBytes(b); err != nil {
		return a, err
	}
	return a, nil
}

func NewAddressFromString(s string) (Address, error) {
	var a Address
	if err := a.SetStringStrict(s); err != nil {
		return a, err
	}
	return a, nil
}

// MustParseAddress is NewAddressFromString for literals. It panics on
// malformed input.
func MustParseAddress(s string) Address {
	a, err := NewAddressFromString(s)
	if err != nil {
		panic(err)
	}
	return a
}

func NewAccountAddressFromPublicKey(pubKey *crypto.PublicKey) Address {
	var a Address
	copy(a[:], crypto.AddressBytesOf(pubKey))
	return a
}
