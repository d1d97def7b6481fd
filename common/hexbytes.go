package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HexBytes is a byte slice encoded as "0x" prefixed hex string in JSON.
type HexBytes []byte

func (hs HexBytes) MarshalJSON() ([]byte, error) {
	if hs == nil {
		return []byte("null"), nil
	}
	s := "0x" + hex.EncodeToString(hs)
	return json.Marshal(s)
}

func (hs *HexBytes) UnmarshalJSON(b []byte) error {
	var os *string
	if err := json.Unmarshal(b, &os); err != nil {
		return err
	}
	if os == nil {
		*hs = nil
		return nil
	}
	bin, err := ParseHexBytes(*os)
	if err != nil {
		return err
	}
	*hs = bin
	return nil
}

func (hs HexBytes) Bytes() []byte {
	if hs == nil {
		return nil
	}
	return hs[:]
}

func (hs HexBytes) String() string {
	if hs == nil {
		return "null"
	}
	return "0x" + hex.EncodeToString(hs)
}

// ParseHexBytes decodes hex string with optional "0x" prefix.
func ParseHexBytes(s string) (HexBytes, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

const PrefixLen = 4

// HexPre returns hexadecimal string of prefix of byte slice bs.
func HexPre(bs []byte) string {
	if bs == nil {
		return "<nil>"
	}
	if len(bs) > PrefixLen {
		return fmt.Sprintf("%x..", bs[:PrefixLen])
	}
	return fmt.Sprintf("%x", bs)
}
