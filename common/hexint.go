package common

import (
	"encoding/hex"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

func Uint64ToBytes(v uint64) []byte {
	if v == 0 {
		return []byte{}
	}
	bs := make([]byte, 8)
	for idx := 7; idx >= 0; idx-- {
		bs[idx] = byte(v & 0xff)
		v >>= 8
		if v == 0 {
			return bs[idx:]
		}
	}
	return bs
}

func BytesToUint64(bs []byte) uint64 {
	var v uint64
	for _, b := range bs {
		v = (v << 8) | uint64(b)
	}
	return v
}

func encodeHexNumber(b []byte) string {
	s := hex.EncodeToString(b)
	if len(s) == 0 {
		return "0x0"
	}
	if s[0] == '0' {
		s = s[1:]
	}
	return "0x" + s
}

func decodeHexNumber(s string) ([]byte, error) {
	if len(s) > 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	if (len(s) % 2) == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

// ParseUint parses decimal or "0x" prefixed hexadecimal number.
func ParseUint(s string, bits int) (uint64, error) {
	if v64, err := strconv.ParseUint(s, 0, bits); err == nil {
		return v64, nil
	}
	bs, err := decodeHexNumber(s)
	if err != nil || len(s) == 0 {
		return 0, errors.New("IllegalFormat")
	}
	if len(bs) > 8 {
		bs = trimLeadingZeros(bs)
	}
	if len(bs)*8 > bits {
		return 0, errors.New("OutOfRange")
	}
	return BytesToUint64(bs), nil
}

func trimLeadingZeros(bs []byte) []byte {
	for len(bs) > 0 && bs[0] == 0 {
		bs = bs[1:]
	}
	return bs
}

func FormatUint(v uint64) string {
	return encodeHexNumber(Uint64ToBytes(v))
}

// HexUint64 is uint64 encoded as "0x" prefixed hexadecimal string in JSON.
type HexUint64 struct {
	Value uint64
}

func (i HexUint64) String() string {
	return FormatUint(i.Value)
}

func (i HexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *HexUint64) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		s = string(b)
	}
	v64, err := ParseUint(s, 64)
	if err != nil {
		return err
	}
	i.Value = v64
	return nil
}

func NewHexUint64(v uint64) HexUint64 {
	return HexUint64{Value: v}
}
