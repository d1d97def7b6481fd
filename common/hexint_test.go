package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUint(t *testing.T) {
	cases := []struct {
		in    string
		bits  int
		value uint64
		ok    bool
	}{
		{"0", 64, 0, true},
		{"12", 64, 12, true},
		{"0x0", 64, 0, true},
		{"0x1f", 64, 31, true},
		{"ff", 64, 255, true},
		{"0xffffffffffffffff", 64, 0xffffffffffffffff, true},
		{"0x10000000000000000", 64, 0, false},
		{"0x100", 8, 0, false},
		{"", 64, 0, false},
		{"0xzz", 64, 0, false},
		{"-1", 64, 0, false},
	}
	for _, c := range cases {
		v, err := ParseUint(c.in, c.bits)
		if c.ok {
			assert.NoError(t, err, c.in)
			assert.Equal(t, c.value, v, c.in)
		} else {
			assert.Error(t, err, c.in)
		}
	}
}

func TestFormatUint(t *testing.T) {
	assert.Equal(t, "0x0", FormatUint(0))
	assert.Equal(t, "0x1", FormatUint(1))
	assert.Equal(t, "0x100", FormatUint(256))
	assert.Equal(t, "0xffffffffffffffff", FormatUint(0xffffffffffffffff))

	for _, v := range []uint64{0, 7, 0x80, 0x1234, 1 << 40} {
		p, err := ParseUint(FormatUint(v), 64)
		assert.NoError(t, err)
		assert.Equal(t, v, p)
	}
}

func TestHexUint64_JSON(t *testing.T) {
	type holder struct {
		Nonce HexUint64 `json:"nonce"`
	}
	bs, err := json.Marshal(holder{NewHexUint64(26)})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"nonce":"0x1a"}`, string(bs))

	var h holder
	assert.NoError(t, json.Unmarshal([]byte(`{"nonce":"0x1a"}`), &h))
	assert.Equal(t, uint64(26), h.Nonce.Value)

	// bare numbers are accepted for convenience
	assert.NoError(t, json.Unmarshal([]byte(`{"nonce":3}`), &h))
	assert.Equal(t, uint64(3), h.Nonce.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"nonce":"0xnope"}`), &h))
}

func TestUint64ToBytes(t *testing.T) {
	assert.Equal(t, []byte{}, Uint64ToBytes(0))
	assert.Equal(t, []byte{0x01, 0x00}, Uint64ToBytes(256))
	assert.Equal(t, uint64(256), BytesToUint64([]byte{0x01, 0x00}))
}
