package jsonrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	type params struct {
		Address   Address  `json:"address" validate:"required,t_addr"`
		Nonce     HexInt   `json:"nonce" validate:"required,t_int"`
		Signature HexBytes `json:"signature" validate:"optional,t_sig"`
	}
	v := NewValidator()

	valid := &params{
		Address: "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf",
		Nonce:   "0x0",
	}
	assert.NoError(t, v.Validate(valid))

	valid.Signature = HexBytes("0x" + string(make65Hex()))
	assert.NoError(t, v.Validate(valid))

	cases := []*params{
		{Address: "hx7e5f4552091a69125d5dfcb7b8c2659029395bdf", Nonce: "0x0"},
		{Address: "0x7e5f4552091a69125d5dfcb7b8c2659029395b", Nonce: "0x0"},
		{Address: "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", Nonce: "0x01"},
		{Address: "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", Nonce: "10"},
		{Address: "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf", Nonce: "0x1", Signature: "0x00"},
	}
	for _, c := range cases {
		assert.Error(t, v.Validate(c), "params=%+v", c)
	}
}

func make65Hex() []byte {
	bs := make([]byte, 130)
	for i := range bs {
		bs[i] = 'a'
	}
	return bs
}

func TestRequestValidation(t *testing.T) {
	v := NewValidator()
	m := "gov_getNonce"
	assert.NoError(t, v.Validate(&Request{Version: Version, Method: &m}))
	assert.Error(t, v.Validate(&Request{Version: "1.0", Method: &m}))
	assert.Error(t, v.Validate(&Request{Version: Version}))
}
