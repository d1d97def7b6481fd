/*
 * Copyright 2022 ICON Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_Uninitialized(t *testing.T) {
	var sig Signature
	t.Run("SerializeRS", func(t *testing.T) {
		bs, err := sig.SerializeRS()
		assert.Error(t, err)
		assert.Nil(t, bs)
	})

	t.Run("SerializeRSV", func(t *testing.T) {
		bs, err := sig.SerializeRSV()
		assert.Error(t, err)
		assert.Nil(t, bs)
	})

	t.Run("SerializeVRS", func(t *testing.T) {
		bs, err := sig.SerializeVRS()
		assert.Error(t, err)
		assert.Nil(t, bs)
	})

	t.Run("HasV", func(t *testing.T) {
		assert.False(t, sig.HasV())
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "[empty]", sig.String())
	})
}

func TestSignature_NewSignature(t *testing.T) {
	sk, _ := GenerateKeyPair()
	hash := Keccak256([]byte("TEST Data"))
	t.Run("NilParameter", func(t *testing.T) {
		sig, err := NewSignature(nil, sk)
		assert.Error(t, err)
		assert.Nil(t, sig)

		sig, err = NewSignature(hash, nil)
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("ShortHash", func(t *testing.T) {
		sig, err := NewSignature(hash[:20], sk)
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("ValidParameter", func(t *testing.T) {
		sig, err := NewSignature(hash, sk)
		assert.NoError(t, err)
		assert.NotNil(t, sig)
		assert.True(t, sig.HasV())
	})
}

func TestSignature_Serialize(t *testing.T) {
	sk, pk := GenerateKeyPair()
	hash := SHA3Sum256([]byte("test data"))

	sig, err := NewSignature(hash, sk)
	assert.NoError(t, err)

	rsv, err := sig.SerializeRSV()
	assert.NoError(t, err)
	assert.Len(t, rsv, SignatureLenRawWithV)
	assert.LessOrEqual(t, rsv[SignatureLenRaw], byte(1))

	t.Run("SerializeRS", func(t *testing.T) {
		rs, err := sig.SerializeRS()
		assert.NoError(t, err)
		assert.Equal(t, rsv[0:SignatureLenRaw], rs)

		sig2, err := ParseSignature(rs)
		assert.NoError(t, err)
		assert.False(t, sig2.HasV())
		assert.True(t, sig2.Verify(hash, pk))
	})

	t.Run("SerializeVRS", func(t *testing.T) {
		vrs, err := sig.SerializeVRS()
		assert.NoError(t, err)
		assert.Equal(t, rsv[0:SignatureLenRaw], vrs[1:])
		assert.Equal(t, rsv[SignatureLenRaw:], vrs[:1])

		sig2, err := ParseSignatureVRS(vrs)
		assert.NoError(t, err)
		vrs2, err := sig2.SerializeVRS()
		assert.NoError(t, err)
		assert.Equal(t, vrs, vrs2)
	})

	t.Run("EthereumV", func(t *testing.T) {
		eth := make([]byte, SignatureLenRawWithV)
		copy(eth, rsv)
		eth[SignatureLenRaw] += 27

		sig2, err := ParseSignature(eth)
		assert.NoError(t, err)
		rsv2, err := sig2.SerializeRSV()
		assert.NoError(t, err)
		assert.Equal(t, rsv, rsv2)
	})
}

func TestSignature_RecoverPublicKey(t *testing.T) {
	sk, pk := GenerateKeyPair()
	hash := Keccak256([]byte("recover me"))

	sig, err := NewSignature(hash, sk)
	assert.NoError(t, err)

	pk2, err := sig.RecoverPublicKey(hash)
	assert.NoError(t, err)
	assert.True(t, pk.Equal(pk2))
	assert.Equal(t, AddressBytesOf(pk), AddressBytesOf(pk2))

	other := Keccak256([]byte("something else"))
	pk3, err := sig.RecoverPublicKey(other)
	if err == nil {
		assert.False(t, pk.Equal(pk3))
	}

	_, err = sig.RecoverPublicKey(hash[:16])
	assert.Error(t, err)

	rs, _ := sig.SerializeRS()
	noV, _ := ParseSignature(rs)
	_, err = noV.RecoverPublicKey(hash)
	assert.Error(t, err)
}

func Test_ParseSignature(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		sig, err := ParseSignature(nil)
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("Less", func(t *testing.T) {
		sig, err := ParseSignature([]byte{1, 2, 3})
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("RSSize", func(t *testing.T) {
		sig, err := ParseSignature(make([]byte, SignatureLenRaw))
		assert.NoError(t, err)
		assert.False(t, sig.HasV())
	})

	t.Run("RSVSize", func(t *testing.T) {
		sig, err := ParseSignature(make([]byte, SignatureLenRawWithV))
		assert.NoError(t, err)
		assert.True(t, sig.HasV())
	})

	t.Run("BadRecoveryID", func(t *testing.T) {
		rsv := make([]byte, SignatureLenRawWithV)
		rsv[SignatureLenRaw] = 5
		sig, err := ParseSignature(rsv)
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("RSVSize+1", func(t *testing.T) {
		sig, err := ParseSignature(make([]byte, SignatureLenRawWithV+1))
		assert.Error(t, err)
		assert.Nil(t, sig)
	})
}

func Test_ParseSignatureVRS(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		sig, err := ParseSignatureVRS(nil)
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("RSSize", func(t *testing.T) {
		sig, err := ParseSignatureVRS(make([]byte, SignatureLenRaw))
		assert.Error(t, err)
		assert.Nil(t, sig)
	})

	t.Run("VRSSize", func(t *testing.T) {
		sig, err := ParseSignatureVRS(make([]byte, SignatureLenRawWithV))
		assert.NoError(t, err)
		assert.True(t, sig.HasV())
	})
}
