/*
 * Copyright 2021 ICON Foundation
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

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/icon-project/govote/common/errors"
)

type record struct {
	Owner  [20]byte
	Valid  bool
	Nonce  uint64
	Labels map[string]uint64
}

func TestMP_Canonical(t *testing.T) {
	r := record{
		Owner: [20]byte{1, 2, 3},
		Valid: true,
		Nonce: 7,
		Labels: map[string]uint64{
			"yes": 1, "no": 2, "abstain": 3, "later": 4,
		},
	}
	bs1, err := MP.MarshalToBytes(&r)
	assert.NoError(t, err)
	for i := 0; i < 10; i++ {
		bs2 := MP.MustMarshalToBytes(&r)
		assert.Equal(t, bs1, bs2)
	}

	var r2 record
	remain, err := MP.UnmarshalFromBytes(bs1, &r2)
	assert.NoError(t, err)
	assert.Empty(t, remain)
	assert.Equal(t, r, r2)
}

func TestMP_Remaining(t *testing.T) {
	bs1 := MustMarshalToBytes(uint64(3))
	bs2 := MustMarshalToBytes("tail")
	joined := append(append([]byte{}, bs1...), bs2...)

	var v uint64
	remain, err := UnmarshalFromBytes(joined, &v)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, v)
	assert.Equal(t, bs2, remain)

	var s string
	remain, err = UnmarshalFromBytes(remain, &s)
	assert.NoError(t, err)
	assert.Equal(t, "tail", s)
	assert.Empty(t, remain)
}

func TestMP_DecodeFail(t *testing.T) {
	bs := MustMarshalToBytes(&record{Nonce: 1})
	var r record
	remain, err := MP.UnmarshalFromBytes(bs[:len(bs)/2], &r)
	assert.Error(t, err)
	assert.Equal(t, errors.CriticalFormatError, errors.CodeOf(err))
	assert.Equal(t, bs[:len(bs)/2], remain)
}

func TestJSON_Codec(t *testing.T) {
	bs, err := JSON.MarshalToBytes(map[string]int{"b": 2, "a": 1})
	assert.NoError(t, err)
	assert.Equal(t, "{\"a\":1,\"b\":2}\n", string(bs))

	var m map[string]int
	_, err = JSON.UnmarshalFromBytes(bs, &m)
	assert.NoError(t, err)
	assert.Equal(t, 2, m["b"])
}
