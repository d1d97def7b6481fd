/*
 * Copyright 2023 ICON Foundation
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
 *
 */

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testOperation struct {
	bk BucketID
	key, value []byte
}

type testBucket struct {
	Bucket
	id    BucketID
	dbase *testDatabase
}

func (bk *testBucket) Set(key []byte, value []byte) error {
	bk.dbase.writeOperation(testOperation{bk.id, key, value})
	return nil
}

func (bk *testBucket) Delete(key []byte) error {
	bk.dbase.writeOperation(testOperation{bk.id, key, nil})
	return nil
}

type testDatabase struct {
	Database
	buckets map[string]*testBucket
	record  []testOperation
}

func (t *testDatabase) writeOperation(op testOperation) {
	t.record = append(t.record, op)
}

func (t *testDatabase) GetBucket(id BucketID) (Bucket, error) {
	if bk, ok := t.buckets[string(id)]; ok {
		return bk, nil
	}
	bk := &testBucket{id: id, dbase: t}
	t.buckets[string(id)] = bk
	return bk, nil
}

func newTestDatabase() *testDatabase {
	return &testDatabase{
		buckets: make(map[string]*testBucket),
	}
}

func (t *testDatabase) Close() error {
	return nil
}

func runTestScenario(t *testing.T, ldb Database, scenario []testOperation) {
	for _, c := range scenario {
		bk, err := ldb.GetBucket(c.bk)
		assert.NoError(t, err)
		assert.NotNil(t, bk)

		if c.value == nil {
			err := bk.Delete(c.key)
			assert.NoError(t, err)
		} else {
			err := bk.Set(c.key, c.value)
			assert.NoError(t, err)
		}
	}
}

func TestLayerDB_FlushInOrder(t *testing.T) {
	scenario0a := []testOperation{
		{SignerByAddress, []byte("key0a"), []byte("value0a")},
	}

	scenario0b := []testOperation{
		{SignerByAddress, []byte("key0b"), []byte("value0b")},
	}

	scenario1 := []testOperation{
		{SignerByAddress, []byte("key1"), []byte("value1")},
		{SignerByAddress, []byte("key1"), nil},
		{SignerByAddress, []byte("key2"), []byte("value2")},
		{SignerByAddress, []byte("key3"), []byte("value3")},
		{SignerByAddress, []byte("key2"), []byte("value4")},
		{ChainProperty, []byte("key4"), []byte("value4")},
		{SignerByAddress, []byte("key5"), []byte("value5")},
		{ChainProperty, []byte("key4"), []byte("valueX")},
	}

	scenario2 := []testOperation{
		{SignerByAddress, []byte("key6"), []byte("value6")},
	}

	exp := []testOperation{
		{SignerByAddress, []byte("key1"), nil},
		{SignerByAddress, []byte("key3"), []byte("value3")},
		{SignerByAddress, []byte("key2"), []byte("value4")},
		{SignerByAddress, []byte("key5"), []byte("value5")},
		{ChainProperty, []byte("key4"), []byte("valueX")},
		{SignerByAddress, []byte("key6"), []byte("value6")},
	}

	dbase := newTestDatabase()
	ldb := NewLayerDB(dbase)

	runTestScenario(t, ldb, scenario0a)
	assert.NoError(t, ldb.Flush(false))

	runTestScenario(t, ldb, scenario0b)
	assert.NoError(t, ldb.Flush(false))

	runTestScenario(t, ldb, scenario1)

	err := ldb.Flush(true)
	assert.NoError(t, err)

	runTestScenario(t, ldb, scenario2)

	// check records
	assert.NoError(t, err)
	assert.Equal(t, exp, dbase.record)

	// check error Flush(false) after Flush(true)
	assert.Error(t, ldb.Flush(false))

	assert.Equal(t, Unwrap(ldb), dbase)
}

func TestLayerDB_Discard(t *testing.T) {
	base := NewMapDB()
	bk, _ := base.GetBucket(SignerByAddress)
	assert.NoError(t, bk.Set([]byte("signer"), []byte{0x00}))

	ldb := NewLayerDB(base)
	lbk, err := ldb.GetBucket(SignerByAddress)
	assert.NoError(t, err)

	assert.NoError(t, lbk.Set([]byte("signer"), []byte{0x01}))
	assert.NoError(t, lbk.Set([]byte("other"), []byte{0x02}))

	// visible through the layer, not in the base
	v, err := lbk.Get([]byte("signer"))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01}, v)
	v, err = bk.Get([]byte("signer"))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00}, v)

	assert.NoError(t, ldb.Flush(false))

	v, err = lbk.Get([]byte("signer"))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00}, v)
	has, err := bk.Has([]byte("other"))
	assert.NoError(t, err)
	assert.False(t, has)

	// still layered after discarding
	assert.NoError(t, lbk.Set([]byte("signer"), []byte{0x03}))
	v, _ = bk.Get([]byte("signer"))
	assert.Equal(t, []byte{0x00}, v)

	assert.NoError(t, ldb.Flush(true))
	v, _ = bk.Get([]byte("signer"))
	assert.Equal(t, []byte{0x03}, v)

	// direct mode after commit
	assert.NoError(t, lbk.Set([]byte("signer"), []byte{0x04}))
	v, _ = bk.Get([]byte("signer"))
	assert.Equal(t, []byte{0x04}, v)
}

type batchRecorder struct {
	*testDatabase
	batches [][]Operation
}

func (b *batchRecorder) WriteBatch(ops []Operation) error {
	b.batches = append(b.batches, ops)
	return nil
}

func TestLayerDB_FlushWithBatch(t *testing.T) {
	base := &batchRecorder{testDatabase: newTestDatabase()}
	ldb := NewLayerDB(base)
	runTestScenario(t, ldb, []testOperation{
		{SignerByAddress, []byte("a"), []byte("1")},
		{BallotByID, []byte("b"), []byte("2")},
		{SignerByAddress, []byte("a"), nil},
	})
	assert.NoError(t, ldb.Flush(true))

	assert.Empty(t, base.record)
	assert.Equal(t, [][]Operation{{
		{BallotByID, []byte("b"), []byte("2")},
		{SignerByAddress, []byte("a"), nil},
	}}, base.batches)

	// nothing to write
	ldb = NewLayerDB(base)
	assert.NoError(t, ldb.Flush(true))
	assert.Len(t, base.batches, 1)
}

func TestLayerDB_Stacked(t *testing.T) {
	base := NewMapDB()
	outer := NewLayerDB(base)
	inner := NewLayerDB(outer)

	ibk, err := inner.GetBucket(ChainProperty)
	assert.NoError(t, err)
	assert.NoError(t, ibk.Set([]byte("next"), []byte{0x02}))
	assert.NoError(t, inner.Flush(true))

	obk, _ := outer.GetBucket(ChainProperty)
	v, err := obk.Get([]byte("next"))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x02}, v)

	bbk, _ := base.GetBucket(ChainProperty)
	has, _ := bbk.Has([]byte("next"))
	assert.False(t, has)

	assert.NoError(t, outer.Flush(true))
	v, _ = bbk.Get([]byte("next"))
	assert.Equal(t, []byte{0x02}, v)
}
