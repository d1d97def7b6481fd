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

package db

import (
	"github.com/icon-project/govote/common/codec"
	"github.com/icon-project/govote/common/errors"
)

// CodedBucket stores objects encoded by the codec. Keys of type []byte
// and Raw are used as they are, others are encoded too.
type CodedBucket struct {
	dbBucket Bucket
	codec    codec.Codec
}

func NewCodedBucket(database Database, id BucketID, c codec.Codec) (*CodedBucket, error) {
	dbb, err := database.GetBucket(id)
	if err != nil {
		return nil, err
	}
	return NewCodedBucketFromBucket(dbb, c), nil
}

func NewCodedBucketFromBucket(bk Bucket, c codec.Codec) *CodedBucket {
	if c == nil {
		c = codec.BC
	}
	return &CodedBucket{
		dbBucket: bk,
		codec:    c,
	}
}

type Raw []byte

func (b *CodedBucket) _marshal(obj interface{}) ([]byte, error) {
	switch o := obj.(type) {
	case Raw:
		return o, nil
	case []byte:
		return o, nil
	default:
		return b.codec.MarshalToBytes(obj)
	}
}

// Get decodes the value for the key. It returns NotFoundError if there
// is no value.
func (b *CodedBucket) Get(key interface{}, value interface{}) error {
	bs, err := b.GetBytes(key)
	if err != nil {
		return err
	}
	_, err = b.codec.UnmarshalFromBytes(bs, value)
	return err
}

func (b *CodedBucket) GetBytes(key interface{}) ([]byte, error) {
	keyBS, err := b._marshal(key)
	if err != nil {
		return nil, err
	}
	bs, err := b.dbBucket.Get(keyBS)
	if bs == nil && err == nil {
		err = errors.NotFoundError.Errorf("NotFound(key=%x)", keyBS)
	}
	return bs, err
}

func (b *CodedBucket) Has(key interface{}) (bool, error) {
	keyBS, err := b._marshal(key)
	if err != nil {
		return false, err
	}
	return b.dbBucket.Has(keyBS)
}

func (b *CodedBucket) Set(key interface{}, value interface{}) error {
	keyBS, err := b._marshal(key)
	if err != nil {
		return err
	}
	valueBS, err := b._marshal(value)
	if err != nil {
		return err
	}
	if err = b.dbBucket.Set(keyBS, valueBS); err != nil {
		return errors.CriticalIOError.Wrap(err, "FailToSetKVDB")
	}
	return nil
}

func (b *CodedBucket) Delete(key interface{}) error {
	keyBS, err := b._marshal(key)
	if err != nil {
		return err
	}
	if err = b.dbBucket.Delete(keyBS); err != nil {
		return errors.CriticalIOError.Wrap(err, "FailToDeleteKVDB")
	}
	return nil
}
