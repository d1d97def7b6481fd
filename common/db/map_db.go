package db

import (
	"sync"
)

const MapDBBackend BackendType = "mapdb"

func init() {
	dbCreator := func(name string, dir string) (Database, error) {
		return NewMapDB(), nil
	}
	registerDBCreator(MapDBBackend, dbCreator, false)
}

// NewMapDB returns in-memory database. It's safe for concurrent use.
func NewMapDB() Database {
	return &mapDatabase{
		buckets: make(map[BucketID]*mapBucket),
	}
}

//----------------------------------------
// DB

var _ Database = (*mapDatabase)(nil)

type mapDatabase struct {
	lock    sync.Mutex
	buckets map[BucketID]*mapBucket
}

func (t *mapDatabase) GetBucket(id BucketID) (Bucket, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if bk, ok := t.buckets[id]; ok {
		return bk, nil
	}
	bk := &mapBucket{
		real: make(map[string][]byte),
	}
	t.buckets[id] = bk
	return bk, nil
}

func (t *mapDatabase) Close() error {
	return nil
}

//----------------------------------------
// Bucket

var _ Bucket = (*mapBucket)(nil)

type mapBucket struct {
	lock sync.RWMutex
	real map[string][]byte
}

func (t *mapBucket) Get(k []byte) ([]byte, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	if v, ok := t.real[string(k)]; ok {
		bs := make([]byte, len(v))
		copy(bs, v)
		return bs, nil
	}
	return nil, nil
}

func (t *mapBucket) Has(k []byte) (bool, error) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	_, ok := t.real[string(k)]
	return ok, nil
}

func (t *mapBucket) Set(k, v []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	bs := make([]byte, len(v))
	copy(bs, v)
	t.real[string(k)] = bs
	return nil
}

func (t *mapBucket) Delete(k []byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	delete(t.real, string(k))
	return nil
}
