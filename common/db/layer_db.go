package db

import (
	"sync"

	"github.com/icon-project/govote/common/errors"
)

type pendingWrite struct {
	Operation
	dropped bool
}

// layerDB keeps writes in memory in the order of the last write of each
// key. All buckets share the lock of the database.
type layerDB struct {
	lock sync.Mutex

	real    Database
	direct  bool
	buckets map[BucketID]*layerBucket
	writes  []*pendingWrite
	index   map[BucketID]map[string]*pendingWrite
}

func NewLayerDB(database Database) LayerDB {
	ldb := &layerDB{
		real:    database,
		buckets: make(map[BucketID]*layerBucket),
	}
	ldb.reset()
	return ldb
}

func (ldb *layerDB) reset() {
	ldb.writes = nil
	ldb.index = make(map[BucketID]map[string]*pendingWrite)
}

func (ldb *layerDB) pending(id BucketID, key []byte) (*pendingWrite, bool) {
	w, ok := ldb.index[id][string(key)]
	return w, ok
}

func (ldb *layerDB) put(id BucketID, key, value []byte) {
	m, ok := ldb.index[id]
	if !ok {
		m = make(map[string]*pendingWrite)
		ldb.index[id] = m
	}
	if old, ok := m[string(key)]; ok {
		old.dropped = true
	}
	w := &pendingWrite{Operation: Operation{
		Bucket: id,
		Key:    append([]byte{}, key...),
		Value:  value,
	}}
	m[string(key)] = w
	ldb.writes = append(ldb.writes, w)
}

func (ldb *layerDB) GetBucket(id BucketID) (Bucket, error) {
	ldb.lock.Lock()
	defer ldb.lock.Unlock()

	if bk, ok := ldb.buckets[id]; ok {
		return bk, nil
	}
	rbk, err := ldb.real.GetBucket(id)
	if err != nil {
		return nil, err
	}
	if ldb.direct {
		return rbk, nil
	}
	bk := &layerBucket{id: id, db: ldb, real: rbk}
	ldb.buckets[id] = bk
	return bk, nil
}

// WriteBatch buffers the operations as a unit, so layers can be stacked.
func (ldb *layerDB) WriteBatch(ops []Operation) error {
	ldb.lock.Lock()
	defer ldb.lock.Unlock()

	if ldb.direct {
		return WriteBatch(ldb.real, ops)
	}
	for _, op := range ops {
		var value []byte
		if op.Value != nil {
			value = append([]byte{}, op.Value...)
		}
		ldb.put(op.Bucket, op.Key, value)
	}
	return nil
}

func (ldb *layerDB) operations() []Operation {
	ops := make([]Operation, 0, len(ldb.writes))
	for _, w := range ldb.writes {
		if !w.dropped {
			ops = append(ops, w.Operation)
		}
	}
	return ops
}

// Flush writes buffered operations to the underlying database and
// switches to direct mode if write is true. Otherwise they're dropped.
func (ldb *layerDB) Flush(write bool) error {
	ldb.lock.Lock()
	defer ldb.lock.Unlock()

	if ldb.direct {
		if !write {
			return errors.InvalidStateError.New("DirectFlushMode")
		}
		return nil
	}
	if write {
		if err := WriteBatch(ldb.real, ldb.operations()); err != nil {
			return err
		}
		ldb.direct = true
	}
	ldb.reset()
	return nil
}

func (ldb *layerDB) Close() error {
	return nil
}

func (ldb *layerDB) Unwrap() Database {
	return ldb.real
}

type layerBucket struct {
	id   BucketID
	db   *layerDB
	real Bucket
}

func (bk *layerBucket) Get(key []byte) ([]byte, error) {
	bk.db.lock.Lock()
	defer bk.db.lock.Unlock()

	if w, ok := bk.db.pending(bk.id, key); ok {
		return w.Value, nil
	}
	return bk.real.Get(key)
}

func (bk *layerBucket) Has(key []byte) (bool, error) {
	bk.db.lock.Lock()
	defer bk.db.lock.Unlock()

	if w, ok := bk.db.pending(bk.id, key); ok {
		return w.Value != nil, nil
	}
	return bk.real.Has(key)
}

func (bk *layerBucket) Set(key []byte, value []byte) error {
	bk.db.lock.Lock()
	defer bk.db.lock.Unlock()

	if bk.db.direct {
		return bk.real.Set(key, value)
	}
	bk.db.put(bk.id, key, append([]byte{}, value...))
	return nil
}

func (bk *layerBucket) Delete(key []byte) error {
	bk.db.lock.Lock()
	defer bk.db.lock.Unlock()

	if bk.db.direct {
		return bk.real.Delete(key)
	}
	bk.db.put(bk.id, key, nil)
	return nil
}

// Unwrap returns the database under the layer, or the database itself.
func Unwrap(database Database) Database {
	type unwrapper interface {
		Unwrap() Database
	}
	if u, ok := database.(unwrapper); ok {
		return u.Unwrap()
	}
	return database
}
