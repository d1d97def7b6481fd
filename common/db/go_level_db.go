package db

import (
	"path/filepath"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

const GoLevelDBBackend BackendType = "goleveldb"

func init() {
	registerDBCreator(GoLevelDBBackend, func(name string, dir string) (Database, error) {
		return NewGoLevelDB(name, dir)
	}, false)
}

// GoLevelDB keeps every bucket in one leveldb, keys prefixed with the
// bucket id.
type GoLevelDB struct {
	lock    sync.RWMutex
	db      *leveldb.DB
	buckets map[BucketID]*goLevelBucket
}

var (
	_ Database    = (*GoLevelDB)(nil)
	_ BatchWriter = (*GoLevelDB)(nil)
)

func NewGoLevelDB(name string, dir string) (*GoLevelDB, error) {
	return NewGoLevelDBWithOpts(name, dir, nil)
}

func NewGoLevelDBWithOpts(name string, dir string, o *opt.Options) (*GoLevelDB, error) {
	ldb, err := leveldb.OpenFile(filepath.Join(dir, name), o)
	if err != nil {
		return nil, err
	}
	return &GoLevelDB{
		db:      ldb,
		buckets: make(map[BucketID]*goLevelBucket),
	}, nil
}

func (g *GoLevelDB) handle() (*leveldb.DB, error) {
	g.lock.RLock()
	defer g.lock.RUnlock()
	if g.db == nil {
		return nil, leveldb.ErrClosed
	}
	return g.db, nil
}

func (g *GoLevelDB) GetBucket(id BucketID) (Bucket, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.db == nil {
		return nil, leveldb.ErrClosed
	}
	bk, ok := g.buckets[id]
	if !ok {
		bk = &goLevelBucket{id: id, db: g.db}
		g.buckets[id] = bk
	}
	return bk, nil
}

// WriteBatch applies the operations in a single leveldb batch.
func (g *GoLevelDB) WriteBatch(ops []Operation) error {
	ldb, err := g.handle()
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	for _, op := range ops {
		key := internalKey(op.Bucket, op.Key)
		if op.Value == nil {
			batch.Delete(key)
		} else {
			batch.Put(key, op.Value)
		}
	}
	return ldb.Write(batch, nil)
}

func (g *GoLevelDB) Close() error {
	g.lock.Lock()
	defer g.lock.Unlock()

	if g.db == nil {
		return leveldb.ErrClosed
	}
	err := g.db.Close()
	g.db = nil
	return err
}

type goLevelBucket struct {
	id BucketID
	db *leveldb.DB
}

func (bk *goLevelBucket) Get(key []byte) ([]byte, error) {
	value, err := bk.db.Get(internalKey(bk.id, key), nil)
	switch {
	case err == leveldb.ErrNotFound:
		return nil, nil
	case err != nil:
		return nil, err
	case value == nil:
		return []byte{}, nil
	}
	return value, nil
}

func (bk *goLevelBucket) Has(key []byte) (bool, error) {
	return bk.db.Has(internalKey(bk.id, key), nil)
}

func (bk *goLevelBucket) Set(key []byte, value []byte) error {
	return bk.db.Put(internalKey(bk.id, key), value, nil)
}

func (bk *goLevelBucket) Delete(key []byte) error {
	return bk.db.Delete(internalKey(bk.id, key), nil)
}
