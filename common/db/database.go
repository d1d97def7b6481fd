package db

import (
	"sort"

	"github.com/icon-project/govote/common/errors"
)

type Database interface {
	GetBucket(id BucketID) (Bucket, error)
	Close() error
}

// LayerDB buffers every write on top of the underlying database until
// Flush is called. Flush(true) applies the writes in order and switches
// to direct mode. Flush(false) drops them.
type LayerDB interface {
	Database
	Flush(write bool) error
	Unwrap() Database
}

// Operation is a buffered write. Nil Value deletes the key.
type Operation struct {
	Bucket BucketID
	Key    []byte
	Value  []byte
}

// BatchWriter is implemented by databases which can apply operations
// atomically. A LayerDB over it commits with a single batch.
type BatchWriter interface {
	WriteBatch(ops []Operation) error
}

// applyOperations writes the operations one by one.
func applyOperations(dbase Database, ops []Operation) error {
	for _, op := range ops {
		bk, err := dbase.GetBucket(op.Bucket)
		if err != nil {
			return err
		}
		if op.Value == nil {
			err = bk.Delete(op.Key)
		} else {
			err = bk.Set(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch applies the operations atomically if the database supports
// it, or one by one.
func WriteBatch(dbase Database, ops []Operation) error {
	if len(ops) == 0 {
		return nil
	}
	if bw, ok := dbase.(BatchWriter); ok {
		return bw.WriteBatch(ops)
	}
	return applyOperations(dbase, ops)
}

type BackendType string

type dbCreator func(name string, dir string) (Database, error)

var backends = map[BackendType]dbCreator{}

func registerDBCreator(backend BackendType, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

func RegisteredBackendTypes() []string {
	l := make([]string, 0, len(backends))
	for k := range backends {
		l = append(l, string(k))
	}
	sort.Strings(l)
	return l
}

func Open(dir, dbtype, name string) (Database, error) {
	return openDatabase(BackendType(dbtype), name, dir)
}

func openDatabase(backend BackendType, name string, dir string) (Database, error) {
	creator, ok := backends[backend]
	if !ok {
		return nil, errors.IllegalArgumentError.Errorf(
			"UnknownBackend(type=%s,supported=%v)", backend, RegisteredBackendTypes())
	}
	return creator(name, dir)
}
