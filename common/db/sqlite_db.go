/*
 * Copyright 2024 ICON Foundation
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
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/icon-project/govote/common/errors"
)

const SQLiteBackend BackendType = "sqlite"

func init() {
	dbCreator := func(name string, dir string) (Database, error) {
		return NewSQLiteDB(name, dir)
	}
	registerDBCreator(SQLiteBackend, dbCreator, false)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	bucket TEXT NOT NULL,
	key    BLOB NOT NULL,
	value  BLOB NOT NULL,
	PRIMARY KEY (bucket, key)
) WITHOUT ROWID;
`

type SQLiteDB struct {
	lock    sync.Mutex
	db      *sql.DB
	buckets map[BucketID]Bucket
}

func NewSQLiteDB(name string, dir string) (*SQLiteDB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.CriticalIOError.Wrapf(err, "FailToMakeDirectory(dir=%s)", dir)
	}
	dbPath := filepath.Join(dir, name+".sqlite")
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "FailToOpenSQLite(path=%s)", dbPath)
	}
	// sqlite allows only one writer at a time
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "FailToPingSQLite(path=%s)", dbPath)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "FailToMigrateSQLite")
	}
	return &SQLiteDB{
		db:      db,
		buckets: make(map[BucketID]Bucket),
	}, nil
}

var (
	_ Database    = (*SQLiteDB)(nil)
	_ BatchWriter = (*SQLiteDB)(nil)
)

func (s *SQLiteDB) GetBucket(id BucketID) (Bucket, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.db == nil {
		return nil, errors.ErrInvalidState
	}
	if bk, ok := s.buckets[id]; ok {
		return bk, nil
	}
	bk := &sqliteBucket{id: string(id), db: s.db}
	s.buckets[id] = bk
	return bk, nil
}

func (s *SQLiteDB) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.db == nil {
		return errors.ErrInvalidState
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WriteBatch applies the operations in a transaction.
func (s *SQLiteDB) WriteBatch(ops []Operation) (ret error) {
	s.lock.Lock()
	db := s.db
	s.lock.Unlock()
	if db == nil {
		return errors.ErrInvalidState
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.CriticalIOError.Wrap(err, "FailToBeginTx")
	}
	defer func() {
		if ret != nil {
			_ = tx.Rollback()
		}
	}()
	for _, op := range ops {
		if op.Value == nil {
			err = sqliteDelete(tx, string(op.Bucket), op.Key)
		} else {
			err = sqliteUpsert(tx, string(op.Bucket), op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// execer is implemented by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func sqliteUpsert(e execer, bucket string, key, value []byte) error {
	_, err := e.Exec(
		"INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?) "+
			"ON CONFLICT(bucket, key) DO UPDATE SET value = excluded.value",
		bucket, nonNil(key), nonNil(value),
	)
	return err
}

func sqliteDelete(e execer, bucket string, key []byte) error {
	_, err := e.Exec("DELETE FROM kv WHERE bucket = ? AND key = ?", bucket, nonNil(key))
	return err
}

var _ Bucket = (*sqliteBucket)(nil)

type sqliteBucket struct {
	id string
	db *sql.DB
}

func nonNil(bs []byte) []byte {
	if bs == nil {
		return []byte{}
	}
	return bs
}

func (bk *sqliteBucket) Get(key []byte) ([]byte, error) {
	var value []byte
	err := bk.db.QueryRow(
		"SELECT value FROM kv WHERE bucket = ? AND key = ?",
		bk.id, nonNil(key),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return nonNil(value), nil
}

func (bk *sqliteBucket) Has(key []byte) (bool, error) {
	var n int
	err := bk.db.QueryRow(
		"SELECT COUNT(*) FROM kv WHERE bucket = ? AND key = ?",
		bk.id, nonNil(key),
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (bk *sqliteBucket) Set(key []byte, value []byte) error {
	return sqliteUpsert(bk.db, bk.id, key, value)
}

func (bk *sqliteBucket) Delete(key []byte) error {
	return sqliteDelete(bk.db, bk.id, key)
}
