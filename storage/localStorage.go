////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package storage persists small pieces of client state (theme preference,
// in-progress quiz answers, version pins) across restarts. It mirrors the
// semantics of the browser's localStorage on top of a sqlite database file.
package storage

import (
	"database/sql"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// localStoragePrefix is prefixed to every keyName saved by LocalStorage. It
// allows the identification and deletion of keys only created by this client
// while ignoring keys made by anything else sharing the database file.
const localStoragePrefix = "eClassroomStorage/"

// LocalStorage is a persistent key/value store scoped to a single prefix.
type LocalStorage struct {
	db *sql.DB

	// The prefix prepended to each key name. This is so that all keys created
	// by this structure can be deleted without affecting other keys in the
	// database.
	prefix string
}

// New opens (or creates) the store at the given sqlite database path.
func New(path string) (*LocalStorage, error) {
	return newLocalStorage(path, localStoragePrefix)
}

// newLocalStorage creates a new LocalStorage object with the specified prefix.
func newLocalStorage(path, prefix string) (*LocalStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open local storage database")
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS local_storage (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		return nil, errors.Wrap(err, "could not create local storage table")
	}

	return &LocalStorage{db: db, prefix: prefix}, nil
}

// GetItem returns a key's value from local storage given its name. Returns
// [os.ErrNotExist] if the key does not exist.
func (ls *LocalStorage) GetItem(keyName string) ([]byte, error) {
	var value []byte
	err := ls.db.QueryRow(`SELECT value FROM local_storage WHERE key = ?`,
		ls.prefix+keyName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, os.ErrNotExist
	} else if err != nil {
		return nil, errors.Wrapf(err, "could not read key %q", keyName)
	}

	return value, nil
}

// SetItem adds a key's value to local storage given its name. An existing
// value under the same key is overwritten.
func (ls *LocalStorage) SetItem(keyName string, keyValue []byte) error {
	_, err := ls.db.Exec(`INSERT INTO local_storage (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		ls.prefix+keyName, keyValue)
	return errors.Wrapf(err, "could not write key %q", keyName)
}

// RemoveItem removes a key's value from local storage given its name. If
// there is no item with the given key, this function does nothing.
func (ls *LocalStorage) RemoveItem(keyName string) error {
	_, err := ls.db.Exec(
		`DELETE FROM local_storage WHERE key = ?`, ls.prefix+keyName)
	return errors.Wrapf(err, "could not remove key %q", keyName)
}

// Clear removes every key created under this store's prefix.
func (ls *LocalStorage) Clear() error {
	_, err := ls.db.Exec(
		`DELETE FROM local_storage WHERE key LIKE ? ESCAPE '\'`,
		likePattern(ls.prefix))
	return errors.Wrap(err, "could not clear local storage")
}

// ClearPrefix clears all keys with the given prefix.
func (ls *LocalStorage) ClearPrefix(prefix string) error {
	_, err := ls.db.Exec(
		`DELETE FROM local_storage WHERE key LIKE ? ESCAPE '\'`,
		likePattern(ls.prefix+prefix))
	return errors.Wrapf(err, "could not clear prefix %q", prefix)
}

// Keys returns a list of all key names in local storage, sorted
// lexicographically.
func (ls *LocalStorage) Keys() ([]string, error) {
	rows, err := ls.db.Query(
		`SELECT key FROM local_storage WHERE key LIKE ? ESCAPE '\' `+
			`ORDER BY key`, likePattern(ls.prefix))
	if err != nil {
		return nil, errors.Wrap(err, "could not list keys")
	}
	defer rows.Close()

	var keyNames []string
	for rows.Next() {
		var keyName string
		if err = rows.Scan(&keyName); err != nil {
			return nil, errors.Wrap(err, "could not scan key")
		}
		keyNames = append(keyNames, strings.TrimPrefix(keyName, ls.prefix))
	}

	return keyNames, rows.Err()
}

// Length returns the number of keys in local storage.
func (ls *LocalStorage) Length() (int, error) {
	var n int
	err := ls.db.QueryRow(
		`SELECT COUNT(*) FROM local_storage WHERE key LIKE ? ESCAPE '\'`,
		likePattern(ls.prefix)).Scan(&n)
	return n, errors.Wrap(err, "could not count keys")
}

// Close closes the underlying database. The store cannot be used afterward.
func (ls *LocalStorage) Close() error {
	return ls.db.Close()
}

// likePattern escapes the LIKE wildcards in prefix and appends one so the
// pattern matches every key beginning with prefix.
func likePattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
