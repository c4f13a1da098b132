////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package worker provides the offline layer: a generation-named asset cache
// that core pages are served from when the network is gone, and handlers for
// push notifications delivered while the app is closed.
package worker

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Entry is one cached response.
type Entry struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store holds named caches on disk. Each cache is a directory of entries
// keyed by request URL; cache names carry the asset generation so a new
// release can atomically replace the old one.
type Store struct {
	root string
}

// NewStore opens a store rooted at the given directory, creating it if
// needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, errors.Wrap(err, "could not create cache root")
	}
	return &Store{root: root}, nil
}

// Open returns the named cache, creating it if needed.
func (s *Store) Open(name string) (*Cache, error) {
	dir := filepath.Join(s.root, encodeName(name))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrapf(err, "could not create cache %q", name)
	}
	return &Cache{name: name, dir: dir}, nil
}

// Names lists the caches in the store, sorted.
func (s *Store) Names() ([]string, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrap(err, "could not list caches")
	}

	var names []string
	for _, de := range dirEntries {
		if !de.IsDir() {
			continue
		}
		name, err := decodeName(de.Name())
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named cache and everything in it.
func (s *Store) Delete(name string) error {
	err := os.RemoveAll(filepath.Join(s.root, encodeName(name)))
	return errors.Wrapf(err, "could not delete cache %q", name)
}

// Cache is one named generation of cached responses.
type Cache struct {
	name string
	dir  string
}

// Name returns the cache's name.
func (c *Cache) Name() string { return c.name }

// Put stores a response under its request URL, replacing any previous entry.
func (c *Cache) Put(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "could not marshal cache entry")
	}
	err = os.WriteFile(c.entryPath(entry.URL), data, 0600)
	return errors.Wrapf(err, "could not write cache entry for %q", entry.URL)
}

// Match returns the entry cached for the URL. It returns [os.ErrNotExist]
// when the URL was never cached.
func (c *Cache) Match(url string) (Entry, error) {
	data, err := os.ReadFile(c.entryPath(url))
	if err != nil {
		return Entry{}, errors.Wrapf(err, "no cache entry for %q", url)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return Entry{}, errors.Wrapf(
			err, "could not decode cache entry for %q", url)
	}
	return entry, nil
}

// entryPath maps a URL to its file, hashing so any URL is a valid file name.
func (c *Cache) entryPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16]))
}

// encodeName makes a cache name safe to use as a directory name.
func encodeName(name string) string {
	return hex.EncodeToString([]byte(name))
}

// decodeName reverses [encodeName].
func decodeName(dir string) (string, error) {
	name, err := hex.DecodeString(dir)
	return string(name), err
}
