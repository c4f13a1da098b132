////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := New(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatalf("Failed to open local storage: %+v", err)
	}
	t.Cleanup(func() { _ = ls.Close() })
	return ls
}

// Tests that a value set with LocalStorage.SetItem can be retrieved with
// LocalStorage.GetItem and that overwriting replaces the value.
func TestLocalStorage_SetItem_GetItem(t *testing.T) {
	ls := newTestStorage(t)

	expected := []byte("some value")
	if err := ls.SetItem("key1", expected); err != nil {
		t.Fatalf("Failed to set item: %+v", err)
	}

	received, err := ls.GetItem("key1")
	if err != nil {
		t.Fatalf("Failed to get item: %+v", err)
	}
	if !bytes.Equal(expected, received) {
		t.Errorf("Unexpected value.\nexpected: %q\nreceived: %q",
			expected, received)
	}

	expected = []byte("new value")
	if err = ls.SetItem("key1", expected); err != nil {
		t.Fatalf("Failed to overwrite item: %+v", err)
	}
	received, err = ls.GetItem("key1")
	if err != nil {
		t.Fatalf("Failed to get item: %+v", err)
	}
	if !bytes.Equal(expected, received) {
		t.Errorf("Unexpected value after overwrite.\nexpected: %q\n"+
			"received: %q", expected, received)
	}
}

// Tests that LocalStorage.GetItem returns os.ErrNotExist for a missing key
// and after the key has been removed.
func TestLocalStorage_GetItem_NotExist(t *testing.T) {
	ls := newTestStorage(t)

	if _, err := ls.GetItem("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Unexpected error for missing key: %+v", err)
	}

	if err := ls.SetItem("key1", []byte("v")); err != nil {
		t.Fatalf("Failed to set item: %+v", err)
	}
	if err := ls.RemoveItem("key1"); err != nil {
		t.Fatalf("Failed to remove item: %+v", err)
	}
	if _, err := ls.GetItem("key1"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Unexpected error for removed key: %+v", err)
	}
}

// Tests that LocalStorage.ClearPrefix removes only the keys under the prefix.
func TestLocalStorage_ClearPrefix(t *testing.T) {
	ls := newTestStorage(t)

	for _, key := range []string{"quiz_1_answers", "quiz_2_answers", "theme"} {
		if err := ls.SetItem(key, []byte("v")); err != nil {
			t.Fatalf("Failed to set item %q: %+v", key, err)
		}
	}

	if err := ls.ClearPrefix("quiz_"); err != nil {
		t.Fatalf("Failed to clear prefix: %+v", err)
	}

	keys, err := ls.Keys()
	if err != nil {
		t.Fatalf("Failed to list keys: %+v", err)
	}
	if expected := []string{"theme"}; !reflect.DeepEqual(expected, keys) {
		t.Errorf("Unexpected keys.\nexpected: %v\nreceived: %v",
			expected, keys)
	}
}

// Tests that LocalStorage.Keys and LocalStorage.Length only see keys under
// this store's prefix and that Clear empties the store.
func TestLocalStorage_Keys_Length_Clear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")
	ls, err := New(path)
	if err != nil {
		t.Fatalf("Failed to open local storage: %+v", err)
	}
	defer ls.Close()

	// A second store with a foreign prefix sharing the same database
	foreign, err := newLocalStorage(path, "other/")
	if err != nil {
		t.Fatalf("Failed to open foreign storage: %+v", err)
	}
	defer foreign.Close()
	if err = foreign.SetItem("z", []byte("v")); err != nil {
		t.Fatalf("Failed to set foreign item: %+v", err)
	}

	expected := []string{"a", "b", "c"}
	for _, key := range expected {
		if err = ls.SetItem(key, []byte("v")); err != nil {
			t.Fatalf("Failed to set item %q: %+v", key, err)
		}
	}

	keys, err := ls.Keys()
	if err != nil {
		t.Fatalf("Failed to list keys: %+v", err)
	}
	if !reflect.DeepEqual(expected, keys) {
		t.Errorf("Unexpected keys.\nexpected: %v\nreceived: %v",
			expected, keys)
	}

	n, err := ls.Length()
	if err != nil {
		t.Fatalf("Failed to get length: %+v", err)
	}
	if n != len(expected) {
		t.Errorf("Unexpected length.\nexpected: %d\nreceived: %d",
			len(expected), n)
	}

	if err = ls.Clear(); err != nil {
		t.Fatalf("Failed to clear: %+v", err)
	}
	if n, _ = ls.Length(); n != 0 {
		t.Errorf("Store not empty after clear: %d keys remain.", n)
	}

	// The foreign store's key must survive the clear
	if n, _ = foreign.Length(); n != 1 {
		t.Errorf("Foreign store affected by clear: %d keys remain.", n)
	}
}

// Tests the default, round trip, and rejection behavior of the theme
// preference helpers.
func TestLocalStorage_Theme(t *testing.T) {
	ls := newTestStorage(t)

	theme, err := ls.GetTheme()
	if err != nil {
		t.Fatalf("Failed to get default theme: %+v", err)
	}
	if theme != ThemeDark {
		t.Errorf("Unexpected default theme.\nexpected: %s\nreceived: %s",
			ThemeDark, theme)
	}

	if err = ls.SetTheme(ThemeLight); err != nil {
		t.Fatalf("Failed to set theme: %+v", err)
	}
	if theme, _ = ls.GetTheme(); theme != ThemeLight {
		t.Errorf("Unexpected theme.\nexpected: %s\nreceived: %s",
			ThemeLight, theme)
	}

	if err = ls.SetTheme("solarized"); err == nil {
		t.Error("Did not receive error for invalid theme.")
	}
}
