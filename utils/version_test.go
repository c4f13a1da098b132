////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package utils

import (
	"path/filepath"
	"testing"

	"gitlab.com/eclassroom/eclassroom-client/storage"
)

// Tests that checkAndStoreVersion stores the version on first run and
// upgrades it when the binary version changes.
func Test_checkAndStoreVersion(t *testing.T) {
	ls, err := storage.New(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatalf("Failed to open local storage: %+v", err)
	}
	defer ls.Close()

	if err = checkAndStoreVersion("0.1.0", ls); err != nil {
		t.Fatalf("Failed first version check: %+v", err)
	}
	stored, err := ls.GetItem(semverKey)
	if err != nil {
		t.Fatalf("Failed to read stored version: %+v", err)
	}
	if string(stored) != "0.1.0" {
		t.Errorf("Unexpected stored version.\nexpected: %s\nreceived: %s",
			"0.1.0", stored)
	}

	if err = checkAndStoreVersion("0.2.0", ls); err != nil {
		t.Fatalf("Failed upgrade version check: %+v", err)
	}
	stored, _ = ls.GetItem(semverKey)
	if string(stored) != "0.2.0" {
		t.Errorf("Version was not upgraded.\nexpected: %s\nreceived: %s",
			"0.2.0", stored)
	}
}

// Tests that GenerateID returns ids of the requested length drawn from the
// expected alphabet.
func TestGenerateID(t *testing.T) {
	for _, length := range []int{0, 1, 8, 32} {
		id := GenerateID(length)
		if len(id) != length {
			t.Errorf("Unexpected length.\nexpected: %d\nreceived: %d",
				length, len(id))
		}
		for _, c := range id {
			if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
				(c >= '0' && c <= '9')) {
				t.Errorf("Unexpected character %q in id %q.", c, id)
			}
		}
	}
}
