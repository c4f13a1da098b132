////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package utils

import (
	"os"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/storage"
)

// SEMVER is the current semantic version of the eClassroom client.
const SEMVER = "0.1.0"

// semverKey is the storage key under which the client version is pinned.
const semverKey = "eClassroomSemanticVersion"

// CheckAndStoreVersion checks that the stored client version matches the
// current version and, if not, upgrades the pin. On first load, the current
// version is stored.
func CheckAndStoreVersion(ls *storage.LocalStorage) error {
	return checkAndStoreVersion(SEMVER, ls)
}

func checkAndStoreVersion(currentVer string, ls *storage.LocalStorage) error {
	storedVer, err := initOrLoadStoredSemver(semverKey, currentVer, ls)
	if err != nil {
		return err
	}

	if storedVer != currentVer {
		jww.INFO.Printf("eClassroom client out of date; upgrading version: "+
			"v%s → v%s", storedVer, currentVer)
		if err = ls.SetItem(semverKey, []byte(currentVer)); err != nil {
			return errors.Wrap(err, "could not upgrade stored version")
		}
	} else {
		jww.INFO.Printf("eClassroom client version is current: v%s", storedVer)
	}

	return nil
}

// initOrLoadStoredSemver returns the semantic version stored at the key. If
// no version is stored, then the current version is stored and returned.
func initOrLoadStoredSemver(
	key, currentVersion string, ls *storage.LocalStorage) (string, error) {
	storedVersion, err := ls.GetItem(key)
	if errors.Is(err, os.ErrNotExist) {
		// Save the current version if this is the first run
		jww.INFO.Printf("Initialising stored version to v%s", currentVersion)
		if err = ls.SetItem(key, []byte(currentVersion)); err != nil {
			return "", errors.Wrap(err, "could not initialise stored version")
		}
		return currentVersion, nil
	} else if err != nil {
		return "", errors.Wrapf(err, "could not load stored version at %q", key)
	}

	return string(storedVersion), nil
}
