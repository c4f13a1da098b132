////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"os"

	"github.com/pkg/errors"
)

// themeKey is the local storage key holding the display theme preference.
const themeKey = "theme"

// Theme is the display theme preference of the client.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// GetTheme returns the stored theme preference. When no preference has been
// stored, it returns [ThemeDark].
func (ls *LocalStorage) GetTheme() (Theme, error) {
	value, err := ls.GetItem(themeKey)
	if errors.Is(err, os.ErrNotExist) {
		return ThemeDark, nil
	} else if err != nil {
		return "", err
	}

	switch t := Theme(value); t {
	case ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", errors.Errorf("invalid stored theme %q", value)
	}
}

// SetTheme stores the theme preference.
func (ls *LocalStorage) SetTheme(t Theme) error {
	switch t {
	case ThemeLight, ThemeDark:
		return ls.SetItem(themeKey, []byte(t))
	default:
		return errors.Errorf("invalid theme %q", t)
	}
}
