////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitlab.com/eclassroom/eclassroom-client/storage"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the saved display theme.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.close()

		if len(args) == 0 {
			theme, err := e.store.GetTheme()
			if err != nil {
				return err
			}
			fmt.Println(theme)
			return nil
		}

		if err = e.store.SetTheme(storage.Theme(args[0])); err != nil {
			return err
		}
		fmt.Println("theme set to", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
