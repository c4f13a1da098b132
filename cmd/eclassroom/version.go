////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"gitlab.com/eclassroom/eclassroom-client/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the client version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eclassroom %s (%s %s/%s)\n", utils.SEMVER,
			runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
