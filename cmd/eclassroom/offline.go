////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gitlab.com/eclassroom/eclassroom-client/worker"
)

var offlineCmd = &cobra.Command{
	Use:   "offline",
	Short: "Manage the offline asset cache.",
}

// newWorker builds a service worker over the data directory's cache store.
func newWorker() (*worker.ServiceWorker, error) {
	store, err := worker.NewStore(
		filepath.Join(viper.GetString("dataDir"), "cache"))
	if err != nil {
		return nil, err
	}
	return worker.NewServiceWorker(store, viper.GetString("server"),
		http.DefaultClient, newTerminal()), nil
}

var offlineInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Precache the core assets and drop stale cache generations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sw, err := newWorker()
		if err != nil {
			return err
		}
		if err = sw.Install(cmd.Context()); err != nil {
			return err
		}
		if err = sw.Activate(); err != nil {
			return err
		}
		fmt.Println("offline cache", worker.CacheName, "ready")
		return nil
	},
}

var offlineFetchCmd = &cobra.Command{
	Use:   "fetch PATH",
	Short: "Fetch a path cache-first and print the response.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sw, err := newWorker()
		if err != nil {
			return err
		}
		entry, err := sw.Fetch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, %d bytes)\n",
			entry.URL, entry.ContentType, len(entry.Body))
		fmt.Println(string(entry.Body))
		return nil
	},
}

func init() {
	offlineCmd.AddCommand(offlineInstallCmd, offlineFetchCmd)
	rootCmd.AddCommand(offlineCmd)
}
