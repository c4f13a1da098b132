////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
	"gitlab.com/eclassroom/eclassroom-client/logging"
	"gitlab.com/eclassroom/eclassroom-client/storage"
	"gitlab.com/eclassroom/eclassroom-client/utils"
)

var rootCmd = &cobra.Command{
	Use:   "eclassroom",
	Short: "Terminal client for an eClassroom server.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile := viper.GetString("config"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}

		initLog(jww.Threshold(viper.GetInt("logLevel")),
			viper.GetString("log"))
		return nil
	},
}

// init defines the persistent flags shared by every subcommand and binds
// them to viper so they can also come from the environment or a config file.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("server", "s", "http://localhost:5000",
		"Base URL of the eClassroom server.")
	flags.StringP("username", "u", "",
		"Name shown to other classroom members.")
	flags.StringP("dataDir", "d", ".eclassroom",
		"Directory holding local storage and the offline cache.")
	flags.StringP("log", "l", "-",
		"Log output path. By default, logs are printed to stdout. "+
			"To disable logging, set this to empty (\"\").")
	flags.IntP("logLevel", "v", 2,
		"Verbosity level of logging. 0 = TRACE, 1 = DEBUG, 2 = INFO, "+
			"3 = WARN, 4 = ERROR, 5 = CRITICAL, 6 = FATAL")
	flags.StringP("config", "c", "", "Path to a YAML config file.")

	viper.SetEnvPrefix("eclassroom")
	viper.AutomaticEnv()
	for _, name := range []string{
		"server", "username", "dataDir", "log", "logLevel", "config"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			jww.FATAL.Panicf("Failed to bind flag %q: %+v", name, err)
		}
	}
}

// initLog routes jww output to stdout, a file, or nowhere.
func initLog(threshold jww.Threshold, logPath string) {
	switch logPath {
	case "":
		// Logging disabled
		jww.SetStdoutThreshold(jww.LevelFatal)
	case "-":
		if err := logging.LogLevel(threshold); err != nil {
			jww.FATAL.Panicf("Failed to set log level: %+v", err)
		}
	default:
		f, err := os.OpenFile(
			logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			jww.FATAL.Panicf("Failed to open log file %q: %+v", logPath, err)
		}
		jww.SetLogOutput(f)
		jww.SetLogThreshold(threshold)
		jww.SetStdoutThreshold(jww.LevelFatal)
	}
}

// env bundles everything a subcommand needs against one server.
type env struct {
	client *api.Client
	store  *storage.LocalStorage
	alerts *alert.Presenter
	term   *terminal
}

// newEnv opens local storage under the data directory and builds the API
// client and alert presenter. The caller must call close.
func newEnv() (*env, error) {
	dataDir := viper.GetString("dataDir")
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, err
	}
	store, err := storage.New(filepath.Join(dataDir, "eclassroom.db"))
	if err != nil {
		return nil, err
	}
	if err = utils.CheckAndStoreVersion(store); err != nil {
		_ = store.Close()
		return nil, err
	}

	client, err := api.NewClient(viper.GetString("server"), http.DefaultClient)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	term := newTerminal()
	alerts := alert.NewPresenter(0)
	alerts.Subscribe(term)

	return &env{client: client, store: store, alerts: alerts, term: term}, nil
}

func (e *env) close() {
	e.alerts.Close()
	if err := e.store.Close(); err != nil {
		jww.WARN.Printf("Failed to close storage: %+v", err)
	}
}

// channelURL derives the websocket endpoint from the server base URL.
func channelURL() string {
	server := viper.GetString("server")
	switch {
	case strings.HasPrefix(server, "https://"):
		server = "wss://" + strings.TrimPrefix(server, "https://")
	case strings.HasPrefix(server, "http://"):
		server = "ws://" + strings.TrimPrefix(server, "http://")
	}
	return strings.TrimSuffix(server, "/") + "/socket.io"
}
