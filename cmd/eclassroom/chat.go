////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"

	"gitlab.com/eclassroom/eclassroom-client/api"
	"gitlab.com/eclassroom/eclassroom-client/chat"
	"gitlab.com/eclassroom/eclassroom-client/notify"
	"gitlab.com/eclassroom/eclassroom-client/socket"
)

var chatCmd = &cobra.Command{
	Use:   "chat SESSION_ID",
	Short: "Join a classroom chat session.",
	Long: "Join a classroom chat session. Lines typed on stdin are sent to " +
		"the room; /share FILE uploads a file and announces it; /quit " +
		"leaves. Unread notification counts are polled in the background.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		channel, err := socket.Dial(
			ctx, channelURL(), "chat", socket.DefaultParams())
		if err != nil {
			return err
		}
		defer func() {
			if err := channel.Close(); err != nil {
				jww.WARN.Printf("Failed to close channel: %+v", err)
			}
		}()
		channel.SetDisconnectCallback(func(err error) {
			e.term.AppendStatus("disconnected from server")
			cancel()
		})

		session := chat.NewSession(
			sessionID, viper.GetString("username"), channel, e.term, e.term)
		if err = session.Join(); err != nil {
			return err
		}

		share := chat.NewFileShare(e.client, session, e.alerts)

		poller := notify.NewPoller(e.client, notify.DefaultPollInterval,
			func(count int, _ []api.Notification) {
				if count > 0 {
					e.term.AppendStatus(fmt.Sprintf(
						"%d unread notifications", count))
				}
			})
		poller.Start(ctx)
		defer poller.Stop()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
			close(lines)
		}()

		for {
			select {
			case line, more := <-lines:
				if !more {
					return session.Leave()
				}
				if done, err := handleChatLine(
					ctx, session, share, line); err != nil {
					jww.ERROR.Printf("%+v", err)
				} else if done {
					return session.Leave()
				}
			case <-stop:
				return session.Leave()
			case <-ctx.Done():
				return nil
			}
		}
	},
}

// handleChatLine sends one stdin line as a message or runs the command it
// starts with. It reports whether the user asked to quit.
func handleChatLine(ctx context.Context, session *chat.Session,
	share *chat.FileShare, line string) (bool, error) {
	switch {
	case line == "/quit":
		return true, nil

	case strings.HasPrefix(line, "/share "):
		path := strings.TrimSpace(strings.TrimPrefix(line, "/share "))
		f, err := os.Open(path)
		if err != nil {
			return false, err
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return false, err
		}

		shareCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		return false, share.Share(
			shareCtx, filepath.Base(path), f, info.Size())

	case strings.TrimSpace(line) == "":
		return false, nil

	default:
		err := session.Send(line)
		if err != nil {
			fmt.Println("could not send:", err)
		}
		return false, nil
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
