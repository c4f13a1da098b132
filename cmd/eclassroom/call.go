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
	"strings"
	"syscall"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/call"
	"gitlab.com/eclassroom/eclassroom-client/media"
	"gitlab.com/eclassroom/eclassroom-client/socket"
)

var callAnswerOnly bool

var callCmd = &cobra.Command{
	Use:   "call SESSION_ID",
	Short: "Start or answer a classroom video call.",
	Long: "Start or answer a classroom video call. Without --answer the " +
		"call offers immediately; with it, the call waits for the other " +
		"side's offer. Commands on stdin: mute, video, share, unshare, end.",
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
			ctx, channelURL(), "call", socket.DefaultParams())
		if err != nil {
			return err
		}
		defer func() {
			if err := channel.Close(); err != nil {
				jww.WARN.Printf("Failed to close channel: %+v", err)
			}
		}()

		c := call.NewCall(sessionID, channel, e.alerts)
		c.OnRemoteTrack = func(
			track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
			fmt.Printf("remote %s track attached\n", track.Kind())
		}
		c.Navigate = func(path string) {
			fmt.Println("call ended; back to", path)
			cancel()
		}

		source, err := syntheticCamera()
		if err != nil {
			return err
		}
		if err = c.Start(source); err != nil {
			return err
		}
		if !callAnswerOnly {
			if err = c.Offer(); err != nil {
				return err
			}
		}

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
					c.End()
					return nil
				}
				if done := handleCallLine(c, line); done {
					return nil
				}
			case <-stop:
				c.End()
				return nil
			case <-ctx.Done():
				return nil
			}
		}
	},
}

// handleCallLine runs one stdin command against the live call. It reports
// whether the call ended.
func handleCallLine(c *call.Call, line string) bool {
	switch strings.TrimSpace(line) {
	case "mute":
		if c.ToggleAudio() {
			fmt.Println("microphone on")
		} else {
			fmt.Println("microphone off")
		}
	case "video":
		if c.ToggleVideo() {
			fmt.Println("camera on")
		} else {
			fmt.Println("camera off")
		}
	case "share":
		screen, err := media.NewScreenSource(
			"screen", blankFrame, 100*time.Millisecond)
		if err != nil {
			jww.ERROR.Printf("Failed to create screen source: %+v", err)
			break
		}
		if err = c.ShareScreen(screen); err != nil {
			jww.ERROR.Printf("Failed to share screen: %+v", err)
			_ = screen.Close()
		} else {
			fmt.Println("sharing screen")
		}
	case "unshare":
		if err := c.StopScreenShare(); err != nil {
			jww.ERROR.Printf("Failed to stop screen share: %+v", err)
		} else {
			fmt.Println("sharing camera")
		}
	case "end":
		c.End()
		return true
	}
	return false
}

// syntheticCamera builds a stand-in camera source. Real device capture needs
// a platform capture library; the synthetic source keeps the signaling and
// track plumbing fully exercised.
func syntheticCamera() (media.Source, error) {
	ss, err := media.NewSampleSource(media.Video,
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"camera", blankFrame, 100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

// blankFrame is a minimal VP8 keyframe-shaped payload for synthetic sources.
func blankFrame() []byte {
	return []byte{0x10, 0x00, 0x00, 0x9d, 0x01, 0x2a}
}

func init() {
	callCmd.Flags().BoolVarP(&callAnswerOnly, "answer", "a", false,
		"Wait for the other side's offer instead of offering.")
	rootCmd.AddCommand(callCmd)
}
