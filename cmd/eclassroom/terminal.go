////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"fmt"
	"strings"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/chat"
	"gitlab.com/eclassroom/eclassroom-client/notify"
	"gitlab.com/eclassroom/eclassroom-client/worker"
)

// terminal renders chat, alerts, and notifications as plain lines on stdout.
// It stands in for every surface the client can draw on, so one value is
// passed wherever a renderer, subscriber, or notifier is needed.
type terminal struct{}

func newTerminal() *terminal { return &terminal{} }

// AppendMessage implements [chat.Renderer].
func (t *terminal) AppendMessage(msg chat.Message, own bool) {
	name := msg.Username
	if own {
		name = "you"
	}
	line := fmt.Sprintf("[%s] %s (%s): %s",
		msg.Timestamp, name, msg.Role, msg.Message)
	if msg.FileURL != "" {
		line += " <" + msg.FileURL + ">"
	}
	fmt.Println(line)
}

// AppendStatus implements [chat.Renderer].
func (t *terminal) AppendStatus(status string) {
	fmt.Println("-- " + status)
}

// ClearInput implements [chat.Renderer]. A line-based terminal has no
// composer to clear.
func (t *terminal) ClearInput() {}

// Show implements [alert.Subscriber].
func (t *terminal) Show(a alert.Alert) {
	fmt.Printf("[%s] %s\n", strings.ToUpper(a.Level.String()), a.Message)
}

// Dismiss implements [alert.Subscriber]. Printed lines cannot be withdrawn.
func (t *terminal) Dismiss(string) {}

// Permission implements [notify.DesktopNotifier]. The terminal always has
// leave to print.
func (t *terminal) Permission() notify.Permission {
	return notify.PermissionGranted
}

// RequestPermission implements [notify.DesktopNotifier].
func (t *terminal) RequestPermission() notify.Permission {
	return notify.PermissionGranted
}

// Notify implements [notify.DesktopNotifier].
func (t *terminal) Notify(title, body string) error {
	fmt.Printf("*** %s: %s\n", title, body)
	return nil
}

// ShowNotification implements [worker.NotificationPresenter].
func (t *terminal) ShowNotification(n worker.Notification) error {
	fmt.Printf("*** %s: %s (%s)\n", n.Title, n.Body, n.URL)
	return nil
}
