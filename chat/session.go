////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package chat implements the classroom chat session: joining a room on the
// event channel, sending and receiving messages and file-share
// announcements, and raising desktop notifications for messages from other
// members. A Session is explicitly constructed and torn down; nothing hangs
// off ambient globals.
package chat

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/notify"
	"gitlab.com/eclassroom/eclassroom-client/socket"
)

// scrollbackSize bounds the in-memory message buffer. Older entries fall off
// the front; the server keeps the authoritative history.
const scrollbackSize = 200

// ErrEmptyMessage is returned by Send when the trimmed text is empty.
var ErrEmptyMessage = errors.New("message text is empty")

// Message is one chat entry received from the server.
type Message struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	FileURL   string `json:"file_url,omitempty"`
}

// Renderer is the view half of the session. Implementations append entries
// to whatever surface displays the conversation.
type Renderer interface {
	// AppendMessage renders a chat entry. Own reports whether the viewer
	// authored it.
	AppendMessage(msg Message, own bool)

	// AppendStatus renders a transient room-status line (joins, leaves,
	// disconnects).
	AppendStatus(status string)

	// ClearInput resets the composer after a successful send.
	ClearInput()
}

// sendPayload is the outbound body of send/join/leave events.
type sendPayload struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
	FileURL   string `json:"file_url,omitempty"`
}

// Session is a live membership in one classroom chat room.
type Session struct {
	sessionID string
	username  string

	channel socket.Signaler
	view    Renderer
	desktop notify.DesktopNotifier

	scrollback []Message
	joined     bool
	mux        sync.Mutex
}

// NewSession wires a chat session for the room identified by sessionID. The
// viewer's identity decides own-vs-other message classification. Inbound
// message and status callbacks are registered immediately; nothing is sent
// until Join.
func NewSession(sessionID, username string, channel socket.Signaler,
	view Renderer, desktop notify.DesktopNotifier) *Session {
	s := &Session{
		sessionID: sessionID,
		username:  username,
		channel:   channel,
		view:      view,
		desktop:   desktop,
	}

	channel.RegisterCallback(socket.MessageTag, s.handleMessage)
	channel.RegisterCallback(socket.StatusTag, s.handleStatus)
	return s
}

// Join announces the session to the room. If the viewer has never been asked
// about desktop notifications, permission is requested now.
func (s *Session) Join() error {
	err := s.channel.Send(
		socket.JoinClassroomTag, sendPayload{SessionID: s.sessionID})
	if err != nil {
		return errors.Wrap(err, "could not join classroom")
	}

	s.mux.Lock()
	s.joined = true
	s.mux.Unlock()

	if s.desktop != nil && s.desktop.Permission() == notify.PermissionDefault {
		s.desktop.RequestPermission()
	}
	return nil
}

// Send emits a chat message. The text must be non-empty once trimmed;
// otherwise [ErrEmptyMessage] is returned and nothing is sent. On success
// the view's composer is cleared.
func (s *Session) Send(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	err := s.channel.Send(socket.SendMessageTag,
		sendPayload{SessionID: s.sessionID, Message: text})
	if err != nil {
		return errors.Wrap(err, "could not send message")
	}

	s.view.ClearInput()
	return nil
}

// sendFileAnnouncement emits the chat message that announces an uploaded
// file.
func (s *Session) sendFileAnnouncement(text, fileURL string) error {
	return s.channel.Send(socket.SendMessageTag,
		sendPayload{SessionID: s.sessionID, Message: text, FileURL: fileURL})
}

// Messages returns a copy of the visible scrollback.
func (s *Session) Messages() []Message {
	s.mux.Lock()
	defer s.mux.Unlock()
	return append([]Message{}, s.scrollback...)
}

// Leave announces the departure. The caller owns the channel and closes it
// separately.
func (s *Session) Leave() error {
	s.mux.Lock()
	s.joined = false
	s.mux.Unlock()

	err := s.channel.Send(
		socket.LeaveClassroomTag, sendPayload{SessionID: s.sessionID})
	return errors.Wrap(err, "could not leave classroom")
}

// handleMessage renders an inbound chat entry and raises a desktop
// notification for messages from other members.
func (s *Session) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		jww.ERROR.Printf("[CHAT] Failed to decode message event: %+v", err)
		return
	}

	own := msg.Username == s.username

	s.mux.Lock()
	s.scrollback = append(s.scrollback, msg)
	if len(s.scrollback) > scrollbackSize {
		s.scrollback = s.scrollback[len(s.scrollback)-scrollbackSize:]
	}
	s.mux.Unlock()

	s.view.AppendMessage(msg, own)

	if !own && s.desktop != nil &&
		s.desktop.Permission() == notify.PermissionGranted {
		err := s.desktop.Notify(
			"New message from "+msg.Username, msg.Message)
		if err != nil {
			jww.WARN.Printf("[CHAT] Failed to raise notification: %+v", err)
		}
	}
}

// handleStatus renders an inbound room-status line.
func (s *Session) handleStatus(data []byte) {
	var status struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		jww.ERROR.Printf("[CHAT] Failed to decode status event: %+v", err)
		return
	}
	s.view.AppendStatus(status.Msg)
}
