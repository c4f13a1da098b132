////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package socket implements the bidirectional event channel between the
// client and the classroom server. Events are JSON envelopes of
// {event, data}; inbound events are dispatched through a single table of
// per-tag callbacks rather than ad hoc closures.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aquilax/truncate"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// ReceiverCallback is called when an event with the registered tag arrives.
// The raw JSON of the event's data field is passed through.
type ReceiverCallback func(data []byte)

// Signaler is the sending half of the channel, abstracted so sessions can be
// driven by a fake transport in tests.
type Signaler interface {
	// Send emits an event carrying the JSON encoding of data.
	Send(tag Tag, data any) error

	// RegisterCallback registers the callback for the given tag. Previous
	// registrations for the tag are overwritten.
	RegisterCallback(tag Tag, cb ReceiverCallback)
}

// Manager owns one websocket connection to the classroom server and the
// dispatch table for inbound events. It is safe for concurrent use.
type Manager struct {
	conn *websocket.Conn

	// receiverCallbacks are called when receiving an event from the server,
	// keyed on the event's tag.
	receiverCallbacks map[Tag]ReceiverCallback

	// disconnectCB, when set, is called once after the read loop exits for
	// any reason other than Close.
	disconnectCB func(err error)

	// quit, when closed, stops the reader goroutine.
	quit chan struct{}

	// name describes the connection. It is used for logging purposes.
	name string

	closeOnce sync.Once

	Params

	mux sync.Mutex
}

// Dial connects to the channel endpoint and starts the event reception loop.
func Dial(ctx context.Context, url, name string, p Params) (*Manager, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not dial channel at %s", url)
	}

	m := &Manager{
		conn:              conn,
		receiverCallbacks: make(map[Tag]ReceiverCallback),
		quit:              make(chan struct{}),
		name:              name,
		Params:            p,
	}

	go m.eventReception()
	return m, nil
}

// RegisterCallback registers the callback for the given tag. Previous
// registrations for the tag are overwritten. This function is thread safe.
func (m *Manager) RegisterCallback(tag Tag, cb ReceiverCallback) {
	m.mux.Lock()
	defer m.mux.Unlock()

	jww.DEBUG.Printf("[CH] [%s] Registering receiver callback for tag %q",
		m.name, tag)
	m.receiverCallbacks[tag] = cb
}

// SetDisconnectCallback registers a callback invoked once when the
// connection is lost for any reason other than an explicit Close.
func (m *Manager) SetDisconnectCallback(cb func(err error)) {
	m.mux.Lock()
	defer m.mux.Unlock()
	m.disconnectCB = cb
}

// Send emits an event carrying the JSON encoding of data. Writes are
// serialised; concurrent senders do not interleave frames.
func (m *Manager) Send(tag Tag, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrapf(err, "could not marshal data for event %q", tag)
	}
	frame, err := json.Marshal(Message{Event: tag, Data: payload})
	if err != nil {
		return errors.Wrapf(err, "could not marshal envelope for event %q", tag)
	}

	if m.EventLogging {
		jww.DEBUG.Printf("[CH] [%s] Sending event %q: %s", m.name, tag,
			truncate.Truncate(
				fmt.Sprintf("%q", frame), 64, "...", truncate.PositionMiddle))
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	if m.WriteTimeout > 0 {
		deadline := time.Now().Add(m.WriteTimeout)
		if err = m.conn.SetWriteDeadline(deadline); err != nil {
			return errors.Wrap(err, "could not set write deadline")
		}
	}
	err = m.conn.WriteMessage(websocket.TextMessage, frame)
	return errors.Wrapf(err, "could not send event %q", tag)
}

// Close stops the reception loop and closes the connection. A close frame is
// sent on a best-effort basis so the server sees a clean departure.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.quit)

		m.mux.Lock()
		deadline := time.Now().Add(time.Second)
		_ = m.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline)
		m.mux.Unlock()

		err = m.conn.Close()
	})
	return err
}

// eventReception processes received events sequentially until the connection
// drops or the manager is closed.
func (m *Manager) eventReception() {
	jww.INFO.Printf("[CH] [%s] Starting event reception loop.", m.name)
	for {
		_, frame, err := m.conn.ReadMessage()
		if err != nil {
			select {
			case <-m.quit:
				jww.INFO.Printf(
					"[CH] [%s] Quitting event reception loop.", m.name)
			default:
				jww.WARN.Printf(
					"[CH] [%s] Connection lost: %+v", m.name, err)
				m.mux.Lock()
				cb := m.disconnectCB
				m.mux.Unlock()
				if cb != nil {
					cb(err)
				}
			}
			return
		}

		if err = m.processReceivedEvent(frame); err != nil {
			jww.ERROR.Printf("[CH] [%s] Failed to process received event: %+v",
				m.name, err)
		}
	}
}

// processReceivedEvent decodes the envelope and calls the callback registered
// for its tag. Events with no registered callback are dropped.
func (m *Manager) processReceivedEvent(frame []byte) error {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return errors.Wrap(err, "could not unmarshal envelope")
	}

	if m.EventLogging {
		jww.DEBUG.Printf("[CH] [%s] Received event %q: %s", m.name, msg.Event,
			truncate.Truncate(
				fmt.Sprintf("%q", frame), 64, "...", truncate.PositionMiddle))
	}

	m.mux.Lock()
	cb, exists := m.receiverCallbacks[msg.Event]
	m.mux.Unlock()
	if !exists {
		return errors.Errorf("no receiver callback found for tag %q", msg.Event)
	}

	cb(msg.Data)
	return nil
}
