////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package media models the local capture side of a video call: tracks that
// can be muted without renegotiation and sources that produce them. Remote
// tracks arrive through the peer connection and are not represented here.
package media

import (
	"sync"

	"github.com/pion/webrtc/v4"
)

// Kind identifies what a track carries.
type Kind string

const (
	Audio Kind = "audio"
	Video Kind = "video"
)

// Track wraps a local RTP track with a mute flag and an ended signal. Muting
// only flips the flag; the track stays attached to its sender so unmuting is
// instant and needs no renegotiation.
type Track struct {
	local   webrtc.TrackLocal
	kind    Kind
	enabled bool
	ended   bool
	onEnded func()
	mux     sync.Mutex
}

// NewTrack wraps local. Tracks start enabled.
func NewTrack(local webrtc.TrackLocal, kind Kind) *Track {
	return &Track{local: local, kind: kind, enabled: true}
}

// Local returns the underlying track for attaching to a peer connection.
func (t *Track) Local() webrtc.TrackLocal { return t.local }

// Kind returns what the track carries.
func (t *Track) Kind() Kind { return t.kind }

// Enabled reports whether the track is currently unmuted.
func (t *Track) Enabled() bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.enabled
}

// SetEnabled mutes or unmutes the track and returns the new state.
func (t *Track) SetEnabled(enabled bool) bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.enabled = enabled
	return t.enabled
}

// Toggle flips the mute flag and returns the new state.
func (t *Track) Toggle() bool {
	t.mux.Lock()
	defer t.mux.Unlock()
	t.enabled = !t.enabled
	return t.enabled
}

// OnEnded registers a callback invoked once when the track's source stops.
// If the track already ended, the callback fires immediately.
func (t *Track) OnEnded(f func()) {
	t.mux.Lock()
	ended := t.ended
	if !ended {
		t.onEnded = f
	}
	t.mux.Unlock()

	if ended {
		f()
	}
}

// end marks the track ended and fires the registered callback once.
func (t *Track) end() {
	t.mux.Lock()
	if t.ended {
		t.mux.Unlock()
		return
	}
	t.ended = true
	f := t.onEnded
	t.onEnded = nil
	t.mux.Unlock()

	if f != nil {
		f()
	}
}

// Source produces local tracks. A camera-and-microphone device and a screen
// capture are both Sources; tests use a synthetic one.
type Source interface {
	// Tracks returns the tracks the source produces. The slice is stable for
	// the life of the source.
	Tracks() []*Track

	// Close stops capture and ends every track.
	Close() error
}
