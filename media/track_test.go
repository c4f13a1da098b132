////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package media

import (
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
)

// Tests that Toggle and SetEnabled flip the mute flag without ending the
// track.
func TestTrack_Toggle(t *testing.T) {
	track := NewTrack(nil, Audio)
	if !track.Enabled() {
		t.Error("New track is not enabled.")
	}

	if enabled := track.Toggle(); enabled {
		t.Error("Track still enabled after toggle.")
	}
	if enabled := track.Toggle(); !enabled {
		t.Error("Track not enabled after second toggle.")
	}

	if enabled := track.SetEnabled(false); enabled {
		t.Error("Track still enabled after SetEnabled(false).")
	}
}

// Tests that the ended callback fires exactly once, and fires immediately
// when registered after the track already ended.
func TestTrack_OnEnded(t *testing.T) {
	track := NewTrack(nil, Video)

	fired := 0
	track.OnEnded(func() { fired++ })

	track.end()
	track.end()
	if fired != 1 {
		t.Errorf("Callback fired %d times, expected 1.", fired)
	}

	lateFired := 0
	track.OnEnded(func() { lateFired++ })
	if lateFired != 1 {
		t.Errorf("Late callback fired %d times, expected 1.", lateFired)
	}
}

// Tests that a SampleSource pulls frames while enabled, skips them while
// muted, and ends its track on Close.
func TestSampleSource(t *testing.T) {
	frames := make(chan struct{}, 64)
	ss, err := NewScreenSource("screen",
		func() []byte { frames <- struct{}{}; return []byte{0x10} },
		time.Millisecond)
	if err != nil {
		t.Fatalf("Failed to create source: %+v", err)
	}

	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for first frame.")
	}

	track := ss.Track()
	if track.Kind() != Video {
		t.Errorf("Unexpected kind.\nexpected: %s\nreceived: %s",
			Video, track.Kind())
	}
	if _, ok := track.Local().(*webrtc.TrackLocalStaticSample); !ok {
		t.Errorf("Unexpected local track type: %T", track.Local())
	}

	// Muting must stop frame pulls
	track.SetEnabled(false)
	for len(frames) > 0 {
		<-frames
	}
	time.Sleep(25 * time.Millisecond)
	for len(frames) > 0 { // drain pulls already in flight at mute time
		<-frames
	}
	time.Sleep(25 * time.Millisecond)
	if n := len(frames); n != 0 {
		t.Errorf("Pulled %d frames while muted.", n)
	}

	ended := make(chan struct{})
	track.OnEnded(func() { close(ended) })
	if err = ss.Close(); err != nil {
		t.Fatalf("Failed to close source: %+v", err)
	}
	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for ended signal.")
	}
}
