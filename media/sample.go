////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package media

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/utils"
)

// FrameFunc returns the next encoded frame for a sample-fed track. It is
// called once per frame interval while the track is enabled.
type FrameFunc func() []byte

// SampleSource feeds pre-encoded frames into a local track on a fixed
// interval. It backs screen capture and headless operation, where frames come
// from an encoder rather than a device. Frames are skipped while the track is
// muted.
type SampleSource struct {
	track    *Track
	sample   *webrtc.TrackLocalStaticSample
	frames   FrameFunc
	interval time.Duration

	quit      chan struct{}
	closeOnce sync.Once
}

// NewSampleSource creates a SampleSource producing one track of the given
// kind and codec. Pumping starts immediately and continues until Close.
func NewSampleSource(kind Kind, codec webrtc.RTPCodecCapability,
	streamID string, frames FrameFunc, interval time.Duration) (
	*SampleSource, error) {
	sample, err := webrtc.NewTrackLocalStaticSample(
		codec, string(kind)+"-"+utils.GenerateID(8), streamID)
	if err != nil {
		return nil, errors.Wrap(err, "could not create local track")
	}

	ss := &SampleSource{
		track:    NewTrack(sample, kind),
		sample:   sample,
		frames:   frames,
		interval: interval,
		quit:     make(chan struct{}),
	}
	go ss.pump()

	return ss, nil
}

// NewScreenSource creates a VP8 video SampleSource for screen sharing.
func NewScreenSource(
	streamID string, frames FrameFunc, interval time.Duration) (
	*SampleSource, error) {
	return NewSampleSource(Video,
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		streamID, frames, interval)
}

// Tracks implements [Source].
func (ss *SampleSource) Tracks() []*Track { return []*Track{ss.track} }

// Track returns the source's single track.
func (ss *SampleSource) Track() *Track { return ss.track }

// pump writes one sample per interval until the source is closed.
func (ss *SampleSource) pump() {
	ticker := time.NewTicker(ss.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !ss.track.Enabled() {
				continue
			}
			frame := ss.frames()
			if len(frame) == 0 {
				continue
			}
			err := ss.sample.WriteSample(
				pionmedia.Sample{Data: frame, Duration: ss.interval})
			if err != nil {
				jww.WARN.Printf("[MEDIA] Failed to write sample: %+v", err)
			}
		case <-ss.quit:
			return
		}
	}
}

// Close implements [Source]. It stops the pump and ends the track. The
// ended callback may itself close the source again, so the track is ended
// outside the once guard.
func (ss *SampleSource) Close() error {
	ss.closeOnce.Do(func() { close(ss.quit) })
	ss.track.end()
	return nil
}
