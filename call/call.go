////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package call runs the one-to-one classroom video call: local media is
// attached to a peer connection, offers and answers travel over the
// classroom event channel, and mute, screen share, and teardown are local
// operations on the live connection.
package call

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/media"
	"gitlab.com/eclassroom/eclassroom-client/socket"
)

// stunServers are the public servers used for ICE gathering.
var stunServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// sdpPayload carries an offer or answer over the event channel.
type sdpPayload struct {
	SessionID string                     `json:"session_id"`
	Offer     *webrtc.SessionDescription `json:"offer,omitempty"`
	Answer    *webrtc.SessionDescription `json:"answer,omitempty"`
}

// candidatePayload carries one trickled ICE candidate.
type candidatePayload struct {
	SessionID string                  `json:"session_id"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// Call is one classroom video call. Signaling handlers never fail the call;
// a malformed or mistimed event is logged and dropped so the call survives
// whatever the other side sends.
type Call struct {
	sessionID string
	channel   socket.Signaler
	alerts    *alert.Presenter

	pc          *webrtc.PeerConnection
	source      media.Source
	audioTrack  *media.Track
	videoTrack  *media.Track
	videoSender *webrtc.RTPSender

	screen media.Source

	// Candidates that arrived before the remote description are held back
	// and applied once it is set.
	pendingCandidates []webrtc.ICECandidateInit
	haveRemote        bool

	state State
	mux   sync.Mutex

	// OnRemoteTrack receives each inbound track as it arrives.
	OnRemoteTrack func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)

	// Navigate, when set, is called with the classroom path after End.
	Navigate func(path string)
}

// NewCall wires a call for the classroom session. Signaling callbacks are
// registered immediately; nothing touches the network until Start.
func NewCall(
	sessionID string, channel socket.Signaler, alerts *alert.Presenter) *Call {
	c := &Call{
		sessionID: sessionID,
		channel:   channel,
		alerts:    alerts,
		state:     Uninitialized,
	}

	channel.RegisterCallback(socket.WebRTCOfferTag, c.handleOffer)
	channel.RegisterCallback(socket.WebRTCAnswerTag, c.handleAnswer)
	channel.RegisterCallback(socket.WebRTCICECandidateTag, c.handleCandidate)
	return c
}

// State returns the call's current state.
func (c *Call) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.state
}

// setState guards and applies a transition.
func (c *Call) setState(next State) error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if err := c.state.transitionTo(next); err != nil {
		return err
	}
	c.state = next
	return nil
}

// Start attaches the local source and builds the peer connection. After
// Start the call can either Offer or answer an inbound offer.
func (c *Call) Start(source media.Source) error {
	if err := c.setState(MediaAcquired); err != nil {
		return err
	}
	c.source = source
	for _, track := range source.Tracks() {
		switch track.Kind() {
		case media.Audio:
			c.audioTrack = track
		case media.Video:
			c.videoTrack = track
		}
	}

	config := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: stunServers}},
	}
	pc, err := webrtc.NewPeerConnection(config)
	if err != nil {
		return errors.Wrap(err, "could not create peer connection")
	}
	c.pc = pc

	for _, track := range source.Tracks() {
		sender, err := pc.AddTrack(track.Local())
		if err != nil {
			_ = pc.Close()
			return errors.Wrapf(
				err, "could not attach %s track", track.Kind())
		}
		if track.Kind() == media.Video {
			c.videoSender = sender
		}
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		jww.INFO.Printf("[CALL] Remote %s track %s arrived.",
			track.Kind(), track.ID())
		if c.OnRemoteTrack != nil {
			c.OnRemoteTrack(track, receiver)
		}
	})

	pc.OnICECandidate(func(candidate *webrtc.ICECandidate) {
		if candidate == nil {
			return
		}
		err := c.channel.Send(socket.WebRTCICECandidateTag, candidatePayload{
			SessionID: c.sessionID,
			Candidate: candidate.ToJSON(),
		})
		if err != nil {
			jww.ERROR.Printf("[CALL] Failed to send candidate: %+v", err)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		jww.INFO.Printf("[CALL] Connection state: %s", state)
		switch state {
		case webrtc.PeerConnectionStateConnected:
			if err := c.setState(Connected); err != nil {
				jww.WARN.Printf("[CALL] %+v", err)
				return
			}
			c.alerts.Success("Video call connected")
		case webrtc.PeerConnectionStateDisconnected,
			webrtc.PeerConnectionStateFailed:
			if c.State() != Ended {
				c.alerts.Warning("Video call disconnected")
			}
		}
	})

	return c.setState(PeerCreated)
}

// Offer creates and sends the local offer. The answer arrives through the
// event channel.
func (c *Call) Offer() error {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return errors.Wrap(err, "could not create offer")
	}
	if err = c.pc.SetLocalDescription(offer); err != nil {
		return errors.Wrap(err, "could not set local description")
	}

	err = c.channel.Send(socket.WebRTCOfferTag,
		sdpPayload{SessionID: c.sessionID, Offer: &offer})
	if err != nil {
		return errors.Wrap(err, "could not send offer")
	}
	return c.setState(Offering)
}

// handleOffer answers an inbound offer.
func (c *Call) handleOffer(data []byte) {
	var payload sdpPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		jww.ERROR.Printf("[CALL] Dropping malformed offer: %+v", err)
		return
	}
	if payload.Offer == nil {
		jww.ERROR.Print("[CALL] Dropping offer event with no offer.")
		return
	}
	if c.State() != PeerCreated {
		jww.WARN.Printf(
			"[CALL] Dropping offer received in state %s.", c.State())
		return
	}

	if err := c.setRemoteDescription(*payload.Offer); err != nil {
		jww.ERROR.Printf("[CALL] Failed to apply offer: %+v", err)
		return
	}

	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		jww.ERROR.Printf("[CALL] Failed to create answer: %+v", err)
		return
	}
	if err = c.pc.SetLocalDescription(answer); err != nil {
		jww.ERROR.Printf("[CALL] Failed to set local description: %+v", err)
		return
	}

	err = c.channel.Send(socket.WebRTCAnswerTag,
		sdpPayload{SessionID: c.sessionID, Answer: &answer})
	if err != nil {
		jww.ERROR.Printf("[CALL] Failed to send answer: %+v", err)
		return
	}
	if err = c.setState(Answering); err != nil {
		jww.WARN.Printf("[CALL] %+v", err)
	}
}

// handleAnswer applies the answer to the local offer.
func (c *Call) handleAnswer(data []byte) {
	var payload sdpPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		jww.ERROR.Printf("[CALL] Dropping malformed answer: %+v", err)
		return
	}
	if payload.Answer == nil {
		jww.ERROR.Print("[CALL] Dropping answer event with no answer.")
		return
	}
	if c.State() != Offering {
		jww.WARN.Printf(
			"[CALL] Dropping answer received in state %s.", c.State())
		return
	}

	if err := c.setRemoteDescription(*payload.Answer); err != nil {
		jww.ERROR.Printf("[CALL] Failed to apply answer: %+v", err)
	}
}

// handleCandidate applies a trickled candidate, holding it back until the
// remote description exists.
func (c *Call) handleCandidate(data []byte) {
	var payload candidatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		jww.ERROR.Printf("[CALL] Dropping malformed candidate: %+v", err)
		return
	}

	c.mux.Lock()
	if !c.haveRemote {
		c.pendingCandidates = append(c.pendingCandidates, payload.Candidate)
		c.mux.Unlock()
		return
	}
	c.mux.Unlock()

	if err := c.pc.AddICECandidate(payload.Candidate); err != nil {
		jww.ERROR.Printf("[CALL] Failed to add candidate: %+v", err)
	}
}

// setRemoteDescription applies the description and flushes candidates that
// arrived early.
func (c *Call) setRemoteDescription(desc webrtc.SessionDescription) error {
	if err := c.pc.SetRemoteDescription(desc); err != nil {
		return err
	}

	c.mux.Lock()
	pending := c.pendingCandidates
	c.pendingCandidates = nil
	c.haveRemote = true
	c.mux.Unlock()

	for _, candidate := range pending {
		if err := c.pc.AddICECandidate(candidate); err != nil {
			jww.ERROR.Printf("[CALL] Failed to add held candidate: %+v", err)
		}
	}
	return nil
}

// ToggleAudio flips the microphone mute flag and returns whether audio is
// now enabled. The track stays attached; muting never renegotiates.
func (c *Call) ToggleAudio() bool {
	if c.audioTrack == nil {
		return false
	}
	return c.audioTrack.Toggle()
}

// ToggleVideo flips the camera mute flag and returns whether video is now
// enabled.
func (c *Call) ToggleVideo() bool {
	if c.videoTrack == nil {
		return false
	}
	return c.videoTrack.Toggle()
}

// ShareScreen swaps the outgoing video track for the screen source's video
// track. When the screen track ends, the camera track is restored
// automatically. Starting a new share while one is active replaces it.
func (c *Call) ShareScreen(screen media.Source) error {
	if c.videoSender == nil {
		return errors.New("call has no video sender")
	}

	var screenTrack *media.Track
	for _, track := range screen.Tracks() {
		if track.Kind() == media.Video {
			screenTrack = track
			break
		}
	}
	if screenTrack == nil {
		return errors.New("screen source has no video track")
	}

	err := c.videoSender.ReplaceTrack(screenTrack.Local())
	if err != nil {
		return errors.Wrap(err, "could not switch to screen track")
	}

	c.mux.Lock()
	previous := c.screen
	c.screen = screen
	c.mux.Unlock()
	if previous != nil {
		_ = previous.Close()
	}

	screenTrack.OnEnded(func() {
		if err := c.StopScreenShare(); err != nil {
			jww.ERROR.Printf(
				"[CALL] Failed to revert after screen share: %+v", err)
		}
	})
	return nil
}

// StopScreenShare closes the screen source and restores the camera track. It
// is a no-op when no share is active.
func (c *Call) StopScreenShare() error {
	c.mux.Lock()
	screen := c.screen
	c.screen = nil
	c.mux.Unlock()
	if screen == nil {
		return nil
	}
	_ = screen.Close()

	if c.videoTrack == nil {
		return nil
	}
	err := c.videoSender.ReplaceTrack(c.videoTrack.Local())
	return errors.Wrap(err, "could not restore camera track")
}

// End tears the call down: capture stops, the peer connection closes, and
// the viewer is sent back to the classroom page. End is terminal; a new call
// needs a new Call.
func (c *Call) End() {
	if err := c.setState(Ended); err != nil {
		jww.WARN.Printf("[CALL] %+v", err)
	}

	if err := c.StopScreenShare(); err != nil {
		jww.WARN.Printf("[CALL] %+v", err)
	}
	if c.source != nil {
		if err := c.source.Close(); err != nil {
			jww.WARN.Printf("[CALL] Failed to close media source: %+v", err)
		}
	}
	if c.pc != nil {
		if err := c.pc.Close(); err != nil {
			jww.WARN.Printf(
				"[CALL] Failed to close peer connection: %+v", err)
		}
	}

	if c.Navigate != nil {
		c.Navigate("/classroom/" + strings.TrimPrefix(c.sessionID, "/"))
	}
}
