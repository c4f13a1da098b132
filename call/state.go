////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package call

import "github.com/pkg/errors"

// State tracks a call through its life. Transitions only move forward;
// a new call means a new [Call].
type State int

const (
	// Uninitialized is the state before local media is acquired.
	Uninitialized State = iota

	// MediaAcquired means local tracks exist but no peer connection yet.
	MediaAcquired

	// PeerCreated means the peer connection is configured and the local
	// tracks are attached.
	PeerCreated

	// Offering means a local offer was sent and the answer is pending.
	Offering

	// Answering means a remote offer arrived and was answered.
	Answering

	// Connected means media is flowing.
	Connected

	// Ended is terminal.
	Ended
)

// String returns the human-readable name of the State.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case MediaAcquired:
		return "media acquired"
	case PeerCreated:
		return "peer created"
	case Offering:
		return "offering"
	case Answering:
		return "answering"
	case Connected:
		return "connected"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// transitions lists the states each state may move to.
var transitions = map[State][]State{
	Uninitialized: {MediaAcquired},
	MediaAcquired: {PeerCreated},
	PeerCreated:   {Offering, Answering},
	Offering:      {Connected},
	Answering:     {Connected},
	Connected:     {},
}

// transitionTo checks the move from the current state. Any state may move to
// [Ended]; everything else must follow the forward path.
func (s State) transitionTo(next State) error {
	if next == Ended {
		return nil
	}
	for _, allowed := range transitions[s] {
		if next == allowed {
			return nil
		}
	}
	return errors.Errorf(
		"invalid call state transition from %s to %s", s, next)
}
