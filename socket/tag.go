////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package socket

// Tag names an event on the classroom channel. The server rebroadcasts each
// event to the other members of the classroom room.
type Tag string

// List of tags that can be used when sending an event or registering a
// callback to receive an event.
const (
	// Outbound events
	JoinClassroomTag  Tag = "join_classroom"
	LeaveClassroomTag Tag = "leave_classroom"
	SendMessageTag    Tag = "send_message"

	// Inbound events
	MessageTag Tag = "message"
	StatusTag  Tag = "status"

	// Call negotiation events, relayed in both directions
	WebRTCOfferTag        Tag = "webrtc_offer"
	WebRTCAnswerTag       Tag = "webrtc_answer"
	WebRTCICECandidateTag Tag = "webrtc_ice_candidate"
)
