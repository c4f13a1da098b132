////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package socket

import "encoding/json"

// Message is the envelope that carries every event on the channel. It is
// transmitted as JSON text frames.
type Message struct {
	Event Tag             `json:"event"`
	Data  json.RawMessage `json:"data"`
}
