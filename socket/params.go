////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package socket

import "time"

// Params are parameters used in the [Manager].
type Params struct {
	// EventLogging indicates if a DEBUG message should be printed every time
	// an event is sent or received.
	EventLogging bool

	// WriteTimeout is how long a single write may block before the
	// connection is considered dead.
	WriteTimeout time.Duration
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		EventLogging: false,
		WriteTimeout: 10 * time.Second,
	}
}
