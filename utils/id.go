////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package utils

import (
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

// idChars is the alphabet used by GenerateID.
const idChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateID returns a random alphanumeric identifier of the given length,
// used for short, human-shareable codes (e.g., classroom session codes).
func GenerateID(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(idChars[rand.Intn(len(idChars))])
	}
	return sb.String()
}

// NewUUID returns a random unique identifier for internal bookkeeping (alert
// entries, socket manager names).
func NewUUID() string {
	return uuid.NewString()
}
