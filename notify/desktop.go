////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package notify

// Permission is the viewer's desktop notification permission state.
type Permission int

const (
	// PermissionDefault means the viewer has not been asked yet.
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

// String returns the human-readable name of the Permission.
func (p Permission) String() string {
	switch p {
	case PermissionDefault:
		return "default"
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// DesktopNotifier raises notifications on the viewer's desktop. Callers must
// check Permission before notifying; implementations may drop notifications
// regardless when permission is not granted.
type DesktopNotifier interface {
	// Permission returns the current permission state.
	Permission() Permission

	// RequestPermission asks the viewer to grant notifications and returns
	// the resulting state. Asking when the state is not [PermissionDefault]
	// returns the current state unchanged.
	RequestPermission() Permission

	// Notify raises a desktop notification.
	Notify(title, body string) error
}
