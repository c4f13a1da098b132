////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"context"
	"io"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
)

// MaxFileSize is the largest file that may be shared in a classroom. The
// limit is enforced locally so an oversized file is rejected before any bytes
// leave the machine.
const MaxFileSize = 16 << 20 // 16 MiB

// oversizeMessage is shown when a file exceeds [MaxFileSize].
const oversizeMessage = "File size must be less than 16MB"

// ErrFileTooLarge is returned by Share for files over [MaxFileSize].
var ErrFileTooLarge = errors.New("file exceeds the 16 MiB upload limit")

// FileShare uploads files to the server and announces them in the chat.
type FileShare struct {
	client  *api.Client
	session *Session
	alerts  *alert.Presenter
}

// NewFileShare creates a FileShare for the given chat session.
func NewFileShare(
	client *api.Client, session *Session, alerts *alert.Presenter) *FileShare {
	return &FileShare{client: client, session: session, alerts: alerts}
}

// Share uploads the named file and announces it in the room. Files larger
// than [MaxFileSize] are rejected before any upload request is made. Progress
// and outcome are reported through the alert presenter.
func (fs *FileShare) Share(
	ctx context.Context, name string, r io.Reader, size int64) error {
	if size > MaxFileSize {
		fs.alerts.Error(oversizeMessage)
		return ErrFileTooLarge
	}

	uploading := fs.alerts.Info("Uploading file...")
	defer fs.alerts.Dismiss(uploading)

	fileURL, err := fs.client.UploadFile(
		ctx, fs.session.sessionID, name, io.LimitReader(r, MaxFileSize))
	if err != nil {
		jww.ERROR.Printf("[CHAT] Failed to upload %q: %+v", name, err)
		fs.alerts.Error(uploadFailureMessage(err))
		return errors.Wrap(err, "could not upload file")
	}

	err = fs.session.sendFileAnnouncement("📎 Shared file: "+name, fileURL)
	if err != nil {
		jww.ERROR.Printf(
			"[CHAT] Failed to announce upload of %q: %+v", name, err)
		fs.alerts.Error("File upload failed")
		return errors.Wrap(err, "could not announce uploaded file")
	}

	fs.alerts.Success("File uploaded successfully")
	return nil
}

// uploadFailureMessage picks the toast for a failed upload: the server's own
// rejection wording when it sent one, a generic message for transport and
// status failures.
func uploadFailureMessage(err error) string {
	var srvErr *api.ServerError
	if errors.As(err, &srvErr) {
		return srvErr.Error()
	}
	return "File upload failed"
}
