////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
	"gitlab.com/eclassroom/eclassroom-client/socket"
)

// toastRecorder collects every alert the presenter shows.
type toastRecorder struct {
	shown []alert.Alert
	mux   sync.Mutex
}

func (tr *toastRecorder) Show(a alert.Alert) {
	tr.mux.Lock()
	defer tr.mux.Unlock()
	tr.shown = append(tr.shown, a)
}
func (tr *toastRecorder) Dismiss(string) {}

func (tr *toastRecorder) messages() []string {
	tr.mux.Lock()
	defer tr.mux.Unlock()
	msgs := make([]string, len(tr.shown))
	for i, a := range tr.shown {
		msgs[i] = a.Message
	}
	return msgs
}

func newShareFixture(t *testing.T, handler http.HandlerFunc) (
	*FileShare, *fakeChannel, *toastRecorder) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Failed to make client: %+v", err)
	}

	tr := &toastRecorder{}
	alerts := alert.NewPresenter(time.Minute)
	t.Cleanup(alerts.Close)
	alerts.Subscribe(tr)

	fc := newFakeChannel()
	session := NewSession("42", "ada", fc, &fakeRenderer{}, nil)

	return NewFileShare(client, session, alerts), fc, tr
}

// Tests the happy path: the file is uploaded, the share is announced in the
// chat with the returned URL, and a success toast is shown.
func TestFileShare_Share(t *testing.T) {
	fs, fc, tr := newShareFixture(t,
		func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(MaxFileSize); err != nil {
				t.Errorf("Failed to parse multipart form: %+v", err)
			}
			if sid := r.FormValue("session_id"); sid != "42" {
				t.Errorf("Unexpected session_id.\nexpected: %s\nreceived: %s",
					"42", sid)
			}
			_, _ = w.Write(
				[]byte(`{"success": true, "file_url": "/uploads/notes.pdf"}`))
		})

	err := fs.Share(context.Background(), "notes.pdf",
		strings.NewReader("contents"), 8)
	if err != nil {
		t.Fatalf("Failed to share: %+v", err)
	}

	if len(fc.sent) != 1 || fc.sent[0].Event != socket.SendMessageTag {
		t.Fatalf("Unexpected events sent: %v", fc.sent)
	}
	var payload map[string]string
	if err = json.Unmarshal(fc.sent[0].Data, &payload); err != nil {
		t.Fatalf("Failed to unmarshal payload: %+v", err)
	}
	if payload["message"] != "📎 Shared file: notes.pdf" {
		t.Errorf("Unexpected announcement.\nexpected: %q\nreceived: %q",
			"📎 Shared file: notes.pdf", payload["message"])
	}
	if payload["file_url"] != "/uploads/notes.pdf" {
		t.Errorf("Unexpected file URL.\nexpected: %q\nreceived: %q",
			"/uploads/notes.pdf", payload["file_url"])
	}

	msgs := tr.messages()
	if len(msgs) != 2 || msgs[0] != "Uploading file..." ||
		msgs[1] != "File uploaded successfully" {
		t.Errorf("Unexpected toasts: %v", msgs)
	}
}

// Tests that an oversized file is rejected before any request is made.
func TestFileShare_Share_TooLarge(t *testing.T) {
	requests := 0
	fs, fc, tr := newShareFixture(t,
		func(http.ResponseWriter, *http.Request) { requests++ })

	err := fs.Share(context.Background(), "video.mp4",
		strings.NewReader(""), MaxFileSize+1)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("Unexpected error.\nexpected: %v\nreceived: %v",
			ErrFileTooLarge, err)
	}

	if requests != 0 {
		t.Errorf("Server received %d requests for an oversized file.", requests)
	}
	if len(fc.sent) != 0 {
		t.Errorf("Announcement sent for an oversized file: %v", fc.sent)
	}
	msgs := tr.messages()
	if len(msgs) != 1 || msgs[0] != oversizeMessage {
		t.Errorf("Unexpected toasts: %v", msgs)
	}
}

// Tests that a server-side rejection toasts the server's own wording and
// makes no announcement.
func TestFileShare_Share_ServerError(t *testing.T) {
	fs, fc, tr := newShareFixture(t,
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(
				[]byte(`{"success": false, "error": "File type not allowed"}`))
		})

	err := fs.Share(context.Background(), "script.exe",
		strings.NewReader("contents"), 8)
	if err == nil {
		t.Fatal("Did not receive error for rejected upload.")
	}

	if len(fc.sent) != 0 {
		t.Errorf("Announcement sent for a failed upload: %v", fc.sent)
	}
	msgs := tr.messages()
	if len(msgs) != 2 || msgs[1] != "File type not allowed" {
		t.Errorf("Unexpected toasts: %v", msgs)
	}
}

// Tests that a failure with no server wording falls back to the generic
// toast, keeping it distinguishable from a worded rejection.
func TestFileShare_Share_TransportError(t *testing.T) {
	fs, fc, tr := newShareFixture(t,
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		})

	err := fs.Share(context.Background(), "notes.pdf",
		strings.NewReader("contents"), 8)
	if err == nil {
		t.Fatal("Did not receive error for failed upload.")
	}

	if len(fc.sent) != 0 {
		t.Errorf("Announcement sent for a failed upload: %v", fc.sent)
	}
	msgs := tr.messages()
	if len(msgs) != 2 || msgs[1] != "File upload failed" {
		t.Errorf("Unexpected toasts: %v", msgs)
	}
}
