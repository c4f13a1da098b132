////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package quiz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
	"gitlab.com/eclassroom/eclassroom-client/storage"
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

type takeFixture struct {
	client  *api.Client
	alerts  *alert.Presenter
	toasts  *toastRecorder
	store   *storage.LocalStorage
	submits chan map[string]string
}

func newTakeFixture(t *testing.T, score, total int) *takeFixture {
	t.Helper()

	f := &takeFixture{submits: make(chan map[string]string, 4)}

	mux := http.NewServeMux()
	mux.HandleFunc("/submit_quiz/",
		func(w http.ResponseWriter, r *http.Request) {
			var answers map[string]string
			if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
				t.Errorf("Failed to decode answers: %+v", err)
			}
			f.submits <- answers
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true, "score": score, "total": total})
		})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Failed to make client: %+v", err)
	}
	f.client = client

	f.toasts = &toastRecorder{}
	f.alerts = alert.NewPresenter(time.Minute)
	t.Cleanup(f.alerts.Close)
	f.alerts.Subscribe(f.toasts)

	f.store, err = storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to make storage: %+v", err)
	}
	t.Cleanup(func() { _ = f.store.Close() })

	return f
}

// Tests that selected answers are persisted and that restoring filters out
// answers for questions that no longer exist.
func TestTakeSession_SelectAnswer_Restore(t *testing.T) {
	f := newTakeFixture(t, 0, 0)

	ts := NewTakeSession("9", []string{"1", "2"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	defer ts.Stop()

	ts.SelectAnswer("1", "B")
	ts.SelectAnswer("2", "D")
	ts.SelectAnswer("99", "A") // unknown question, must be ignored

	// Simulate a reload with a shrunken quiz: question 2 was deleted
	ts.Stop()
	ts2 := NewTakeSession("9", []string{"1"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	defer ts2.Stop()

	restored := ts2.RestoreAnswers()
	if len(restored) != 1 || restored["1"] != "B" {
		t.Errorf("Unexpected restored answers.\nexpected: %v\nreceived: %v",
			map[string]string{"1": "B"}, restored)
	}
}

// Tests that Submit sends the answers, clears the saved copy, computes the
// percentage and remark, and refuses a second submission.
func TestTakeSession_Submit(t *testing.T) {
	f := newTakeFixture(t, 8, 10)

	ts := NewTakeSession("9", []string{"1", "2"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	ts.SelectAnswer("1", "A")
	ts.SelectAnswer("2", "C")

	result, err := ts.Submit(context.Background())
	if err != nil {
		t.Fatalf("Failed to submit: %+v", err)
	}

	submitted := <-f.submits
	if submitted["1"] != "A" || submitted["2"] != "C" {
		t.Errorf("Unexpected submitted answers: %v", submitted)
	}

	expected := Result{Score: 8, Total: 10, Percentage: 80, Remark: "Great job!"}
	if result != expected {
		t.Errorf("Unexpected result.\nexpected: %+v\nreceived: %+v",
			expected, result)
	}

	// The saved answers must be gone
	if _, err = f.store.GetItem(answersKey("9")); err == nil {
		t.Error("Saved answers survived submission.")
	}

	// A second submission must be refused
	if _, err = ts.Submit(context.Background()); !errors.Is(
		err, ErrAlreadySubmitted) {
		t.Errorf("Unexpected error for resubmission.\nexpected: %v\n"+
			"received: %v", ErrAlreadySubmitted, err)
	}
}

// Tests that a rejected submission toasts the server's wording, leaves the
// clock running, and keeps the attempt submittable.
func TestTakeSession_Submit_ServerError(t *testing.T) {
	f := &takeFixture{submits: make(chan map[string]string, 4)}

	var rejected bool
	mux := http.NewServeMux()
	mux.HandleFunc("/submit_quiz/",
		func(w http.ResponseWriter, r *http.Request) {
			var answers map[string]string
			_ = json.NewDecoder(r.Body).Decode(&answers)
			f.submits <- answers
			if !rejected {
				rejected = true
				_, _ = w.Write([]byte(
					`{"success": false, "error": "Quiz is no longer active"}`))
				return
			}
			_, _ = w.Write([]byte(
				`{"success": true, "score": 1, "total": 2}`))
		})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Failed to make client: %+v", err)
	}
	f.client = client

	f.toasts = &toastRecorder{}
	f.alerts = alert.NewPresenter(time.Minute)
	t.Cleanup(f.alerts.Close)
	f.alerts.Subscribe(f.toasts)

	f.store, err = storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to make storage: %+v", err)
	}
	t.Cleanup(func() { _ = f.store.Close() })

	ts := NewTakeSession("9", []string{"1"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	defer ts.Stop()
	ts.SelectAnswer("1", "A")

	if _, err = ts.Submit(context.Background()); err == nil {
		t.Fatal("Did not receive error for rejected submission.")
	}
	<-f.submits

	msgs := f.toasts.messages()
	if len(msgs) != 1 || msgs[0] != "Quiz is no longer active" {
		t.Errorf("Unexpected toasts: %v", msgs)
	}

	// The clock must still be running so expiry can auto-submit later
	select {
	case <-ts.clock.quit:
		t.Error("Clock was stopped by a failed submission.")
	default:
	}

	// The attempt must remain submittable and succeed on retry
	if _, err = ts.Submit(context.Background()); err != nil {
		t.Fatalf("Failed to resubmit: %+v", err)
	}
	<-f.submits

	select {
	case <-ts.clock.quit:
	default:
		t.Error("Clock still running after a successful submission.")
	}
}

// Tests that a submission failure with no server wording falls back to the
// generic toast.
func TestTakeSession_Submit_FailureFallbackToast(t *testing.T) {
	f := newTakeFixture(t, 0, 0)

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>bad gateway</html>"))
		}))
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("Failed to make client: %+v", err)
	}

	ts := NewTakeSession("9", []string{"1"}, time.Hour,
		client, f.alerts, f.store, func(string, Urgency) {})
	defer ts.Stop()
	ts.SelectAnswer("1", "A")

	if _, err = ts.Submit(context.Background()); err == nil {
		t.Fatal("Did not receive error for failed submission.")
	}

	msgs := f.toasts.messages()
	if len(msgs) != 1 || msgs[0] != "Failed to submit quiz" {
		t.Errorf("Unexpected toasts: %v", msgs)
	}
}

// Tests the remark bands at their boundaries.
func TestRemarkFor(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   string
	}{
		{100, "Great job!"},
		{70, "Great job!"},
		{69.9, "Good effort!"},
		{50, "Good effort!"},
		{49.9, "Keep practicing!"},
		{0, "Keep practicing!"},
	}
	for _, tt := range tests {
		if remarkFor(tt.percentage) != tt.expected {
			t.Errorf("Unexpected remark for %g%%.\nexpected: %s\nreceived: %s",
				tt.percentage, tt.expected, remarkFor(tt.percentage))
		}
	}
}

// Tests that expiry warns and then submits automatically exactly once.
func TestTakeSession_Expiry_AutoSubmit(t *testing.T) {
	f := newTakeFixture(t, 1, 2)

	ts := NewTakeSession("9", []string{"1"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	ts.SelectAnswer("1", "A")

	// Fire the expiry path directly rather than waiting out a real clock
	ts.clock.Stop()
	ts.expire()

	msgs := f.toasts.messages()
	if len(msgs) != 1 || msgs[0] != expiryMessage {
		t.Fatalf("Unexpected toasts: %v", msgs)
	}

	select {
	case submitted := <-f.submits:
		if submitted["1"] != "A" {
			t.Errorf("Unexpected submitted answers: %v", submitted)
		}
	case <-time.After(autoSubmitDelay + time.Second):
		t.Fatal("Timed out waiting for automatic submission.")
	}

	select {
	case <-f.submits:
		t.Error("Quiz was submitted more than once.")
	case <-time.After(100 * time.Millisecond):
	}
}

// Tests that the close guard prompts only while unsubmitted answers exist.
func TestTakeSession_CloseGuard(t *testing.T) {
	f := newTakeFixture(t, 1, 1)

	ts := NewTakeSession("9", []string{"1"}, time.Hour,
		f.client, f.alerts, f.store, func(string, Urgency) {})
	defer ts.Stop()

	if _, guard := ts.CloseGuard(); guard {
		t.Error("Guard active before any answer was selected.")
	}

	ts.SelectAnswer("1", "A")
	msg, guard := ts.CloseGuard()
	if !guard || msg != closeGuardMessage {
		t.Errorf("Unexpected guard state.\nexpected: %q\nreceived: %q",
			closeGuardMessage, msg)
	}

	if _, err := ts.Submit(context.Background()); err != nil {
		t.Fatalf("Failed to submit: %+v", err)
	}
	if _, guard = ts.CloseGuard(); guard {
		t.Error("Guard active after submission.")
	}
}

// Tests that the countdown fires its expiry callback exactly once and stops
// ticking afterward.
func TestCountdown_Expiry(t *testing.T) {
	ticks := make(chan string, 64)
	c := NewCountdown(3*time.Second, func(display string, _ Urgency) {
		ticks <- display
	})
	c.interval = time.Millisecond

	expired := make(chan struct{}, 4)
	c.SetOnExpire(func() { expired <- struct{}{} })
	c.Start()

	if first := <-ticks; first != "00:03" {
		t.Errorf("Unexpected first display.\nexpected: %s\nreceived: %s",
			"00:03", first)
	}

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for expiry.")
	}

	select {
	case <-expired:
		t.Error("Expiry fired more than once.")
	case <-time.After(50 * time.Millisecond):
	}

	if c.Remaining() > 0 {
		t.Errorf("Clock still has %s remaining after expiry.", c.Remaining())
	}
}
