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
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
	"gitlab.com/eclassroom/eclassroom-client/storage"
)

// autoSubmitDelay is how long the expiry warning stays on screen before the
// attempt is submitted automatically.
const autoSubmitDelay = 2 * time.Second

// expiryMessage warns that the attempt is about to be auto submitted.
const expiryMessage = "Time is up! Quiz will be submitted automatically."

// closeGuardMessage asks for confirmation before abandoning unsaved answers.
const closeGuardMessage = "You have unsaved answers. " +
	"Are you sure you want to leave?"

// ErrAlreadySubmitted is returned by Submit after a successful submission.
var ErrAlreadySubmitted = errors.New("quiz was already submitted")

// Result is the graded outcome of an attempt.
type Result struct {
	Score      int
	Total      int
	Percentage float64
	Remark     string
}

// remarkFor grades the percentage into an encouragement line.
func remarkFor(percentage float64) string {
	switch {
	case percentage >= 70:
		return "Great job!"
	case percentage >= 50:
		return "Good effort!"
	default:
		return "Keep practicing!"
	}
}

// TakeSession is one student's attempt at a quiz. Selected answers are
// persisted locally after every change so a crashed or reloaded attempt can
// resume where it left off; the saved answers are cleared on submission.
type TakeSession struct {
	quizID      string
	questionIDs map[string]struct{}

	client *api.Client
	alerts *alert.Presenter
	store  *storage.LocalStorage
	clock  *Countdown

	answers   map[string]string
	submitted bool
	mux       sync.Mutex

	// OnResult, when set, receives the graded result after any submission,
	// including the automatic one at expiry.
	OnResult func(Result)
}

// answersKey is the local storage key holding the attempt's answer map.
func answersKey(quizID string) string {
	return fmt.Sprintf("quiz_%s_answers", quizID)
}

// NewTakeSession starts an attempt at the quiz with the given question IDs
// and time limit. The countdown starts ticking immediately; when it expires,
// the attempt is submitted automatically after a short warning.
func NewTakeSession(quizID string, questionIDs []string, limit time.Duration,
	client *api.Client, alerts *alert.Presenter, store *storage.LocalStorage,
	tick TickFunc) *TakeSession {
	ts := &TakeSession{
		quizID:      quizID,
		questionIDs: make(map[string]struct{}, len(questionIDs)),
		client:      client,
		alerts:      alerts,
		store:       store,
		answers:     make(map[string]string),
	}
	for _, id := range questionIDs {
		ts.questionIDs[id] = struct{}{}
	}

	ts.clock = NewCountdown(limit, tick)
	ts.clock.SetOnExpire(ts.expire)
	ts.clock.Start()

	return ts
}

// RestoreAnswers loads the answers saved by a previous run of this attempt.
// Saved answers for questions that no longer exist in the quiz are dropped.
// The restored map is returned so the view can re-mark the selections.
func (ts *TakeSession) RestoreAnswers() map[string]string {
	data, err := ts.store.GetItem(answersKey(ts.quizID))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			jww.WARN.Printf("[QUIZ] Failed to load saved answers: %+v", err)
		}
		return nil
	}

	var saved map[string]string
	if err = json.Unmarshal(data, &saved); err != nil {
		jww.WARN.Printf("[QUIZ] Failed to decode saved answers: %+v", err)
		return nil
	}

	ts.mux.Lock()
	defer ts.mux.Unlock()
	restored := make(map[string]string)
	for id, option := range saved {
		if _, exists := ts.questionIDs[id]; exists {
			ts.answers[id] = option
			restored[id] = option
		}
	}
	return restored
}

// SelectAnswer records the chosen option for a question and persists the
// whole answer map. Unknown question IDs are ignored.
func (ts *TakeSession) SelectAnswer(questionID, option string) {
	if _, exists := ts.questionIDs[questionID]; !exists {
		return
	}

	ts.mux.Lock()
	ts.answers[questionID] = option
	data, err := json.Marshal(ts.answers)
	ts.mux.Unlock()

	if err != nil {
		jww.ERROR.Printf("[QUIZ] Failed to marshal answers: %+v", err)
		return
	}
	if err = ts.store.SetItem(answersKey(ts.quizID), data); err != nil {
		jww.WARN.Printf("[QUIZ] Failed to save answers: %+v", err)
	}
}

// Answers returns a copy of the current answer map.
func (ts *TakeSession) Answers() map[string]string {
	ts.mux.Lock()
	defer ts.mux.Unlock()
	answers := make(map[string]string, len(ts.answers))
	for id, option := range ts.answers {
		answers[id] = option
	}
	return answers
}

// Submit grades the attempt with the server, then stops the clock and clears
// the locally saved answers. A second submission returns
// [ErrAlreadySubmitted]. On a server failure a toast reports the problem and
// the attempt stays submittable, with the clock still running.
func (ts *TakeSession) Submit(ctx context.Context) (Result, error) {
	ts.mux.Lock()
	if ts.submitted {
		ts.mux.Unlock()
		return Result{}, ErrAlreadySubmitted
	}
	ts.submitted = true
	answers := make(map[string]string, len(ts.answers))
	for id, option := range ts.answers {
		answers[id] = option
	}
	ts.mux.Unlock()

	res, err := ts.client.SubmitQuiz(ctx, ts.quizID, answers)
	if err != nil {
		ts.mux.Lock()
		ts.submitted = false
		ts.mux.Unlock()

		message := "Failed to submit quiz"
		var srvErr *api.ServerError
		if errors.As(err, &srvErr) {
			message = srvErr.Error()
		}
		ts.alerts.Error(message)
		return Result{}, err
	}

	ts.clock.Stop()

	if err = ts.store.RemoveItem(answersKey(ts.quizID)); err != nil {
		jww.WARN.Printf("[QUIZ] Failed to clear saved answers: %+v", err)
	}

	result := Result{Score: res.Score, Total: res.Total}
	if res.Total > 0 {
		result.Percentage = float64(res.Score) / float64(res.Total) * 100
	}
	result.Remark = remarkFor(result.Percentage)

	if ts.OnResult != nil {
		ts.OnResult(result)
	}
	return result, nil
}

// expire warns that time ran out and schedules the automatic submission.
func (ts *TakeSession) expire() {
	ts.alerts.Warning(expiryMessage)
	time.AfterFunc(autoSubmitDelay, func() {
		_, err := ts.Submit(context.Background())
		if err != nil && !errors.Is(err, ErrAlreadySubmitted) {
			jww.ERROR.Printf("[QUIZ] Automatic submission failed: %+v", err)
		}
	})
}

// CloseGuard returns the confirmation prompt to show before leaving the
// attempt. It returns false once the attempt is submitted or while no answer
// has been selected yet.
func (ts *TakeSession) CloseGuard() (string, bool) {
	ts.mux.Lock()
	defer ts.mux.Unlock()
	if ts.submitted || len(ts.answers) == 0 {
		return "", false
	}
	return closeGuardMessage, true
}

// Stop halts the countdown without submitting, for when the student backs
// out of the attempt.
func (ts *TakeSession) Stop() {
	ts.clock.Stop()
}
