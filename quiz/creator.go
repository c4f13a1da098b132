////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package quiz

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/alert"
	"gitlab.com/eclassroom/eclassroom-client/api"
)

// reloadDelay is how long the success toast stays visible before the form
// view is reloaded.
const reloadDelay = 1500 * time.Millisecond

// ErrNoQuestions is returned by Publish when no complete question block
// exists.
var ErrNoQuestions = errors.New("quiz has no complete questions")

// Form holds the quiz-level fields of the creation form.
type Form struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject" validate:"required"`
	ClassName   string `json:"class_name" validate:"required"`
	TimeLimit   int    `json:"time_limit" validate:"required,min=1"`
}

// questionPayload is the wire form of one question.
type questionPayload struct {
	Question      string `json:"question" validate:"required"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Points        int    `json:"points" validate:"min=1"`
}

// createPayload is the body posted to publish a quiz.
type createPayload struct {
	Form
	Questions []questionPayload `json:"questions" validate:"required,min=1,dive"`
}

// Creator publishes quizzes assembled with a [Builder].
type Creator struct {
	client   *api.Client
	alerts   *alert.Presenter
	validate *validator.Validate

	// Reload, when set, is called after a successful publish once the
	// success toast has been visible for a moment.
	Reload func()
}

// NewCreator creates a Creator reporting through the given presenter.
func NewCreator(client *api.Client, alerts *alert.Presenter) *Creator {
	return &Creator{
		client:   client,
		alerts:   alerts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Publish validates the form and the builder's complete questions and posts
// the quiz. On success the builder is reset for the next quiz and a reload
// is scheduled; on failure a toast reports the problem and the builder is
// left untouched so nothing typed is lost.
func (c *Creator) Publish(
	ctx context.Context, form Form, builder *Builder) error {
	questions := builder.Collect()
	if len(questions) == 0 {
		c.alerts.Error("Failed to create quiz")
		return ErrNoQuestions
	}

	payload := createPayload{Form: form}
	for _, q := range questions {
		payload.Questions = append(payload.Questions, questionPayload{
			Question:      q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
		})
	}

	if err := c.validate.Struct(payload); err != nil {
		c.alerts.Error("Failed to create quiz")
		return errors.Wrap(err, "invalid quiz")
	}

	if err := c.client.CreateQuiz(ctx, payload); err != nil {
		jww.ERROR.Printf("[QUIZ] Failed to create quiz %q: %+v",
			form.Title, err)
		c.alerts.Error("Failed to create quiz")
		return err
	}

	c.alerts.Success("Quiz created successfully")
	builder.Reset()
	if c.Reload != nil {
		time.AfterFunc(reloadDelay, c.Reload)
	}
	return nil
}
