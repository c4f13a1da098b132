////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"gitlab.com/eclassroom/eclassroom-client/quiz"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Create or take quizzes.",
}

// quizFile is the on-disk definition accepted by quiz create.
type quizFile struct {
	quiz.Form
	Questions []quiz.Question `json:"questions"`
}

var quizCreateCmd = &cobra.Command{
	Use:   "create FILE",
	Short: "Publish a quiz from a JSON definition file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrap(err, "could not read quiz file")
		}
		var qf quizFile
		if err = json.Unmarshal(data, &qf); err != nil {
			return errors.Wrap(err, "could not parse quiz file")
		}

		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.close()

		builder := quiz.NewBuilder()
		for i, q := range qf.Questions {
			if i > 0 {
				builder.AddQuestion()
			}
			builder.SetQuestion(i+1, q)
		}

		creator := quiz.NewCreator(e.client, e.alerts)
		return creator.Publish(cmd.Context(), qf.Form, builder)
	},
}

var quizQuestionIDs []string
var quizTimeLimit int

var quizTakeCmd = &cobra.Command{
	Use:   "take QUIZ_ID",
	Short: "Take a quiz against the clock.",
	Long: "Take a quiz against the clock. Answer with lines of the form " +
		"\"QUESTION_ID OPTION\" (for example \"3 B\") and finish with " +
		"\"submit\". Answers are saved locally after every change, so a " +
		"restarted attempt resumes where it left off. When the clock runs " +
		"out the attempt is submitted automatically.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		quizID := args[0]
		e, err := newEnv()
		if err != nil {
			return err
		}
		defer e.close()

		done := make(chan struct{})
		session := quiz.NewTakeSession(quizID, quizQuestionIDs,
			time.Duration(quizTimeLimit)*time.Minute, e.client, e.alerts,
			e.store, printClock)
		defer session.Stop()
		session.OnResult = func(r quiz.Result) {
			fmt.Printf("Score: %d/%d (%.0f%%) %s\n",
				r.Score, r.Total, r.Percentage, r.Remark)
			close(done)
		}

		if restored := session.RestoreAnswers(); len(restored) > 0 {
			fmt.Printf("Restored %d saved answers.\n", len(restored))
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "submit":
				if _, err := session.Submit(cmd.Context()); err != nil {
					return err
				}
				return nil
			case line == "quit":
				if msg, guard := session.CloseGuard(); guard {
					fmt.Println(msg + " Type quit again to confirm.")
					if scanner.Scan() &&
						strings.TrimSpace(scanner.Text()) == "quit" {
						return nil
					}
					continue
				}
				return nil
			case line != "":
				fields := strings.Fields(line)
				if len(fields) != 2 {
					fmt.Println("answer with: QUESTION_ID OPTION")
					continue
				}
				session.SelectAnswer(
					fields[0], strings.ToUpper(fields[1]))
			}

			select {
			case <-done:
				// The clock ran out and the attempt was auto submitted
				return nil
			default:
			}
		}
		return scanner.Err()
	},
}

// printClock renders the countdown, flagging the urgent phases.
func printClock(display string, urgency quiz.Urgency) {
	switch urgency {
	case quiz.UrgencyDanger:
		fmt.Printf("\r[!!] %s ", display)
	case quiz.UrgencyWarning:
		fmt.Printf("\r[!] %s ", display)
	default:
		fmt.Printf("\r%s ", display)
	}
}

func init() {
	quizTakeCmd.Flags().StringSliceVarP(&quizQuestionIDs, "questions", "q",
		nil, "IDs of the quiz's questions.")
	quizTakeCmd.Flags().IntVarP(&quizTimeLimit, "limit", "t", 10,
		"Time limit in minutes.")

	quizCmd.AddCommand(quizCreateCmd, quizTakeCmd)
	rootCmd.AddCommand(quizCmd)
}
