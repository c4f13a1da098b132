////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package quiz implements both sides of the quiz workflow: teachers assemble
// and publish quizzes, students take them against a countdown with answers
// persisted locally so an interrupted attempt can resume.
package quiz

import "sync"

// Question is one multiple-choice question in a quiz under construction.
// Numbers are display-only and always run 1..n; removing a question
// renumbers the rest.
type Question struct {
	Number        int
	Question      string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Points        int
}

// complete reports whether every field of the question block is filled in.
func (q Question) complete() bool {
	return q.Question != "" && q.OptionA != "" && q.OptionB != "" &&
		q.OptionC != "" && q.OptionD != "" && q.CorrectAnswer != ""
}

// Builder assembles the question list for a new quiz. It mirrors the
// add/remove question controls on the creation form: blocks can sit around
// half-filled and only the complete ones are collected at publish time.
type Builder struct {
	questions []Question
	mux       sync.Mutex
}

// NewBuilder returns a Builder with a single empty question block, matching
// the initial state of the creation form.
func NewBuilder() *Builder {
	b := &Builder{}
	b.AddQuestion()
	return b
}

// AddQuestion appends an empty question block and returns its number.
func (b *Builder) AddQuestion() int {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.questions = append(b.questions, Question{Number: len(b.questions) + 1})
	return len(b.questions)
}

// SetQuestion replaces the block with the given number. Unknown numbers are
// ignored. Points below 1 are raised to the default of 1.
func (b *Builder) SetQuestion(number int, q Question) {
	b.mux.Lock()
	defer b.mux.Unlock()
	if number < 1 || number > len(b.questions) {
		return
	}
	q.Number = number
	if q.Points < 1 {
		q.Points = 1
	}
	b.questions[number-1] = q
}

// RemoveQuestion deletes the block with the given number and renumbers the
// remaining blocks so numbering stays contiguous from 1.
func (b *Builder) RemoveQuestion(number int) {
	b.mux.Lock()
	defer b.mux.Unlock()
	if number < 1 || number > len(b.questions) {
		return
	}
	b.questions = append(b.questions[:number-1], b.questions[number:]...)
	for i := range b.questions {
		b.questions[i].Number = i + 1
	}
}

// Questions returns a copy of all blocks, complete or not.
func (b *Builder) Questions() []Question {
	b.mux.Lock()
	defer b.mux.Unlock()
	return append([]Question{}, b.questions...)
}

// Collect returns only the complete blocks, in order. Half-filled blocks are
// silently dropped; the server never sees them.
func (b *Builder) Collect() []Question {
	b.mux.Lock()
	defer b.mux.Unlock()

	var complete []Question
	for _, q := range b.questions {
		if q.complete() {
			if q.Points < 1 {
				q.Points = 1
			}
			complete = append(complete, q)
		}
	}
	return complete
}

// Reset drops all blocks and starts over with a single empty one.
func (b *Builder) Reset() {
	b.mux.Lock()
	b.questions = nil
	b.mux.Unlock()
	b.AddQuestion()
}
