// Package survey steps a respondent through the questionnaire one question
// at a time and produces the finished answer set.
package survey

import (
	"fmt"
	"maturitymap/internal/model"
	"sync"
	"time"
)

// Options tunes presentation behavior of a Flow
type Options struct {
	// TransitionDelay postpones each position change. While a delayed
	// transition is pending, further GoNext/GoPrevious calls are ignored.
	// Zero moves immediately.
	TransitionDelay time.Duration
}

// ShouldAutoAdvance decides whether answering q moves on by itself.
// The last question never advances so the respondent can review and submit.
func ShouldAutoAdvance(q model.Question, isLast bool) bool {
	return !isLast
}

// Flow is the survey state machine: one position in [0, N-1] plus the
// answers recorded so far.
type Flow struct {
	mu sync.Mutex

	questions []model.Question
	positions map[int]int // question id -> position
	answers   model.AnswerSet
	position  int
	delay     time.Duration

	transitioning bool
	timer         *time.Timer
	submitted     bool
}

// New starts a survey at the first question with an empty answer set
func New(questions []model.Question, opts Options) *Flow {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)

	positions := make(map[int]int, len(qs))
	for i, q := range qs {
		positions[q.ID] = i
	}

	return &Flow{
		questions: qs,
		positions: positions,
		answers:   make(model.AnswerSet, len(qs)),
		delay:     opts.TransitionDelay,
	}
}

// RecordAnswer upserts an answer. Unknown ids, values outside the
// question's options and answers after submission are ignored and
// reported as false.
func (f *Flow) RecordAnswer(id int, value model.AnswerValue) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitted {
		return false
	}
	pos, ok := f.positions[id]
	if !ok {
		return false
	}
	q := f.questions[pos]
	if !q.Allows(value) {
		return false
	}

	f.answers[id] = value

	if pos == f.position && ShouldAutoAdvance(q, pos == len(f.questions)-1) {
		f.moveLocked(1)
	}
	return true
}

// GoNext moves forward one question. It requires the current question to
// be answered and does nothing at the last position.
func (f *Flow) GoNext() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.questions) == 0 {
		return false
	}
	if _, answered := f.answers[f.questions[f.position].ID]; !answered {
		return false
	}
	return f.moveLocked(1)
}

// GoPrevious moves back one question; it does nothing at position 0
func (f *Flow) GoPrevious() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moveLocked(-1)
}

func (f *Flow) moveLocked(step int) bool {
	if f.submitted || f.transitioning {
		return false
	}

	target := f.position + step
	if target < 0 {
		target = 0
	}
	if last := len(f.questions) - 1; target > last {
		target = last
	}
	if target == f.position || target < 0 {
		return false
	}

	if f.delay <= 0 {
		f.position = target
		return true
	}

	f.transitioning = true
	f.timer = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.submitted {
			f.position = target
		}
		f.transitioning = false
		f.timer = nil
	})
	return true
}

// IsComplete is true once every question has an answer
func (f *Flow) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completeLocked()
}

func (f *Flow) completeLocked() bool {
	return len(f.answers) == len(f.questions)
}

// Submit ends the survey phase and returns the finished answers
func (f *Flow) Submit() (model.AnswerSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitted {
		return nil, ErrAlreadySubmitted
	}
	if !f.completeLocked() {
		return nil, &ValidationError{
			Field:  "answers",
			Reason: fmt.Sprintf("%d of %d questions answered", len(f.answers), len(f.questions)),
		}
	}

	f.submitted = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.transitioning = false
	return f.answers.Clone(), nil
}

// Stop cancels any pending delayed transition
func (f *Flow) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.transitioning = false
}

// Position is the zero-based index of the current question
func (f *Flow) Position() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

// Current returns the question at the current position
func (f *Flow) Current() model.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.questions) == 0 {
		return model.Question{}
	}
	return f.questions[f.position]
}

// IsLast reports whether the current position is the final question
func (f *Flow) IsLast() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position == len(f.questions)-1
}

// Answers returns a copy of the answers recorded so far
func (f *Flow) Answers() model.AnswerSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answers.Clone()
}

// Progress returns how many questions are answered out of the total
func (f *Flow) Progress() (answered, total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.answers), len(f.questions)
}

// Submitted reports whether Submit has succeeded
func (f *Flow) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}
