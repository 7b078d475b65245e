package survey

import (
	"errors"
	"maturitymap/internal/catalog"
	"maturitymap/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlow(t *testing.T) *Flow {
	t.Helper()
	f := New(catalog.Questions(), Options{})
	t.Cleanup(f.Stop)
	return f
}

func answerAll(t *testing.T, f *Flow) {
	t.Helper()
	for _, q := range catalog.Questions() {
		require.True(t, f.RecordAnswer(q.ID, q.Options[0]), "question %d", q.ID)
	}
}

func TestFlow_AnswerEveryQuestionCompletes(t *testing.T) {
	f := newFlow(t)
	assert.False(t, f.IsComplete())

	answerAll(t, f)

	assert.True(t, f.IsComplete())
	answers, err := f.Submit()
	require.NoError(t, err)
	assert.Len(t, answers, catalog.Len())
	for _, q := range catalog.Questions() {
		assert.Equal(t, q.Options[0], answers[q.ID])
	}
}

func TestFlow_AnswerOutOfOrderStillCompletes(t *testing.T) {
	f := newFlow(t)
	qs := catalog.Questions()
	for i := len(qs) - 1; i >= 0; i-- {
		require.True(t, f.RecordAnswer(qs[i].ID, qs[i].Options[len(qs[i].Options)-1]))
	}
	assert.True(t, f.IsComplete())
	answers, err := f.Submit()
	require.NoError(t, err)
	assert.Len(t, answers, len(qs))
}

func TestFlow_RecordValidAnswer(t *testing.T) {
	f := newFlow(t)

	require.True(t, f.RecordAnswer(1, model.AnswerNo))
	assert.Equal(t, model.AnswerNo, f.Answers()[1])
}

func TestFlow_RecordAnswerOverwrites(t *testing.T) {
	f := newFlow(t)
	require.True(t, f.RecordAnswer(3, model.AnswerYes))
	require.True(t, f.RecordAnswer(3, model.AnswerPartially))

	answers := f.Answers()
	assert.Len(t, answers, 1)
	assert.Equal(t, model.AnswerPartially, answers[3])
}

func TestFlow_RecordInvalidAnswerIsNoop(t *testing.T) {
	tests := []struct {
		name  string
		id    int
		value model.AnswerValue
	}{
		{"value outside options", 1, model.AnswerPartially},
		{"value from another question", 4, model.AnswerPlanned},
		{"unknown value", 2, "Maybe"},
		{"unknown question", 42, model.AnswerYes},
		{"zero id", 0, model.AnswerYes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlow(t)
			require.True(t, f.RecordAnswer(5, model.AnswerPlanned))
			before := f.Answers()
			pos := f.Position()

			assert.False(t, f.RecordAnswer(tt.id, tt.value))
			assert.Equal(t, before, f.Answers())
			assert.Equal(t, pos, f.Position())
		})
	}
}

func TestFlow_PositionIsClamped(t *testing.T) {
	f := newFlow(t)

	assert.False(t, f.GoPrevious())
	assert.Equal(t, 0, f.Position())

	answerAll(t, f)
	require.Equal(t, catalog.Len()-1, f.Position())
	assert.True(t, f.IsLast())

	assert.False(t, f.GoNext())
	assert.Equal(t, catalog.Len()-1, f.Position())
}

func TestFlow_NextRequiresCurrentAnswer(t *testing.T) {
	f := newFlow(t)

	assert.False(t, f.GoNext(), "question 1 unanswered")
	assert.Equal(t, 0, f.Position())

	require.True(t, f.RecordAnswer(1, model.AnswerYes))
	assert.Equal(t, 1, f.Position(), "auto-advanced")

	require.True(t, f.GoPrevious())
	assert.Equal(t, 0, f.Position())
	assert.True(t, f.GoNext(), "question 1 now answered")
	assert.Equal(t, 1, f.Position())
}

func TestFlow_AutoAdvanceOnlyFromCurrentQuestion(t *testing.T) {
	f := newFlow(t)

	require.True(t, f.RecordAnswer(5, model.AnswerYes))
	assert.Equal(t, 0, f.Position(), "answering a later question does not move")

	require.True(t, f.RecordAnswer(1, model.AnswerYes))
	assert.Equal(t, 1, f.Position())
}

func TestFlow_LastQuestionDoesNotAutoAdvance(t *testing.T) {
	f := newFlow(t)
	qs := catalog.Questions()
	for _, q := range qs[:len(qs)-1] {
		require.True(t, f.RecordAnswer(q.ID, q.Options[0]))
	}
	require.Equal(t, len(qs)-1, f.Position())

	last := qs[len(qs)-1]
	require.True(t, f.RecordAnswer(last.ID, last.Options[1]))
	assert.Equal(t, len(qs)-1, f.Position())
}

func TestShouldAutoAdvance(t *testing.T) {
	q, _ := catalog.Lookup(1)
	assert.True(t, ShouldAutoAdvance(q, false))
	assert.False(t, ShouldAutoAdvance(q, true))
}

func TestFlow_SubmitIncomplete(t *testing.T) {
	f := newFlow(t)
	require.True(t, f.RecordAnswer(1, model.AnswerYes))

	answers, err := f.Submit()
	assert.Nil(t, answers)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "answers", verr.Field)
	assert.Contains(t, verr.Reason, "1 of 10")
	assert.False(t, f.Submitted())
}

func TestFlow_SubmitTerminatesSurvey(t *testing.T) {
	f := newFlow(t)
	answerAll(t, f)

	first, err := f.Submit()
	require.NoError(t, err)

	assert.False(t, f.RecordAnswer(1, model.AnswerNo))
	assert.False(t, f.GoPrevious())
	assert.Equal(t, model.AnswerYes, f.Answers()[1])

	_, err = f.Submit()
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	first[1] = model.AnswerNo
	assert.Equal(t, model.AnswerYes, f.Answers()[1], "submitted set is a copy")
}

func TestFlow_DelayedTransitionIsSingleFlight(t *testing.T) {
	f := New(catalog.Questions(), Options{TransitionDelay: 50 * time.Millisecond})
	t.Cleanup(f.Stop)

	require.True(t, f.RecordAnswer(1, model.AnswerYes))
	assert.Equal(t, 0, f.Position(), "move is pending")

	// Rapid input while the transition is pending is ignored.
	assert.False(t, f.GoNext())
	assert.False(t, f.GoPrevious())

	require.Eventually(t, func() bool { return f.Position() == 1 },
		time.Second, 5*time.Millisecond)

	require.True(t, f.GoPrevious())
	require.Eventually(t, func() bool { return f.Position() == 0 },
		time.Second, 5*time.Millisecond)
}

func TestFlow_EmptyCatalog(t *testing.T) {
	f := New(nil, Options{})
	assert.True(t, f.IsComplete())
	assert.False(t, f.GoNext())
	assert.False(t, f.GoPrevious())
	assert.Equal(t, model.Question{}, f.Current())
}

func TestValidateAnswer(t *testing.T) {
	qs := catalog.Questions()
	assert.NoError(t, ValidateAnswer(qs, 8, model.AnswerInProgress))

	var verr *ValidationError
	require.ErrorAs(t, ValidateAnswer(qs, 8, model.AnswerPlanned), &verr)
	assert.Equal(t, "question 8", verr.Field)

	require.ErrorAs(t, ValidateAnswer(qs, 99, model.AnswerYes), &verr)
	assert.Equal(t, "unknown question", verr.Reason)
}
