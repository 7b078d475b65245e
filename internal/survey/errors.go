package survey

import (
	"errors"
	"fmt"
	"maturitymap/internal/model"
)

// ErrAlreadySubmitted is returned by Submit once the survey phase has ended
var ErrAlreadySubmitted = errors.New("survey already submitted")

// ValidationError reports an answer set or answer the survey refuses
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ValidateAnswer checks a single answer against the questionnaire
func ValidateAnswer(questions []model.Question, id int, value model.AnswerValue) error {
	for _, q := range questions {
		if q.ID != id {
			continue
		}
		if !q.Allows(value) {
			return &ValidationError{
				Field:  fmt.Sprintf("question %d", id),
				Reason: fmt.Sprintf("%q is not one of %v", value, q.Options),
			}
		}
		return nil
	}
	return &ValidationError{
		Field:  fmt.Sprintf("question %d", id),
		Reason: "unknown question",
	}
}
