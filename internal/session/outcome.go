package session

import (
	"fmt"

	"github.com/example/revocab/pkg/models"
)

// TestOutcome is the resolution of a multiple-choice test for one item.
type TestOutcome int

const (
	// OutcomeFirstTryCorrect means the first selected option was correct.
	OutcomeFirstTryCorrect TestOutcome = iota
	// OutcomeSecondTryCorrect means the retry after the hint was correct.
	OutcomeSecondTryCorrect
	// OutcomeSecondTryWrong means both attempts failed.
	OutcomeSecondTryWrong
)

// RateTestOutcome maps a test outcome to the scheduler rating it implies.
// Keeping the mapping in one place keeps the state machine testable
// independent of any UI handler.
func RateTestOutcome(outcome TestOutcome) (models.Rating, error) {
	switch outcome {
	case OutcomeFirstTryCorrect:
		return models.RatingGood, nil
	case OutcomeSecondTryCorrect:
		return models.RatingHard, nil
	case OutcomeSecondTryWrong:
		return models.RatingAgain, nil
	default:
		return 0, fmt.Errorf("unknown test outcome: %d", int(outcome))
	}
}
