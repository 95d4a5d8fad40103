package models

import "fmt"

// State is the learning stage of a review record. Values are stored
// as-is in the database, so the numeric codes are part of the schema.
type State int

const (
	// StateNew is a collected item that has never been rated.
	StateNew State = 0
	// StateLearning is an item still in the initial learning cycle.
	StateLearning State = 1
	// StateReview is an item in the long-term review cycle.
	StateReview State = 2
	// StateRelearning is a forgotten item being re-learned.
	StateRelearning State = 3
)

var stateNames = [...]string{
	StateNew:        "new",
	StateLearning:   "learning",
	StateReview:     "review",
	StateRelearning: "relearning",
}

// IsValid reports whether s is one of the four defined states.
func (s State) IsValid() bool {
	return s >= StateNew && s <= StateRelearning
}

func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}
