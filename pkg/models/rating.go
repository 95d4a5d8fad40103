package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRating is returned when a rating outside again..easy is supplied.
// Check with errors.Is.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the user's recall assessment for a single review.
type Rating int

const (
	// RatingAgain means the item was not recalled at all.
	RatingAgain Rating = iota + 1
	// RatingHard means the item was recalled with significant effort.
	RatingHard
	// RatingGood means the item was recalled with some effort.
	RatingGood
	// RatingEasy means the item was recalled effortlessly.
	RatingEasy
)

var ratingNames = [...]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// ParseRating converts the wire form ("again", "hard", "good", "easy")
// into a Rating. Unknown values return ErrInvalidRating.
func ParseRating(s string) (Rating, error) {
	for r, name := range ratingNames {
		if name != "" && name == s {
			return Rating(r), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase wire name of the rating.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// MarshalJSON serializes the rating as its wire name.
func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return json.Marshal(ratingNames[r])
}

// UnmarshalJSON accepts the wire name of a rating.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	v, err := ParseRating(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}
