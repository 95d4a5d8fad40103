package spaced_repetition

import (
	"fmt"
	"math"
	"time"

	"github.com/example/revocab/pkg/models"
)

// FSRSLite implements a simplified FSRS-style update rule: per-rating
// stability multipliers and fixed difficulty deltas instead of the fitted
// weight model. The constants are a heuristic, not an optimized fit; a
// full FSRS implementation can replace this type behind the same Apply
// signature.
type FSRSLite struct {
	// InitialStability is assigned when a record is first created.
	InitialStability float64
	// InitialDifficulty is assigned when a record is first created.
	InitialDifficulty float64
	// MinStability is the floor stability never decays below.
	MinStability float64
	// MaxDifficulty and MinDifficulty bound the difficulty scale.
	MinDifficulty float64
	MaxDifficulty float64
	// ReviewThreshold is the stability at which a "hard" answer still
	// promotes the item into the long-term review state.
	ReviewThreshold float64
}

// Per-rating stability multipliers and difficulty deltas.
const (
	againStabilityFactor = 0.8
	hardStabilityFactor  = 1.2
	goodStabilityFactor  = 2.5
	easyStabilityFactor  = 4.0

	againDifficultyDelta = 0.8
	hardDifficultyDelta  = 0.15
	goodDifficultyDelta  = 0.15
	easyDifficultyDelta  = 0.3
)

// New returns an engine with the default constants.
func New() *FSRSLite {
	return &FSRSLite{
		InitialStability:  2.7,
		InitialDifficulty: 5.0,
		MinStability:      0.1,
		MinDifficulty:     1.0,
		MaxDifficulty:     10.0,
		ReviewThreshold:   7.0,
	}
}

// NewRecord returns the scheduling state for a freshly collected item:
// state=new, due immediately, never reviewed.
func (e *FSRSLite) NewRecord(userID, itemID int64, listID *int64, now time.Time) models.ReviewRecord {
	return models.ReviewRecord{
		UserID:     userID,
		ItemID:     itemID,
		ListID:     listID,
		Stability:  e.InitialStability,
		Difficulty: e.InitialDifficulty,
		Due:        now,
		Lapses:     0,
		State:      models.StateNew,
		CreatedAt:  now,
	}
}

// Apply computes the record's next scheduling state for a rating. It is
// pure: the input record is not modified, no clock is read (now is the
// rating event time), and valid input never fails.
func (e *FSRSLite) Apply(rec models.ReviewRecord, rating models.Rating, now time.Time) (models.ReviewRecord, error) {
	if !rating.IsValid() {
		return models.ReviewRecord{}, fmt.Errorf("%w: %d", models.ErrInvalidRating, int(rating))
	}

	next := rec

	switch rating {
	case models.RatingAgain:
		next.Stability = math.Max(e.MinStability, rec.Stability*againStabilityFactor)
		next.Difficulty = math.Min(e.MaxDifficulty, rec.Difficulty+againDifficultyDelta)
		next.State = models.StateRelearning
		next.Lapses = rec.Lapses + 1
	case models.RatingHard:
		next.Stability = rec.Stability * hardStabilityFactor
		next.Difficulty = math.Min(e.MaxDifficulty, rec.Difficulty+hardDifficultyDelta)
		if rec.Stability < e.ReviewThreshold {
			next.State = models.StateLearning
		} else {
			next.State = models.StateReview
		}
	case models.RatingGood:
		next.Stability = rec.Stability * goodStabilityFactor
		next.Difficulty = math.Max(e.MinDifficulty, rec.Difficulty-goodDifficultyDelta)
		next.State = models.StateReview
	case models.RatingEasy:
		next.Stability = rec.Stability * easyStabilityFactor
		next.Difficulty = math.Max(e.MinDifficulty, rec.Difficulty-easyDifficultyDelta)
		next.State = models.StateReview
	}

	// Bound floating-point drift across many review cycles.
	next.Stability = round2(next.Stability)
	next.Difficulty = round2(next.Difficulty)

	last := now
	next.LastReview = &last
	next.Due = now.AddDate(0, 0, e.Interval(next.Stability, rating))

	return next, nil
}

// Interval returns the next review interval in whole days for the given
// post-update stability. A failed recall always comes back the next day.
func (e *FSRSLite) Interval(stability float64, rating models.Rating) int {
	if rating == models.RatingAgain {
		return 1
	}
	days := int(math.Round(stability))
	if days < 1 {
		days = 1
	}
	return days
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
